package article

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Article
	}{
		{
			name: "first line becomes title",
			raw:  "My article\nbody line one\nbody line two",
			want: Article{Title: "My article", Body: "body line one\nbody line two"},
		},
		{
			name: "text fence is stripped",
			raw:  "````text\nFenced title\nfenced body\n````",
			want: Article{Title: "Fenced title", Body: "fenced body"},
		},
		{
			name: "front matter keeps everything as body",
			raw:  "---\ntitle: from front matter\n---\nbody",
			want: Article{Body: "---\ntitle: from front matter\n---\nbody"},
		},
		{
			name: "fence then front matter",
			raw:  "````text\n---\ntitle: x\n---\nbody\n````",
			want: Article{Body: "---\ntitle: x\n---\nbody"},
		},
		{
			name: "single line",
			raw:  "just a title",
			want: Article{Title: "just a title"},
		},
		{
			name: "empty input",
			raw:  "",
			want: Article{Title: "", Body: ""},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Split(tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
