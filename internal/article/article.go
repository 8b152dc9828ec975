// Package article splits raw generated text into a title and a body, matching
// how copied assistant output is shaped: an optional ````text fence around the
// whole thing, then either Markdown front matter or a first line that serves
// as the title.
package article

import "strings"

// Article is a publishable piece: a title (may be empty when the body carries
// front matter) and the Markdown body.
type Article struct {
	Title string
	Body  string
}

// Split parses raw text into an Article.
//
// Rules, in order:
//   - a leading "````text" fence drops the first and last lines;
//   - if the first remaining line starts with "---", the whole text is the
//     body and the title stays empty (front matter names the article itself);
//   - otherwise the first line is the title and the rest is the body.
func Split(raw string) Article {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "````text") {
		if len(lines) >= 2 {
			lines = lines[1 : len(lines)-1]
		} else {
			lines = nil
		}
	}
	if len(lines) == 0 {
		return Article{}
	}
	if strings.HasPrefix(lines[0], "---") {
		return Article{Body: strings.Join(lines, "\n")}
	}
	return Article{
		Title: lines[0],
		Body:  strings.Join(lines[1:], "\n"),
	}
}
