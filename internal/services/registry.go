package services

import "strings"

// ID identifies a supported chat-assistant platform.
type ID string

const (
	ChatGPT          ID = "chatgpt"
	Claude           ID = "claude"
	Gemini           ID = "gemini"
	GitHubCopilot    ID = "github-copilot"
	MicrosoftCopilot ID = "microsoft-copilot"
)

// Descriptor identifies a platform and the CSS selector for its prompt input.
type Descriptor struct {
	ID       ID
	Selector string
}

// matchRule is one ordered substring test against the page URL.
type matchRule struct {
	substr string
	id     ID
}

// The order here is significant: a URL containing more than one substring must
// resolve to the first rule that matches. Do not reorder.
var matchRules = []matchRule{
	{"claude.ai", Claude},
	{"gemini.google.com", Gemini},
	{"github.com/copilot", GitHubCopilot},
	{"copilot.cloud.microsoft", MicrosoftCopilot},
	{"m365.cloud.microsoft/chat", MicrosoftCopilot},
}

var descriptors = map[ID]Descriptor{
	ChatGPT:          {ID: ChatGPT, Selector: "#prompt-textarea"},
	Claude:           {ID: Claude, Selector: `div[contenteditable="true"]`},
	Gemini:           {ID: Gemini, Selector: `input-area-v2 .ql-editor[role="textbox"]`},
	GitHubCopilot:    {ID: GitHubCopilot, Selector: "#copilot-chat-textarea"},
	MicrosoftCopilot: {ID: MicrosoftCopilot, Selector: `span[contenteditable="true"]`},
}

// KnownHosts returns the URL substrings that identify a supported platform,
// including the default's own host. Used to locate an open tab worth driving.
func KnownHosts() []string {
	hosts := make([]string, 0, len(matchRules)+1)
	for _, rule := range matchRules {
		hosts = append(hosts, rule.substr)
	}
	return append(hosts, "chatgpt.com")
}

// All returns the descriptors of every supported platform.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, id := range []ID{ChatGPT, Claude, Gemini, GitHubCopilot, MicrosoftCopilot} {
		out = append(out, descriptors[id])
	}
	return out
}

// Lookup returns the descriptor for a service id.
func Lookup(id ID) (Descriptor, bool) {
	d, ok := descriptors[id]
	return d, ok
}

// Resolve maps a page URL to the descriptor of the platform it belongs to.
// Unrecognized hosts fall back to ChatGPT, so the function is total.
func Resolve(currentURL string) Descriptor {
	for _, rule := range matchRules {
		if strings.Contains(currentURL, rule.substr) {
			return descriptors[rule.id]
		}
	}
	return descriptors[ChatGPT]
}
