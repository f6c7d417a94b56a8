package complete

import "strings"

// Kind tags the variant of an Outcome.
type Kind int

const (
	// None means there is nothing to suggest.
	None Kind = iota
	// List carries suffixes the caller may append to the buffer.
	List
	// InlinePreview carries a one-line text shown next to the buffer.
	InlinePreview
)

func (k Kind) String() string {
	switch k {
	case List:
		return "list"
	case InlinePreview:
		return "preview"
	default:
		return "none"
	}
}

// Outcome is the result of a completion request.
type Outcome struct {
	Kind Kind

	// Items holds the suffixes of a List outcome, in candidate order.
	Items []string

	// Preview holds the text of an InlinePreview outcome.
	Preview string
}

// ListOf builds a List outcome. An empty list becomes None.
func ListOf(items []string) Outcome {
	if len(items) == 0 {
		return Outcome{}
	}
	return Outcome{Kind: List, Items: items}
}

// PreviewOf builds an InlinePreview outcome. Blank text becomes None.
func PreviewOf(text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{}
	}
	return Outcome{Kind: InlinePreview, Preview: text}
}

// Filter keeps the candidates starting with prefix and strips the prefix
// from each. Duplicates are dropped; order is preserved.
func Filter(candidates []string, prefix string) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		if !strings.HasPrefix(c, prefix) || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c[len(prefix):])
	}
	return out
}
