// Package render turns remote values into display text.
//
// The engine treats rendering as a collaborator: it hands a RemoteValue to
// a Renderer and shows whatever comes back. Text is the default
// implementation and works purely from the descriptive data the target
// attached to the value (type, description and preview) without further
// round trips.
package render

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonwraymond/inspectrepl/jsparse"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/signature"
)

// DefaultWidth is the inline preview width used when none is configured.
const DefaultWidth = 80

// Renderer renders a remote value for display.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Purity: rendering must not issue protocol round trips.
type Renderer interface {
	Render(v protocol.RemoteValue) string
}

// Previewer renders a single-line, width-bounded form of a value.
type Previewer interface {
	Preview(v protocol.RemoteValue) string
}

// Text renders values in the style of Node's util.inspect.
type Text struct {
	// Width bounds inline previews, in runes. Zero means DefaultWidth.
	Width int
}

var (
	_ Renderer  = Text{}
	_ Previewer = Text{}
)

// titleCase builds a fresh Caser per call; Casers are not safe to share.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// Render returns the multi-line display form of v.
func (t Text) Render(v protocol.RemoteValue) string {
	switch v.Type {
	case protocol.TypeUndefined:
		return "undefined"
	case protocol.TypeString:
		return quote(stringValue(v))
	case protocol.TypeNumber, protocol.TypeBoolean, protocol.TypeBigInt:
		return primitive(v)
	case protocol.TypeSymbol:
		return v.Description
	case protocol.TypeFunction:
		return functionLabel(v.Description)
	case protocol.TypeObject:
		switch v.Subtype {
		case protocol.SubtypeNull:
			return "null"
		case "error", "regexp", "date":
			return v.Description
		}
		if v.Preview != nil {
			return previewText(v, v.Preview)
		}
		return label(v.ClassName, v.Subtype, v.Description)
	}
	if v.Description != "" {
		return v.Description
	}
	return string(v.Type)
}

// Preview returns the single-line form of v, cut to the configured width.
func (t Text) Preview(v protocol.RemoteValue) string {
	text := t.Render(v)
	if v.Type == protocol.TypeObject && v.Subtype == "error" {
		text, _, _ = strings.Cut(text, "\n")
	}
	return Truncate(strings.Join(strings.Fields(text), " "), t.width())
}

func (t Text) width() int {
	if t.Width <= 0 {
		return DefaultWidth
	}
	return t.Width
}

// Truncate cuts s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func stringValue(v protocol.RemoteValue) string {
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	return v.Description
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

func primitive(v protocol.RemoteValue) string {
	switch {
	case v.UnserializableValue != "":
		return v.UnserializableValue
	case v.Description != "":
		return v.Description
	default:
		return string(v.Value)
	}
}

func functionLabel(source string) string {
	trimmed := strings.TrimSpace(source)
	name := signature.FunctionName(trimmed)
	if strings.HasPrefix(trimmed, "class") {
		if name == "" {
			return "[class (anonymous)]"
		}
		return "[class " + name + "]"
	}
	kind := "Function"
	if strings.HasPrefix(trimmed, "async") {
		kind = "AsyncFunction"
	}
	if name == "" {
		return "[" + kind + " (anonymous)]"
	}
	return "[" + kind + ": " + name + "]"
}

// label names an object that came without a preview.
func label(className, subtype, description string) string {
	switch {
	case description != "":
		return description
	case className != "":
		return className
	case subtype != "":
		return titleCase(subtype)
	default:
		return "Object"
	}
}

func previewText(v protocol.RemoteValue, p *protocol.ObjectPreview) string {
	var parts []string
	switch p.Subtype {
	case "map", "set", "weakmap", "weakset":
		for _, e := range p.Entries {
			if e.Key != nil {
				parts = append(parts, entryText(e.Key)+" => "+entryText(&e.Value))
			} else {
				parts = append(parts, entryText(&e.Value))
			}
		}
	default:
		for _, prop := range p.Properties {
			if p.Subtype == "array" && isIndex(prop.Name) {
				parts = append(parts, propertyValue(prop))
				continue
			}
			parts = append(parts, propertyKey(prop.Name)+": "+propertyValue(prop))
		}
	}
	if p.Overflow {
		parts = append(parts, "...")
	}

	if p.Subtype == "array" {
		head := ""
		if v.ClassName != "" && v.ClassName != "Array" {
			head = v.Description + " "
		}
		if len(parts) == 0 {
			return head + "[]"
		}
		return head + "[ " + strings.Join(parts, ", ") + " ]"
	}

	head := objectHead(v, p)
	if len(parts) == 0 {
		if head == "" {
			return "{}"
		}
		return head + " {}"
	}
	body := "{ " + strings.Join(parts, ", ") + " }"
	if head == "" {
		return body
	}
	return head + " " + body
}

func objectHead(v protocol.RemoteValue, p *protocol.ObjectPreview) string {
	switch {
	case p.Subtype == "map" || p.Subtype == "set" || p.Subtype == "weakmap" || p.Subtype == "weakset":
		return v.Description
	case v.ClassName == "Object":
		return ""
	case v.ClassName != "":
		return v.ClassName
	case p.Subtype != "":
		return titleCase(p.Subtype)
	}
	return ""
}

func entryText(p *protocol.ObjectPreview) string {
	if p.Type == protocol.TypeString {
		return quote(p.Description)
	}
	return p.Description
}

func propertyKey(name string) string {
	if jsparse.IsIdentifierName(name) {
		return name
	}
	return quote(name)
}

func propertyValue(prop protocol.PropertyPreview) string {
	switch prop.Type {
	case protocol.TypeString:
		return quote(prop.Value)
	case protocol.TypeFunction:
		return "[Function]"
	case protocol.TypeObject:
		switch {
		case prop.Subtype == protocol.SubtypeNull:
			return "null"
		case prop.Subtype == "array":
			return "[" + prop.Value + "]"
		case prop.Subtype != "" && prop.Value == "":
			return titleCase(prop.Subtype)
		case prop.Value == "Object" || prop.Value == "":
			return "[Object]"
		}
		return prop.Value
	case "accessor":
		return "[Getter/Setter]"
	}
	return prop.Value
}

func isIndex(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
