// Package highlight wraps search-query matches in marker tags for the
// portal's result lists. It is a pure transform over already-fetched rows:
// matching itself happens in the store, this package only decorates.
//
// Two entry points exist. MarkText is for plain-text fields (names, family,
// synonyms); the output is escaped markup safe to render as HTML. MarkHTML
// is for rich-text fields; it marks text nodes only, so existing tags and
// attributes are never split, and it falls back to the unmarked input when
// the markup cannot be tokenized.
package highlight

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultTag is the marker element the portal renders with emphasis.
const DefaultTag = "mark"

type Marker struct {
	tag string
}

func New() *Marker {
	return &Marker{tag: DefaultTag}
}

// NormalizeQuery collapses whitespace runs in a raw query string. Matching
// operates on the normalized form.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

// MarkText highlights query occurrences in a plain-text field. An empty
// query returns the input byte-identical, signaling "no active query".
func (m *Marker) MarkText(text, query string) string {
	query = NormalizeQuery(query)
	if query == "" || text == "" {
		return text
	}

	return m.markSegment(text, foldRunes([]rune(query)))
}

// MarkHTML highlights query occurrences inside the text nodes of a rich-text
// fragment. Raw-text elements (script, style) are passed through untouched.
// When the fragment cannot be tokenized it is returned unmarked.
func (m *Marker) MarkHTML(fragment, query string) string {
	query = NormalizeQuery(query)
	if query == "" || fragment == "" {
		return fragment
	}

	folded := foldRunes([]rune(query))
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	rawDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			// degraded: leave the field unmarked rather than emit
			// half-rewritten markup
			return fragment

		case html.TextToken:
			if rawDepth > 0 {
				b.Write(z.Raw())
			} else {
				b.WriteString(m.markSegment(string(z.Text()), folded))
			}

		case html.StartTagToken:
			name, _ := z.TagName()
			if rawTag(string(name)) {
				rawDepth++
			}
			b.Write(z.Raw())

		case html.EndTagToken:
			name, _ := z.TagName()
			if rawTag(string(name)) && rawDepth > 0 {
				rawDepth--
			}
			b.Write(z.Raw())

		default:
			b.Write(z.Raw())
		}
	}
}

// markSegment escapes text exactly once and wraps every match in the marker
// tag. All slicing is on rune boundaries, Thai grapheme bytes are never cut.
func (m *Marker) markSegment(text string, query []rune) string {
	runes := []rune(text)
	spans := matchSpans(foldRunes(runes), query)
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	var b strings.Builder
	prev := 0
	for _, span := range spans {
		b.WriteString(html.EscapeString(string(runes[prev:span[0]])))
		b.WriteString("<")
		b.WriteString(m.tag)
		b.WriteString(">")
		b.WriteString(html.EscapeString(string(runes[span[0]:span[1]])))
		b.WriteString("</")
		b.WriteString(m.tag)
		b.WriteString(">")
		prev = span[1]
	}
	b.WriteString(html.EscapeString(string(runes[prev:])))

	return b.String()
}

// matchSpans finds every non-overlapping occurrence of query in text, both
// already case-folded. Returns [start, end) rune offsets in ascending order.
func matchSpans(text, query []rune) [][2]int {
	if len(query) == 0 || len(text) < len(query) {
		return nil
	}

	var spans [][2]int
	for i := 0; i+len(query) <= len(text); {
		if equalRunes(text[i:i+len(query)], query) {
			spans = append(spans, [2]int{i, i + len(query)})
			i += len(query)
			continue
		}
		i++
	}

	return spans
}

// foldRunes lowercases rune by rune so offsets stay aligned with the
// original text. Thai has no case, the fold only matters for Latin words
// like scientific names.
func foldRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func rawTag(name string) bool {
	return name == "script" || name == "style" || name == "textarea"
}
