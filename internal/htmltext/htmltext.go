// Package htmltext derives plain text from rich-text entry bodies. The
// derived text feeds the search match column and the auto short description.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StripTags removes markup from raw and returns the text content with
// whitespace collapsed. script and style blocks are dropped entirely.
func StripTags(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return normalizeWS(b.String())

		case html.StartTagToken:
			name, _ := z.TagName()
			if skipTag(string(name)) {
				skipDepth++
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if skipTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
				// tag boundaries separate words
				b.WriteByte(' ')
			}
		}
	}
}

// FirstParagraph returns the text of the first <p> element, truncated to
// maxRunes codepoints. When the fragment has no paragraph the stripped text
// is used instead.
func FirstParagraph(raw string, maxRunes int) string {
	text := ""

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err == nil {
		text = strings.TrimSpace(doc.Find("p").First().Text())
	}

	if text == "" {
		text = StripTags(raw)
	}

	return truncateRunes(normalizeWS(text), maxRunes)
}

func skipTag(name string) bool {
	return name == "script" || name == "style"
}

func normalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
