package document

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse splits an HTML document into its ordered section list.
//
// Everything before the first <h2> is section 0; its title comes from the
// first <h1> if one is present (stripped from the content, plain text,
// trimmed). Every <h2> starts a new section whose title is the heading's
// text with all nested markup removed. Only the first occurrence of each
// heading within a segment becomes the title; a segment is not re-scanned
// once its title is captured. Empty or whitespace-only input yields nil.
func Parse(input string) []Section {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	z := html.NewTokenizer(strings.NewReader(input))

	var sections []Section
	var content strings.Builder
	title := ""
	titleCaptured := false

	flush := func() {
		sections = append(sections, Section{
			Title:   title,
			Content: strings.TrimSpace(content.String()),
		})
		content.Reset()
		title = ""
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or malformed markup past this point; keep what we have.
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.H2:
				// Section boundary: close the current segment, the heading
				// text becomes the next segment's title.
				flush()
				if tt == html.SelfClosingTagToken {
					titleCaptured = true
					continue
				}
				title = headingText(z, atom.H2)
				titleCaptured = true
			case atom.H1:
				if len(sections) == 0 && !titleCaptured && tt == html.StartTagToken {
					title = headingText(z, atom.H1)
					titleCaptured = true
					continue
				}
				content.WriteString(raw)
			default:
				content.WriteString(raw)
			}
		default:
			content.WriteString(string(z.Raw()))
		}
	}

	flush()
	return Reindex(sections)
}

// headingText consumes tokens up to the matching end tag and returns the
// heading's text with all nested markup removed and whitespace trimmed.
func headingText(z *html.Tokenizer, tag atom.Atom) string {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		switch z.Next() {
		case html.ErrorToken:
			depth = 0
		case html.TextToken:
			text.Write(z.Text())
		case html.StartTagToken:
			if name, _ := z.TagName(); atom.Lookup(name) == tag {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); atom.Lookup(name) == tag {
				depth--
			}
		}
	}
	return strings.TrimSpace(text.String())
}

// Serialize is the inverse of Parse. Position 0 emits an <h1> wrapper when
// its title is non-empty, every other position emits an <h2> wrapper when
// non-empty. Concatenation order is array order, not the stored Index
// field; callers must Reindex before relying on Index.
func Serialize(sections []Section) string {
	var out strings.Builder
	for i, s := range sections {
		if s.Title != "" {
			if i == 0 {
				out.WriteString("<h1>")
				out.WriteString(html.EscapeString(s.Title))
				out.WriteString("</h1>")
			} else {
				out.WriteString("<h2>")
				out.WriteString(html.EscapeString(s.Title))
				out.WriteString("</h2>")
			}
		}
		out.WriteString(s.Content)
	}
	return out.String()
}
