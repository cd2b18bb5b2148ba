// Package document implements the section model for one editing session:
// the HTML parser/serializer, the per-session section store, and the
// mutation engine that validates and applies agent-issued edits.
package document

// Section is a titled block of document content addressed by a zero-based
// index. Section 0 is the title area: its heading renders as the document
// title, every later section renders a sub-heading. Content is an HTML
// fragment and never contains heading tags; headings are carried in Title
// and synthesized on serialization.
type Section struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Reindex projects array position onto the Index field of every section.
// It mutates the slice in place and returns it. No other field is altered,
// and applying it twice is the same as applying it once.
func Reindex(sections []Section) []Section {
	for i := range sections {
		sections[i].Index = i
	}
	return sections
}
