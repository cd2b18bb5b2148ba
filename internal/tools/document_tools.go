package tools

import (
	"context"
	"fmt"

	"draftwire/internal/document"
	"draftwire/internal/stream"
)

// Emitter pushes one event onto the session's outbound stream.
type Emitter func(event any)

// DocumentToolset exposes the mutation engine of one session's section
// store as agent tools. Every successful structural operation emits
// exactly one doc_update event; validation failures emit nothing, so the
// remote consumer never sees a partial state change.
type DocumentToolset struct {
	store *document.Store
	emit  Emitter
}

// NewDocumentToolset wires the six document tools to a session store.
func NewDocumentToolset(store *document.Store, emit Emitter) *DocumentToolset {
	return &DocumentToolset{store: store, emit: emit}
}

// Tools returns the toolset in a stable order.
func (ts *DocumentToolset) Tools() []Tool {
	return []Tool{
		replaceSectionTool{ts},
		appendSectionTool{ts},
		insertSectionTool{ts},
		deleteSectionTool{ts},
		clearDocumentTool{ts},
		insertImageTool{ts},
	}
}

// apply emits the mutation and formats the standard success result.
func (ts *DocumentToolset) apply(mut *document.Mutation, text string) Result {
	ts.emit(stream.NewDocUpdate(*mut))
	details := map[string]any{"operation": string(mut.Operation)}
	if mut.SectionIndex != nil {
		details["sectionIndex"] = *mut.SectionIndex
	}
	return TextResult(text, details)
}

func sectionIndexSchema(desc string) map[string]any {
	return map[string]any{"type": "integer", "minimum": 0, "description": desc}
}

type replaceSectionTool struct{ ts *DocumentToolset }

func (replaceSectionTool) Name() string { return "replace_section" }
func (replaceSectionTool) Description() string {
	return "Replace the content (and optionally the title) of one section without resending the rest of the document."
}
func (replaceSectionTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sectionIndex": sectionIndexSchema("Zero-based index of the section to replace"),
			"title":        map[string]any{"type": "string", "description": "New section title; omit to keep the current one"},
			"content":      map[string]any{"type": "string", "description": "New HTML content for the section, without heading tags"},
		},
		"required": []string{"sectionIndex", "content"},
	}
}

func (t replaceSectionTool) Execute(_ context.Context, _ string, params map[string]any) Result {
	index, ok := intParam(params, "sectionIndex")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "sectionIndex"})
	}
	content, ok := stringParam(params, "content")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "content"})
	}

	mut, err := t.ts.store.Replace(index, content, optionalString(params, "title"))
	if err != nil {
		return ErrorResult("%v", err)
	}
	return t.ts.apply(mut, fmt.Sprintf("Replaced section %d.", *mut.SectionIndex))
}

type appendSectionTool struct{ ts *DocumentToolset }

func (appendSectionTool) Name() string { return "append_section" }
func (appendSectionTool) Description() string {
	return "Add a new titled section at the end of the document."
}
func (appendSectionTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   map[string]any{"type": "string", "description": "Title of the new section"},
			"content": map[string]any{"type": "string", "description": "HTML content of the new section, without heading tags"},
		},
		"required": []string{"title", "content"},
	}
}

func (t appendSectionTool) Execute(_ context.Context, _ string, params map[string]any) Result {
	title, ok := stringParam(params, "title")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "title"})
	}
	content, ok := stringParam(params, "content")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "content"})
	}

	mut, err := t.ts.store.Append(title, content)
	if err != nil {
		return ErrorResult("%v", err)
	}
	return t.ts.apply(mut, fmt.Sprintf("Appended section %d: %q.", *mut.SectionIndex, title))
}

type insertSectionTool struct{ ts *DocumentToolset }

func (insertSectionTool) Name() string { return "insert_section" }
func (insertSectionTool) Description() string {
	return "Insert a new titled section before the given index. An index equal to the section count appends at the end."
}
func (insertSectionTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sectionIndex": sectionIndexSchema("Zero-based index to insert before; the section count itself appends"),
			"title":        map[string]any{"type": "string", "description": "Title of the new section"},
			"content":      map[string]any{"type": "string", "description": "HTML content of the new section, without heading tags"},
		},
		"required": []string{"sectionIndex", "title", "content"},
	}
}

func (t insertSectionTool) Execute(_ context.Context, _ string, params map[string]any) Result {
	index, ok := intParam(params, "sectionIndex")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "sectionIndex"})
	}
	title, ok := stringParam(params, "title")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "title"})
	}
	content, ok := stringParam(params, "content")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "content"})
	}

	mut, err := t.ts.store.Insert(index, title, content)
	if err != nil {
		return ErrorResult("%v", err)
	}
	return t.ts.apply(mut, fmt.Sprintf("Inserted section %d: %q.", *mut.SectionIndex, title))
}

type deleteSectionTool struct{ ts *DocumentToolset }

func (deleteSectionTool) Name() string { return "delete_section" }
func (deleteSectionTool) Description() string {
	return "Delete the section at the given index. Section 0 is the title area and cannot be deleted."
}
func (deleteSectionTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sectionIndex": sectionIndexSchema("Zero-based index of the section to delete; must be at least 1"),
		},
		"required": []string{"sectionIndex"},
	}
}

func (t deleteSectionTool) Execute(_ context.Context, _ string, params map[string]any) Result {
	index, ok := intParam(params, "sectionIndex")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "sectionIndex"})
	}

	mut, err := t.ts.store.Delete(index)
	if err != nil {
		return ErrorResult("%v", err)
	}
	return t.ts.apply(mut, fmt.Sprintf("Deleted section %d. Later sections moved up one index.", *mut.SectionIndex))
}

type clearDocumentTool struct{ ts *DocumentToolset }

func (clearDocumentTool) Name() string { return "clear_document" }
func (clearDocumentTool) Description() string {
	return "Remove every section and start the document over from nothing."
}
func (clearDocumentTool) Schema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t clearDocumentTool) Execute(_ context.Context, _ string, _ map[string]any) Result {
	mut, err := t.ts.store.ClearAll()
	if err != nil {
		return ErrorResult("%v", err)
	}
	return t.ts.apply(mut, "Cleared all sections.")
}

type insertImageTool struct{ ts *DocumentToolset }

func (insertImageTool) Name() string { return "insert_image" }
func (insertImageTool) Description() string {
	return "Ask the editor to place an image before or after an existing section. The section list itself is unchanged."
}
func (insertImageTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sectionIndex":     sectionIndexSchema("Zero-based index of the section the image is anchored to"),
			"imageUrl":         map[string]any{"type": "string", "description": "URL of the image to place"},
			"imageDescription": map[string]any{"type": "string", "description": "Alt text describing the image"},
			"position": map[string]any{
				"type":        "string",
				"enum":        []string{document.PositionAfterSection, document.PositionBeforeSection},
				"description": "Where to place the image relative to the section; defaults to after_section",
			},
		},
		"required": []string{"sectionIndex", "imageUrl", "imageDescription"},
	}
}

func (t insertImageTool) Execute(_ context.Context, _ string, params map[string]any) Result {
	index, ok := intParam(params, "sectionIndex")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "sectionIndex"})
	}
	imageURL, ok := stringParam(params, "imageUrl")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "imageUrl"})
	}
	imageDescription, ok := stringParam(params, "imageDescription")
	if !ok {
		return ErrorResult("%v", &document.ValidationError{Field: "imageDescription"})
	}

	mut, err := t.ts.store.InsertImage(index, imageURL, imageDescription, optionalString(params, "position"))
	if err != nil {
		return ErrorResult("%v", err)
	}
	return t.ts.apply(mut, fmt.Sprintf("Requested image placement %s section %d.",
		positionPhrase(mut.Position), *mut.SectionIndex))
}

func positionPhrase(position string) string {
	if position == document.PositionBeforeSection {
		return "before"
	}
	return "after"
}
