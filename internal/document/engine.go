package document

// Op identifies one mutation operation.
type Op string

// Mutation operations.
const (
	OpReplace     Op = "replace"
	OpAppend      Op = "append"
	OpInsert      Op = "insert"
	OpDelete      Op = "delete"
	OpClearAll    Op = "clear_all"
	OpInsertImage Op = "insert_image"
)

// Image placement positions relative to the addressed section.
const (
	PositionAfterSection  = "after_section"
	PositionBeforeSection = "before_section"
)

// Mutation is the record emitted for every successful operation. It is
// never mutated after creation. SectionIndex always carries the final
// array position after reindexing, not the position requested.
type Mutation struct {
	Operation        Op     `json:"operation"`
	SectionIndex     *int   `json:"sectionIndex,omitempty"`
	Title            string `json:"title,omitempty"`
	Content          string `json:"content,omitempty"`
	ImageURL         string `json:"imageUrl,omitempty"`
	ImageDescription string `json:"imageDescription,omitempty"`
	Position         string `json:"position,omitempty"`
}

func indexOf(i int) *int { return &i }

// Store holds the live section list for one editing session. It is the
// single source of truth for document state while the session's stream is
// open; the remote editor's view is an eventually-consistent projection of
// the mutations it emits.
//
// A Store is owned by exactly one session and is not safe for concurrent
// use: the agent loop invokes tools sequentially, so at most one mutation
// is in flight at a time. That precondition is the caller's to uphold.
type Store struct {
	sections []Section
}

// NewStore builds a store from an initial HTML snapshot.
func NewStore(initialHTML string) *Store {
	return &Store{sections: Parse(initialHTML)}
}

// Len returns the number of sections.
func (s *Store) Len() int { return len(s.sections) }

// Sections returns a copy of the current section list.
func (s *Store) Sections() []Section {
	out := make([]Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// HTML serializes the current document state.
func (s *Store) HTML() string { return Serialize(s.sections) }

// Replace overwrites the content of the section at index, and its title
// when title is non-empty. Content is required.
func (s *Store) Replace(index int, content, title string) (*Mutation, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content"}
	}
	if index < 0 || index >= len(s.sections) {
		return nil, &RangeError{Index: index, Len: len(s.sections)}
	}

	s.sections[index].Content = content
	if title != "" {
		s.sections[index].Title = title
	}
	Reindex(s.sections)

	return &Mutation{
		Operation:    OpReplace,
		SectionIndex: indexOf(index),
		Title:        s.sections[index].Title,
		Content:      content,
	}, nil
}

// Append pushes a new section at the end of the document.
func (s *Store) Append(title, content string) (*Mutation, error) {
	if title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content"}
	}

	s.sections = append(s.sections, Section{Title: title, Content: content})
	Reindex(s.sections)

	return &Mutation{
		Operation:    OpAppend,
		SectionIndex: indexOf(len(s.sections) - 1),
		Title:        title,
		Content:      content,
	}, nil
}

// Insert splices a new section before index. An index equal to the current
// length behaves exactly like Append.
func (s *Store) Insert(index int, title, content string) (*Mutation, error) {
	if title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content"}
	}
	if index < 0 || index > len(s.sections) {
		return nil, &RangeError{Index: index, Len: len(s.sections)}
	}

	s.sections = append(s.sections, Section{})
	copy(s.sections[index+1:], s.sections[index:])
	s.sections[index] = Section{Title: title, Content: content}
	Reindex(s.sections)

	return &Mutation{
		Operation:    OpInsert,
		SectionIndex: indexOf(index),
		Title:        title,
		Content:      content,
	}, nil
}

// Delete removes the section at index. Section 0 is protected and can
// never be deleted, regardless of document size.
func (s *Store) Delete(index int) (*Mutation, error) {
	if index == 0 {
		return nil, ErrProtectedSection
	}
	if index < 0 || index >= len(s.sections) {
		return nil, &RangeError{Index: index, Len: len(s.sections)}
	}

	s.sections = append(s.sections[:index], s.sections[index+1:]...)
	Reindex(s.sections)

	return &Mutation{
		Operation:    OpDelete,
		SectionIndex: indexOf(index),
	}, nil
}

// ClearAll empties the section list. It never fails.
func (s *Store) ClearAll() (*Mutation, error) {
	s.sections = nil
	return &Mutation{Operation: OpClearAll}, nil
}

// InsertImage validates an image placement against the current document
// and emits a placement instruction. The section list itself is not
// changed; placing the image is the remote editor's job. The position
// defaults to after_section.
func (s *Store) InsertImage(index int, imageURL, imageDescription, position string) (*Mutation, error) {
	if imageURL == "" {
		return nil, &ValidationError{Field: "imageUrl"}
	}
	if imageDescription == "" {
		return nil, &ValidationError{Field: "imageDescription"}
	}
	switch position {
	case "":
		position = PositionAfterSection
	case PositionAfterSection, PositionBeforeSection:
	default:
		return nil, &ValidationError{Field: "position"}
	}
	if index < 0 || index >= len(s.sections) {
		return nil, &RangeError{Index: index, Len: len(s.sections)}
	}

	return &Mutation{
		Operation:        OpInsertImage,
		SectionIndex:     indexOf(index),
		ImageURL:         imageURL,
		ImageDescription: imageDescription,
		Position:         position,
	}, nil
}
