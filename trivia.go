package tomledit

import "strings"

// Trivia carries the per-item formatting metadata that lets the container
// reproduce a document's exact layout across mutation: the indentation
// before an item, the whitespace run before an inline comment, the comment
// text itself (including its leading '#'), and the newline(s) that end the
// item's line. Whitespace and Comment items do not carry a Trivia — their
// entire footprint IS the string they hold.
type Trivia struct {
	Indent    string
	CommentWS string
	Comment   string
	Trail     string
}

// NewTrivia builds a Trivia with the default trailing newline used by
// freshly-constructed items.
func NewTrivia() Trivia {
	return Trivia{Trail: "\n"}
}

// endsWithNewline reports whether the trail terminates the item's line.
func (t Trivia) endsWithNewline() bool {
	return strings.Contains(t.Trail, "\n")
}
