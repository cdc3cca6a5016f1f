package tomledit

import (
	"regexp"
	"strings"
)

var tableIndentRe = regexp.MustCompile(`^[ \t]*`)

// Table is a [header] table. It wraps a Container holding the table's own
// body and tracks the bookkeeping a header needs beyond that body: the
// dotted Name it was declared under, whether it is a synthetic super-table
// (one implied by a longer dotted header rather than written directly),
// and whether it is one element of an array-of-tables.
type Table struct {
	itemBase
	container    *Container
	Name         Key
	isSuperTable bool
	isAoTElement bool
	displayName  string
	// headerFromSource marks a table whose Name.Original was taken directly
	// from a written "[...]"/"[[...]]" header, which already spells out the
	// table's complete dotted path. A table built programmatically (e.g. from
	// a map) carries only its own local key, so its displayName is instead
	// composed from its parent's path when rendered.
	headerFromSource bool
}

// NewTable builds an empty, directly-declared table. isAoTElement marks a
// table that is one element of an AoT, which affects how its header
// renders ("[[name]]" vs "[name]") and how indentation is inherited.
func NewTable(isAoTElement bool) *Table {
	t := &Table{isAoTElement: isAoTElement}
	t.trivia = NewTrivia()
	t.container = NewContainer(false)
	return t
}

// newTableFromContainer wraps an already-built Container (typically
// produced by the parser) as a Table.
func newTableFromContainer(c *Container, isAoTElement bool) *Table {
	t := &Table{container: c, isAoTElement: isAoTElement}
	t.trivia = NewTrivia()
	return t
}

func (t *Table) Kind() ItemKind { return KindTable }
func (t *Table) Value() any     { return t.container.Value() }

func (t *Table) AsString() string {
	var b strings.Builder
	t.renderHeader(&b)
	b.WriteString(t.container.asString(t.displayName))
	return b.String()
}

// resolveDisplayName computes the full dotted header text to render. A
// table parsed directly from a "[...]" header already carries its complete
// path in Name.Original; anything else (built from a map, or nested under
// one) has its parent's resolved path threaded in as prefix.
func (t *Table) resolveDisplayName(prefix string) {
	local := t.Name.AsString()
	if t.headerFromSource || prefix == "" {
		t.displayName = local
		return
	}
	t.displayName = prefix + "." + local
}

func (t *Table) renderHeader(b *strings.Builder) {
	if t.isSuperTable && !t.hasOwnContent() {
		return
	}
	b.WriteString(t.trivia.Indent)
	if t.isAoTElement {
		b.WriteString("[[")
	} else {
		b.WriteByte('[')
	}
	b.WriteString(t.displayName)
	if t.isAoTElement {
		b.WriteString("]]")
	} else {
		b.WriteByte(']')
	}
	b.WriteString(t.trivia.CommentWS)
	b.WriteString(t.trivia.Comment)
	b.WriteString(t.trivia.Trail)
}

// hasOwnContent reports whether this super-table carries any values of its
// own (as opposed to existing purely to host nested tables), mirroring
// atoml's header-suppression rule for synthetic super-tables.
func (t *Table) hasOwnContent() bool {
	for _, entry := range t.container.body {
		if entry.key == nil {
			continue
		}
		switch entry.item.(type) {
		case *Table, *AoT:
			continue
		}
		return true
	}
	return false
}

// IsSuperTable reports whether this table exists only to host a longer
// dotted header (e.g. the implicit "[a]" behind a written "[a.b]").
func (t *Table) IsSuperTable() bool { return t.isSuperTable }

// IsAoTElement reports whether this table is one element of an
// array-of-tables.
func (t *Table) IsAoTElement() bool { return t.isAoTElement }

// Container exposes the table's body so callers can Append/Get/Remove its
// entries the same way they would at the document root.
func (t *Table) Container() *Container { return t.container }

// invalidateDisplayName drops a cached, previously-rendered header name so
// it is recomputed the next time the table is re-parented under a
// different key.
func (t *Table) invalidateDisplayName() { t.displayName = "" }

// inheritIndent copies parentIndent as this table's own indent unless it
// already carries one of its own (matched the way atoml matches it: a
// table inherits its parent's leading-whitespace prefix only while it has
// none set), then passes its own indent's whitespace run down the same way
// to each child table already in its body. A child table that already has
// an indent keeps it unchanged (nothing is prepended to it), and non-table
// children are not touched.
func (t *Table) inheritIndent(parentIndent string) {
	if t.trivia.Indent == "" {
		t.trivia.Indent = parentIndent
	}
	childIndent := indentPrefix(t.trivia.Indent)
	for _, entry := range t.container.body {
		if sub, ok := entry.item.(*Table); ok {
			sub.inheritIndent(childIndent)
		}
	}
}

// --- InlineTable ------------------------------------------------------

// InlineTable is a `{ k = v, ... }` value. Like Table it wraps a Container,
// but renders on one line and carries no header. new distinguishes a
// freshly caller-built inline table (which always renders with a spaced
// ", " separator, matching what a human typing a new literal would write)
// from one produced by the parser (which renders a bare "," between
// entries). The source spacing of a parsed inline table is not recorded:
// it always renders as {k = v,k = v}, whatever spacing it was written with.
type InlineTable struct {
	itemBase
	container *Container
	new       bool
}

// NewInlineTable builds an empty, caller-built inline table.
func NewInlineTable() *InlineTable {
	it := &InlineTable{container: NewContainer(false), new: true}
	it.trivia = NewTrivia()
	it.trivia.Trail = ""
	return it
}

func newInlineTableFromContainer(c *Container) *InlineTable {
	it := &InlineTable{container: c}
	it.trivia = NewTrivia()
	it.trivia.Trail = ""
	return it
}

func (it *InlineTable) Kind() ItemKind       { return KindInlineTable }
func (it *InlineTable) Value() any           { return it.container.Value() }
func (it *InlineTable) Container() *Container { return it.container }

func (it *InlineTable) AsString() string {
	sep := ","
	if it.new {
		sep = ", "
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, entry := range it.container.body {
		if entry.key == nil {
			if _, ok := entry.item.(*Whitespace); ok {
				continue
			}
		}
		if !first {
			b.WriteString(sep)
		}
		if entry.key != nil {
			b.WriteString(entry.key.AsString())
			b.WriteString(entry.item.Trivia().Indent)
			b.WriteString(" = ")
		}
		b.WriteString(entry.item.AsString())
		first = false
	}
	b.WriteByte('}')
	return b.String()
}

// --- AoT (array of tables) ---------------------------------------------

// AoT is the sequence of [[name]] table fragments sharing one header name.
// Its own Trivia is unused for rendering (each element table carries its
// own), but is present so AoT satisfies Item uniformly.
type AoT struct {
	itemBase
	Name  Key
	Items []*Table
}

// NewAoT builds an empty array of tables under name.
func NewAoT(name Key) *AoT {
	a := &AoT{Name: name}
	a.trivia = NewTrivia()
	a.trivia.Trail = ""
	return a
}

func (a *AoT) Kind() ItemKind { return KindAoT }

func (a *AoT) Value() any {
	out := make([]any, 0, len(a.Items))
	for _, t := range a.Items {
		out = append(out, t.Value())
	}
	return out
}

func (a *AoT) AsString() string {
	var b strings.Builder
	for _, t := range a.Items {
		b.WriteString(t.AsString())
	}
	return b.String()
}

// Append adds table to the end of the array, inheriting indentation from
// the previous element and inserting a blank line ahead of it when the
// previous element's body doesn't already end in one (mirroring atoml's
// AoT.append newline bookkeeping).
func (a *AoT) Append(table *Table) {
	if len(a.Items) > 0 {
		prev := a.Items[len(a.Items)-1]
		table.trivia.Indent = prev.trivia.Indent
		ensureTrailingBlankLine(prev.container)
	}
	table.isAoTElement = true
	a.Items = append(a.Items, table)
}

// Delete removes the element at index i.
func (a *AoT) Delete(i int) {
	a.Items = append(a.Items[:i], a.Items[i+1:]...)
}

// ensureTrailingBlankLine makes the last line rendered for c end in a blank
// line, descending into a trailing Table or AoT so the blank line follows
// that table's last entry rather than its header.
func ensureTrailingBlankLine(c *Container) {
	if len(c.body) == 0 {
		return
	}
	last := c.body[len(c.body)-1].item
	for {
		if t, ok := last.(*Table); ok && len(t.container.body) > 0 {
			last = t.container.body[len(t.container.body)-1].item
		} else if a, ok := last.(*AoT); ok && len(a.Items) > 0 {
			last = a.Items[len(a.Items)-1]
		} else {
			break
		}
	}
	tr := last.Trivia()
	if tr == nil {
		return
	}
	if !strings.HasSuffix(tr.Trail, "\n") {
		tr.Trail += "\n"
	}
	if !strings.HasSuffix(tr.Trail, "\n\n") {
		tr.Trail += "\n"
	}
}

func indentPrefix(s string) string {
	return tableIndentRe.FindString(s)
}
