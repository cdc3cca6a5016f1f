package tomledit

import "strings"

// Array is a style-preserving sequence: Elements interleaves element Items
// with Whitespace and Comment trivia, and indexMap translates public
// element indices (0..n-1, skipping trivia) to physical positions in
// Elements. The index map is rebuilt after every structural change.
type Array struct {
	itemBase
	Elements  []Item
	Multiline bool
	indexMap  []int
}

// NewArray builds an empty Array.
func NewArray() *Array {
	a := &Array{}
	a.trivia = NewTrivia()
	a.trivia.Trail = ""
	return a
}

// NewArrayFrom builds an Array from already-assembled Elements (typically
// produced by a parser, interleaved trivia included) and reindexes it.
func NewArrayFrom(elements []Item, multiline bool) *Array {
	a := &Array{Elements: elements, Multiline: multiline}
	a.trivia = NewTrivia()
	a.trivia.Trail = ""
	a.reindex()
	return a
}

func (a *Array) Kind() ItemKind { return KindArray }

func (a *Array) Value() any {
	out := make([]any, 0, len(a.indexMap))
	for _, pos := range a.indexMap {
		out = append(out, a.Elements[pos].Value())
	}
	return out
}

// AsString walks Elements verbatim: every value, comma, comment, and run
// of whitespace (including embedded newlines and indentation) is its own
// Element carrying its exact text, so a parsed array reproduces its
// source byte-for-byte, and a hand-built one reproduces whatever layout
// Insert/AddLine constructed for it.
func (a *Array) AsString() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, e := range a.Elements {
		b.WriteString(e.AsString())
	}
	b.WriteByte(']')
	return b.String()
}

// Len reports the number of public (non-trivia) elements.
func (a *Array) Len() int { return len(a.indexMap) }

// Get returns the value-bearing Item at public index i.
func (a *Array) Get(i int) Item { return a.Elements[a.indexMap[i]] }

func (a *Array) reindex() {
	a.indexMap = a.indexMap[:0]
	for i, v := range a.Elements {
		switch v.(type) {
		case *Whitespace, *Comment:
			continue
		}
		a.indexMap = append(a.indexMap, i)
	}
}

// Set replaces the element at public index i, preserving the surrounding
// whitespace.
func (a *Array) Set(i int, value any) error {
	it, err := ItemFrom(value)
	if err != nil {
		return err
	}
	a.Elements[a.indexMap[i]] = it
	return nil
}

// Insert inserts value before public index pos (pos == Len() appends).
// Surrounding whitespace style is inherited from the neighbor it is
// inserted next to: if that whitespace contains a newline with no trailing
// space, a four-space indent is used; otherwise a single space.
func (a *Array) Insert(pos int, value any) error {
	it, err := ItemFrom(value)
	if err != nil {
		return err
	}

	length := a.Len()
	if pos < 0 {
		pos += length
		if pos < 0 {
			pos = 0
		}
	}

	var idx int
	items := []Item{it}
	needsComma := true
	switch it.(type) {
	case *Whitespace, *Comment:
		needsComma = false
	}

	if pos < length {
		idx = a.indexMap[pos]
		if needsComma {
			items = append(items, NewWhitespace(","))
		}
	} else {
		idx = len(a.Elements)
	}

	ws := ""
	if idx > 0 {
		if w, ok := a.Elements[idx-1].(*Whitespace); ok && !strings.Contains(w.S, ",") {
			idx--
			ws = w.S
			if wIt, ok := it.(*Whitespace); ok && !strings.Contains(wIt.S, ",") {
				a.Elements[idx] = NewWhitespace(ws + wIt.S)
				a.reindex()
				return nil
			}
		}
		hasNewline := strings.ContainsAny(ws, "\n")
		hasSpace := ws != "" && (ws[len(ws)-1] == ' ' || ws[len(ws)-1] == '\t')
		if !hasSpace {
			if hasNewline {
				ws += "    "
			} else {
				ws += " "
			}
		}
		items = append([]Item{NewWhitespace(ws)}, items...)
	}

	tail := append([]Item{}, a.Elements[idx:]...)
	a.Elements = append(a.Elements[:idx], append(items, tail...)...)

	// Ensure the previous element ends with a comma if one isn't already there.
	if pos > 0 {
		i := idx - 1
		sawComma := false
		for i >= 0 {
			if w, ok := a.Elements[i].(*Whitespace); ok {
				if strings.Contains(w.S, ",") {
					sawComma = true
					break
				}
				i--
				continue
			}
			if _, ok := a.Elements[i].(*Comment); ok {
				i--
				continue
			}
			break
		}
		if !sawComma && i >= 0 {
			tail2 := append([]Item{}, a.Elements[i+1:]...)
			a.Elements = append(a.Elements[:i+1], append([]Item{NewWhitespace(",")}, tail2...)...)
		}
	}

	a.reindex()
	return nil
}

// Delete removes the element at public index i and the Whitespace items
// directly after it (stopping at the next value or Comment), then drops any
// Whitespace items left at the end of the array.
func (a *Array) Delete(i int) {
	start := a.indexMap[i]
	end := start + 1
	for end < len(a.Elements) {
		if _, ok := a.Elements[end].(*Whitespace); !ok {
			break
		}
		end++
	}
	a.Elements = append(a.Elements[:start], a.Elements[end:]...)
	for len(a.Elements) > 0 {
		if _, ok := a.Elements[len(a.Elements)-1].(*Whitespace); !ok {
			break
		}
		a.Elements = a.Elements[:len(a.Elements)-1]
	}
	a.reindex()
}

// Clear empties the array.
func (a *Array) Clear() {
	a.Elements = nil
	a.indexMap = nil
}

// AddLine appends one or more values as a new, optionally-indented,
// optionally-commented line, matching the layout a hand-edited TOML array
// would use. A non-empty comment is written after the values as a "# "
// comment (text that already starts with '#' is written as given). Comment
// values are always rejected, and Whitespace values are rejected when
// addComma is true, since the caller is asking for comma-joined values.
func (a *Array) AddLine(values []any, indent string, comment string, addComma, newline bool) error {
	if newline {
		a.appendTrivia(NewWhitespace("\n"))
	}
	if indent != "" {
		a.appendTrivia(NewWhitespace(indent))
	}

	for i, v := range values {
		it, err := ItemFrom(v)
		if err != nil {
			return err
		}
		switch it.(type) {
		case *Comment:
			return &UsageError{Message: "comment items are not allowed in AddLine values"}
		case *Whitespace:
			if addComma {
				return &UsageError{Message: "whitespace items are not allowed when addComma is true"}
			}
		}
		a.Elements = append(a.Elements, it)
		if addComma {
			a.appendTrivia(NewWhitespace(","))
			if i != len(values)-1 {
				a.appendTrivia(NewWhitespace(" "))
			}
		}
	}

	if comment != "" {
		ind := ""
		if len(values) > 0 {
			ind = " "
		}
		text := comment
		if !strings.HasPrefix(text, "#") {
			text = "# " + text
		}
		c := NewComment(text)
		c.trivia.Indent = ind
		c.trivia.Trail = ""
		a.Elements = append(a.Elements, c)
	}

	a.reindex()
	return nil
}

// appendTrivia appends a Whitespace item, merging it into a trailing
// non-comma Whitespace run rather than creating a fresh node.
func (a *Array) appendTrivia(w *Whitespace) {
	if len(a.Elements) == 0 {
		a.Elements = append(a.Elements, w)
		return
	}
	if last, ok := a.Elements[len(a.Elements)-1].(*Whitespace); ok &&
		!strings.Contains(last.S, ",") && !strings.Contains(w.S, ",") {
		last.S += w.S
		return
	}
	a.Elements = append(a.Elements, w)
}
