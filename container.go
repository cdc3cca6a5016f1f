package tomledit

import (
	"reflect"
	"strings"
)

// bodyEntry is one slot in a Container's body: either a keyed value (key
// non-nil) or bare trivia (a Whitespace or Comment with key nil).
type bodyEntry struct {
	key  *Key
	item Item
}

// Container is the ordered body shared by the document root, every Table,
// and every InlineTable. It keeps the physical order items were added or
// parsed in (body), a map from key name to physical position(s) for O(1)
// lookup (index), and the set of names that currently hold a table or AoT
// (tableKeys), used to enforce the non-tables-before-tables invariant when
// auto-layout is active.
//
// index values are usually a single position. A key gets more than one
// position only when it names an out-of-order super-table: a dotted
// header like "[a.b]" implies "a", and if a later, unrelated "[a]" header
// appears the two fragments are both filed under "a" and presented
// through an OutOfOrderTableProxy.
type Container struct {
	body      []bodyEntry
	index     map[string][]int
	tableKeys []string
	parsed    bool
}

// NewContainer builds an empty Container. parsed should be true only for
// containers being filled in by the parser: it suppresses the auto-layout
// rules of AppendItem (blank-line insertion before tables, placing a new
// non-table ahead of the first table) that exist to make hand-built
// documents look hand-written, since parsed containers already carry the
// source's exact layout in their trivia. The indent inheritance applied by
// Append and Replace does not depend on parsed.
func NewContainer(parsed bool) *Container {
	return &Container{index: make(map[string][]int), parsed: parsed}
}

// Append adds value under key, coercing value through ItemFrom first. An
// empty Name (Key{}) appends pure trivia (value must be a Whitespace or
// Comment Item). Per the append/__setitem__ indent-inheritance rule, a
// freshly coerced Table picks up this container's prevailing indent.
// AppendItem is the lower-level entry point the parser uses directly with
// an already-built Item, so this is the one place hand-built construction
// (never the parser) can apply it.
func (c *Container) Append(key Key, value any) error {
	item, err := ItemFrom(value)
	if err != nil {
		return err
	}
	if err := c.AppendItem(key, item); err != nil {
		return err
	}
	if t, ok := item.(*Table); ok {
		t.inheritIndent(c.prevailingIndent())
	}
	return nil
}

// AppendItem is Append for a value that has already been coerced to an
// Item, used internally by the parser and by helpers that build Items
// directly (arrays, inline tables).
func (c *Container) AppendItem(key Key, item Item) error {
	if key.Name == "" {
		switch item.(type) {
		case *Whitespace, *Comment:
			c.body = append(c.body, bodyEntry{item: item})
			return nil
		default:
			return &UsageError{Message: "a keyed item requires a non-empty key"}
		}
	}

	if positions, ok := c.index[key.Name]; ok {
		return c.mergeInto(key, item, positions)
	}

	if !c.parsed {
		c.layoutBeforeAppend(key, item)
		if !isTableLike(item) && len(c.tableKeys) > 0 {
			// A non-table goes ahead of the first table so it does not
			// render under that table's header.
			return c.insertAt(c.firstTablePosition(), key, item)
		}
	}

	pos := len(c.body)
	c.body = append(c.body, bodyEntry{key: &key, item: item})
	c.index[key.Name] = []int{pos}
	if isTableLike(item) {
		c.tableKeys = append(c.tableKeys, key.Name)
	}
	return nil
}

// prevailingIndent returns the indent already established by an existing
// Table in this container, so a newly appended table lines up with its
// siblings instead of starting unindented.
func (c *Container) prevailingIndent() string {
	for _, entry := range c.body {
		if t, ok := entry.item.(*Table); ok && t.trivia.Indent != "" {
			return t.trivia.Indent
		}
	}
	return ""
}

func isTableLike(item Item) bool {
	switch item.(type) {
	case *Table, *AoT:
		return true
	default:
		return false
	}
}

// mergeInto handles re-declaration of an existing key, following the
// duplicate-key table: AoT elements append to an existing AoT or promote
// an existing bare Table into a new one-element AoT; a second "[a]"
// header for an out-of-order super-table "a" adjoins as another bucket
// fragment; a dotted key-value redefining a super-table name is a
// structural conflict rather than a plain duplicate. Anything else is a
// KeyAlreadyPresent conflict.
func (c *Container) mergeInto(key Key, item Item, positions []int) error {
	last := c.body[positions[len(positions)-1]].item

	switch existing := last.(type) {
	case *AoT:
		if table, ok := item.(*Table); ok && table.isAoTElement {
			existing.Append(table)
			return nil
		}
		return &KeyAlreadyPresentError{Key: key.Name}
	case *Table:
		if newTable, ok := item.(*Table); ok {
			if newTable.isAoTElement {
				return c.promoteToAoT(key, existing, newTable, positions)
			}
			if existing.isSuperTable {
				return c.adjoinSuperTable(key, existing, newTable, positions)
			}
			return &KeyAlreadyPresentError{Key: key.Name}
		}
		if existing.isSuperTable {
			return &RedefinitionError{Key: key.Name}
		}
		return &KeyAlreadyPresentError{Key: key.Name}
	default:
		return &KeyAlreadyPresentError{Key: key.Name}
	}
}

// promoteToAoT handles "append an AoT-element table under a key that
// currently holds a plain Table": the existing table becomes the first
// element of a brand-new AoT and the new table is appended after it,
// inheriting indentation and blank-line spacing the way AoT.Append always
// does for its later elements.
func (c *Container) promoteToAoT(key Key, existing *Table, newTable *Table, positions []int) error {
	aot := NewAoT(key)
	existing.isAoTElement = true
	aot.Items = append(aot.Items, existing)
	aot.Append(newTable)
	pos := positions[len(positions)-1]
	c.body[pos].item = aot
	return nil
}

// adjoinSuperTable records a freshly-declared table as another physical
// fragment of a previously implied super-table occupying the same name,
// leaving both fragments' containers untouched in place (so each keeps
// rendering at the source position it was written at) and filing the
// extra physical position in the index bucket so the key now resolves
// through an OutOfOrderTableProxy that merges them for reads.
func (c *Container) adjoinSuperTable(key Key, existing *Table, newTable *Table, positions []int) error {
	_ = existing
	newTable.isSuperTable = false
	c.adjoinFragment(key, positions, newTable)
	return nil
}

// adjoinFragment files newTable as an additional physical position under
// key's existing index bucket, at the current end of the body, turning key
// into (or extending) an out-of-order table so every fragment keeps
// rendering exactly where it was written rather than being folded into an
// earlier fragment's container.
func (c *Container) adjoinFragment(key Key, positions []int, newTable *Table) {
	pos := len(c.body)
	c.body = append(c.body, bodyEntry{key: &key, item: newTable})
	c.index[key.Name] = append(positions, pos)
}

// layoutBeforeAppend applies the blank-line rule for hand-built
// (non-parsed) containers: tables get a blank line ahead of them unless
// the body is empty or already ends in one. The non-tables-before-tables
// placement is done by AppendItem itself.
func (c *Container) layoutBeforeAppend(key Key, item Item) {
	if !isTableLike(item) || len(c.body) == 0 {
		return
	}
	ensureTrailingBlankLine(c)
}

// Item returns the Item stored under name, or a NonExistentKeyError.
// When name names an out-of-order super-table (more than one physical
// position), the result is an OutOfOrderTableProxy over all of them.
func (c *Container) Item(name string) (Item, error) {
	positions, ok := c.index[name]
	if !ok {
		return nil, &NonExistentKeyError{Key: name}
	}
	if len(positions) == 1 {
		return c.body[positions[0]].item, nil
	}
	tables := make([]*Table, 0, len(positions))
	for _, p := range positions {
		t, ok := c.body[p].item.(*Table)
		if !ok {
			return c.body[p].item, nil
		}
		tables = append(tables, t)
	}
	return newOutOfOrderTableProxy(c, name, tables), nil
}

// Get returns the native value stored under name.
func (c *Container) Get(name string) (any, error) {
	item, err := c.Item(name)
	if err != nil {
		return nil, err
	}
	return item.Value(), nil
}

// GetPath resolves a dotted path ("server.host", `server."dotted.name"`)
// against the container, descending into nested Tables/InlineTables and
// falling back to an exact flat-key match for a leaf that was itself
// declared with a dotted key (e.g. "a.b.c = 1" is filed under the flat
// name "a.b.c" rather than as nested tables).
func (c *Container) GetPath(path string) (any, error) {
	return c.getPathParts(parseDottedPath(path))
}

func (c *Container) getPathParts(parts []string) (any, error) {
	if len(parts) == 0 {
		return nil, &UsageError{Message: "empty path"}
	}
	if len(parts) == 1 {
		return c.Get(parts[0])
	}
	if v, err := c.Get(strings.Join(parts, ".")); err == nil {
		return v, nil
	}

	item, err := c.Item(parts[0])
	if err != nil {
		return nil, err
	}
	switch v := item.(type) {
	case *Table:
		return v.container.getPathParts(parts[1:])
	case *InlineTable:
		return v.container.getPathParts(parts[1:])
	case *OutOfOrderTableProxy:
		for _, t := range v.tables {
			if val, err := t.container.getPathParts(parts[1:]); err == nil {
				return val, nil
			}
		}
		return nil, &NonExistentKeyError{Key: strings.Join(parts, ".")}
	default:
		return nil, &UsageError{Message: parts[0] + " is not a table"}
	}
}

// Table returns the named entry as a *Table, erroring if it holds a
// different kind of value. For an out-of-order table only the first
// fragment is returned; keys held by the other fragments are not reachable
// through it.
func (c *Container) Table(name string) (*Table, error) {
	item, err := c.Item(name)
	if err != nil {
		return nil, err
	}
	if t, ok := item.(*Table); ok {
		return t, nil
	}
	if p, ok := item.(*OutOfOrderTableProxy); ok {
		return p.primary(), nil
	}
	return nil, &UsageError{Message: "key " + name + " is not a table"}
}

// Has reports whether name is present.
func (c *Container) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Keys returns the container's public key names in first-declaration
// order.
func (c *Container) Keys() []string {
	seen := make(map[string]bool, len(c.index))
	var out []string
	for _, e := range c.body {
		if e.key == nil || seen[e.key.Name] {
			continue
		}
		seen[e.key.Name] = true
		out = append(out, e.key.Name)
	}
	return out
}

// Value projects the container into a plain map[string]any, unwrapping
// every Item recursively. Out-of-order super-table fragments are merged
// into a single map entry. Flat dotted keys ("a.b" recorded from a
// key-value line like "a.b = 1") are unflattened into nested maps so the
// projection matches what a TOML parser would hand back for the same
// source, e.g. {"a": {"b": 1}} rather than {"a.b": 1}.
func (c *Container) Value() any {
	out := make(map[string]any)
	seen := make(map[string]bool, len(c.index))
	for _, e := range c.body {
		if e.key == nil || seen[e.key.Name] {
			continue
		}
		seen[e.key.Name] = true
		v, _ := c.Get(e.key.Name)
		if e.key.Dotted && strings.Contains(e.key.Name, ".") {
			setDottedValue(out, strings.Split(e.key.Name, "."), v)
			continue
		}
		out[e.key.Name] = v
	}
	return out
}

// setDottedValue writes v into m at the nested path parts, creating
// intermediate maps as needed.
func setDottedValue(m map[string]any, parts []string, v any) {
	if len(parts) == 1 {
		m[parts[0]] = v
		return
	}
	next, ok := m[parts[0]].(map[string]any)
	if !ok {
		next = make(map[string]any)
		m[parts[0]] = next
	}
	setDottedValue(next, parts[1:], v)
}

// Equal reports whether the container's Value() projection deep-equals
// other, the contract used to compare a Container against a plain map.
func (c *Container) Equal(other map[string]any) bool {
	return reflect.DeepEqual(c.Value(), other)
}

// SetDefault returns the value already stored under name, or appends
// def under name (coercing it through ItemFrom) and returns that if name
// is absent.
func (c *Container) SetDefault(name string, def any) (any, error) {
	if c.Has(name) {
		return c.Get(name)
	}
	if err := c.Append(NewKey(name), def); err != nil {
		return nil, err
	}
	return c.Get(name)
}

// Add is an alias for Append, named to match the external "append, add"
// surface described for the document model.
func (c *Container) Add(key Key, value any) error { return c.Append(key, value) }

// Set assigns value under name, replacing the existing entry in place if
// present or appending a new one if absent.
func (c *Container) Set(name string, value any) error {
	if c.Has(name) {
		return c.Replace(name, value)
	}
	return c.Append(NewKey(name), value)
}

// Remove deletes the entry under name, replacing its body slot with a
// tombstone (Null) so any previously captured body positions remain
// valid. Returns NonExistentKeyError if name is absent.
func (c *Container) Remove(name string) error {
	positions, ok := c.index[name]
	if !ok {
		return &NonExistentKeyError{Key: name}
	}
	for _, p := range positions {
		if t, ok := c.body[p].item.(*Table); ok {
			t.invalidateDisplayName()
		}
		c.body[p] = bodyEntry{item: Null{}}
	}
	delete(c.index, name)
	c.removeTableKey(name)
	return nil
}

func (c *Container) removeTableKey(name string) {
	for i, k := range c.tableKeys {
		if k == name {
			c.tableKeys = append(c.tableKeys[:i], c.tableKeys[i+1:]...)
			return
		}
	}
}

// Replace swaps the value stored under name for a new one, coerced
// through ItemFrom. For bucketed (out-of-order) entries, every fragment
// but the first is tombstoned and the first is replaced. If the new
// value is a Table/AoT and the old one was not, the non-tables-before-
// tables rule takes priority over visual position: the old slot is
// removed and the new value is inserted at the position of the first
// existing table instead. Otherwise the old indent, trail, and non-empty
// comment are carried onto the new value so it renders at the same
// visual spot with the same trailing comment.
func (c *Container) Replace(name string, value any) error {
	positions, ok := c.index[name]
	if !ok {
		return &NonExistentKeyError{Key: name}
	}
	item, err := ItemFrom(value)
	if err != nil {
		return err
	}
	for _, p := range positions[1:] {
		if t, ok := c.body[p].item.(*Table); ok {
			t.invalidateDisplayName()
		}
		c.body[p] = bodyEntry{item: Null{}}
	}
	pos := positions[0]
	oldEntry := c.body[pos]
	oldKey := oldEntry.key
	oldIsTable := isTableLike(oldEntry.item)
	newIsTable := isTableLike(item)

	if newIsTable && !oldIsTable && len(c.tableKeys) > 0 {
		if t, ok := oldEntry.item.(*Table); ok {
			t.invalidateDisplayName()
		}
		c.body[pos] = bodyEntry{item: Null{}}
		delete(c.index, name)
		target := c.firstTablePosition()
		if err := c.insertAt(target, *oldKey, item); err != nil {
			return err
		}
		if t, ok := item.(*Table); ok {
			if target < len(c.body)-1 {
				ensureTrailingBlankLine(t.container)
			}
			t.inheritIndent(c.prevailingIndent())
		}
		return nil
	}

	if tr := item.Trivia(); tr != nil {
		if prevTr := oldEntry.item.Trivia(); prevTr != nil {
			tr.Indent = prevTr.Indent
			tr.Trail = prevTr.Trail
			if prevTr.Comment != "" {
				tr.Comment = prevTr.Comment
				tr.CommentWS = prevTr.CommentWS
			}
		}
	}
	if t, ok := oldEntry.item.(*Table); ok {
		t.invalidateDisplayName()
	}
	c.body[pos].item = item
	delete(c.index, name)
	c.index[name] = []int{pos}
	if t, ok := item.(*Table); ok {
		t.inheritIndent(c.prevailingIndent())
	}
	return nil
}

// firstTablePosition returns the body position of the first live
// Table/AoT entry, or len(body) if there is none.
func (c *Container) firstTablePosition() int {
	for i, e := range c.body {
		if isTableLike(e.item) {
			return i
		}
	}
	return len(c.body)
}

// ReplaceAt swaps the item at physical body position pos directly,
// bypassing key lookup; the key and index entry for pos are left as they
// are.
func (c *Container) ReplaceAt(pos int, item Item) {
	c.body[pos].item = item
}

// InsertAfter adds a new key/value pair immediately after an existing key,
// inheriting that key's indentation trivia.
func (c *Container) InsertAfter(after string, key Key, value any) error {
	positions, ok := c.index[after]
	if !ok {
		return &NonExistentKeyError{Key: after}
	}
	item, err := ItemFrom(value)
	if err != nil {
		return err
	}
	pos := positions[len(positions)-1]
	if tr := item.Trivia(); tr != nil {
		if prev := c.body[pos].item.Trivia(); prev != nil {
			tr.Indent = prev.Indent
		}
	}
	return c.insertAt(pos+1, key, item)
}

// InsertAt inserts key/value at public index idx among keyed entries (0
// inserts before the first keyed entry). An idx at or past the number of
// keyed entries inserts at the end of the body; no idx is rejected as out
// of range.
func (c *Container) InsertAt(idx int, key Key, value any) error {
	item, err := ItemFrom(value)
	if err != nil {
		return err
	}
	physical := c.physicalPositionForKeyIndex(idx)
	return c.insertAt(physical, key, item)
}

func (c *Container) physicalPositionForKeyIndex(idx int) int {
	count := 0
	for i, e := range c.body {
		if e.key == nil {
			continue
		}
		if count == idx {
			return i
		}
		count++
	}
	return len(c.body)
}

func (c *Container) insertAt(physical int, key Key, item Item) error {
	if _, exists := c.index[key.Name]; exists {
		return &KeyAlreadyPresentError{Key: key.Name}
	}
	tail := append([]bodyEntry{}, c.body[physical:]...)
	c.body = append(c.body[:physical], append([]bodyEntry{{key: &key, item: item}}, tail...)...)
	c.reindexFrom(physical)
	if isTableLike(item) {
		c.tableKeys = append(c.tableKeys, key.Name)
	}
	return nil
}

// reindexFrom rebuilds the position index after a splice at or after
// physical position from.
func (c *Container) reindexFrom(from int) {
	for name, positions := range c.index {
		updated := make([]int, len(positions))
		for i, p := range positions {
			if p >= from {
				updated[i] = p + 1
			} else {
				updated[i] = p
			}
		}
		c.index[name] = updated
	}
	for i := from; i < len(c.body); i++ {
		if c.body[i].key != nil {
			c.index[c.body[i].key.Name] = appendPos(c.index[c.body[i].key.Name], i)
		}
	}
}

func appendPos(positions []int, p int) []int {
	for _, existing := range positions {
		if existing == p {
			return positions
		}
	}
	return append(positions, p)
}

// AsString renders the container's body back to TOML source, applying the
// super-table header-suppression rule: a Table that exists only to host a
// longer dotted header renders its children but not its own "[name]"
// line.
func (c *Container) AsString() string {
	return c.asString("")
}

// asString is AsString with the dotted path of the enclosing table (empty
// at the document root) threaded in, so a table built programmatically
// (whose Name only ever holds its own local key) renders with its full
// path rather than just the segment it was last appended under.
func (c *Container) asString(prefix string) string {
	var b strings.Builder
	for _, e := range c.body {
		switch v := e.item.(type) {
		case Null:
			continue
		case *Table:
			if e.key != nil {
				v.Name = *e.key
			}
			v.resolveDisplayName(prefix)
			b.WriteString(v.AsString())
		case *AoT:
			if e.key != nil {
				for _, t := range v.Items {
					if t.Name.Name == "" {
						t.Name = *e.key
					}
				}
			}
			for _, t := range v.Items {
				t.resolveDisplayName(prefix)
			}
			b.WriteString(v.AsString())
		case *InlineTable:
			c.writeKeyValue(&b, e.key, v)
		default:
			if e.key != nil {
				c.writeKeyValue(&b, e.key, v)
			} else {
				b.WriteString(v.AsString())
			}
		}
	}
	return b.String()
}

func (c *Container) writeKeyValue(b *strings.Builder, key *Key, item Item) {
	tr := item.Trivia()
	if tr == nil {
		b.WriteString(item.AsString())
		return
	}
	b.WriteString(tr.Indent)
	b.WriteString(key.AsString())
	b.WriteString(key.Sep)
	b.WriteString(item.AsString())
	b.WriteString(tr.CommentWS)
	b.WriteString(tr.Comment)
	b.WriteString(tr.Trail)
}
