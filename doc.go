package tomledit

// Document is the root of a parsed or hand-built TOML document: a
// Container holding the top-level body, plus the convenience API callers
// use instead of reaching into the Container directly.
type Document struct {
	container *Container
}

// NewDocument builds an empty, hand-buildable Document.
func NewDocument() *Document {
	return &Document{container: NewContainer(false)}
}

// Container exposes the document's root body for callers that need
// Container-level operations (InsertAfter, InsertAt, raw Item access).
func (d *Document) Container() *Container { return d.container }

// String renders the document back to TOML source. For a parsed,
// unmodified Document this reproduces the input byte-for-byte, apart from
// the two spellings Parse normalizes (whitespace inside header brackets and
// the spacing of inline tables).
func (d *Document) String() string { return d.container.AsString() }

// Get resolves a dotted path against the document root.
func (d *Document) Get(path string) (any, error) { return d.container.GetPath(path) }

// Table returns the table at name. For a table split into more than one
// out-of-order fragment, only the first fragment is returned.
func (d *Document) Table(name string) (*Table, error) { return d.container.Table(name) }

// Set assigns value under the top-level key name, creating it if absent
// and replacing it in place if present.
func (d *Document) Set(name string, value any) error {
	if d.container.Has(name) {
		return d.container.Replace(name, value)
	}
	return d.container.Append(NewKey(name), value)
}

// Append adds value under a brand-new top-level key.
func (d *Document) Append(name string, value any) error {
	return d.container.Append(NewKey(name), value)
}

// Remove deletes the top-level entry under name.
func (d *Document) Remove(name string) error { return d.container.Remove(name) }

// SetDefault returns the value stored under name, appending def (creating
// it in place) if name is absent.
func (d *Document) SetDefault(name string, def any) (any, error) {
	return d.container.SetDefault(name, def)
}

// Keys lists the document's top-level key names in declaration order.
func (d *Document) Keys() []string { return d.container.Keys() }

// Value projects the whole document into a plain map[string]any.
func (d *Document) Value() map[string]any { return d.container.Value().(map[string]any) }

// Equal reports whether the document's Value() projection deep-equals
// other.
func (d *Document) Equal(other map[string]any) bool { return d.container.Equal(other) }

// Unmarshal parses source and projects it straight into a plain
// map[string]any, for callers that don't need the style-preserving
// document model.
func Unmarshal(source string) (map[string]any, error) {
	doc, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return doc.Value(), nil
}
