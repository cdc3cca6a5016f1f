package tomledit

// OutOfOrderTableProxy is a non-owning view over a key whose definition is
// physically scattered across more than one [table] fragment, e.g.:
//
//	[a.b]
//	x = 1
//	[a]
//	y = 2
//	[a.c]
//	z = 3
//
// Here "a" is implied by "a.b" and also written directly, giving two
// fragments: the implied one holding b, and the written [a] holding y and
// also c ("[a.c]" is filed into it, since [a] is still the last table when
// that header appears). Both fragments are filed under the same index
// bucket; the proxy
// lets callers read and write "a" as if it were one ordinary table while
// mutations are routed to whichever physical fragment actually owns the
// affected key.
type OutOfOrderTableProxy struct {
	container *Container
	name      string
	tables    []*Table
}

func newOutOfOrderTableProxy(c *Container, name string, tables []*Table) *OutOfOrderTableProxy {
	return &OutOfOrderTableProxy{container: c, name: name, tables: tables}
}

func (p *OutOfOrderTableProxy) Kind() ItemKind { return KindTable }
func (p *OutOfOrderTableProxy) Trivia() *Trivia { return p.tables[0].Trivia() }

func (p *OutOfOrderTableProxy) AsString() string {
	var out string
	for _, t := range p.tables {
		out += t.AsString()
	}
	return out
}

// Value merges every fragment's values into one map, later fragments
// winning on key collision (matching source order: a key set again in a
// later fragment shadows the earlier one).
func (p *OutOfOrderTableProxy) Value() any {
	out := make(map[string]any)
	for _, t := range p.tables {
		for k, v := range t.container.Value().(map[string]any) {
			out[k] = v
		}
	}
	return out
}

// primary returns the fragment new keys should be appended to: the first
// one, matching the position the un-scattered key would have occupied.
func (p *OutOfOrderTableProxy) primary() *Table { return p.tables[0] }

// owner returns the table fragment that already holds name, or nil.
func (p *OutOfOrderTableProxy) owner(name string) *Table {
	for _, t := range p.tables {
		if t.container.Has(name) {
			return t
		}
	}
	return nil
}

// Get reads name from whichever fragment owns it.
func (p *OutOfOrderTableProxy) Get(name string) (any, error) {
	t := p.owner(name)
	if t == nil {
		return nil, &NonExistentKeyError{Key: name}
	}
	return t.container.Get(name)
}

// Append adds a new key to the primary (first-declared) fragment, since a
// genuinely new key has no existing owner to route to.
func (p *OutOfOrderTableProxy) Append(key Key, value any) error {
	return p.primary().container.Append(key, value)
}

// Set writes to whichever fragment already owns name, falling back to the
// primary fragment for a new key.
func (p *OutOfOrderTableProxy) Set(name string, value any) error {
	if t := p.owner(name); t != nil {
		return t.container.Replace(name, value)
	}
	return p.primary().container.Append(NewKey(name), value)
}

// Remove deletes name from whichever fragment owns it.
func (p *OutOfOrderTableProxy) Remove(name string) error {
	t := p.owner(name)
	if t == nil {
		return &NonExistentKeyError{Key: name}
	}
	return t.container.Remove(name)
}

// Tables exposes the physical fragments in source order, for callers that
// need to distinguish them (rendering diagnostics, structural rewrites).
func (p *OutOfOrderTableProxy) Tables() []*Table { return p.tables }
