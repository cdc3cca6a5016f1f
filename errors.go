package tomledit

import "fmt"

// KeyAlreadyPresentError is returned by Container.Append when a key collides
// with an existing, non-mergeable entry.
type KeyAlreadyPresentError struct {
	Key string
}

func (e *KeyAlreadyPresentError) Error() string {
	return fmt.Sprintf("key %q already present", e.Key)
}

// NonExistentKeyError is returned by lookups, removals, replacements, and
// insert_after operations that reference a key the container doesn't hold.
type NonExistentKeyError struct {
	Key string
}

func (e *NonExistentKeyError) Error() string {
	return fmt.Sprintf("key %q does not exist", e.Key)
}

// RedefinitionError signals a structural conflict between a dotted-key
// definition and a super-table occupying the same position.
type RedefinitionError struct {
	Key string
}

func (e *RedefinitionError) Error() string {
	if e.Key == "" {
		return "redefinition of an existing table"
	}
	return fmt.Sprintf("redefinition of an existing table: %q", e.Key)
}

// UsageError covers misuse that isn't a key-identity problem: a keyed
// (non-trivia) item appended with an empty key, an empty path or a path
// through a non-table in GetPath, Table on an entry that is not a table,
// or a Comment (or, with addComma, a Whitespace) value given to
// Array.AddLine. Container.InsertAt never returns one: an idx past the end
// inserts at the end.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// CoercionError is returned by ItemFrom when asked to wrap a host value of a
// type the coercer does not know how to represent as an Item.
type CoercionError struct {
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("invalid type %T", e.Value)
}

// ParseError describes a lexical or structural failure while parsing TOML
// source, with a 1-indexed line/column pointing at the offending token.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
