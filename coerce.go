package tomledit

import (
	"fmt"
	"sort"
	"time"
)

// ItemFrom wraps a native Go value as an Item, choosing the representation
// a hand-written literal of that value would use. Passing an existing Item
// returns it unchanged, so callers can freely mix raw values and
// already-built Items in container APIs.
func ItemFrom(value any) (Item, error) {
	switch v := value.(type) {
	case Item:
		return v, nil
	case nil:
		return Null{}, nil
	case bool:
		return NewBool(v), nil
	case int:
		return NewInteger(int64(v)), nil
	case int8:
		return NewInteger(int64(v)), nil
	case int16:
		return NewInteger(int64(v)), nil
	case int32:
		return NewInteger(int64(v)), nil
	case int64:
		return NewInteger(v), nil
	case uint:
		return NewInteger(int64(v)), nil
	case uint8:
		return NewInteger(int64(v)), nil
	case uint16:
		return NewInteger(int64(v)), nil
	case uint32:
		return NewInteger(int64(v)), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	case string:
		return NewString(v), nil
	case time.Time:
		return dateTimeFromTime(v), nil
	case []any:
		return arrayFromSlice(v)
	case map[string]any:
		return tableFromMap(v)
	default:
		return nil, &CoercionError{Value: value}
	}
}

func dateTimeFromTime(t time.Time) *DateTime {
	raw := t.Format("2006-01-02T15:04:05")
	if ns := t.Nanosecond(); ns != 0 {
		frac := fmt.Sprintf(".%09d", ns)
		for len(frac) > 2 && frac[len(frac)-1] == '0' {
			frac = frac[:len(frac)-1]
		}
		raw += frac
	}
	if _, offset := t.Zone(); offset == 0 {
		raw += "Z"
	} else {
		sign := "+"
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		raw += fmt.Sprintf("%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
	}
	return NewDateTimeRaw(raw)
}

// arrayFromSlice coerces a Go slice. A slice whose elements are every one
// a map[string]any becomes an AoT (a TOML array of tables); anything else
// becomes a plain Array, with any map elements inside it represented as
// InlineTables (since a bare Array can't hold header-bearing Tables).
func arrayFromSlice(values []any) (Item, error) {
	if len(values) > 0 && allMaps(values) {
		return aotFromMaps(values)
	}

	a := NewArray()
	for i, v := range values {
		it, err := itemForArrayElement(v)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			a.Elements = append(a.Elements, NewWhitespace(", "))
		}
		a.Elements = append(a.Elements, it)
	}
	a.reindex()
	return a, nil
}

func itemForArrayElement(v any) (Item, error) {
	if m, ok := v.(map[string]any); ok {
		return inlineTableFromMap(m)
	}
	return ItemFrom(v)
}

func allMaps(values []any) bool {
	for _, v := range values {
		if _, ok := v.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func aotFromMaps(values []any) (*AoT, error) {
	aot := NewAoT(Key{})
	for _, v := range values {
		t, err := tableFromMap(v.(map[string]any))
		if err != nil {
			return nil, err
		}
		aot.Append(t)
	}
	return aot, nil
}

// sortedMapKeys orders a map's keys the way a hand-written table would:
// scalar-valued keys first, table/array-of-table-valued keys last (so
// sub-tables always render after the scalars that precede them in the
// header), alphabetically within each group.
func sortedMapKeys(values map[string]any) []string {
	var scalars, nested []string
	for k, v := range values {
		switch v.(type) {
		case map[string]any:
			nested = append(nested, k)
		case []any:
			if vs, _ := v.([]any); len(vs) > 0 && allMaps(vs) {
				nested = append(nested, k)
				continue
			}
			scalars = append(scalars, k)
		default:
			scalars = append(scalars, k)
		}
	}
	sort.Strings(scalars)
	sort.Strings(nested)
	return append(scalars, nested...)
}

func tableFromMap(values map[string]any) (*Table, error) {
	t := NewTable(false)
	for _, k := range sortedMapKeys(values) {
		if err := t.container.Append(NewKey(k), values[k]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func inlineTableFromMap(values map[string]any) (*InlineTable, error) {
	it := NewInlineTable()
	it.new = true
	for _, k := range sortedMapKeys(values) {
		item, err := itemForArrayElement(values[k])
		if err != nil {
			return nil, err
		}
		if err := it.container.Append(NewKey(k), item); err != nil {
			return nil, err
		}
	}
	return it, nil
}
