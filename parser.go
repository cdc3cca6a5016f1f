package tomledit

import "strings"

// parser drives the lexer token stream into a Container tree, validating
// structural conflicts as it goes via docValidator.
type parser struct {
	lex       *lexer
	cur       Token
	validator *docValidator
	root      *Container
}

func newParser(source string) *parser {
	p := &parser{
		lex:       newLexer(source),
		validator: newDocValidator(),
		root:      NewContainer(true),
	}
	p.cur = p.lex.Next()
	return p
}

// Parse decodes TOML source into a Document, preserving formatting
// (comments, blank lines, indentation, quoting style) so that
// Document.String on an unmodified result reproduces the input. Two
// spellings are normalized rather than kept: whitespace just inside a
// header's brackets is dropped ("[ a ]" renders as "[a]"), and an inline
// table renders with " = " after each key and a bare "," between entries.
func Parse(source string) (*Document, error) {
	p := newParser(source)
	if err := p.parseDocument(); err != nil {
		return nil, err
	}
	return &Document{container: p.root}, nil
}

func (p *parser) advance() Token {
	prev := p.cur
	p.cur = p.lex.Next()
	return prev
}

func (p *parser) at(t TokenType) bool { return p.cur.Type == t }

func (p *parser) parseError(msg string) error {
	return &ParseError{Message: msg, Line: p.cur.Line, Column: p.cur.Col}
}

func (p *parser) tokError(msg string, tok Token) error {
	return &ParseError{Message: msg, Line: tok.Line, Column: tok.Col}
}

func (p *parser) parseDocument() error {
	current := p.root
	var currentPath []string

	for !p.at(TokEOF) {
		leading, indent, err := p.collectLeadingTrivia()
		if err != nil {
			return err
		}
		for _, it := range leading {
			if err := current.AppendItem(Key{}, it); err != nil {
				return err
			}
		}
		if p.at(TokEOF) {
			if indent != "" {
				if err := current.AppendItem(Key{}, NewWhitespace(indent)); err != nil {
					return err
				}
			}
			break
		}

		if p.at(TokLBracket) {
			next, path, err := p.parseHeader(indent)
			if err != nil {
				return err
			}
			current, currentPath = next, path
			continue
		}

		if err := p.parseKeyLine(current, currentPath, indent); err != nil {
			return err
		}
	}
	return nil
}

// collectLeadingTrivia gathers blank lines and standalone comment lines
// ahead of the next header or key/value, returning them as body items to
// append directly, plus the whitespace run immediately preceding the next
// token (the indent that entry's own Trivia should carry).
func (p *parser) collectLeadingTrivia() ([]Item, string, error) {
	var items []Item
	indent := ""
	for p.at(TokWhitespace) || p.at(TokNewline) || p.at(TokComment) {
		switch p.cur.Type {
		case TokComment:
			tok := p.advance()
			if msg := validateCommentText(tok.Text); msg != "" {
				return nil, "", p.tokError(msg, tok)
			}
			c := NewComment(tok.Text)
			c.trivia.Indent = indent
			indent = ""
			if p.at(TokNewline) {
				c.trivia.Trail = p.advance().Text
			} else {
				c.trivia.Trail = ""
			}
			items = append(items, c)
		case TokWhitespace:
			indent += p.advance().Text
		case TokNewline:
			nl := p.advance().Text
			items = append(items, NewWhitespace(indent+nl))
			indent = ""
		}
	}
	return items, indent, nil
}

// collectTrailing reads the optional whitespace/comment/newline that
// follows a value or header on the same line.
func (p *parser) collectTrailing() (commentWS, comment, trail string, err error) {
	if p.at(TokWhitespace) {
		commentWS = p.advance().Text
	}
	if p.at(TokComment) {
		tok := p.advance()
		if msg := validateCommentText(tok.Text); msg != "" {
			return "", "", "", p.tokError(msg, tok)
		}
		comment = tok.Text
	}
	if p.at(TokNewline) {
		trail = p.advance().Text
		return commentWS, comment, trail, nil
	}
	if p.at(TokEOF) {
		return commentWS, comment, "", nil
	}
	return "", "", "", p.parseError("expected newline or end of file")
}

// --- headers -------------------------------------------------------------

func (p *parser) parseHeader(indent string) (*Container, []string, error) {
	line, col := p.cur.Line, p.cur.Col
	p.advance() // '['
	isAoT := false
	if p.at(TokLBracket) {
		isAoT = true
		p.advance() // second '['
	}

	keys, names, raw, err := p.parseHeaderKey()
	if err != nil {
		return nil, nil, err
	}

	if !p.at(TokRBracket) {
		return nil, nil, p.parseError("expected ']' to close table header")
	}
	p.advance()
	if isAoT {
		if !p.at(TokRBracket) {
			return nil, nil, p.parseError("expected ']]' to close array-of-tables header")
		}
		p.advance()
	}

	commentWS, comment, trail, err := p.collectTrailing()
	if err != nil {
		return nil, nil, err
	}

	if isAoT {
		if err := p.validator.onAoT(names, line, col); err != nil {
			return nil, nil, err
		}
		table, err := p.appendAoTHeader(keys, names, raw, indent, commentWS, comment, trail)
		if err != nil {
			return nil, nil, err
		}
		return table.container, names, nil
	}

	if err := p.validator.onTable(names, line, col); err != nil {
		return nil, nil, err
	}
	table, err := p.appendTableHeader(keys, names, raw, indent, commentWS, comment, trail)
	if err != nil {
		return nil, nil, err
	}
	return table.container, names, nil
}

func (p *parser) parseHeaderKey() ([]Key, []string, string, error) {
	if p.at(TokWhitespace) {
		p.advance()
	}
	keys, raw, err := p.parseKey()
	if err != nil {
		return nil, nil, "", err
	}
	if p.at(TokWhitespace) {
		p.advance()
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return keys, names, raw, nil
}

// resolveSuperTables walks names[:len-1] from the document root, creating
// implicit super-tables for any segment that doesn't already exist, and
// returns the container the final segment should be appended into.
//
// A segment that already exists is only reused in place when its table is
// still the last thing appended to its parent — i.e. nothing else has been
// written to the document between that fragment and this header. Otherwise
// the earlier fragment is no longer "open": a fresh fragment is adjoined at
// the current position instead of descending into it, so out-of-order
// headers like "[a.b]" ... "[c]" ... "[a.d]" keep rendering at the position
// they were written rather than being folded into "a"'s first fragment.
func (p *parser) resolveSuperTables(keys []Key, names []string) (*Container, error) {
	cur := p.root
	for i := 0; i < len(names)-1; i++ {
		// Containers that receive tables from the parser keep the source
		// layout, so hand-built auto-layout is switched off for them.
		cur.parsed = true
		if positions, ok := cur.index[names[i]]; ok {
			lastPos := positions[len(positions)-1]
			switch v := cur.body[lastPos].item.(type) {
			case *Table:
				if lastPos != len(cur.body)-1 {
					fresh := NewTable(false)
					fresh.isSuperTable = true
					fresh.Name = keys[i]
					cur.adjoinFragment(keys[i], positions, fresh)
					cur = fresh.container
					continue
				}
				cur = v.container
			case *AoT:
				cur = v.Items[len(v.Items)-1].container
			default:
				return nil, &RedefinitionError{Key: names[i]}
			}
			continue
		}
		t := NewTable(false)
		t.isSuperTable = true
		t.Name = keys[i]
		if err := cur.AppendItem(keys[i], t); err != nil {
			return nil, err
		}
		cur = t.container
	}
	cur.parsed = true
	return cur, nil
}

func (p *parser) appendTableHeader(keys []Key, names []string, raw string, indent, commentWS, comment, trail string) (*Table, error) {
	parent, err := p.resolveSuperTables(keys, names)
	if err != nil {
		return nil, err
	}
	last := keys[len(keys)-1]
	last.Original = raw
	table := NewTable(false)
	table.Name = last
	table.headerFromSource = true
	table.trivia.Indent = indent
	table.trivia.CommentWS = commentWS
	table.trivia.Comment = comment
	table.trivia.Trail = trail
	if err := parent.AppendItem(last, table); err != nil {
		return nil, err
	}
	if positions := parent.index[last.Name]; len(positions) > 0 {
		if t, ok := parent.body[positions[len(positions)-1]].item.(*Table); ok {
			return t, nil
		}
	}
	return table, nil
}

func (p *parser) appendAoTHeader(keys []Key, names []string, raw string, indent, commentWS, comment, trail string) (*Table, error) {
	parent, err := p.resolveSuperTables(keys, names)
	if err != nil {
		return nil, err
	}
	last := keys[len(keys)-1]
	last.Original = raw
	table := NewTable(true)
	table.headerFromSource = true
	table.trivia.Indent = indent
	table.trivia.CommentWS = commentWS
	table.trivia.Comment = comment
	table.trivia.Trail = trail

	if positions, ok := parent.index[last.Name]; ok {
		if aot, ok := parent.body[positions[len(positions)-1]].item.(*AoT); ok {
			// Added directly rather than through AoT.Append, so a parsed
			// element keeps its own indent and the source's spacing.
			aot.Items = append(aot.Items, table)
			return table, nil
		}
		return nil, &RedefinitionError{Key: last.Name}
	}
	aot := NewAoT(last)
	aot.Append(table)
	if err := parent.AppendItem(last, aot); err != nil {
		return nil, err
	}
	return table, nil
}

// --- key/value lines -------------------------------------------------------

func (p *parser) parseKeyLine(current *Container, currentPath []string, indent string) error {
	line, col := p.cur.Line, p.cur.Col
	keys, raw, err := p.parseKey()
	if err != nil {
		return err
	}

	preEq := ""
	if p.at(TokWhitespace) {
		preEq = p.advance().Text
	}
	if !p.at(TokEquals) {
		return p.parseError("expected '='")
	}
	p.lex.valueMode = true
	p.advance()

	postEq := ""
	if p.at(TokWhitespace) {
		postEq = p.advance().Text
	}

	val, err := p.parseValue()
	if err != nil {
		return err
	}
	p.lex.valueMode = false

	commentWS, comment, trail, err := p.collectTrailing()
	if err != nil {
		return err
	}

	if tr := val.Trivia(); tr != nil {
		tr.Indent = indent
		tr.CommentWS = commentWS
		tr.Comment = comment
		tr.Trail = trail
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	if err := p.validator.onKeyValue(currentPath, names, val, line, col); err != nil {
		return err
	}

	sep := preEq + "=" + postEq

	if len(keys) == 1 {
		keys[0].Sep = sep
		return current.AppendItem(keys[0], val)
	}

	flat := Key{
		Name:     strings.Join(names, "."),
		Kind:     keys[0].Kind,
		Sep:      sep,
		Dotted:   true,
		Original: raw,
	}
	return current.AppendItem(flat, val)
}

// parseKey parses a simple or dotted key, returning each segment and the
// exact raw source text spanning all of them (dots and interior
// whitespace included).
func (p *parser) parseKey() ([]Key, string, error) {
	var keys []Key
	var raw strings.Builder

	k, text, err := p.parseSimpleKey()
	if err != nil {
		return nil, "", err
	}
	raw.WriteString(text)
	keys = append(keys, k)

	for p.at(TokDot) || (p.at(TokWhitespace) && p.lex.peekForDot()) {
		if p.at(TokWhitespace) {
			raw.WriteString(p.advance().Text)
		}
		if !p.at(TokDot) {
			break
		}
		raw.WriteByte('.')
		p.advance()
		if p.at(TokWhitespace) {
			raw.WriteString(p.advance().Text)
		}
		k, text, err = p.parseSimpleKey()
		if err != nil {
			return nil, "", err
		}
		k.Dotted = true
		raw.WriteString(text)
		keys = append(keys, k)
	}
	if len(keys) > 1 {
		keys[0].Dotted = true
	}
	return keys, raw.String(), nil
}

func (p *parser) parseSimpleKey() (Key, string, error) {
	switch p.cur.Type {
	case TokBareKey:
		tok := p.advance()
		return Key{Name: tok.Text, Kind: KeyBare, Sep: " = ", Original: tok.Text}, tok.Text, nil
	case TokBoolean, TokInteger, TokFloat, TokDateTime:
		tok := p.advance()
		return Key{Name: tok.Text, Kind: KeyBare, Sep: " = ", Original: tok.Text}, tok.Text, nil
	case TokBasicString:
		tok := p.advance()
		if msg := validateStringText(tok.Text); msg != "" {
			return Key{}, "", p.tokError(msg, tok)
		}
		name := unescapeBasicString(tok.Text[1 : len(tok.Text)-1])
		return Key{Name: name, Kind: KeyBasic, Sep: " = ", Original: tok.Text}, tok.Text, nil
	case TokLiteralString:
		tok := p.advance()
		if msg := validateStringText(tok.Text); msg != "" {
			return Key{}, "", p.tokError(msg, tok)
		}
		name := tok.Text[1 : len(tok.Text)-1]
		return Key{Name: name, Kind: KeyLiteral, Sep: " = ", Original: tok.Text}, tok.Text, nil
	default:
		return Key{}, "", p.parseError("expected key")
	}
}

// --- values ----------------------------------------------------------------

func (p *parser) parseValue() (Item, error) {
	switch p.cur.Type {
	case TokBasicString, TokMultiLineBasicStr, TokLiteralString, TokMultiLineLiteralStr:
		return p.parseStringValue()
	case TokInteger:
		return p.parseIntegerValue()
	case TokFloat:
		return p.parseFloatValue()
	case TokBoolean:
		tok := p.advance()
		return NewBool(tok.Text == "true"), nil
	case TokDateTime:
		return p.parseDateTimeValue()
	case TokLBracket:
		return p.parseArray()
	case TokLBrace:
		return p.parseInlineTable()
	default:
		return nil, p.parseError("expected value")
	}
}

func (p *parser) parseStringValue() (Item, error) {
	tok := p.advance()
	if msg := validateStringText(tok.Text); msg != "" {
		return nil, p.tokError(msg, tok)
	}
	kind, body, _ := classifyStringToken(tok.Text)
	var v string
	switch kind {
	case StringMultiLiteral, StringSingleLiteral:
		v = body
	case StringMultiBasic:
		v = unescapeMultilineBasic(body)
	default:
		v = unescapeBasicString(body)
	}
	return NewStringForm(kind, v, tok.Text), nil
}

func classifyStringToken(raw string) (kind StringKind, body string, multiline bool) {
	switch {
	case strings.HasPrefix(raw, `"""`):
		inner := raw[3 : len(raw)-3]
		inner = strings.TrimPrefix(strings.TrimPrefix(inner, "\r\n"), "\n")
		return StringMultiBasic, inner, true
	case strings.HasPrefix(raw, "'''"):
		inner := raw[3 : len(raw)-3]
		inner = strings.TrimPrefix(strings.TrimPrefix(inner, "\r\n"), "\n")
		return StringMultiLiteral, inner, true
	case raw[0] == '\'':
		return StringSingleLiteral, raw[1 : len(raw)-1], false
	default:
		return StringSingleBasic, raw[1 : len(raw)-1], false
	}
}

func (p *parser) parseIntegerValue() (Item, error) {
	tok := p.advance()
	if msg := validateNumberText(tok.Text); msg != "" {
		return nil, p.tokError(msg, tok)
	}
	v, err := parseIntegerLiteral(tok.Text)
	if err != nil {
		return nil, p.tokError(err.Error(), tok)
	}
	return NewIntegerRaw(v, tok.Text), nil
}

func (p *parser) parseFloatValue() (Item, error) {
	tok := p.advance()
	if msg := validateNumberText(tok.Text); msg != "" {
		return nil, p.tokError(msg, tok)
	}
	v, err := parseFloatLiteral(tok.Text)
	if err != nil {
		return nil, p.tokError(err.Error(), tok)
	}
	return NewFloatRaw(v, tok.Text), nil
}

func (p *parser) parseDateTimeValue() (Item, error) {
	tok := p.advance()
	if msg := validateDateTimeText(tok.Text); msg != "" {
		return nil, p.tokError(msg, tok)
	}
	return classifyDateTimeLiteral(tok.Text), nil
}

func (p *parser) parseArray() (Item, error) {
	p.advance() // '['
	a := NewArray()

	for {
		leading, err := p.collectArrayTrivia()
		if err != nil {
			return nil, err
		}
		a.Elements = append(a.Elements, leading...)
		if p.at(TokRBracket) || p.at(TokEOF) {
			break
		}

		p.lex.valueMode = true
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		a.Elements = append(a.Elements, val)

		between, err := p.collectArrayTrivia()
		if err != nil {
			return nil, err
		}
		a.Elements = append(a.Elements, between...)

		if p.at(TokComma) {
			a.Elements = append(a.Elements, NewWhitespace(p.advance().Text))
			continue
		}
		break
	}

	if !p.at(TokRBracket) {
		return nil, p.parseError("expected ',' or ']' in array")
	}
	p.advance()
	for _, e := range a.Elements {
		if w, ok := e.(*Whitespace); ok && strings.Contains(w.S, "\n") {
			a.Multiline = true
			break
		}
	}
	a.reindex()
	return a, nil
}

// collectArrayTrivia gathers whitespace/newline/comment runs between
// array elements, preserving them verbatim as Whitespace Elements (a
// comment's text, too, is stored as a Whitespace Element).
func (p *parser) collectArrayTrivia() ([]Item, error) {
	var items []Item
	for p.at(TokWhitespace) || p.at(TokNewline) || p.at(TokComment) {
		switch p.cur.Type {
		case TokComment:
			tok := p.advance()
			if msg := validateCommentText(tok.Text); msg != "" {
				return nil, p.tokError(msg, tok)
			}
			items = append(items, NewWhitespace(tok.Text))
		default:
			items = append(items, NewWhitespace(p.advance().Text))
		}
	}
	return items, nil
}

func (p *parser) parseInlineTable() (Item, error) {
	savedMode := p.lex.valueMode
	p.lex.valueMode = false
	p.advance() // '{'

	it := NewInlineTable()
	it.new = false
	if p.at(TokWhitespace) {
		p.advance()
	}

	for !p.at(TokRBrace) && !p.at(TokEOF) {
		keys, raw, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if p.at(TokWhitespace) {
			p.advance()
		}
		if !p.at(TokEquals) {
			return nil, p.parseError("expected '=' in inline table")
		}
		p.lex.valueMode = true
		p.advance()
		if p.at(TokWhitespace) {
			p.advance()
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.lex.valueMode = false

		var key Key
		if len(keys) == 1 {
			key = keys[0]
		} else {
			names := make([]string, len(keys))
			for i, k := range keys {
				names[i] = k.Name
			}
			key = Key{Name: strings.Join(names, "."), Kind: keys[0].Kind, Sep: " = ", Dotted: true, Original: raw}
		}
		if err := it.container.AppendItem(key, val); err != nil {
			return nil, err
		}

		if p.at(TokWhitespace) {
			p.advance()
		}
		if p.at(TokComma) {
			p.advance()
			if p.at(TokWhitespace) {
				p.advance()
			}
		} else if !p.at(TokRBrace) {
			return nil, p.parseError("expected ',' or '}' in inline table")
		}
	}

	if !p.at(TokRBrace) {
		return nil, p.parseError("expected '}' to close inline table")
	}
	p.advance()
	p.lex.valueMode = savedMode
	return it, nil
}
