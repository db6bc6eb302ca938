package skills

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ParseStatus int

const (
	// StatusEmpty: the cell is null or one of the empty markers
	// ("", "null", "None", "[]", "{}").
	StatusEmpty ParseStatus = iota
	// StatusParsed: the cell is a mapping of group name to skills.
	StatusParsed
	// StatusUnparsable: anything else. Err says where parsing stopped.
	StatusUnparsable
)

func (s ParseStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusParsed:
		return "parsed"
	case StatusUnparsable:
		return "unparsable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type SkillGroup struct {
	Name   string
	Skills []string
}

// GroupedSkills is the result of ParseGroups. Groups keep the order in which
// their keys first appear; a repeated key replaces the earlier skills.
type GroupedSkills struct {
	Status ParseStatus
	Groups []SkillGroup
	Err    error
}

type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

var emptyMarkers = map[string]struct{}{
	"":     {},
	"null": {},
	"None": {},
	"[]":   {},
	"{}":   {},
}

// ParseGroups reads a grouped skill cell written as a Python dict literal,
// for example {'cloud': ['aws', 'gcp'], 'libraries': None}.
//
//	dict  = "{" [ pair { "," pair } [ "," ] ] "}"
//	pair  = str ":" value
//	value = list | tuple | str | "None"
//	list  = "[" [ item { "," item } [ "," ] ] "]"
//	tuple = "(" [ item { "," item } [ "," ] ] ")"
//	item  = str | "None"
//
// Strings take single or double quotes, backslash escapes, and adjacent
// literals concatenate. A bare string value counts as a one-skill list.
// Returned names are raw; callers normalize them.
func ParseGroups(raw string) GroupedSkills {
	s := strings.TrimSpace(raw)
	if _, ok := emptyMarkers[s]; ok {
		return GroupedSkills{Status: StatusEmpty}
	}

	p := &literalParser{src: s}
	groups, err := p.parseDict()
	if err == nil {
		p.skipSpace()
		if !p.eof() {
			err = p.errorf("unexpected %q after mapping", p.peek())
		}
	}
	if err != nil {
		return GroupedSkills{Status: StatusUnparsable, Err: err}
	}
	return GroupedSkills{Status: StatusParsed, Groups: groups}
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *literalParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	p.pos++
	return nil
}

// consume reports whether the next non-space byte is c, and if so skips it.
func (p *literalParser) consume(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *literalParser) parseDict() ([]SkillGroup, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var groups []SkillGroup
	index := map[string]int{}
	for {
		if p.consume('}') {
			return groups, nil
		}

		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		vals, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		if i, ok := index[key]; ok {
			groups[i].Skills = vals
		} else {
			index[key] = len(groups)
			groups = append(groups, SkillGroup{Name: key, Skills: vals})
		}

		if p.consume(',') {
			continue
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return groups, nil
	}
}

func (p *literalParser) parseValue() ([]string, error) {
	p.skipSpace()
	switch c := p.peek(); c {
	case '[':
		return p.parseSequence('[', ']')
	case '(':
		return p.parseSequence('(', ')')
	case '\'', '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	default:
		if p.consumeWord("None") {
			return nil, nil
		}
		if p.eof() {
			return nil, p.errorf("expected value, got end of input")
		}
		return nil, p.errorf("unexpected %q in value", c)
	}
}

func (p *literalParser) parseSequence(open, close byte) ([]string, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}
	out := []string{}
	for {
		if p.consume(close) {
			return out, nil
		}

		p.skipSpace()
		if !p.consumeWord("None") {
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}

		if p.consume(',') {
			continue
		}
		if err := p.expect(close); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *literalParser) consumeWord(word string) bool {
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.src) && isIdentByte(p.src[end]) {
		return false
	}
	p.pos = end
	return true
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// parseString reads one or more adjacent quoted literals.
func (p *literalParser) parseString() (string, error) {
	p.skipSpace()
	var b strings.Builder
	n := 0
	for {
		q := p.peek()
		if q != '\'' && q != '"' {
			break
		}
		if err := p.readQuoted(&b); err != nil {
			return "", err
		}
		n++
		p.skipSpace()
	}
	if n == 0 {
		if p.eof() {
			return "", p.errorf("expected string, got end of input")
		}
		return "", p.errorf("expected string, got %q", p.peek())
	}
	return b.String(), nil
}

func (p *literalParser) readQuoted(b *strings.Builder) error {
	quote := p.src[p.pos]
	start := p.pos
	p.pos++
	for {
		if p.eof() {
			p.pos = start
			return p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return nil
		case '\n':
			return p.errorf("newline in string")
		case '\\':
			if err := p.readEscape(b); err != nil {
				return err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *literalParser) readEscape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '\n':
		// line continuation
	case 'x':
		return p.readCodePoint(b, 2)
	case 'u':
		return p.readCodePoint(b, 4)
	case 'U':
		return p.readCodePoint(b, 8)
	default:
		// unknown escapes keep their backslash
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) readCodePoint(b *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("truncated escape")
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return p.errorf("invalid escape %q", p.src[p.pos:p.pos+digits])
	}
	b.WriteRune(rune(v))
	p.pos += digits
	return nil
}
