// Package cigar parses, compacts and edits CIGAR strings without a
// reference sequence.
//
// A Cigar is owned by a single caller. ApplyAt rewrites it in place so
// that it keeps describing a read after bases were substituted, inserted
// or deleted at a given offset.
package cigar

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Token is a single run of a CIGAR operation, e.g. 14M.
type Token struct {
	Len int
	Op  Op
}

func (t Token) String() string { return strconv.Itoa(t.Len) + t.Op.String() }

// Cigar is an editable CIGAR string. The zero value is an empty CIGAR.
type Cigar struct {
	tokens      []Token
	unavailable bool
	compacted   bool
}

// Unavailable returns the CIGAR "*".
func Unavailable() *Cigar {
	return &Cigar{unavailable: true, compacted: true}
}

// Parse parses a CIGAR string. Surrounding whitespace is ignored. The
// result is compacted.
func Parse(text string) (*Cigar, error) {
	s := strings.TrimSpace(text)
	if s == "*" {
		return Unavailable(), nil
	}

	var tokens []Token
	for len(s) > 0 {
		// Maximal prefix of digits followed by exactly one operation
		n := 0
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		if n == 0 || n == len(s) {
			return nil, &ParseError{Text: text}
		}
		op, ok := ParseOp(s[n])
		if !ok {
			return nil, &ParseError{Text: text}
		}
		length, err := strconv.Atoi(s[:n])
		if err != nil || length < 1 {
			return nil, &ParseError{Text: text}
		}
		tokens = append(tokens, Token{Len: length, Op: op})
		s = s[n+1:]
	}

	c := &Cigar{tokens: tokens}
	c.Compact()
	return c, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(text string) *Cigar {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

// FromTokens builds a compacted CIGAR from a token list. Every token
// must have a positive length and a valid operation.
func FromTokens(tokens []Token) (*Cigar, error) {
	for _, t := range tokens {
		if t.Len < 1 || !t.Op.Valid() {
			return nil, fmt.Errorf("invalid CIGAR token %d%s", t.Len, t.Op)
		}
	}
	c := &Cigar{tokens: slices.Clone(tokens)}
	c.Compact()
	return c, nil
}

// IsUnavailable reports whether c is the CIGAR "*".
func (c *Cigar) IsUnavailable() bool { return c.unavailable }

// Tokens returns a compacted copy of the token list. It is nil for an
// unavailable CIGAR.
func (c *Cigar) Tokens() []Token {
	c.Compact()
	return slices.Clone(c.tokens)
}

// Span returns the summed length of all tokens.
func (c *Cigar) Span() int {
	span := 0
	for _, t := range c.tokens {
		span += t.Len
	}
	return span
}

// String returns the compacted textual form.
func (c *Cigar) String() string {
	if c.unavailable {
		return "*"
	}
	c.Compact()
	var sb strings.Builder
	sb.Grow(len(c.tokens) * 4)
	for _, t := range c.tokens {
		sb.WriteString(strconv.Itoa(t.Len))
		sb.WriteByte(t.Op.Char())
	}
	return sb.String()
}

// Compact joins adjacent tokens of the same operation. Before joining,
// each run of I/D tokens that does not reach the last token is stable
// sorted so that D precedes I (3I3D3I3M becomes 3D6I3M). A run reaching
// the last token keeps its order.
//
// Compact is called by String and Tokens and does nothing if the CIGAR
// has not changed since the last call.
func (c *Cigar) Compact() {
	if c.compacted {
		return
	}
	c.compacted = true
	t := c.tokens
	if len(t) == 0 {
		return
	}

	start := -1
	for i := range t {
		if t[i].Op.isIndel() {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			slices.SortStableFunc(t[start:i], func(a, b Token) int {
				return cmp.Compare(a.Op.Char(), b.Op.Char())
			})
			start = -1
		}
	}

	out := make([]Token, 0, len(t))
	out = append(out, t[0])
	for _, tok := range t[1:] {
		if last := &out[len(out)-1]; last.Op == tok.Op {
			last.Len += tok.Len
			continue
		}
		out = append(out, tok)
	}
	c.tokens = out
}

// ReadOffset converts a 0-based position in the read to the offset of
// that base within the CIGAR span. Tokens that consume no read bases are
// skipped. A position equal to the read length maps to the span.
func (c *Cigar) ReadOffset(pos int) (int, error) {
	if c.unavailable {
		return 0, &UnsupportedOperationError{Unavailable: true}
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative read position %d", pos)
	}
	read, span := 0, 0
	for _, t := range c.tokens {
		if t.Op.ConsumesRead() {
			if pos < read+t.Len {
				return span + pos - read, nil
			}
			read += t.Len
		}
		span += t.Len
	}
	if pos == read {
		return span, nil
	}
	return 0, fmt.Errorf("read position %d beyond read length %d", pos, read)
}
