package cigar

import (
	"fmt"
	"strconv"
)

// Edit is a change applied to a read: Match substitutes, Insert inserts
// and Delete removes Len bases.
type Edit struct {
	Len int
	Op  Op
}

func (e Edit) String() string { return strconv.Itoa(e.Len) + e.Op.String() }

// rest is what remains of e after q positions of a token were covered.
func (e Edit) rest(q int) Edit {
	return Edit{Len: max(0, e.Len-q), Op: e.Op}
}

// ApplyAt changes the CIGAR to account for edit e made at offset bases
// into the CIGAR span. An edit that runs past the token it starts in is
// carried over to the following tokens. An insertion that is left over
// after the last token extends the CIGAR; any other leftover is a
// *RangeExceededError.
//
// Substitutions never produce = or X: without the reference it is
// unknown whether a substituted base matches. They turn =/X runs into M.
//
// On error the CIGAR is left unchanged.
func (c *Cigar) ApplyAt(e Edit, offset int) error {
	if c.unavailable {
		return &UnsupportedOperationError{Op: e.Op, Unavailable: true}
	}
	switch e.Op {
	case Match, Insert, Delete:
	default:
		return &UnsupportedOperationError{Op: e.Op}
	}
	if e.Len < 0 {
		return fmt.Errorf("applying %s: negative edit length", e)
	}
	span := c.Span()
	if offset < 0 || offset > span {
		return &RangeExceededError{Edit: e, Offset: offset, Span: span}
	}

	i, start := 0, 0
	for ; i < len(c.tokens); i++ {
		if start+c.tokens[i].Len > offset {
			break
		}
		start += c.tokens[i].Len
	}

	out := make([]Token, 0, len(c.tokens)+2)
	out = append(out, c.tokens[:i]...)
	rem, p := e, offset-start
	for ; i < len(c.tokens); i++ {
		var err error
		out, rem, err = mutateToken(out, c.tokens[i], p, rem)
		if err != nil {
			return err
		}
		if rem.Len == 0 {
			out = append(out, c.tokens[i+1:]...)
			break
		}
		p = 0
	}

	if rem.Len > 0 {
		if rem.Op != Insert {
			return &RangeExceededError{Edit: e, Offset: offset, Span: span}
		}
		out = append(out, Token{Len: rem.Len, Op: Insert})
	}

	c.tokens = out
	c.compacted = false
	return nil
}

// mutateToken appends the tokens replacing t after applying e at
// position p of t, and returns the part of e to apply at the start of
// the next token.
func mutateToken(dst []Token, t Token, p int, e Edit) ([]Token, Edit, error) {
	if !t.Op.Editable() {
		return dst, Edit{}, &UnsupportedOperationError{Op: t.Op}
	}
	if e.Len == 0 {
		return append(dst, t), Edit{}, nil
	}
	q := t.Len - p

	switch e.Op {
	case Match:
		switch t.Op {
		case Match, Insert:
			// The substitution does not change the alignment
			return append(dst, t), e.rest(q), nil
		case Delete:
			return append(dst, t), e, nil
		case Equal, Mismatch:
			return replace(dst, t, p, q, e), e.rest(q), nil
		}
	case Insert:
		switch t.Op {
		case Match, Equal, Mismatch:
			dst = appendToken(dst, Token{Len: p, Op: t.Op})
			dst = appendToken(dst, Token{Len: e.Len, Op: Insert})
			return appendToken(dst, Token{Len: q, Op: t.Op}), Edit{}, nil
		case Insert:
			return append(dst, Token{Len: t.Len + e.Len, Op: Insert}), Edit{}, nil
		case Delete:
			return shorten(dst, t, p, q, e), e.rest(q), nil
		}
	case Delete:
		switch t.Op {
		case Match, Equal, Mismatch:
			return replace(dst, t, p, q, e), e.rest(q), nil
		case Delete:
			return append(dst, t), e, nil
		case Insert:
			return shorten(dst, t, p, q, e), e.rest(q), nil
		}
	}
	return dst, Edit{}, &UnsupportedOperationError{Op: e.Op}
}

// replace overwrites up to q positions of t starting at p with e.Op.
func replace(dst []Token, t Token, p, q int, e Edit) []Token {
	dst = appendToken(dst, Token{Len: p, Op: t.Op})
	dst = appendToken(dst, Token{Len: min(q, e.Len), Op: e.Op})
	return appendToken(dst, Token{Len: max(0, q-e.Len), Op: t.Op})
}

// shorten removes up to q positions of t starting at p.
func shorten(dst []Token, t Token, p, q int, e Edit) []Token {
	return appendToken(dst, Token{Len: p + max(0, q-e.Len), Op: t.Op})
}

func appendToken(dst []Token, t Token) []Token {
	if t.Len <= 0 {
		return dst
	}
	return append(dst, t)
}
