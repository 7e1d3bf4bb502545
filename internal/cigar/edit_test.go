package cigar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cigar  string
		edit   Edit
		offset int
		want   string
	}{
		{"delete inside match", "6M", Edit{3, Delete}, 2, "2M3D1M"},
		{"insert elongates insertion", "6M3I6M", Edit{3, Insert}, 8, "6M6I6M"},
		{"delete across match into insertion", "6M3I6M", Edit{4, Delete}, 4, "4M2D1I6M"},
		{"delete removes whole insertion", "6M3I6M", Edit{3, Delete}, 6, "12M"},
		{"delete skips existing deletions", "1M1D1M1I1M1D", Edit{3, Delete}, 0, "3D1M1D"},
		{"insert splits match", "5M", Edit{3, Insert}, 2, "2M3I3M"},
		{"insert at start", "5M", Edit{3, Insert}, 0, "3I5M"},
		{"insert at end appends", "5M", Edit{3, Insert}, 5, "5M3I"},
		{"insert into empty", "", Edit{2, Insert}, 0, "2I"},
		{"insert splits equal run", "6=", Edit{1, Insert}, 3, "3=1I3="},
		{"insert into deletion shortens it", "2M4D2M", Edit{3, Insert}, 3, "2M1D2M"},
		{"long insert into deletion carries rest", "2M2D2M", Edit{5, Insert}, 2, "2M3I2M"},
		{"substitution keeps match", "5M", Edit{1, Match}, 2, "5M"},
		{"substitution keeps insertion", "2M5I", Edit{2, Match}, 3, "2M5I"},
		{"substitution downgrades equal", "5=", Edit{1, Match}, 2, "2=1M2="},
		{"substitution downgrades mismatch", "5X", Edit{1, Match}, 2, "2X1M2X"},
		{"substitution postponed past deletion", "2D3=", Edit{2, Match}, 0, "2D2M1="},
		{"substitution spanning tokens", "3M4=", Edit{3, Match}, 2, "5M2="},
		{"delete inside equal run", "4=", Edit{2, Delete}, 1, "1=2D1="},
		{"delete shortens insertion", "2M4I", Edit{2, Delete}, 3, "2M2I"},
		{"delete up to the end", "4M", Edit{2, Delete}, 2, "2M2D"},
		{"zero length edit", "3M2D", Edit{0, Delete}, 4, "3M2D"},
		{"zero length edit at end", "3M", Edit{0, Match}, 3, "3M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := MustParse(tt.cigar)
			require.NoError(t, c.ApplyAt(tt.edit, tt.offset))
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestApplyAtRangeExceeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cigar  string
		edit   Edit
		offset int
	}{
		{"delete past end", "3M3I3M", Edit{3, Delete}, 8},
		{"substitution past end", "3M", Edit{2, Match}, 2},
		{"offset beyond span", "3M", Edit{1, Insert}, 4},
		{"negative offset", "3M", Edit{1, Insert}, -1},
		{"delete at end", "3M", Edit{1, Delete}, 3},
		{"delete on empty", "", Edit{1, Delete}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := MustParse(tt.cigar)
			before := c.String()
			err := c.ApplyAt(tt.edit, tt.offset)

			var rangeErr *RangeExceededError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.offset, rangeErr.Offset)
			assert.Equal(t, before, c.String(), "CIGAR must be unchanged")
		})
	}
}

func TestApplyAtUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cigar  string
		edit   Edit
		offset int
		op     Op
	}{
		{"soft clip token", "2S4M", Edit{1, Insert}, 1, SoftClip},
		{"hard clip reached by carry", "2M2H", Edit{3, Delete}, 1, HardClip},
		{"skip token", "4N", Edit{1, Match}, 0, Skip},
		{"pad token", "1M3P", Edit{1, Match}, 2, Pad},
		{"clip edit", "4M", Edit{1, SoftClip}, 0, SoftClip},
		{"equal edit", "4M", Edit{1, Equal}, 0, Equal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := MustParse(tt.cigar)
			before := c.String()
			err := c.ApplyAt(tt.edit, tt.offset)

			var unsupported *UnsupportedOperationError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.op, unsupported.Op)
			assert.Equal(t, before, c.String())
		})
	}
}

func TestApplyAtUnavailable(t *testing.T) {
	t.Parallel()

	err := Unavailable().ApplyAt(Edit{1, Insert}, 0)
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.True(t, unsupported.Unavailable)
}

func TestApplyAtNegativeLength(t *testing.T) {
	t.Parallel()

	c := MustParse("4M")
	require.Error(t, c.ApplyAt(Edit{-1, Delete}, 0))
	assert.Equal(t, "4M", c.String())
}

func TestApplyAtSpanChange(t *testing.T) {
	t.Parallel()

	// Insertions grow the span, substitutions keep it. Deletions turn
	// covered tokens into D and so keep the span too, except where they
	// consume inserted bases.
	c := MustParse("10M")
	require.NoError(t, c.ApplyAt(Edit{4, Insert}, 3))
	assert.Equal(t, 14, c.Span())
	require.NoError(t, c.ApplyAt(Edit{5, Match}, 0))
	assert.Equal(t, 14, c.Span())
	require.NoError(t, c.ApplyAt(Edit{2, Delete}, 4))
	assert.Equal(t, 12, c.Span())
	assert.Equal(t, "3M2I7M", c.String())
	require.NoError(t, c.ApplyAt(Edit{2, Delete}, 8))
	assert.Equal(t, 12, c.Span())
	assert.Equal(t, "3M2I3M2D2M", c.String())
}

func TestMutateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tok     Token
		p       int
		edit    Edit
		want    []Token
		wantRem Edit
	}{
		{"insert splits match", Token{5, Match}, 2, Edit{3, Insert}, []Token{{2, Match}, {3, Insert}, {3, Match}}, Edit{}},
		{"insert before token", Token{5, Match}, 0, Edit{3, Insert}, []Token{{3, Insert}, {5, Match}}, Edit{}},
		{"insert elongates insertion", Token{5, Insert}, 2, Edit{3, Insert}, []Token{{8, Insert}}, Edit{}},
		{"delete inside match", Token{5, Match}, 2, Edit{3, Delete}, []Token{{2, Match}, {3, Delete}}, Edit{0, Delete}},
		{"delete longer than token", Token{5, Match}, 2, Edit{5, Delete}, []Token{{2, Match}, {3, Delete}}, Edit{2, Delete}},
		{"delete after deletion", Token{5, Delete}, 2, Edit{2, Delete}, []Token{{5, Delete}}, Edit{2, Delete}},
		{"delete in insertion", Token{4, Insert}, 2, Edit{2, Delete}, []Token{{2, Insert}}, Edit{0, Delete}},
		{"substitution in match", Token{5, Match}, 2, Edit{1, Match}, []Token{{5, Match}}, Edit{0, Match}},
		{"substitution in insertion", Token{5, Insert}, 2, Edit{2, Match}, []Token{{5, Insert}}, Edit{0, Match}},
		{"substitution after deletion", Token{5, Delete}, 2, Edit{2, Match}, []Token{{5, Delete}}, Edit{2, Match}},
		{"substitution longer than token", Token{5, Match}, 2, Edit{5, Match}, []Token{{5, Match}}, Edit{2, Match}},
		{"substitution in equal", Token{5, Equal}, 2, Edit{1, Match}, []Token{{2, Equal}, {1, Match}, {2, Equal}}, Edit{0, Match}},
		{"substitution in mismatch", Token{5, Mismatch}, 2, Edit{1, Match}, []Token{{2, Mismatch}, {1, Match}, {2, Mismatch}}, Edit{0, Match}},
		{"delete at token start", Token{5, Match}, 0, Edit{2, Delete}, []Token{{2, Delete}, {3, Match}}, Edit{0, Delete}},
		{"zero length edit", Token{5, Delete}, 2, Edit{0, Insert}, []Token{{5, Delete}}, Edit{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, rem, err := mutateToken(nil, tt.tok, tt.p, tt.edit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRem.Len, rem.Len)
			if tt.wantRem.Len > 0 {
				assert.Equal(t, tt.wantRem.Op, rem.Op)
			}
		})
	}
}
