package cigar

// Op is a CIGAR operation kind.
type Op uint8

// CIGAR operations, in SAM order.
const (
	Match    Op = iota // M: alignment match, base identity unknown
	Insert             // I: insertion to the reference
	Delete             // D: deletion from the reference
	Skip               // N: skipped region from the reference
	SoftClip           // S: soft clipping
	HardClip           // H: hard clipping
	Pad                // P: silent deletion from padded reference
	Equal              // =: sequence match
	Mismatch           // X: sequence mismatch

	numOps
)

const opChars = "MIDNSHP=X"

var opTable [256]Op

func init() {
	for i := range opTable {
		opTable[i] = numOps
	}
	for i := range len(opChars) {
		opTable[opChars[i]] = Op(i) //nolint:gosec // i < numOps
	}
}

// ParseOp returns the Op for a CIGAR operation character.
func ParseOp(c byte) (Op, bool) {
	op := opTable[c]
	return op, op != numOps
}

// Char returns the CIGAR character of the operation.
func (o Op) Char() byte {
	if o >= numOps {
		return '?'
	}
	return opChars[o]
}

func (o Op) String() string { return string(o.Char()) }

// Valid reports whether o is one of the nine CIGAR operations.
func (o Op) Valid() bool { return o < numOps }

// Editable reports whether tokens of this kind can be changed by ApplyAt.
// Clipping, padding and skipped regions cannot.
func (o Op) Editable() bool {
	switch o {
	case Match, Insert, Delete, Equal, Mismatch:
		return true
	case Skip, SoftClip, HardClip, Pad:
		return false
	default:
		return false
	}
}

// ConsumesRead reports whether the operation covers bases of the read.
func (o Op) ConsumesRead() bool {
	switch o {
	case Match, Insert, SoftClip, Equal, Mismatch:
		return true
	case Delete, Skip, HardClip, Pad:
		return false
	default:
		return false
	}
}

// isIndel reports whether adjacent tokens of this kind may be reordered
// during compaction.
func (o Op) isIndel() bool { return o == Insert || o == Delete }
