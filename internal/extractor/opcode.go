package extractor

// OpCode encodes the operator of a continuous assignment for the synthesis
// stage's lookup tables.
type OpCode int

const (
	OpUnknown OpCode = iota
	OpSub
	OpAdd
	OpOr
	OpAnd
	OpLogicalOr
	OpLogicalAnd
)

// ParseOpCode maps an operator run to its code. Unrecognized runs map to OpUnknown.
func ParseOpCode(op string) OpCode {
	switch op {
	case "&&":
		return OpLogicalAnd
	case "||":
		return OpLogicalOr
	case "&":
		return OpAnd
	case "|":
		return OpOr
	case "+":
		return OpAdd
	case "-":
		return OpSub
	default:
		return OpUnknown
	}
}

func (o OpCode) String() string {
	switch o {
	case OpLogicalAnd:
		return "&&"
	case OpLogicalOr:
		return "||"
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	default:
		return "?"
	}
}
