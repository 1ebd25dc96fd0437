package rules

// logicFunc combines child condition results into one boolean.
type logicFunc func(results []bool) bool

// combinators is the static dispatch table for boolean logic operators.
// Unknown tokens are rejected at rule-load time.
var combinators = map[string]logicFunc{
	"AND":  and,
	"OR":   or,
	"NAND": nand,
	"NOR":  nor,
	"XOR":  xor,
}

// defaultOperator applies when a condition node names no logic operator.
const defaultOperator = "AND"

func and(results []bool) bool {
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

func or(results []bool) bool {
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}

func nand(results []bool) bool { return !and(results) }

func nor(results []bool) bool { return !or(results) }

// xor is true when an odd number of children are true.
func xor(results []bool) bool {
	n := 0
	for _, r := range results {
		if r {
			n++
		}
	}
	return n%2 == 1
}
