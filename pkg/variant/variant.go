package variant

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/core"
)

// Protection constants used by Div and Log.
const (
	DivEpsilon = 1e-6
	LogEpsilon = 1e-6
)

// Variant describes one node kind.
//
// Render composes the already rendered children; Apply computes the node's
// output from the children's outputs. Both are nil for leaves, whose output
// and text depend on per-node data (feature index or constant value).
type Variant struct {
	Kind   Kind
	Name   string
	Symbol string
	Arity  int

	// NonArithmetic marks kinds counted by the non-arithmetic depth metric.
	NonArithmetic bool

	Render func(args []string) string
	Apply  func(args [][]float64) []float64
}

// UnknownVariantError is returned when a kind or name is not in the registry.
type UnknownVariantError struct {
	Kind      Kind
	Name      string
	Available []string
}

func (e *UnknownVariantError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown variant %q\n\nAvailable variants: %s", e.Name, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("unknown variant %s", e.Kind)
}

func (e *UnknownVariantError) Unwrap() error {
	return core.ErrUnimplementedVariant
}

var registry = [maxKind]Variant{
	Add: {
		Kind: Add, Name: "add", Symbol: "+", Arity: 2,
		Render: binary("+"),
		Apply:  zip(func(a, b float64) float64 { return a + b }),
	},
	Sub: {
		Kind: Sub, Name: "sub", Symbol: "-", Arity: 2,
		Render: binary("-"),
		Apply:  zip(func(a, b float64) float64 { return a - b }),
	},
	Mul: {
		Kind: Mul, Name: "mul", Symbol: "*", Arity: 2,
		Render: binary("*"),
		Apply:  zip(func(a, b float64) float64 { return a * b }),
	},
	Div: {
		Kind: Div, Name: "div", Symbol: "/", Arity: 2,
		Render: binary("/"),
		Apply:  zip(ProtectedDiv),
	},
	Pow: {
		Kind: Pow, Name: "pow", Symbol: "^", Arity: 2, NonArithmetic: true,
		// The exponent slot repeats the base operand.
		Render: func(args []string) string {
			return "( " + args[0] + "**( " + args[0] + " ))"
		},
		Apply: zip(math.Pow),
	},
	Exp: {
		Kind: Exp, Name: "exp", Symbol: "exp", Arity: 1, NonArithmetic: true,
		Render: unary("exp"),
		Apply:  mapf(math.Exp),
	},
	Log: {
		Kind: Log, Name: "log", Symbol: "log", Arity: 1, NonArithmetic: true,
		Render: unary("log"),
		Apply:  mapf(ProtectedLog),
	},
	Sin: {
		Kind: Sin, Name: "sin", Symbol: "sin", Arity: 1, NonArithmetic: true,
		Render: unary("sin"),
		Apply:  mapf(math.Sin),
	},
	Cos: {
		Kind: Cos, Name: "cos", Symbol: "cos", Arity: 1, NonArithmetic: true,
		Render: unary("cos"),
		Apply:  mapf(math.Cos),
	},
	Feature: {
		Kind: Feature, Name: "feature", Symbol: "x", Arity: 0,
	},
	Constant: {
		Kind: Constant, Name: "constant", Symbol: "erc", Arity: 0,
	},
}

// Lookup returns the descriptor for k.
func Lookup(k Kind) (Variant, error) {
	if !k.Valid() {
		return Variant{}, &UnknownVariantError{Kind: k}
	}
	return registry[k], nil
}

// MustLookup is like Lookup but panics on an invalid kind.
func MustLookup(k Kind) Variant {
	v, err := Lookup(k)
	if err != nil {
		panic(err)
	}
	return v
}

// All returns every concrete variant in declaration order.
func All() []Variant {
	out := make([]Variant, 0, int(maxKind)-1)
	for k := Add; k < maxKind; k++ {
		out = append(out, registry[k])
	}
	return out
}

// Functions returns the operator variants (arity > 0) in declaration order.
func Functions() []Variant {
	var out []Variant
	for _, v := range All() {
		if v.Arity > 0 {
			out = append(out, v)
		}
	}
	return out
}

// ByName resolves a variant by name or symbol, case-insensitively.
// Both "^" and "**" resolve to Pow.
func ByName(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "**" {
		return registry[Pow], nil
	}
	for k := Add; k < maxKind; k++ {
		v := registry[k]
		if v.Name == key || v.Symbol == key {
			return v, nil
		}
	}
	return Variant{}, &UnknownVariantError{Name: name, Available: Names()}
}

// Names returns the names of every concrete variant.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = v.Name
	}
	return names
}

// ProtectedDiv returns sign(b) * a / (DivEpsilon + |b|).
// The sign of zero (either signed zero) is +1; a NaN divisor yields NaN.
func ProtectedDiv(a, b float64) float64 {
	sign := 1.0
	if math.IsNaN(b) {
		sign = math.NaN()
	} else if b < 0 {
		sign = -1.0
	}
	return sign * a / (DivEpsilon + math.Abs(b))
}

// ProtectedLog returns ln(|a| + LogEpsilon).
func ProtectedLog(a float64) float64 {
	return math.Log(math.Abs(a) + LogEpsilon)
}

// FormatFeature renders a feature leaf.
func FormatFeature(index int) string {
	return "x" + strconv.Itoa(index)
}

// FormatConstant renders a constant value as its shortest round-trip decimal.
// Integral values keep a trailing ".0"; very large or very small magnitudes
// switch to exponent notation.
func FormatConstant(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func binary(op string) func([]string) string {
	return func(args []string) string {
		return "( " + args[0] + " " + op + " " + args[1] + " )"
	}
}

func unary(fn string) func([]string) string {
	return func(args []string) string {
		return fn + "( " + args[0] + " )"
	}
}

func zip(f func(a, b float64) float64) func([][]float64) []float64 {
	return func(args [][]float64) []float64 {
		a, b := args[0], args[1]
		out := make([]float64, len(a))
		for i := range out {
			out[i] = f(a[i], b[i])
		}
		return out
	}
}

func mapf(f func(float64) float64) func([][]float64) []float64 {
	return func(args [][]float64) []float64 {
		a := args[0]
		out := make([]float64, len(a))
		for i := range out {
			out[i] = f(a[i])
		}
		return out
	}
}
