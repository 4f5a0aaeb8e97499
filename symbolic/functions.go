package symbolic

import (
	"math"
	"math/big"
)

// Call is a named function application, e.g. sqrt(11) or sin(2*x).
type Call struct {
	name string
	arg  Expr
}

// evalTable maps the supported function names to their float evaluation.
var evalTable = map[string]func(float64) (float64, bool){
	"sqrt": func(v float64) (float64, bool) {
		if v < 0 {
			return 0, false
		}
		return math.Sqrt(v), true
	},
	"ln": func(v float64) (float64, bool) {
		if v <= 0 {
			return 0, false
		}
		return math.Log(v), true
	},
	"exp":   wrap(math.Exp),
	"abs":   wrap(math.Abs),
	"sin":   wrap(math.Sin),
	"cos":   wrap(math.Cos),
	"tan":   wrap(math.Tan),
	"asin":  domain(math.Asin),
	"acos":  domain(math.Acos),
	"atan":  wrap(math.Atan),
	"sinh":  wrap(math.Sinh),
	"cosh":  wrap(math.Cosh),
	"tanh":  wrap(math.Tanh),
	"floor": wrap(math.Floor),
	"ceil":  wrap(math.Ceil),
}

func wrap(f func(float64) float64) func(float64) (float64, bool) {
	return func(v float64) (float64, bool) {
		r := f(v)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, false
		}
		return r, true
	}
}

func domain(f func(float64) float64) func(float64) (float64, bool) {
	return func(v float64) (float64, bool) {
		r := f(v)
		if math.IsNaN(r) {
			return 0, false
		}
		return r, true
	}
}

// IsKnownFunc reports whether name is a supported function name.
func IsKnownFunc(name string) bool {
	_, ok := evalTable[name]
	return ok
}

// Fn returns the simplified application of a named function.
func Fn(name string, arg Expr) Expr { return (&Call{name: name, arg: arg}).Simplify() }

// Sqrt returns the simplified square root of arg.
func Sqrt(arg Expr) Expr { return Fn("sqrt", arg) }

func (c *Call) FuncName() string { return c.name }
func (c *Call) Arg() Expr        { return c.arg }

func (c *Call) Simplify() Expr {
	arg := c.arg.Simplify()

	if n, ok := arg.(*Num); ok {
		if n.IsApprox() {
			if fn, known := evalTable[c.name]; known {
				if v, defined := fn(n.Float64()); defined {
					return Approx(v)
				}
			}
			return &Call{name: c.name, arg: arg}
		}
		// Exact arguments fold only where the result stays exact.
		switch c.name {
		case "sqrt":
			if n.Sign() >= 0 {
				return simplifySqrt(n)
			}
		case "abs":
			return numAbs(n)
		case "floor":
			return ratFloor(n)
		case "ceil":
			return numNeg(ratFloor(numNeg(n)))
		case "sin", "tan", "asin", "atan", "sinh", "tanh":
			if n.IsZero() {
				return Int(0)
			}
		case "cos", "cosh", "exp":
			if n.IsZero() {
				return Int(1)
			}
		case "ln":
			if n.IsOne() {
				return Int(0)
			}
		}
		return &Call{name: c.name, arg: arg}
	}

	// Inverse pairs.
	if inner, ok := arg.(*Call); ok {
		if c.name == "ln" && inner.name == "exp" {
			return inner.arg
		}
		if c.name == "exp" && inner.name == "ln" {
			return inner.arg
		}
	}
	return &Call{name: c.name, arg: arg}
}

// simplifySqrt reduces the square root of a non-negative exact rational:
// perfect squares become integers and square factors are pulled out, so
// sqrt(44) renders as 2*sqrt(11).
func simplifySqrt(n *Num) Expr {
	if n.IsZero() {
		return Int(0)
	}
	r := n.Rat()
	// sqrt(p/q) == sqrt(p*q)/q
	radicand := new(big.Int).Mul(r.Num(), r.Denom())
	outside, inside := factorSquare(radicand)

	coeff := new(big.Rat).SetFrac(outside, r.Denom())
	if inside.Cmp(big.NewInt(1)) == 0 {
		return FromRat(coeff)
	}
	root := &Call{name: "sqrt", arg: FromRat(new(big.Rat).SetInt(inside))}
	if coeff.Cmp(ratOne) == 0 {
		return root
	}
	return MulOf(FromRat(coeff), root)
}

// factorSquare splits n into s^2 * d and returns (s, d). Square factors
// beyond 1000^2 are left inside the radical.
func factorSquare(n *big.Int) (*big.Int, *big.Int) {
	one := big.NewInt(1)
	if n.Sign() == 0 {
		return big.NewInt(0), one
	}
	root := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(root, root).Cmp(n) == 0 {
		return root, one
	}
	s := big.NewInt(1)
	d := new(big.Int).Set(n)
	for f := int64(2); f <= 1000; f++ {
		sq := big.NewInt(f * f)
		for {
			q, rem := new(big.Int).QuoRem(d, sq, new(big.Int))
			if rem.Sign() != 0 {
				break
			}
			d = q
			s.Mul(s, big.NewInt(f))
		}
	}
	return s, d
}

func ratFloor(n *Num) *Num {
	r := n.Rat()
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if r.Sign() < 0 && !r.IsInt() {
		q.Sub(q, big.NewInt(1))
	}
	return FromRat(new(big.Rat).SetInt(q))
}

func (c *Call) String() string { return c.name + "(" + c.arg.String() + ")" }

func (c *Call) Sub(name string, value Expr) Expr {
	return Fn(c.name, c.arg.Sub(name, value))
}

func (c *Call) Eval() (*Num, bool) {
	n, ok := c.arg.Eval()
	if !ok {
		return nil, false
	}
	fn, known := evalTable[c.name]
	if !known {
		return nil, false
	}
	v, defined := fn(n.Float64())
	if !defined {
		return nil, false
	}
	return Approx(v), true
}

func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	return ok && c.name == o.name && c.arg.Equal(o.arg)
}

func floatPow(b, e *Num) (*Num, bool) {
	v := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return Approx(v), true
}
