package modules

import (
	"math"
	"math/rand"

	"github.com/coderosh/myriad/core"
)

type _math struct{}

func loadMath() *core.ObjectValue {
	// wrapper struct so every function shares the unary helper
	c := &_math{}

	return namespace(
		"rand", c.rand,
		"abs", c.unary("math.abs", math.Abs),
		"ceil", c.unary("math.ceil", math.Ceil),
		"floor", c.unary("math.floor", math.Floor),
		"round", c.unary("math.round", round),
		"cos", c.unary("math.cos", math.Cos),
		"sin", c.unary("math.sin", math.Sin),
		"tan", c.unary("math.tan", math.Tan),
		"pi", core.NumberValue(math.Pi),
		"e", core.NumberValue(math.E),
	)
}

func (c *_math) rand(args []core.Value, env *core.Environment) (core.Value, error) {
	return core.NumberValue(rand.Float64()), nil
}

func (c *_math) unary(name string, fn func(float64) float64) core.NativeFn {
	return func(args []core.Value, env *core.Environment) (core.Value, error) {
		if err := core.RequireArgLen(name, args, 1); err != nil {
			return nil, err
		}
		n, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return core.NumberValue(fn(n)), nil
	}
}

// round halves toward positive infinity, so round(-2.5) is -2.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
