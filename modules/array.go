package modules

import (
	"strings"

	"github.com/coderosh/myriad/core"
)

type _array struct {
	in *core.Interpreter
}

func loadArray(in *core.Interpreter) *core.ObjectValue {
	c := &_array{in: in}
	return namespace(
		"length", c.length,
		"foreach", c.foreach,
		"join", c.join,
		"pop", c.pop,
		"push", c.push,
		"includes", c.includes,
	)
}

func arrayArg(fnName string, args []core.Value) (*core.ArrayValue, error) {
	arr, ok := core.Arg(args, 0).(*core.ArrayValue)
	if !ok {
		return nil, core.Throw("%s expects an array, got %s", fnName, core.Arg(args, 0).Type())
	}
	return arr, nil
}

func (c *_array) length(args []core.Value, env *core.Environment) (core.Value, error) {
	arr, err := arrayArg("array.length", args)
	if err != nil {
		return nil, err
	}
	return core.NumberValue(len(arr.Elements)), nil
}

// foreach calls fn(value, index, array) for the elements present when it
// starts.
func (c *_array) foreach(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("array.foreach", args, 2); err != nil {
		return nil, err
	}
	arr, err := arrayArg("array.foreach", args)
	if err != nil {
		return nil, err
	}

	n := len(arr.Elements)
	for i := 0; i < n && i < len(arr.Elements); i++ {
		if _, err := c.in.Call(args[1], []core.Value{arr.Elements[i], core.NumberValue(i), arr}, env); err != nil {
			return nil, err
		}
	}
	return core.Null, nil
}

func (c *_array) join(args []core.Value, env *core.Environment) (core.Value, error) {
	arr, err := arrayArg("array.join", args)
	if err != nil {
		return nil, err
	}
	sep := ","
	if s, ok := core.Arg(args, 1).(core.StringValue); ok && s != "" {
		sep = string(s)
	}

	parts := make([]string, len(arr.Elements))
	for i, el := range arr.Elements {
		parts[i] = el.String()
	}
	return core.StringValue(strings.Join(parts, sep)), nil
}

func (c *_array) pop(args []core.Value, env *core.Environment) (core.Value, error) {
	arr, err := arrayArg("array.pop", args)
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return core.Null, nil
	}
	last := arr.Elements[len(arr.Elements)-1]
	arr.Elements = arr.Elements[:len(arr.Elements)-1]
	return last, nil
}

// push appends every argument and returns the new length.
func (c *_array) push(args []core.Value, env *core.Environment) (core.Value, error) {
	arr, err := arrayArg("array.push", args)
	if err != nil {
		return nil, err
	}
	arr.Elements = append(arr.Elements, args[1:]...)
	return core.NumberValue(len(arr.Elements)), nil
}

func (c *_array) includes(args []core.Value, env *core.Environment) (core.Value, error) {
	arr, err := arrayArg("array.includes", args)
	if err != nil {
		return nil, err
	}
	target := core.Arg(args, 1)
	for _, el := range arr.Elements {
		if el.Eq(target) {
			return core.BoolValue(true), nil
		}
	}
	return core.BoolValue(false), nil
}
