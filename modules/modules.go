package modules

import (
	"github.com/coderosh/myriad/core"
)

// Initialize installs the native library into a fresh global environment.
// Global names go through the dialect's rename table, so genz scripts call
// print as flex.
func Initialize(in *core.Interpreter, env *core.Environment, d *core.Dialect) {
	f := &_functions{in: in}
	env.LoadFunc(d.Global("print"), f.print)
	env.LoadFunc(d.Global("input"), f.input)
	env.LoadFunc(d.Global("format"), f.format)
	env.LoadFunc(d.Global("typeof"), f.typeOf)
	env.LoadFunc(d.Global("len"), f.length)

	env.LoadModule(d.Global("math"), loadMath())
	env.LoadModule(d.Global("dt"), loadDateTime())
	env.LoadModule(d.Global("json"), loadJSON())
	env.LoadModule(d.Global("fs"), loadFS(in))
	env.LoadModule(d.Global("http"), loadHTTP(in))

	env.LoadModule("__string__", loadString())
	env.LoadModule("__array__", loadArray(in))
	env.LoadModule("__number__", loadNumber())
}

// namespace builds an object from alternating names and values.
func namespace(entries ...interface{}) *core.ObjectValue {
	ns := core.NewObject()
	for i := 0; i+1 < len(entries); i += 2 {
		name := entries[i].(string)
		switch v := entries[i+1].(type) {
		case core.NativeFn:
			ns.Set(name, core.NewNative(name, v))
		case func([]core.Value, *core.Environment) (core.Value, error):
			ns.Set(name, core.NewNative(name, v))
		case core.Value:
			ns.Set(name, v)
		}
	}
	return ns
}

func stringArg(fnName string, args []core.Value, i int) (string, error) {
	s, ok := core.Arg(args, i).(core.StringValue)
	if !ok {
		return "", core.Throw("%s expects a string argument, got %s", fnName, core.Arg(args, i).Type())
	}
	return string(s), nil
}

func numberArg(fnName string, args []core.Value, i int) (float64, error) {
	n, ok := core.Arg(args, i).(core.NumberValue)
	if !ok {
		return 0, core.Throw("%s expects a number argument, got %s", fnName, core.Arg(args, i).Type())
	}
	return float64(n), nil
}
