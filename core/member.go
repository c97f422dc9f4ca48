package core

import (
	"math"
	"unicode/utf8"
)

// memberKey returns the property of a member expression: the name for
// obj.name, or the evaluated expression for obj[expr] and obj.0.
func (in *Interpreter) memberKey(n MemberExpression, env *Environment) (Value, error) {
	if !n.Computed {
		if id, ok := n.Property.(Identifier); ok {
			return StringValue(id.Name), nil
		}
	}
	return in.eval(n.Property, env)
}

// index converts a key to an element index when it is a non-negative integer.
func index(key Value) (int, bool) {
	n, ok := key.(NumberValue)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// propertyName converts a key to an object key.
func propertyName(key Value) (string, bool) {
	switch k := key.(type) {
	case StringValue:
		return string(k), true
	case NumberValue:
		return k.String(), true
	}
	return "", false
}

func (in *Interpreter) getProperty(obj, key Value, env *Environment) (Value, error) {
	switch o := obj.(type) {
	case NullValue, IgnoreValue:
		return nil, runtimeErrorf(NullProperty, "Cannot read property %s of null", key)

	case *ArrayValue:
		if i, ok := index(key); ok {
			if i < len(o.Elements) {
				return o.Elements[i], nil
			}
			return Null, nil
		}
		return in.method(env, "__array__", o, key)

	case StringValue:
		if i, ok := index(key); ok {
			if i < utf8.RuneCountInString(string(o)) {
				return StringValue([]rune(string(o))[i : i+1]), nil
			}
			return Null, nil
		}
		return in.method(env, "__string__", o, key)

	case NumberValue:
		return in.method(env, "__number__", o, key)

	case *ObjectValue:
		name, ok := propertyName(key)
		if !ok {
			return Null, nil
		}
		if v, ok := o.Get(name); ok {
			return v, nil
		}
		return Null, nil
	}

	return nil, unknownProperty(obj, key)
}

func unknownProperty(obj, key Value) error {
	return runtimeErrorf(UnknownProperty, "Cannot read the property %q of type %q", key.String(), obj.Type())
}

// method looks name up in the method table bound to table and returns it
// with self bound as the first argument. Non-string keys are indexes that
// fell out of range and read as null.
func (in *Interpreter) method(env *Environment, table string, self Value, key Value) (Value, error) {
	name, ok := key.(StringValue)
	if !ok {
		return Null, nil
	}
	tv, err := env.Lookup(table)
	if err != nil {
		return nil, unknownProperty(self, key)
	}
	methods, ok := tv.(*ObjectValue)
	if !ok {
		return nil, unknownProperty(self, key)
	}
	m, ok := methods.Get(string(name))
	if !ok {
		return nil, unknownProperty(self, key)
	}

	switch m.(type) {
	case *NativeFunctionValue, *FunctionValue:
		return NewNative(string(name), func(args []Value, env *Environment) (Value, error) {
			return in.Call(m, append([]Value{self}, args...), env)
		}), nil
	}
	return m, nil
}

func setProperty(obj, key, value Value) error {
	switch o := obj.(type) {
	case NullValue, IgnoreValue:
		return runtimeErrorf(NullProperty, "Cannot set property %s of null", key)

	case *ObjectValue:
		if o.Frozen() {
			return runtimeErrorf(ReadOnly, "Cannot set property %s of a read-only namespace", key)
		}
		name, ok := propertyName(key)
		if !ok {
			return runtimeErrorf(InvalidAssignment, "Invalid object key %s", describe(key))
		}
		o.Set(name, value)
		return nil

	case *ArrayValue:
		i, ok := index(key)
		if !ok {
			return runtimeErrorf(InvalidAssignment, "Invalid array index %s", describe(key))
		}
		for len(o.Elements) <= i {
			o.Elements = append(o.Elements, Null)
		}
		o.Elements[i] = value
		return nil
	}

	return runtimeErrorf(InvalidAssignment, "Cannot set property %s of %s", key, describe(obj))
}
