package core

import (
	"math"
	"strconv"
	"strings"
)

type ValueType string

const (
	NullType           ValueType = "null"
	NumberType         ValueType = "number"
	StringType         ValueType = "string"
	BooleanType        ValueType = "boolean"
	ArrayType          ValueType = "array"
	ObjectType         ValueType = "object"
	FunctionType       ValueType = "function"
	NativeFunctionType ValueType = "native-function"
	IgnoreType         ValueType = "ignore"
)

type Value interface {
	String() string
	Eq(v Value) bool
	Truthy() bool
	Type() ValueType
}

type NullValue struct{}

// Null is the only null value.
var Null = NullValue{}

func (v NullValue) String() string {
	return "null"
}

func (v NullValue) Eq(other Value) bool {
	_, ok := other.(NullValue)
	return ok
}

func (v NullValue) Truthy() bool {
	return false
}

func (v NullValue) Type() ValueType {
	return NullType
}

// IgnoreValue is the result of statements that produce nothing worth printing.
type IgnoreValue struct{}

var Ignore = IgnoreValue{}

func (v IgnoreValue) String() string {
	return ""
}

func (v IgnoreValue) Eq(other Value) bool {
	_, ok := other.(IgnoreValue)
	return ok
}

func (v IgnoreValue) Truthy() bool {
	return false
}

func (v IgnoreValue) Type() ValueType {
	return IgnoreType
}

type NumberValue float64

func (v NumberValue) String() string {
	return formatNumber(float64(v))
}

func (v NumberValue) Eq(other Value) bool {
	w, ok := other.(NumberValue)
	return ok && v == w
}

func (v NumberValue) Truthy() bool {
	return v != 0 && !math.IsNaN(float64(v))
}

func (v NumberValue) Type() ValueType {
	return NumberType
}

type StringValue string

func (v StringValue) String() string {
	return string(v)
}

func (v StringValue) Eq(other Value) bool {
	w, ok := other.(StringValue)
	return ok && v == w
}

func (v StringValue) Truthy() bool {
	return len(v) > 0
}

func (v StringValue) Type() ValueType {
	return StringType
}

type BoolValue bool

func (v BoolValue) String() string {
	return strconv.FormatBool(bool(v))
}

func (v BoolValue) Eq(other Value) bool {
	w, ok := other.(BoolValue)
	return ok && v == w
}

func (v BoolValue) Truthy() bool {
	return bool(v)
}

func (v BoolValue) Type() ValueType {
	return BooleanType
}

type ArrayValue struct {
	Elements []Value
}

func NewArray(elements ...Value) *ArrayValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ArrayValue{Elements: elements}
}

func (v *ArrayValue) String() string {
	return v.format(map[Value]bool{})
}

func (v *ArrayValue) format(seen map[Value]bool) string {
	if len(v.Elements) == 0 {
		return "[]"
	}
	seen[v] = true
	defer delete(seen, v)
	items := make([]string, len(v.Elements))
	for i, el := range v.Elements {
		items[i] = nestedString(el, seen)
	}
	return "[ " + strings.Join(items, ", ") + " ]"
}

// Eq is identity, as for every mutable value.
func (v *ArrayValue) Eq(other Value) bool {
	w, ok := other.(*ArrayValue)
	return ok && v == w
}

func (v *ArrayValue) Truthy() bool {
	return true
}

func (v *ArrayValue) Type() ValueType {
	return ArrayType
}

// ObjectValue is an insertion-ordered string-keyed map. A frozen object
// rejects writes from scripts.
type ObjectValue struct {
	keys    []string
	entries map[string]Value
	frozen  bool
}

func NewObject() *ObjectValue {
	return &ObjectValue{entries: map[string]Value{}}
}

// Get returns the value under key and whether it exists.
func (v *ObjectValue) Get(key string) (Value, bool) {
	val, ok := v.entries[key]
	return val, ok
}

// Set stores key, appending it to the key order when new.
func (v *ObjectValue) Set(key string, val Value) {
	if _, exists := v.entries[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.entries[key] = val
}

func (v *ObjectValue) Delete(key string) {
	if _, exists := v.entries[key]; !exists {
		return
	}
	delete(v.entries, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (v *ObjectValue) Keys() []string {
	keys := make([]string, len(v.keys))
	copy(keys, v.keys)
	return keys
}

func (v *ObjectValue) Len() int {
	return len(v.keys)
}

func (v *ObjectValue) Freeze() {
	v.frozen = true
}

func (v *ObjectValue) Frozen() bool {
	return v.frozen
}

// Copy returns a shallow, unfrozen copy.
func (v *ObjectValue) Copy() *ObjectValue {
	c := NewObject()
	for _, k := range v.keys {
		c.Set(k, v.entries[k])
	}
	return c
}

func (v *ObjectValue) String() string {
	return v.format(map[Value]bool{})
}

func (v *ObjectValue) format(seen map[Value]bool) string {
	if len(v.keys) == 0 {
		return "{}"
	}
	seen[v] = true
	defer delete(seen, v)
	items := make([]string, len(v.keys))
	for i, k := range v.keys {
		items[i] = k + ": " + nestedString(v.entries[k], seen)
	}
	return "{ " + strings.Join(items, ", ") + " }"
}

func (v *ObjectValue) Eq(other Value) bool {
	w, ok := other.(*ObjectValue)
	return ok && v == w
}

func (v *ObjectValue) Truthy() bool {
	return true
}

func (v *ObjectValue) Type() ValueType {
	return ObjectType
}

// FunctionValue is a closure over the environment it was defined in.
type FunctionValue struct {
	Name   string
	Params []string
	Body   *BlockStatement
	Env    *Environment
}

func (v *FunctionValue) String() string {
	if v.Name == "" {
		return "[AnonymousFunction](" + strings.Join(v.Params, ", ") + ")"
	}
	return "[Function:" + v.Name + "](" + strings.Join(v.Params, ", ") + ")"
}

func (v *FunctionValue) Eq(other Value) bool {
	w, ok := other.(*FunctionValue)
	return ok && v == w
}

func (v *FunctionValue) Truthy() bool {
	return true
}

func (v *FunctionValue) Type() ValueType {
	return FunctionType
}

// NativeFn is the host function ABI. env is the caller's environment.
type NativeFn func(args []Value, env *Environment) (Value, error)

type NativeFunctionValue struct {
	Name string
	Fn   NativeFn
}

func NewNative(name string, fn NativeFn) *NativeFunctionValue {
	return &NativeFunctionValue{Name: name, Fn: fn}
}

func (v *NativeFunctionValue) String() string {
	return "[NativeFunction]"
}

func (v *NativeFunctionValue) Eq(other Value) bool {
	w, ok := other.(*NativeFunctionValue)
	return ok && v == w
}

func (v *NativeFunctionValue) Truthy() bool {
	return true
}

func (v *NativeFunctionValue) Type() ValueType {
	return NativeFunctionType
}

// Arg returns args[i], or Null when the caller passed fewer arguments.
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Null
}

// Circular marks a container printed inside itself.
const Circular = "[Circular]"

// nestedString renders an element of a container. seen holds the
// containers currently being printed.
func nestedString(v Value, seen map[Value]bool) string {
	switch v := v.(type) {
	case StringValue:
		return DisplayQuote(string(v))
	case *ArrayValue:
		if seen[v] {
			return Circular
		}
		return v.format(seen)
	case *ObjectValue:
		if seen[v] {
			return Circular
		}
		return v.format(seen)
	}
	return v.String()
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func quoteWith(s string, quotes string) string {
	for _, q := range quotes {
		if !strings.ContainsRune(s, q) {
			return string(q) + s + string(q)
		}
	}
	// no escapes exist, so a string holding every quote has no exact literal
	return string(quotes[0]) + s + string(quotes[0])
}

// quoteString picks a delimiter for a source literal.
func quoteString(s string) string {
	return quoteWith(s, "\"'`")
}

// DisplayQuote picks a delimiter for printing a string inside a container.
func DisplayQuote(s string) string {
	return quoteWith(s, "'\"`")
}
