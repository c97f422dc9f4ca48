package modules

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/coderosh/myriad/core"
)

type _json struct{}

func loadJSON() *core.ObjectValue {
	c := &_json{}
	return namespace(
		"parse", c.parse,
		"stringify", c.stringify,
	)
}

func (c *_json) parse(args []core.Value, env *core.Environment) (core.Value, error) {
	src, err := stringArg("json.parse", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := DecodeJSON(src)
	if err != nil {
		return nil, core.Throw("json.parse: %s", err)
	}
	return v, nil
}

// stringify takes an optional indent: a number of spaces or a string.
func (c *_json) stringify(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("json.stringify", args, 1); err != nil {
		return nil, err
	}

	indent := ""
	switch v := core.Arg(args, 1).(type) {
	case core.NumberValue:
		indent = strings.Repeat(" ", int(math.Max(0, math.Min(10, float64(v)))))
	case core.StringValue:
		indent = string(v)
		if len(indent) > 10 {
			indent = indent[:10]
		}
	}

	s, ok, err := EncodeJSON(args[0], indent)
	if err != nil {
		return nil, core.Throw("json.stringify: %s", err)
	}
	if !ok {
		return core.Null, nil
	}
	return core.StringValue(s), nil
}

// DecodeJSON converts a JSON document to values. Object keys keep their
// document order.
func DecodeJSON(src string) (core.Value, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (core.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			arr := core.NewArray()
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Elements = append(arr.Elements, el)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil

		case '{':
			obj := core.NewObject()
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key.(string), val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
		return nil, errors.New("unexpected delimiter " + t.String())

	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return core.NumberValue(f), nil
	case string:
		return core.StringValue(t), nil
	case bool:
		return core.BoolValue(t), nil
	case nil:
		return core.Null, nil
	}
	return core.Null, nil
}

var errCircular = errors.New("circular structure")

type jsonEncoder struct {
	b      strings.Builder
	indent string
	seen   map[core.Value]bool
}

// EncodeJSON renders v as JSON. Functions are dropped from objects and
// become null inside arrays; a function on its own has no encoding and
// reports false. A value that contains itself is an error.
func EncodeJSON(v core.Value, indent string) (string, bool, error) {
	e := &jsonEncoder{indent: indent, seen: map[core.Value]bool{}}
	ok, err := e.encode(v, 0)
	if err != nil || !ok {
		return "", ok, err
	}
	return e.b.String(), true, nil
}

func (e *jsonEncoder) encode(v core.Value, depth int) (bool, error) {
	switch v.(type) {
	case *core.ArrayValue, *core.ObjectValue:
		if e.seen[v] {
			return false, errCircular
		}
		e.seen[v] = true
		defer delete(e.seen, v)
	}

	b := &e.b
	switch v := v.(type) {
	case core.NullValue, core.IgnoreValue:
		b.WriteString("null")
	case core.BoolValue:
		b.WriteString(v.String())
	case core.NumberValue:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(v.String())
		}
	case core.StringValue:
		b.WriteString(quoteJSON(string(v)))

	case *core.ArrayValue:
		if len(v.Elements) == 0 {
			b.WriteString("[]")
			return true, nil
		}
		b.WriteByte('[')
		for i, el := range v.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			e.newline(depth + 1)
			ok, err := e.encode(el, depth+1)
			if err != nil {
				return false, err
			}
			if !ok {
				b.WriteString("null")
			}
		}
		e.newline(depth)
		b.WriteByte(']')

	case *core.ObjectValue:
		written := 0
		b.WriteByte('{')
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			if !encodable(val) {
				continue
			}
			if written > 0 {
				b.WriteByte(',')
			}
			e.newline(depth + 1)
			b.WriteString(quoteJSON(k))
			b.WriteByte(':')
			if e.indent != "" {
				b.WriteByte(' ')
			}
			if _, err := e.encode(val, depth+1); err != nil {
				return false, err
			}
			written++
		}
		if written > 0 {
			e.newline(depth)
		}
		b.WriteByte('}')

	default:
		return false, nil
	}
	return true, nil
}

func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func encodable(v core.Value) bool {
	switch v.(type) {
	case *core.FunctionValue, *core.NativeFunctionValue:
		return false
	}
	return true
}

func (e *jsonEncoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.b.WriteByte('\n')
	e.b.WriteString(strings.Repeat(e.indent, depth))
}
