package modules

import (
	"strings"
	"unicode/utf8"

	"github.com/coderosh/myriad/core"
)

// Method tables receive the receiver as their first argument.

type _string struct{}

func loadString() *core.ObjectValue {
	c := &_string{}
	return namespace(
		"length", c.length,
		"replace", c.replace,
		"uppercase", c.uppercase,
		"lowercase", c.lowercase,
		"split", c.split,
		"char_code", c.charCode,
		"trim", c.trim,
		"includes", c.includes,
	)
}

func (c *_string) length(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.length", args, 0)
	if err != nil {
		return nil, err
	}
	return core.NumberValue(utf8.RuneCountInString(s)), nil
}

// replace swaps the first occurrence only.
func (c *_string) replace(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("string.replace", args, 3); err != nil {
		return nil, err
	}
	s, err := stringArg("string.replace", args, 0)
	if err != nil {
		return nil, err
	}
	return core.StringValue(strings.Replace(s, args[1].String(), args[2].String(), 1)), nil
}

func (c *_string) uppercase(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.uppercase", args, 0)
	if err != nil {
		return nil, err
	}
	return core.StringValue(strings.ToUpper(s)), nil
}

func (c *_string) lowercase(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.lowercase", args, 0)
	if err != nil {
		return nil, err
	}
	return core.StringValue(strings.ToLower(s)), nil
}

// split without a separator splits into characters.
func (c *_string) split(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.split", args, 0)
	if err != nil {
		return nil, err
	}
	sep := ""
	if sv, ok := core.Arg(args, 1).(core.StringValue); ok {
		sep = string(sv)
	}

	parts := strings.Split(s, sep)
	out := make([]core.Value, len(parts))
	for i, p := range parts {
		out[i] = core.StringValue(p)
	}
	return core.NewArray(out...), nil
}

func (c *_string) charCode(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.char_code", args, 0)
	if err != nil {
		return nil, err
	}
	i := 0
	if n, ok := core.Arg(args, 1).(core.NumberValue); ok {
		i = int(n)
	}
	runes := []rune(s)
	if i < 0 || i >= len(runes) {
		return core.Null, nil
	}
	return core.NumberValue(runes[i]), nil
}

func (c *_string) trim(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.trim", args, 0)
	if err != nil {
		return nil, err
	}
	return core.StringValue(strings.TrimSpace(s)), nil
}

func (c *_string) includes(args []core.Value, env *core.Environment) (core.Value, error) {
	s, err := stringArg("string.includes", args, 0)
	if err != nil {
		return nil, err
	}
	return core.BoolValue(strings.Contains(s, core.Arg(args, 1).String())), nil
}
