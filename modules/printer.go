package modules

import (
	"strings"

	"github.com/fatih/color"

	"github.com/coderosh/myriad/core"
)

// Sprint renders a value for display. Strings nested in containers are
// always quoted; top-level strings only when decorated is set. A container
// met again inside itself prints as [Circular].
func Sprint(v core.Value, decorated bool) string {
	return sprint(v, decorated, map[core.Value]bool{})
}

func sprint(v core.Value, decorated bool, seen map[core.Value]bool) string {
	switch v := v.(type) {
	case core.StringValue:
		if !decorated {
			return string(v)
		}
		return color.GreenString(core.DisplayQuote(string(v)))
	case core.NumberValue, core.BoolValue:
		return color.YellowString(v.String())
	case core.NullValue:
		return color.MagentaString("null")
	case *core.FunctionValue, *core.NativeFunctionValue:
		return color.BlueString(v.String())
	case *core.ArrayValue:
		if seen[v] {
			return color.CyanString(core.Circular)
		}
		seen[v] = true
		defer delete(seen, v)
		return sprintArray(v, seen)
	case *core.ObjectValue:
		if seen[v] {
			return color.CyanString(core.Circular)
		}
		seen[v] = true
		defer delete(seen, v)
		return sprintObject(v, seen)
	}
	return v.String()
}

func sprintArray(arr *core.ArrayValue, seen map[core.Value]bool) string {
	if len(arr.Elements) == 0 {
		return "[]"
	}
	items := make([]string, len(arr.Elements))
	for i, el := range arr.Elements {
		items[i] = sprint(el, true, seen)
	}
	return "[ " + strings.Join(items, ", ") + " ]"
}

// objects with more than three keys print one key per line
func sprintObject(obj *core.ObjectValue, seen map[core.Value]bool) string {
	keys := obj.Keys()
	if len(keys) == 0 {
		return "{}"
	}

	sep, open, close := ", ", "{ ", " }"
	if len(keys) > 3 {
		sep, open, close = ",\n  ", "{\n  ", "\n}"
	}

	items := make([]string, len(keys))
	for i, k := range keys {
		v, _ := obj.Get(k)
		items[i] = k + ": " + sprint(v, true, seen)
	}
	return open + strings.Join(items, sep) + close
}

var escapes = strings.NewReplacer(
	`\\`, `\`,
	`\n`, "\n",
	`\t`, "\t",
	`\r`, "\r",
	`\'`, `'`,
	`\"`, `"`,
)

// ExpandEscapes turns the escape sequences \n \t \r \\ \' \" into the
// characters they name. String literals keep them verbatim until printed.
func ExpandEscapes(s string) string {
	return escapes.Replace(s)
}
