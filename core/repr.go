package core

import (
	"fmt"
	"math"
	"strings"
)

// Repr renders a data value as source text in the given dialect, such that
// parsing and evaluating the text yields an equal value. Functions have no
// source form, and neither do values that contain themselves.
func Repr(v Value, d *Dialect) (string, error) {
	var b strings.Builder
	if err := writeRepr(&b, v, d, map[Value]bool{}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeRepr(b *strings.Builder, v Value, d *Dialect, seen map[Value]bool) error {
	switch v.(type) {
	case *ArrayValue, *ObjectValue:
		if seen[v] {
			return fmt.Errorf("circular %s value has no source form", v.Type())
		}
		seen[v] = true
		defer delete(seen, v)
	}

	switch v := v.(type) {
	case NullValue:
		b.WriteString(d.Keywords["null"])
	case BoolValue:
		if v {
			b.WriteString(d.Keywords["true"])
		} else {
			b.WriteString(d.Keywords["false"])
		}
	case NumberValue:
		f := float64(v)
		// no literal spells these, so write the division that yields them
		switch {
		case math.IsNaN(f):
			b.WriteString(nonFinite(d, "0"))
		case math.IsInf(f, 1):
			b.WriteString(nonFinite(d, "1"))
		case math.IsInf(f, -1):
			b.WriteString(nonFinite(d, d.Operators["minus"]+"1"))
		default:
			s := formatNumber(f)
			if strings.HasPrefix(s, "-") {
				s = d.Operators["minus"] + s[1:]
			}
			b.WriteString(s)
		}
	case StringValue:
		b.WriteString(quoteString(string(v)))
	case *ArrayValue:
		b.WriteString(spaced(d.Brackets["sqrOpen"]))
		for i, el := range v.Elements {
			if i > 0 {
				b.WriteString(spaced(d.Specials["comma"]) + " ")
			}
			if err := writeRepr(b, el, d, seen); err != nil {
				return err
			}
		}
		b.WriteString(spaced(d.Brackets["sqrClose"]))
	case *ObjectValue:
		b.WriteString(spaced(d.Brackets["curlyOpen"]))
		for i, k := range v.Keys() {
			if !isWord(k) || isDigit(k[0]) || d.reserved(k) {
				return fmt.Errorf("object key %q has no source form", k)
			}
			if i > 0 {
				b.WriteString(spaced(d.Specials["comma"]))
			}
			val, _ := v.Get(k)
			b.WriteString(" " + k + spaced(d.Specials["colon"]) + " ")
			if err := writeRepr(b, val, d, seen); err != nil {
				return err
			}
		}
		b.WriteString(" " + spaced(d.Brackets["curlyClose"]))
	default:
		return fmt.Errorf("%s value has no source form", v.Type())
	}
	return nil
}

func nonFinite(d *Dialect, numerator string) string {
	return spaced(d.Brackets["parenOpen"]) + numerator + " " + d.Operators["div"] + " 0" + spaced(d.Brackets["parenClose"])
}

// spaced pads word-like spellings so they do not merge with neighbours.
func spaced(s string) string {
	if s != "" && isWordByte(s[0]) {
		return " " + s + " "
	}
	return s
}
