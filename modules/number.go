package modules

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/coderosh/myriad/core"
)

type _number struct{}

func loadNumber() *core.ObjectValue {
	c := &_number{}
	return namespace(
		"code_to_str", c.codeToStr,
		"format", c.format,
	)
}

func (c *_number) codeToStr(args []core.Value, env *core.Environment) (core.Value, error) {
	n, err := numberArg("number.code_to_str", args, 0)
	if err != nil {
		return nil, err
	}
	return core.StringValue(string(rune(int32(n)))), nil
}

// format groups digits for a locale, en-US when none is given.
func (c *_number) format(args []core.Value, env *core.Environment) (core.Value, error) {
	n, err := numberArg("number.format", args, 0)
	if err != nil {
		return nil, err
	}

	tag := language.AmericanEnglish
	if len(args) > 1 {
		locale, err := stringArg("number.format", args, 1)
		if err != nil {
			return nil, err
		}
		if tag, err = language.Parse(locale); err != nil {
			return nil, core.Throw("number.format: invalid locale %q", locale)
		}
	}

	p := message.NewPrinter(tag)
	return core.StringValue(p.Sprintf("%v", number.Decimal(n))), nil
}
