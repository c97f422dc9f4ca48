package main

import (
	"strings"

	"github.com/fatih/color"

	"github.com/coderosh/myriad/core"
)

// highlight colours a REPL line token by token. Text the tokenizer skips,
// and anything after a tokenizer error, is copied through unchanged.
func highlight(d *core.Dialect, line string) string {
	tokenizer := core.NewTokenizer(d)
	tokenizer.Init(line)

	builder := strings.Builder{}
	i := 0
	for {
		token, err := tokenizer.Next()
		if err != nil || token.Kind == core.EOF {
			break
		}

		start, end := tokenizer.Span()
		if start > i {
			builder.WriteString(line[i:start])
		}
		text := line[start:end]

		switch {
		case token.Kind == core.STRING:
			builder.WriteString(color.GreenString(text))
		case token.Kind == core.NUMBER:
			builder.WriteString(color.MagentaString(text))
		case token.Kind == core.BOOLEAN || token.Kind == core.NULL:
			builder.WriteString(color.YellowString(text))
		case token.Kind.IsKeyword():
			builder.WriteString(color.CyanString(text))
		default:
			builder.WriteString(text)
		}

		i = end
	}
	builder.WriteString(line[i:])

	return builder.String()
}
