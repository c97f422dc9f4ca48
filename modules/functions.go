package modules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"github.com/coderosh/myriad/core"
)

type _functions struct {
	in     *core.Interpreter
	reader *bufio.Reader
}

func (f *_functions) print(args []core.Value, env *core.Environment) (core.Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = ExpandEscapes(Sprint(arg, false))
	}
	fmt.Fprintln(f.in.Stdout, strings.Join(parts, " "))
	return core.Ignore, nil
}

// input prints the query and reads one line. Terminals get line editing;
// anything else is read directly.
func (f *_functions) input(args []core.Value, env *core.Environment) (core.Value, error) {
	query := ""
	if len(args) > 0 {
		query = args[0].String()
	}

	if file, ok := f.in.Stdin.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		rl, err := readline.NewEx(&readline.Config{Prompt: query, Stdout: f.in.Stdout})
		if err != nil {
			return nil, core.Throw("input: %s", err)
		}
		defer rl.Close()

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return core.Null, nil
		}
		if err != nil {
			return nil, core.Throw("input: %s", err)
		}
		return core.StringValue(line), nil
	}

	fmt.Fprint(f.in.Stdout, query)
	if f.reader == nil {
		f.reader = bufio.NewReader(f.in.Stdin)
	}
	line, err := f.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, core.Throw("input: %s", err)
	}
	if err != nil && line == "" {
		return core.Null, nil
	}
	return core.StringValue(strings.TrimRight(line, "\r\n")), nil
}

// format replaces each {} with the next argument. \{} is a literal {}.
func (f *_functions) format(args []core.Value, env *core.Environment) (core.Value, error) {
	tmpl, ok := core.Arg(args, 0).(core.StringValue)
	if !ok {
		return core.Null, nil
	}
	return core.StringValue(Format(string(tmpl), args[1:])), nil
}

// Format fills {} placeholders in order. A missing argument leaves a
// marker naming its position.
func Format(tmpl string, args []core.Value) string {
	var b strings.Builder
	next := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '\\' && strings.HasPrefix(tmpl[i+1:], "{}") {
			if i == 0 || tmpl[i-1] != '\\' {
				b.WriteString("{}")
				i += 2
				continue
			}
			// an escaped backslash: the placeholder still applies
			i++
		}
		if strings.HasPrefix(tmpl[i:], "{}") {
			next++
			if next > len(args) {
				fmt.Fprintf(&b, " <%dth parameter expected> ", next)
			} else {
				b.WriteString(args[next-1].String())
			}
			i++
			continue
		}
		b.WriteByte(tmpl[i])
	}
	return b.String()
}

func (f *_functions) typeOf(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("typeof", args, 1); err != nil {
		return nil, err
	}
	return core.StringValue(args[0].Type()), nil
}

func (f *_functions) length(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("len", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case core.StringValue:
		return core.NumberValue(utf8.RuneCountInString(string(v))), nil
	case *core.ArrayValue:
		return core.NumberValue(len(v.Elements)), nil
	case *core.ObjectValue:
		return core.NumberValue(v.Len()), nil
	}
	return nil, core.Throw("len does not support type %s", args[0].Type())
}
