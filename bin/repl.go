package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/reeflective/readline"

	"github.com/coderosh/myriad/core"
	"github.com/coderosh/myriad/modules"
)

const replHelp = `commands:
  exit           leave the REPL
  lang [name]    list dialects, or switch to one
  clear          clear the screen
`

func repl(in *core.Interpreter) {
	rl := readline.NewShell()
	rl.Prompt.Primary(func() string { return "> " })
	rl.SyntaxHighlighter = func(line []rune) string {
		return highlight(in.Dialect(), string(line))
	}

	fmt.Fprintf(stdout, "\n Repl myriad v%s (%s)\n\n", version, in.Dialect().Name)

	var env *core.Environment
	for {
		text, err := rl.Readline()

		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(stderr, err)
			break
		}

		if handled, quit := replCommand(in, strings.TrimSpace(text), &env); quit {
			break
		} else if handled {
			continue
		}

		var v core.Value
		v, env, err = in.RunWithEnv(text, env)
		if err != nil {
			in.ReportError(err, text)
			continue
		}
		if v != core.Ignore {
			fmt.Fprintln(stdout, modules.Sprint(v, true))
		}
	}
}

// replCommand handles the REPL's own commands. Switching dialect starts a
// fresh environment, since global names differ between dialects.
func replCommand(in *core.Interpreter, line string, env **core.Environment) (handled, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true, false
	}

	switch fields[0] {
	case "exit":
		if len(fields) == 1 {
			return true, true
		}
	case "clear":
		if len(fields) == 1 {
			fmt.Fprint(stdout, "\033[H\033[2J")
			return true, false
		}
	case "lang":
		switch len(fields) {
		case 1:
			fmt.Fprint(stdout, replHelp)
			for _, name := range in.Registry().Names() {
				marker := " "
				if name == in.Dialect().Name {
					marker = "*"
				}
				fmt.Fprintf(stdout, "%s %s\n", marker, name)
			}
			return true, false
		case 2:
			if !in.SetDialect(fields[1]) {
				fmt.Fprintf(stderr, "unknown dialect %q\n", fields[1])
				return true, false
			}
			*env = nil
			return true, false
		}
	}
	return false, false
}
