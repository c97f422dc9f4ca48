package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/quick"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/coderosh/myriad/core"
	"github.com/coderosh/myriad/modules"
)

const version = "0.1.0"

const helpMessage = `myriad is a scripting language with interchangeable keyword dialects.

Usage:
  myriad [flags] <file>
  myriad [flags]          start a REPL, or run a program piped on stdin
`

var (
	dialectName = flag.String("dialect", "", "dialect to use (default: from the file extension, else myriad)")
	dialectFile = flag.String("dialect-file", "", "register an extra dialect from a YAML file")
	modulesDir  = flag.String("modules", "", "directory of built-in modules (default $MYRIAD_MODULES)")
	debug       = flag.Bool("debug", false, "log interpreter events to stderr")
	debugAst    = flag.Bool("debug-ast", false, "print AST")
	strict      = flag.Bool("strict", false, "exit with status 1 on the first error")
	showVersion = flag.Bool("version", false, "print the version and exit")
)

var (
	stdout = colorable.NewColorableStdout()
	stderr = colorable.NewColorableStderr()
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpMessage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Fprintln(stdout, "myriad", version)
		return
	}

	registry := core.NewRegistry()
	if *dialectFile != "" {
		d, err := core.LoadDialectFile(*dialectFile)
		if err == nil {
			err = registry.Register(d)
		}
		if err != nil {
			fmt.Fprintln(stderr, err)
			os.Exit(1)
		}
	}

	args := flag.Args()
	switch {
	case len(args) > 0:
		runFile(registry, args[0])
	case isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()):
		repl(newInterpreter(registry, *dialectName))
	default:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(stderr, err)
			os.Exit(1)
		}
		run(newInterpreter(registry, *dialectName), string(src))
	}
}

func newInterpreter(registry *core.Registry, dialect string) *core.Interpreter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	dir := *modulesDir
	if dir == "" {
		dir = os.Getenv("MYRIAD_MODULES")
	}

	opts := core.Options{
		Dialect:      dialect,
		Registry:     registry,
		Globals:      modules.Initialize,
		Logger:       logger,
		Stdout:       stdout,
		Stderr:       stderr,
		ThrowOnError: *strict,
	}
	if dir != "" {
		opts.Resolver = core.NewResolver(osfs.New(dir), osfs.New("."), registry.Extensions())
		logger.Debug("built-in modules", "dir", dir)
	}
	return core.New(opts)
}

func runFile(registry *core.Registry, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		os.Exit(1)
	}

	dialect := *dialectName
	if dialect == "" {
		if d, ok := registry.ForExtension(filepath.Ext(path)); ok {
			dialect = d.Name
		}
	}
	run(newInterpreter(registry, dialect), string(content))
}

func run(in *core.Interpreter, src string) {
	if *debugAst {
		program, err := core.Parse(src, in.Dialect())
		if err != nil {
			in.ReportError(err, src)
			os.Exit(1)
		}
		if err := quick.Highlight(stdout, program.String()+"\n", "javascript", "terminal256", "monokai"); err != nil {
			fmt.Fprintln(stdout, program)
		}
	}

	if _, err := in.Run(src); err != nil {
		in.ReportError(err, src)
		os.Exit(1)
	}
}
