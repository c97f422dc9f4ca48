package core

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// GlobalsFunc installs native globals into a fresh root environment.
type GlobalsFunc func(in *Interpreter, env *Environment, d *Dialect)

type Options struct {
	// Dialect names the dialect for source passed to Run. Unknown names
	// fall back to the default dialect.
	Dialect  string
	Registry *Registry
	Resolver *Resolver
	Globals  GlobalsFunc
	Logger   *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ThrowOnError makes Run return errors instead of reporting them.
	ThrowOnError bool
}

type Interpreter struct {
	dialect   *Dialect
	registry  *Registry
	resolver  *Resolver
	globals   GlobalsFunc
	logger    *slog.Logger
	strict    bool
	importing []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func New(opts Options) *Interpreter {
	in := &Interpreter{
		registry: opts.Registry,
		resolver: opts.Resolver,
		globals:  opts.Globals,
		logger:   opts.Logger,
		strict:   opts.ThrowOnError,
		Stdin:    opts.Stdin,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
	}
	if in.registry == nil {
		in.registry = NewRegistry()
	}
	if in.logger == nil {
		in.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if in.Stdin == nil {
		in.Stdin = os.Stdin
	}
	if in.Stdout == nil {
		in.Stdout = os.Stdout
	}
	if in.Stderr == nil {
		in.Stderr = os.Stderr
	}
	if in.resolver == nil {
		in.resolver = NewResolver(nil, osfs.New("."), in.registry.Extensions())
	}
	in.dialect = in.registry.Get(opts.Dialect)
	return in
}

// Parse parses source in the given dialect.
func Parse(source string, d *Dialect) (*Program, error) {
	return NewParser(d).Parse(source)
}

func (in *Interpreter) Dialect() *Dialect {
	return in.dialect
}

// SetDialect switches the dialect used by Run. It reports false for an
// unknown name and leaves the dialect unchanged.
func (in *Interpreter) SetDialect(name string) bool {
	d, ok := in.registry.Lookup(name)
	if !ok {
		return false
	}
	in.dialect = d
	in.logger.Debug("dialect switched", "dialect", name)
	return true
}

func (in *Interpreter) Registry() *Registry {
	return in.registry
}

func (in *Interpreter) Logger() *slog.Logger {
	return in.logger
}

// WorkFS is the filesystem that relative import paths and script file
// access resolve against.
func (in *Interpreter) WorkFS() billy.Filesystem {
	return in.resolver.Work
}

// Extensions lists the source file extensions of every registered dialect.
func (in *Interpreter) Extensions() []string {
	return in.registry.Extensions()
}

// NewGlobalEnv returns a root environment with the native globals of the
// given dialect installed.
func (in *Interpreter) NewGlobalEnv(d *Dialect) *Environment {
	env := NewEnvironment(nil)
	if in.globals != nil {
		in.globals(in, env, d)
	}
	return env
}

// Eval runs a parsed program in env. Control signals that escape the
// program become runtime errors.
func (in *Interpreter) Eval(program *Program, env *Environment) (Value, error) {
	v, err := in.eval(program, env)
	if err != nil {
		return nil, escaped(err)
	}
	return v, nil
}

// Run parses and evaluates source in a fresh global environment.
func (in *Interpreter) Run(source string) (Value, error) {
	v, _, err := in.RunWithEnv(source, nil)
	return v, err
}

// RunWithEnv evaluates source in env, or in a fresh global environment when
// env is nil, and returns the environment it ran in. Unless ThrowOnError was
// set, errors are reported to Stderr and the result is Ignore.
func (in *Interpreter) RunWithEnv(source string, env *Environment) (Value, *Environment, error) {
	if env == nil {
		env = in.NewGlobalEnv(in.dialect)
	}

	v, err := in.run(source, env)
	if err == nil {
		return v, env, nil
	}
	if in.strict {
		return nil, env, err
	}

	in.logger.Debug("run failed", "error", err)
	in.ReportError(err, source)
	return Ignore, env, nil
}

func (in *Interpreter) run(source string, env *Environment) (Value, error) {
	program, err := Parse(source, in.dialect)
	if err != nil {
		return nil, err
	}
	return in.Eval(program, env)
}

// ReportError writes a red error line to Stderr. Parser errors include the
// offending source line.
func (in *Interpreter) ReportError(err error, source string) {
	msg := err.Error()
	var perr *ParserError
	if errors.As(err, &perr) {
		msg = perr.WithContext(source)
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(in.Stderr, "ERROR ")
	color.New(color.FgRed).Fprintln(in.Stderr, msg)
}

func (in *Interpreter) evalImport(n ImportStatement, env *Environment) (Value, error) {
	mod, err := in.resolver.Resolve(n.Path)
	if err != nil {
		return nil, err
	}

	for _, key := range in.importing {
		if key == mod.Key {
			return nil, runtimeErrorf(ImportCycle, "Import cycle through %q", n.Path)
		}
	}
	in.importing = append(in.importing, mod.Key)
	defer func() { in.importing = in.importing[:len(in.importing)-1] }()

	d, ok := in.registry.ForExtension(mod.Ext)
	if !ok {
		d = in.dialect
	}
	in.logger.Debug("import", "path", mod.Path, "builtin", mod.Builtin, "dialect", d.Name)

	program, err := Parse(mod.Source, d)
	if err != nil {
		var perr *ParserError
		if errors.As(err, &perr) && perr.File == "" {
			perr.File = mod.Path
		}
		return nil, err
	}
	moduleEnv := in.NewGlobalEnv(d)
	if _, err := in.Eval(program, moduleEnv); err != nil {
		return nil, err
	}

	ns := moduleEnv.Exported().Copy()
	ns.Freeze()
	if _, err := env.Declare(n.Alias, ns, true); err != nil {
		return nil, err
	}
	return Ignore, nil
}
