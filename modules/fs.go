package modules

import (
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/exp/slices"

	"github.com/coderosh/myriad/core"
)

// _fs works on the interpreter's working filesystem, so paths are relative
// to the directory the runner was started in.
type _fs struct {
	in *core.Interpreter
}

func loadFS(in *core.Interpreter) *core.ObjectValue {
	c := &_fs{in: in}
	return namespace(
		"read", c.read,
		"write", c.write,
		"rmrf", c.rmrf,
		"mkdir", c.mkdir,
		"readdir", c.readdir,
		"stat", c.stat,
	)
}

func (c *_fs) fs() (billy.Filesystem, error) {
	fs := c.in.WorkFS()
	if fs == nil {
		return nil, core.Throw("fs: no working filesystem")
	}
	return fs, nil
}

func (c *_fs) read(args []core.Value, env *core.Environment) (core.Value, error) {
	p, err := stringArg("fs.read", args, 0)
	if err != nil {
		return nil, err
	}
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(fs, p)
	if err != nil {
		return nil, core.Throw("fs.read: %s", err)
	}
	return core.StringValue(data), nil
}

func (c *_fs) write(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("fs.write", args, 2); err != nil {
		return nil, err
	}
	p, err := stringArg("fs.write", args, 0)
	if err != nil {
		return nil, err
	}
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	if err := util.WriteFile(fs, p, []byte(args[1].String()), 0o644); err != nil {
		return nil, core.Throw("fs.write: %s", err)
	}
	return core.Null, nil
}

// rmrf removes a file or a whole tree. A missing path is not an error.
func (c *_fs) rmrf(args []core.Value, env *core.Environment) (core.Value, error) {
	p, err := stringArg("fs.rmrf", args, 0)
	if err != nil {
		return nil, err
	}
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	if err := util.RemoveAll(fs, p); err != nil {
		return nil, core.Throw("fs.rmrf: %s", err)
	}
	return core.Null, nil
}

func (c *_fs) mkdir(args []core.Value, env *core.Environment) (core.Value, error) {
	p, err := stringArg("fs.mkdir", args, 0)
	if err != nil {
		return nil, err
	}
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(p, 0o755); err != nil {
		return nil, core.Throw("fs.mkdir: %s", err)
	}
	return core.Null, nil
}

// readdir lists entry names. With a truthy second argument it descends
// into subdirectories and lists paths relative to the starting directory.
func (c *_fs) readdir(args []core.Value, env *core.Environment) (core.Value, error) {
	p, err := stringArg("fs.readdir", args, 0)
	if err != nil {
		return nil, err
	}
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}

	names := []core.Value{}
	var walk func(dir, prefix string) error
	walk = func(dir, prefix string) error {
		entries, err := fs.ReadDir(dir)
		if err != nil {
			return err
		}
		slices.SortFunc(entries, func(a, b os.FileInfo) bool { return a.Name() < b.Name() })
		for _, entry := range entries {
			rel := path.Join(prefix, entry.Name())
			names = append(names, core.StringValue(rel))
			if entry.IsDir() && core.Arg(args, 1).Truthy() {
				if err := walk(fs.Join(dir, entry.Name()), rel); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(p, ""); err != nil {
		return nil, core.Throw("fs.readdir: %s", err)
	}
	return core.NewArray(names...), nil
}

func (c *_fs) stat(args []core.Value, env *core.Environment) (core.Value, error) {
	p, err := stringArg("fs.stat", args, 0)
	if err != nil {
		return nil, err
	}
	fs, err := c.fs()
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(p)
	if err != nil {
		return nil, core.Throw("fs.stat: %s", err)
	}
	return statObject(info), nil
}

func statObject(info os.FileInfo) *core.ObjectValue {
	return namespace(
		"is_directory", constant(core.BoolValue(info.IsDir())),
		"is_file", constant(core.BoolValue(info.Mode().IsRegular())),
		"name", core.StringValue(info.Name()),
		"size", core.NumberValue(info.Size()),
		"mtime", core.NumberValue(info.ModTime().UnixMilli()),
		"mode", core.NumberValue(info.Mode().Perm()),
	)
}
