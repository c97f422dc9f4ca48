package core

import (
	"errors"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// EntryFile is loaded when an import names a directory.
const EntryFile = "main.myriad"

// Module is a resolved import target.
type Module struct {
	// Key identifies the module across both filesystems.
	Key     string
	Path    string
	Ext     string
	Source  string
	Builtin bool
}

// Resolver locates import targets: first by bare name in the built-in module
// filesystem, then as a path in the working filesystem.
type Resolver struct {
	Builtin    billy.Filesystem
	Work       billy.Filesystem
	Extensions []string
}

func NewResolver(builtin, work billy.Filesystem, extensions []string) *Resolver {
	return &Resolver{Builtin: builtin, Work: work, Extensions: extensions}
}

func (r *Resolver) Resolve(importPath string) (*Module, error) {
	if r.Builtin != nil {
		for _, ext := range r.Extensions {
			name := importPath + ext
			if info, err := r.Builtin.Stat(name); err == nil && !info.IsDir() {
				return r.load(r.Builtin, name, true)
			}
		}
	}

	if r.Work != nil {
		info, err := r.Work.Stat(importPath)
		switch {
		case err == nil && info.IsDir():
			entry := r.Work.Join(importPath, EntryFile)
			if info, err := r.Work.Stat(entry); err == nil && !info.IsDir() {
				return r.load(r.Work, entry, false)
			}
		case err == nil:
			return r.load(r.Work, importPath, false)
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	return nil, runtimeErrorf(ModuleNotFound, "Module %q not found", importPath)
}

func (r *Resolver) load(fs billy.Filesystem, name string, builtin bool) (*Module, error) {
	src, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}

	key := "work:" + path.Clean(name)
	if builtin {
		key = "builtin:" + path.Clean(name)
	}
	return &Module{
		Key:     key,
		Path:    name,
		Ext:     path.Ext(name),
		Source:  string(src),
		Builtin: builtin,
	}, nil
}
