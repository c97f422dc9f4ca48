package core

import (
	"fmt"
)

// Environment is one scope in the lexical scope chain. The root scope of a
// module also owns the table of exported names.
type Environment struct {
	parent    *Environment
	variables map[string]Value
	constants map[string]bool
	exported  *ObjectValue
}

func NewEnvironment(parent *Environment) *Environment {
	env := &Environment{
		parent:    parent,
		variables: map[string]Value{},
		constants: map[string]bool{},
	}
	if parent == nil {
		env.exported = NewObject()
	}
	return env
}

func (e *Environment) Parent() *Environment {
	return e.parent
}

// Declare binds name in this scope. Shadowing a parent binding is fine,
// declaring the same name twice in one scope is not.
func (e *Environment) Declare(name string, value Value, constant bool) (Value, error) {
	if _, exists := e.variables[name]; exists {
		return nil, runtimeErrorf(Redeclaration, "Cannot redeclare variable %q", name)
	}
	e.variables[name] = value
	if constant {
		e.constants[name] = true
	}
	return value, nil
}

// Assign updates the nearest binding of name.
func (e *Environment) Assign(name string, value Value) (Value, error) {
	owner, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	if owner.constants[name] {
		return nil, runtimeErrorf(ConstantAssignment, "Cannot assign to constant variable %q", name)
	}
	owner.variables[name] = value
	return value, nil
}

func (e *Environment) Lookup(name string) (Value, error) {
	owner, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	return owner.variables[name], nil
}

// Resolve returns the scope that owns name.
func (e *Environment) Resolve(name string) (*Environment, error) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.variables[name]; ok {
			return env, nil
		}
	}
	return nil, runtimeErrorf(UndefinedVariable, "Variable %q is not defined", name)
}

// Has reports whether name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, err := e.Resolve(name)
	return err == nil
}

func (e *Environment) IsConstant(name string) bool {
	owner, err := e.Resolve(name)
	return err == nil && owner.constants[name]
}

func (e *Environment) FindRootParent() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}

// Export copies name, as seen from the root scope, into the root's exported
// table. Exporting the same name again overwrites the entry.
func (e *Environment) Export(name string) error {
	root := e.FindRootParent()
	value, err := root.Lookup(name)
	if err != nil {
		return err
	}
	root.exported.Set(name, value)
	return nil
}

// Exported returns the root's exported table.
func (e *Environment) Exported() *ObjectValue {
	return e.FindRootParent().exported
}

// Names lists the bindings owned by this scope.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.variables))
	for name := range e.variables {
		names = append(names, name)
	}
	return names
}

// LoadFunc declares a native function as a constant.
func (e *Environment) LoadFunc(name string, fn NativeFn) {
	e.variables[name] = NewNative(name, fn)
	e.constants[name] = true
}

// LoadModule declares a namespace object as a read-only constant.
func (e *Environment) LoadModule(name string, ns *ObjectValue) {
	ns.Freeze()
	e.variables[name] = ns
	e.constants[name] = true
}

// RequireArgLen fails with a catchable error when a native function gets
// fewer than count arguments.
func RequireArgLen(fnName string, args []Value, count int) error {
	if len(args) < count {
		return &ThrowError{
			Value: StringValue(fmt.Sprintf("%s requires %d arguments, got %d", fnName, count, len(args))),
		}
	}
	return nil
}
