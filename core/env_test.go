package core

import "testing"

func TestDeclareRejectsRedeclaration(t *testing.T) {
	for _, constant := range []bool{false, true} {
		env := NewEnvironment(nil)
		if _, err := env.Declare("x", NumberValue(1), constant); err != nil {
			t.Fatal(err)
		}
		if _, err := env.Declare("x", NumberValue(2), false); !IsKind(err, Redeclaration) {
			t.Fatalf("constant=%v: got %v, want Redeclaration", constant, err)
		}
	}
}

func TestShadowingParentIsAllowed(t *testing.T) {
	root := NewEnvironment(nil)
	root.Declare("x", NumberValue(1), true)
	child := NewEnvironment(root)
	if _, err := child.Declare("x", NumberValue(2), false); err != nil {
		t.Fatal(err)
	}

	v, _ := child.Lookup("x")
	if !v.Eq(NumberValue(2)) {
		t.Fatalf("child sees %v", v)
	}
	v, _ = root.Lookup("x")
	if !v.Eq(NumberValue(1)) {
		t.Fatalf("root sees %v", v)
	}
}

func TestAssignResolvesOwner(t *testing.T) {
	root := NewEnvironment(nil)
	root.Declare("n", NumberValue(1), false)
	root.Declare("c", NumberValue(1), true)
	child := NewEnvironment(NewEnvironment(root))

	if _, err := child.Assign("n", NumberValue(5)); err != nil {
		t.Fatal(err)
	}
	if v, _ := root.Lookup("n"); !v.Eq(NumberValue(5)) {
		t.Fatalf("root n = %v", v)
	}
	if owner, _ := child.Resolve("n"); owner != root {
		t.Fatal("resolve did not return the owning scope")
	}

	if _, err := child.Assign("c", NumberValue(2)); !IsKind(err, ConstantAssignment) {
		t.Fatalf("got %v, want ConstantAssignment", err)
	}
	if _, err := child.Assign("missing", Null); !IsKind(err, UndefinedVariable) {
		t.Fatalf("got %v, want UndefinedVariable", err)
	}
	if _, err := child.Lookup("missing"); !IsKind(err, UndefinedVariable) {
		t.Fatalf("got %v, want UndefinedVariable", err)
	}
}

func TestExportTargetsRoot(t *testing.T) {
	root := NewEnvironment(nil)
	root.Declare("value", NumberValue(1), false)
	inner := NewEnvironment(NewEnvironment(root))

	if inner.FindRootParent() != root {
		t.Fatal("FindRootParent did not reach the root")
	}
	if err := inner.Export("value"); err != nil {
		t.Fatal(err)
	}
	root.Assign("value", NumberValue(2))
	if err := inner.Export("value"); err != nil {
		t.Fatal(err)
	}

	exported := root.Exported()
	if exported.Len() != 1 {
		t.Fatalf("exported %v", exported)
	}
	if v, _ := exported.Get("value"); !v.Eq(NumberValue(2)) {
		t.Fatalf("re-export did not overwrite: %v", v)
	}

	// names declared only in an inner scope are not visible to export
	inner.Declare("local", Null, false)
	if err := inner.Export("local"); !IsKind(err, UndefinedVariable) {
		t.Fatalf("got %v, want UndefinedVariable", err)
	}
}

func TestLoadModuleIsReadOnly(t *testing.T) {
	env := NewEnvironment(nil)
	ns := NewObject()
	ns.Set("pi", NumberValue(3))
	env.LoadModule("math", ns)

	if !env.IsConstant("math") || !ns.Frozen() {
		t.Fatal("namespace should be a frozen constant")
	}
	if err := setProperty(ns, StringValue("pi"), NumberValue(4)); !IsKind(err, ReadOnly) {
		t.Fatalf("got %v, want ReadOnly", err)
	}
}
