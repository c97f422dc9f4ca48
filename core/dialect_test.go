package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func cloneTable(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func testDialect() *Dialect {
	base := NewRegistry().Get("myriad")
	return &Dialect{
		Name:      "test",
		Extension: "tst",
		Keywords:  cloneTable(base.Keywords),
		Operators: cloneTable(base.Operators),
		Brackets:  cloneTable(base.Brackets),
		Specials:  cloneTable(base.Specials),
	}
}

func TestEmbeddedDialects(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"myriad", "genz", "nepali", "pirate", "uwu"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("dialect %s is not registered", name)
		}
	}
	if d, ok := r.ForExtension(".genzl"); !ok || d.Name != "genz" {
		t.Fatalf("ForExtension(.genzl) = %v", d)
	}
	if r.Get("klingon").Name != DefaultDialectName {
		t.Fatal("unknown names should fall back to the default dialect")
	}
}

func TestValidateRejectsBadDialects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Dialect)
		want   string
	}{
		{"missing role", func(d *Dialect) { delete(d.Keywords, "while") }, "keywords.while is not spelled"},
		{"empty spelling", func(d *Dialect) { d.Operators["plus"] = "" }, "operators.plus is not spelled"},
		{"duplicate spelling", func(d *Dialect) { d.Keywords["for"] = "while" }, `"while" spells both`},
		{"keyword clashes with operator", func(d *Dialect) { d.Operators["andAnd"] = "let" }, `"let" spells both`},
		{"unknown role", func(d *Dialect) { d.Specials["arrow"] = "=>" }, "unknown role specials.arrow"},
		{"non-word keyword", func(d *Dialect) { d.Keywords["if"] = "?" }, "must be a word"},
	}
	for _, tt := range tests {
		d := testDialect()
		tt.mutate(d)
		err := d.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: got %v, want %q", tt.name, err, tt.want)
		}
	}
}

func TestRegisterCustomDialect(t *testing.T) {
	r := NewRegistry()
	d := testDialect()
	d.Keywords["let"] = "var"
	if err := r.Register(d); err != nil {
		t.Fatal(err)
	}
	if got, ok := r.ForExtension(".tst"); !ok || got != d {
		t.Fatal("extension was not normalised with a leading dot")
	}
	if names := r.Names(); names[len(names)-1] != "test" {
		t.Fatalf("names %v", names)
	}

	in := New(Options{Registry: r, Dialect: "test", ThrowOnError: true})
	v, err := in.Run("var x = 2; x * 3;")
	if err != nil {
		t.Fatal(err)
	}
	wantNum(t, v, 6)

	// let is an ordinary identifier once the dialect respells it
	v, err = in.Run("var let = 1; let;")
	if err != nil {
		t.Fatal(err)
	}
	wantNum(t, v, 1)

	if err := r.Register(&Dialect{}); err == nil {
		t.Fatal("registering a nameless dialect should fail")
	}
}

func TestLoadDialectFile(t *testing.T) {
	d := testDialect()
	d.Name = ""
	d.Specials["semiColon"] = "stop"
	out, err := yaml.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "robot.yaml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadDialectFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "robot" {
		t.Fatalf("name %q, want robot", loaded.Name)
	}
	program, err := Parse("let a = 1 stop", loaded)
	if err != nil {
		t.Fatal(err)
	}
	if got := program.String(); got != "let a = 1;" {
		t.Fatalf("got %s", got)
	}
}

func TestLoadDialectRejectsUnknownFields(t *testing.T) {
	_, err := LoadDialect(strings.NewReader("name: x\nkeyword:\n  let: let\n"))
	if err == nil {
		t.Fatal("expected a decode error for an unknown field")
	}
}

func TestDialectGlobals(t *testing.T) {
	r := NewRegistry()
	if got := r.Get("genz").Global("print"); got != "flex" {
		t.Fatalf("genz print = %q", got)
	}
	if got := r.Get("genz").Global("typeof"); got != "typeof" {
		t.Fatalf("unmapped globals keep their name, got %q", got)
	}
}

func TestRegisterReplacesExtension(t *testing.T) {
	r := NewRegistry()
	first := testDialect()
	if err := r.Register(first); err != nil {
		t.Fatal(err)
	}
	second := testDialect()
	second.Extension = ".tst2"
	if err := r.Register(second); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.ForExtension(".tst"); ok {
		t.Fatal("the replaced dialect's extension is still registered")
	}
	if d, ok := r.ForExtension(".tst2"); !ok || d != second {
		t.Fatalf("ForExtension(.tst2) = %v", d)
	}
	if got := strings.Join(r.Extensions(), ","); strings.Count(got, ".tst") != 1 {
		t.Fatalf("extensions %s", got)
	}
}
