package modules

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/coderosh/myriad/core"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type harness struct {
	in     *core.Interpreter
	stdout *bytes.Buffer
	work   billy.Filesystem
}

func newHarness(t *testing.T, dialect string) *harness {
	t.Helper()
	h := &harness{stdout: &bytes.Buffer{}, work: memfs.New()}
	h.in = core.New(core.Options{
		Dialect:      dialect,
		Globals:      Initialize,
		Resolver:     core.NewResolver(nil, h.work, []string{".myriad"}),
		Stdin:        strings.NewReader(""),
		Stdout:       h.stdout,
		Stderr:       &bytes.Buffer{},
		ThrowOnError: true,
	})
	return h
}

func (h *harness) run(t *testing.T, src string) core.Value {
	t.Helper()
	v, err := h.in.Run(src)
	if err != nil {
		t.Fatalf("run error: %v\nsource:\n%s", err, src)
	}
	return v
}

func run(t *testing.T, src string) core.Value {
	t.Helper()
	return newHarness(t, "myriad").run(t, src)
}

func wantStr(t *testing.T, v core.Value, s string) {
	t.Helper()
	if got, ok := v.(core.StringValue); !ok || string(got) != s {
		t.Fatalf("want string %q, got %s %v", s, v.Type(), v)
	}
}

func wantNum(t *testing.T, v core.Value, n float64) {
	t.Helper()
	if got, ok := v.(core.NumberValue); !ok || float64(got) != n {
		t.Fatalf("want number %g, got %s %v", n, v.Type(), v)
	}
}

func wantBool(t *testing.T, v core.Value, b bool) {
	t.Helper()
	if got, ok := v.(core.BoolValue); !ok || bool(got) != b {
		t.Fatalf("want boolean %v, got %s %v", b, v.Type(), v)
	}
}

func TestPrint(t *testing.T) {
	h := newHarness(t, "myriad")
	v := h.run(t, `print("a\tb", 1, null, true, ["x", 2], { k: "v" });`)
	if v != core.Ignore {
		t.Fatalf("print returned %v", v)
	}
	want := "a\tb 1 null true [ 'x', 2 ] { k: 'v' }\n"
	if got := h.stdout.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintLargeObjectIsMultiline(t *testing.T) {
	h := newHarness(t, "myriad")
	h.run(t, `print({ a: 1, b: 2, c: 3, d: 4 });`)
	want := "{\n  a: 1,\n  b: 2,\n  c: 3,\n  d: 4\n}\n"
	if got := h.stdout.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintCircular(t *testing.T) {
	h := newHarness(t, "myriad")
	h.run(t, `let o = { n: 1 }; o.self = o; let a = [o]; a[1] = a; print(o, a);`)
	want := "{ n: 1, self: [Circular] } [ { n: 1, self: [Circular] }, [Circular] ]\n"
	if got := h.stdout.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := Sprint(h.run(t, "let s = [1]; [s, s];"), true); got != "[ [ 1 ], [ 1 ] ]" {
		t.Fatalf("shared value printed as %q", got)
	}
}

func TestSprintFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"func add(a, b) {} add;", "[Function:add](a, b)"},
		{"func(x) {};", "[AnonymousFunction](x)"},
		{"print;", "[NativeFunction]"},
		{`"it's";`, `"it's"`},
		{"[];", "[]"},
		{"let o = {}; o;", "{}"},
	}
	for _, tt := range tests {
		if got := Sprint(run(t, tt.src), true); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestExpandEscapes(t *testing.T) {
	tests := map[string]string{
		`a\nb`:     "a\nb",
		`tab\there`: "tab\there",
		`\\n`:      `\n`,
		`\'q\"`:    `'q"`,
		`\x`:       `\x`,
	}
	for in, want := range tests {
		if got := ExpandEscapes(in); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	wantStr(t, run(t, `format("{} + {} = {}", 1, 2, 3);`), "1 + 2 = 3")
	wantStr(t, run(t, `format("\{} and {}", "x");`), "{} and x")
	wantStr(t, run(t, `format("{} {}", "only");`), "only  <2th parameter expected> ")
	if v := run(t, "format(1);"); v != core.Null {
		t.Fatalf("got %v", v)
	}
}

func TestTypeofAndLen(t *testing.T) {
	wantStr(t, run(t, "typeof([]);"), "array")
	wantStr(t, run(t, "typeof(print);"), "native-function")
	wantStr(t, run(t, "typeof(func() {});"), "function")
	wantNum(t, run(t, `len("héllo");`), 5)
	wantNum(t, run(t, "len([1, 2]);"), 2)
	wantNum(t, run(t, "len({ a: 1 });"), 1)

	// native failures are catchable
	wantStr(t, run(t, `let r; try { len(1); } catch (e) { r = e; } r;`), "len does not support type number")
}

func TestInputFromPipe(t *testing.T) {
	h := newHarness(t, "myriad")
	h.in.Stdin = strings.NewReader("ada\nlovelace")
	v := h.run(t, `[input("first? "), input("last? "), input("more? ")];`)
	arr := v.(*core.ArrayValue)
	wantStr(t, arr.Elements[0], "ada")
	wantStr(t, arr.Elements[1], "lovelace")
	if arr.Elements[2] != core.Null {
		t.Fatalf("input at EOF returned %v", arr.Elements[2])
	}
	if got := h.stdout.String(); got != "first? last? more? " {
		t.Fatalf("prompts %q", got)
	}
}

func TestGlobalRenames(t *testing.T) {
	h := newHarness(t, "genz")
	h.run(t, `flex(lenz([1, 2, 3])) rn`)
	if got := h.stdout.String(); got != "3\n" {
		t.Fatalf("got %q", got)
	}
	// the default name is not declared in a renamed dialect
	if _, err := h.in.Run("print(1) rn"); !core.IsKind(err, core.UndefinedVariable) {
		t.Fatalf("got %v", err)
	}
}

func TestNamespacesAreReadOnly(t *testing.T) {
	h := newHarness(t, "myriad")
	if _, err := h.in.Run("math.pi = 3;"); !core.IsKind(err, core.ReadOnly) {
		t.Fatalf("got %v", err)
	}
	if _, err := h.in.Run("let math = 1;"); !core.IsKind(err, core.Redeclaration) {
		t.Fatalf("got %v", err)
	}
}

func TestMath(t *testing.T) {
	wantNum(t, run(t, "math.floor(2.7) + math.ceil(2.1) + math.abs(-1);"), 6)
	wantNum(t, run(t, "math.round(2.5);"), 3)
	wantNum(t, run(t, "math.round(-2.5);"), -2)
	wantNum(t, run(t, "math.sin(0) + math.cos(0) + math.tan(0);"), 1)
	wantBool(t, run(t, "let r = math.rand(); r >= 0 && r < 1;"), true)
	wantBool(t, run(t, "math.pi > 3.14 && math.e > 2.71;"), true)

	wantStr(t, run(t, `let r; try { math.floor("x"); } catch (e) { r = e; } r;`), "math.floor expects a number argument, got string")
}

func TestStringMethods(t *testing.T) {
	wantNum(t, run(t, `"héllo".length();`), 5)
	wantStr(t, run(t, `"a-b-c".replace("-", "+");`), "a+b-c")
	wantStr(t, run(t, `"MiX".uppercase() + "MiX".lowercase();`), "MIXmix")
	wantStr(t, run(t, `"a,b,c".split(",")[2];`), "c")
	wantNum(t, run(t, `"abc".split().length();`), 3)
	wantNum(t, run(t, `"AB".char_code(1);`), 66)
	wantStr(t, run(t, `"  pad ".trim();`), "pad")
	wantBool(t, run(t, `"haystack".includes("st");`), true)
}

func TestArrayMethods(t *testing.T) {
	wantNum(t, run(t, "let a = [1]; a.push(2, 3); a.length();"), 3)
	wantNum(t, run(t, "let a = [1, 2]; a.pop() * 10 + a.length();"), 21)
	if v := run(t, "[].pop();"); v != core.Null {
		t.Fatalf("pop on empty array returned %v", v)
	}
	wantStr(t, run(t, `[1, "b", true].join();`), "1,b,true")
	wantStr(t, run(t, `["x", "y"].join(" | ");`), "x | y")
	wantBool(t, run(t, `[1, "two"].includes("two");`), true)
	wantBool(t, run(t, "[[1]].includes([1]);"), false)

	src := `
		let total = 0;
		[5, 6, 7].foreach(func(v, i, arr) { total += v * i + arr.length(); });
		total;`
	wantNum(t, run(t, src), 5*0+6*1+7*2+9)
}

func TestForeachPropagatesThrow(t *testing.T) {
	src := `
		let caught;
		try {
			[1, 2].foreach(func(v) { if (v == 2) { throw "stop"; } });
		} catch (e) { caught = e; }
		caught;`
	wantStr(t, run(t, src), "stop")
}

func TestNumberMethods(t *testing.T) {
	wantStr(t, run(t, "(65).code_to_str();"), "A")
	wantStr(t, run(t, "(1234567.5).format();"), "1,234,567.5")
	wantStr(t, run(t, `(1234567).format("de");`), "1.234.567")

	wantStr(t, run(t, `let r; try { (1).format("?!"); } catch (e) { r = e; } r;`), `number.format: invalid locale "?!"`)
}
