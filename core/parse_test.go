package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func parse(t *testing.T, dialect, src string) *Program {
	t.Helper()
	program, err := Parse(src, NewRegistry().Get(dialect))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return program
}

func parseErr(t *testing.T, src string) *ParserError {
	t.Helper()
	_, err := Parse(src, NewRegistry().Get("myriad"))
	var perr *ParserError
	if !errors.As(err, &perr) {
		t.Fatalf("parse %q: want ParserError, got %v", src, err)
	}
	return perr
}

func TestParsePrecedence(t *testing.T) {
	program := parse(t, "myriad", "5 + 3 * 12 / 6;")
	want := &Program{Body: []Node{
		ExpressionStatement{Expression: BinaryExpression{
			Operator: OpPlus,
			Left:     NumericLiteral{Value: 5},
			Right: BinaryExpression{
				Operator: OpDiv,
				Left: BinaryExpression{
					Operator: OpMul,
					Left:     NumericLiteral{Value: 3},
					Right:    NumericLiteral{Value: 12},
				},
				Right: NumericLiteral{Value: 6},
			},
		}},
	}}
	if !reflect.DeepEqual(program, want) {
		t.Fatalf("got %s\nwant %s", program, want)
	}
}

func TestParseOperatorLevels(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a || b && c;", "(a || (b && c));"},
		{"a == b < c + 1;", "(a == (b < (c + 1)));"},
		{"-a * !b;", "((-a) * (!b));"},
		{"a = b = c;", "a = b = c;"},
		{"a += 2 * 3;", "a += (2 * 3);"},
		{"++i + 1;", "((++i) + 1);"},
		{"a.b()(c).d;", "a.b()(c).d;"},
		{"x[1 + 2].y;", "x[(1 + 2)].y;"},
	}
	for _, tt := range tests {
		if got := parse(t, "myriad", tt.src).String(); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	program := parse(t, "myriad", "a = b += 1;")
	outer := program.Body[0].(ExpressionStatement).Expression.(AssignmentExpression)
	if outer.Complex || outer.Operator != OpEqual {
		t.Fatalf("outer assignment %#v", outer)
	}
	inner, ok := outer.Right.(AssignmentExpression)
	if !ok || !inner.Complex || inner.Operator != OpPlusEqual {
		t.Fatalf("inner assignment %#v", outer.Right)
	}
}

func TestParseBlockVersusObject(t *testing.T) {
	tests := []struct {
		src    string
		object bool
	}{
		{"{ name, };", true},
		{"{ name };", true},
		{"{ name: 1, other: 2 };", true},
		{"{ let x = 1; }", false},
		{"{ x; }", false},
		{"{ x = 1; }", false},
		{"{}", false},
	}
	for _, tt := range tests {
		stmt := parse(t, "myriad", tt.src).Body[0]
		switch stmt.(type) {
		case BlockStatement:
			if tt.object {
				t.Errorf("%s: parsed as block", tt.src)
			}
		case ExpressionStatement:
			if !tt.object {
				t.Errorf("%s: parsed as object", tt.src)
			}
		default:
			t.Errorf("%s: unexpected %T", tt.src, stmt)
		}
	}
}

func TestParseObjectStatementNeedsSemicolon(t *testing.T) {
	perr := parseErr(t, "{ name, }")
	if !strings.Contains(perr.Message, "end of input") {
		t.Fatalf("got %q", perr.Message)
	}
}

func TestParseStatements(t *testing.T) {
	src := `
		const limit = 10;
		let empty;
		func add(a, b) { return a + b; }
		if x > 1 { y; } else if (x) z; else { w; }
		while (i < limit) { i += 1; continue; }
		for (let i = 0; i < 3; ++i) { break; }
		for (;;) {}
		try { throw "bad"; } catch (e) { e; }
		import "lib/util" util;
		export { add, limit, };
		return;
		;
	`
	program := parse(t, "myriad", src)
	want := []string{
		"VariableDeclaration", "VariableDeclaration", "FunctionDeclaration", "IfStatement",
		"WhileStatement", "ForStatement", "ForStatement", "TryCatchStatement",
		"ImportStatement", "ExportStatement", "ReturnStatement", "EmptyStatement",
	}
	if len(program.Body) != len(want) {
		t.Fatalf("got %d statements, want %d", len(program.Body), len(want))
	}
	for i, stmt := range program.Body {
		if got := reflect.TypeOf(stmt).Name(); got != want[i] {
			t.Errorf("statement %d: got %s, want %s", i, got, want[i])
		}
	}

	imp := program.Body[8].(ImportStatement)
	if imp.Path != "lib/util" || imp.Alias != "util" {
		t.Errorf("import %#v", imp)
	}
	exp := program.Body[9].(ExportStatement)
	if !reflect.DeepEqual(exp.Names, []string{"add", "limit"}) {
		t.Errorf("export %#v", exp)
	}
	if decl := program.Body[1].(VariableDeclaration); decl.Init != nil {
		t.Errorf("let without initializer got %v", decl.Init)
	}
}

func TestParseUpdateIsPrefixOnly(t *testing.T) {
	program := parse(t, "myriad", "--count;")
	upd := program.Body[0].(ExpressionStatement).Expression.(UpdateExpression)
	if !upd.Prefix || upd.Operator != OpMinusMinus || upd.Argument.Name != "count" {
		t.Fatalf("got %#v", upd)
	}

	parseErr(t, "count++;")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"const x;", "Missing initializer"},
		{"let = 1;", "expected Identifier"},
		{"1 = 2;", "Invalid left-hand side"},
		{"(1 + 2;", "expected CloseParen"},
		{"let x = ;", `Unexpected token: ";"`},
		{"func f(a b) {}", "expected Comma"},
		{"x", "Unexpected end of input"},
	}
	for _, tt := range tests {
		perr := parseErr(t, tt.src)
		if !strings.Contains(perr.Message, tt.want) {
			t.Errorf("%s: got %q, want it to contain %q", tt.src, perr.Message, tt.want)
		}
	}
}

func TestParserErrorPosition(t *testing.T) {
	perr := parseErr(t, "let a = 1;\nlet b = ;")
	if perr.Line != 2 || perr.Column != 9 {
		t.Fatalf("got %d:%d, want 2:9", perr.Line, perr.Column)
	}
	ctx := perr.WithContext("let a = 1;\nlet b = ;")
	if !strings.Contains(ctx, "let b = ;") || !strings.HasSuffix(ctx, "        ^") {
		t.Fatalf("context:\n%s", ctx)
	}
}

func TestParseDialectEquivalence(t *testing.T) {
	sources := map[string]string{
		"myriad": `
			let total = 0;
			for (let i = 0; i < 4; i += 1) {
				if (i == 2) { continue; }
				total += i;
			}
			func add(a, b) { return a + b; }
			const ok = !false && true || null;
			add(total, 10);`,
		"genz": `
			lit total be 0 rn
			grind (lit i be 0 rn i flop 4 rn i +be 1) {
				sus (i finna 2) { continue rn }
				total +be i rn
			}
			squad add(a, b) { clapback a + b rn }
			litaf ok be aint cap and nocap or ghost rn
			add(total, 10) rn`,
	}

	base := parse(t, "myriad", sources["myriad"])
	other := parse(t, "genz", sources["genz"])
	if !reflect.DeepEqual(base, other) {
		t.Fatalf("ASTs differ:\n%s\n---\n%s", base, other)
	}
}

func TestParseDecimalAndNumericMember(t *testing.T) {
	program := parse(t, "myriad", "m.0.1 + 2.5;")
	bin := program.Body[0].(ExpressionStatement).Expression.(BinaryExpression)
	if bin.Right != (NumericLiteral{Value: 2.5}) {
		t.Fatalf("right %#v", bin.Right)
	}
	outer := bin.Left.(MemberExpression)
	if outer.Computed || outer.Property != (NumericLiteral{Value: 1}) {
		t.Fatalf("outer member %#v", outer)
	}
}
