package core

import (
	"strconv"
	"strings"
)

// Operator is the canonical role of an operator, independent of any dialect.
type Operator string

const (
	OpPlus         Operator = "plus"
	OpMinus        Operator = "minus"
	OpMul          Operator = "mul"
	OpDiv          Operator = "div"
	OpEqual        Operator = "equal"
	OpEqualEqual   Operator = "equalEqual"
	OpNotEqual     Operator = "notEqual"
	OpPlusEqual    Operator = "plusEqual"
	OpMinusEqual   Operator = "minusEqual"
	OpMulEqual     Operator = "mulEqual"
	OpDivEqual     Operator = "divEqual"
	OpPlusPlus     Operator = "plusPlus"
	OpMinusMinus   Operator = "minusMinus"
	OpAndAnd       Operator = "andAnd"
	OpOrOr         Operator = "orOr"
	OpNot          Operator = "not"
	OpLess         Operator = "less"
	OpGreat        Operator = "great"
	OpLessOrEqual  Operator = "lessOrEqual"
	OpGreatOrEqual Operator = "greatOrEqual"
)

var canonicalSpelling = map[Operator]string{
	OpPlus: "+", OpMinus: "-", OpMul: "*", OpDiv: "/",
	OpEqual: "=", OpEqualEqual: "==", OpNotEqual: "!=",
	OpPlusEqual: "+=", OpMinusEqual: "-=", OpMulEqual: "*=", OpDivEqual: "/=",
	OpPlusPlus: "++", OpMinusMinus: "--",
	OpAndAnd: "&&", OpOrOr: "||", OpNot: "!",
	OpLess: "<", OpGreat: ">", OpLessOrEqual: "<=", OpGreatOrEqual: ">=",
}

func (op Operator) String() string {
	if s, ok := canonicalSpelling[op]; ok {
		return s
	}
	return string(op)
}

// desugared returns the binary operator a compound assignment applies.
func (op Operator) desugared() Operator {
	switch op {
	case OpPlusEqual, OpPlusPlus:
		return OpPlus
	case OpMinusEqual, OpMinusMinus:
		return OpMinus
	case OpMulEqual:
		return OpMul
	case OpDivEqual:
		return OpDiv
	}
	return op
}

// Node is any syntax tree node. String renders it as canonical source.
type Node interface {
	String() string
	node()
}

type Program struct {
	Body []Node
}

type BlockStatement struct {
	Body []Node
}

type EmptyStatement struct{}

type ExpressionStatement struct {
	Expression Node
}

type VariableDeclaration struct {
	Name     string
	Init     Node
	Constant bool
}

type FunctionDeclaration struct {
	Name   string
	Params []string
	Body   *BlockStatement
}

type FunctionExpression struct {
	Params []string
	Body   *BlockStatement
}

type IfStatement struct {
	Test       Node
	Consequent Node
	Alternate  Node
}

type WhileStatement struct {
	Test Node
	Body Node
}

type ForStatement struct {
	Init   Node
	Test   Node
	Update Node
	Body   Node
}

type TryCatchStatement struct {
	Body    *BlockStatement
	Param   string
	Handler *BlockStatement
}

type ThrowStatement struct {
	Argument Node
}

type ReturnStatement struct {
	Argument Node
}

type BreakStatement struct{}

type ContinueStatement struct{}

type ImportStatement struct {
	Path  string
	Alias string
}

type ExportStatement struct {
	Names []string
}

type Identifier struct {
	Name string
}

type NumericLiteral struct {
	Value float64
}

type StringLiteral struct {
	Value string
}

type BooleanLiteral struct {
	Value bool
}

type NullLiteral struct{}

type BinaryExpression struct {
	Operator Operator
	Left     Node
	Right    Node
}

type LogicalExpression struct {
	Operator Operator
	Left     Node
	Right    Node
}

type UnaryExpression struct {
	Operator Operator
	Argument Node
}

type UpdateExpression struct {
	Operator Operator
	Argument *Identifier
	Prefix   bool
}

type CallExpression struct {
	Callee    Node
	Arguments []Node
}

// MemberExpression is obj.name (Identifier property), obj.0 (NumericLiteral)
// or obj[expr] (Computed).
type MemberExpression struct {
	Object   Node
	Property Node
	Computed bool
}

type AssignmentExpression struct {
	Operator Operator
	Left     Node
	Right    Node
	Complex  bool
}

type ArrayExpression struct {
	Elements []Node
}

type Property struct {
	Key       string
	Value     Node
	Shorthand bool
}

type ObjectExpression struct {
	Properties []Property
}

func (Program) node()              {}
func (BlockStatement) node()       {}
func (EmptyStatement) node()       {}
func (ExpressionStatement) node()  {}
func (VariableDeclaration) node()  {}
func (FunctionDeclaration) node()  {}
func (FunctionExpression) node()   {}
func (IfStatement) node()          {}
func (WhileStatement) node()       {}
func (ForStatement) node()         {}
func (TryCatchStatement) node()    {}
func (ThrowStatement) node()       {}
func (ReturnStatement) node()      {}
func (BreakStatement) node()       {}
func (ContinueStatement) node()    {}
func (ImportStatement) node()      {}
func (ExportStatement) node()      {}
func (Identifier) node()           {}
func (NumericLiteral) node()       {}
func (StringLiteral) node()        {}
func (BooleanLiteral) node()       {}
func (NullLiteral) node()          {}
func (BinaryExpression) node()     {}
func (LogicalExpression) node()    {}
func (UnaryExpression) node()      {}
func (UpdateExpression) node()     {}
func (CallExpression) node()       {}
func (MemberExpression) node()     {}
func (AssignmentExpression) node() {}
func (ArrayExpression) node()      {}
func (ObjectExpression) node()     {}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

func (n Program) String() string {
	return joinNodes(n.Body, "\n")
}

func (n BlockStatement) String() string {
	if len(n.Body) == 0 {
		return "{}"
	}
	return "{\n" + indent(joinNodes(n.Body, "\n")) + "\n}"
}

func (n EmptyStatement) String() string {
	return ";"
}

func (n ExpressionStatement) String() string {
	return n.Expression.String() + ";"
}

func (n VariableDeclaration) String() string {
	keyword := "let"
	if n.Constant {
		keyword = "const"
	}
	if n.Init == nil {
		return keyword + " " + n.Name + ";"
	}
	return keyword + " " + n.Name + " = " + n.Init.String() + ";"
}

func (n FunctionDeclaration) String() string {
	return "func " + n.Name + "(" + strings.Join(n.Params, ", ") + ") " + n.Body.String()
}

func (n FunctionExpression) String() string {
	return "func(" + strings.Join(n.Params, ", ") + ") " + n.Body.String()
}

func (n IfStatement) String() string {
	s := "if (" + n.Test.String() + ") " + n.Consequent.String()
	if n.Alternate != nil {
		s += " else " + n.Alternate.String()
	}
	return s
}

func (n WhileStatement) String() string {
	return "while (" + n.Test.String() + ") " + n.Body.String()
}

func optional(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func (n ForStatement) String() string {
	init := ";"
	if n.Init != nil {
		init = n.Init.String()
		if _, isDecl := n.Init.(VariableDeclaration); !isDecl {
			init += ";"
		}
	}
	return "for (" + init + " " + optional(n.Test) + "; " + optional(n.Update) + ") " + n.Body.String()
}

func (n TryCatchStatement) String() string {
	return "try " + n.Body.String() + " catch (" + n.Param + ") " + n.Handler.String()
}

func (n ThrowStatement) String() string {
	return "throw " + n.Argument.String() + ";"
}

func (n ReturnStatement) String() string {
	if n.Argument == nil {
		return "return;"
	}
	return "return " + n.Argument.String() + ";"
}

func (n BreakStatement) String() string {
	return "break;"
}

func (n ContinueStatement) String() string {
	return "continue;"
}

func (n ImportStatement) String() string {
	return "import " + quoteString(n.Path) + " " + n.Alias + ";"
}

func (n ExportStatement) String() string {
	return "export { " + strings.Join(n.Names, ", ") + " };"
}

func (n Identifier) String() string {
	return n.Name
}

func (n NumericLiteral) String() string {
	return formatNumber(n.Value)
}

func (n StringLiteral) String() string {
	return quoteString(n.Value)
}

func (n BooleanLiteral) String() string {
	return strconv.FormatBool(n.Value)
}

func (n NullLiteral) String() string {
	return "null"
}

// operand wraps nodes that would otherwise bind differently when re-parsed.
func operand(n Node) string {
	switch n.(type) {
	case AssignmentExpression, UnaryExpression, UpdateExpression:
		return "(" + n.String() + ")"
	}
	return n.String()
}

func (n BinaryExpression) String() string {
	return "(" + operand(n.Left) + " " + n.Operator.String() + " " + operand(n.Right) + ")"
}

func (n LogicalExpression) String() string {
	return "(" + operand(n.Left) + " " + n.Operator.String() + " " + operand(n.Right) + ")"
}

func (n UnaryExpression) String() string {
	return n.Operator.String() + operand(n.Argument)
}

func (n UpdateExpression) String() string {
	return n.Operator.String() + n.Argument.String()
}

func (n CallExpression) String() string {
	return n.Callee.String() + "(" + joinNodes(n.Arguments, ", ") + ")"
}

func (n MemberExpression) String() string {
	if n.Computed {
		return n.Object.String() + "[" + n.Property.String() + "]"
	}
	return n.Object.String() + "." + n.Property.String()
}

func (n AssignmentExpression) String() string {
	return n.Left.String() + " " + n.Operator.String() + " " + n.Right.String()
}

func (n ArrayExpression) String() string {
	return "[" + joinNodes(n.Elements, ", ") + "]"
}

func (n ObjectExpression) String() string {
	if len(n.Properties) == 0 {
		return "{}"
	}
	parts := make([]string, len(n.Properties))
	for i, prop := range n.Properties {
		if prop.Shorthand {
			parts[i] = prop.Key
		} else {
			parts[i] = prop.Key + ": " + prop.Value.String()
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
