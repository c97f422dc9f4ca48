package core

import (
	"errors"
	"fmt"
	"math"
)

func (in *Interpreter) eval(node Node, env *Environment) (Value, error) {
	switch n := node.(type) {
	case Program:
		return in.evalStatements(n.Body, env)
	case *Program:
		return in.evalStatements(n.Body, env)
	case BlockStatement:
		return in.evalStatements(n.Body, env)
	case *BlockStatement:
		return in.evalStatements(n.Body, env)
	case EmptyStatement:
		return Ignore, nil
	case ExpressionStatement:
		return in.eval(n.Expression, env)
	case VariableDeclaration:
		return in.evalVariableDeclaration(n, env)
	case FunctionDeclaration:
		fn := &FunctionValue{Name: n.Name, Params: n.Params, Body: n.Body, Env: env}
		if _, err := env.Declare(n.Name, fn, false); err != nil {
			return nil, err
		}
		return Ignore, nil
	case FunctionExpression:
		return &FunctionValue{Params: n.Params, Body: n.Body, Env: env}, nil
	case IfStatement:
		return in.evalIf(n, env)
	case WhileStatement:
		return in.evalWhile(n, env)
	case ForStatement:
		return in.evalFor(n, env)
	case TryCatchStatement:
		return in.evalTryCatch(n, env)
	case ThrowStatement:
		v, err := in.eval(n.Argument, env)
		if err != nil {
			return nil, err
		}
		return nil, &ThrowError{Value: v}
	case ReturnStatement:
		if n.Argument == nil {
			return nil, returnSignal{value: Null}
		}
		v, err := in.eval(n.Argument, env)
		if err != nil {
			return nil, err
		}
		return nil, returnSignal{value: v}
	case BreakStatement:
		return nil, breakSignal{}
	case ContinueStatement:
		return nil, continueSignal{}
	case ImportStatement:
		return in.evalImport(n, env)
	case ExportStatement:
		for _, name := range n.Names {
			if err := env.Export(name); err != nil {
				return nil, err
			}
		}
		return Ignore, nil

	case Identifier:
		return env.Lookup(n.Name)
	case NumericLiteral:
		return NumberValue(n.Value), nil
	case StringLiteral:
		return StringValue(n.Value), nil
	case BooleanLiteral:
		return BoolValue(n.Value), nil
	case NullLiteral:
		return Null, nil
	case ArrayExpression:
		return in.evalArray(n, env)
	case ObjectExpression:
		return in.evalObject(n, env)
	case BinaryExpression:
		left, err := in.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return binary(n.Operator, left, right)
	case LogicalExpression:
		return in.evalLogical(n, env)
	case UnaryExpression:
		return in.evalUnary(n, env)
	case UpdateExpression:
		return in.evalUpdate(n, env)
	case CallExpression:
		return in.evalCall(n, env)
	case MemberExpression:
		obj, err := in.eval(n.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := in.memberKey(n, env)
		if err != nil {
			return nil, err
		}
		return in.getProperty(obj, key, env)
	case AssignmentExpression:
		return in.evalAssignment(n, env)
	}

	return nil, runtimeErrorf(NotImplemented, "Cannot evaluate %T", node)
}

// evalStatements threads the last produced value through a statement list.
// Blocks do not open a scope of their own.
func (in *Interpreter) evalStatements(body []Node, env *Environment) (Value, error) {
	var last Value = Ignore
	for _, stmt := range body {
		v, err := in.eval(stmt, env)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (in *Interpreter) evalVariableDeclaration(n VariableDeclaration, env *Environment) (Value, error) {
	var value Value = Null
	if n.Init != nil {
		v, err := in.eval(n.Init, env)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := env.Declare(n.Name, value, n.Constant); err != nil {
		return nil, err
	}
	return Ignore, nil
}

func (in *Interpreter) evalIf(n IfStatement, env *Environment) (Value, error) {
	test, err := in.eval(n.Test, env)
	if err != nil {
		return nil, err
	}
	if test.Truthy() {
		return in.eval(n.Consequent, env)
	}
	if n.Alternate != nil {
		return in.eval(n.Alternate, env)
	}
	return Ignore, nil
}

// loopSignal reports whether err ends the loop (break) or only the
// iteration (continue). Any other error is returned as is.
func loopSignal(err error) (stop bool, rest error) {
	switch err.(type) {
	case breakSignal:
		return true, nil
	case continueSignal:
		return false, nil
	}
	return true, err
}

func (in *Interpreter) evalWhile(n WhileStatement, env *Environment) (Value, error) {
	for {
		test, err := in.eval(n.Test, env)
		if err != nil {
			return nil, err
		}
		if !test.Truthy() {
			return Ignore, nil
		}

		if _, err := in.eval(n.Body, NewEnvironment(env)); err != nil {
			stop, err := loopSignal(err)
			if err != nil {
				return nil, err
			}
			if stop {
				return Ignore, nil
			}
		}
	}
}

func (in *Interpreter) evalFor(n ForStatement, env *Environment) (Value, error) {
	loopEnv := NewEnvironment(env)
	if n.Init != nil {
		if _, err := in.eval(n.Init, loopEnv); err != nil {
			return nil, err
		}
	}

	for {
		if n.Test != nil {
			test, err := in.eval(n.Test, loopEnv)
			if err != nil {
				return nil, err
			}
			if !test.Truthy() {
				return Ignore, nil
			}
		}

		if _, err := in.eval(n.Body, NewEnvironment(loopEnv)); err != nil {
			stop, err := loopSignal(err)
			if err != nil {
				return nil, err
			}
			if stop {
				return Ignore, nil
			}
		}

		// continue lands here too, so the update still runs after it
		if n.Update != nil {
			if _, err := in.eval(n.Update, loopEnv); err != nil {
				return nil, err
			}
		}
	}
}

func (in *Interpreter) evalTryCatch(n TryCatchStatement, env *Environment) (Value, error) {
	v, err := in.eval(n.Body, env)
	if err == nil {
		return v, nil
	}

	var thrown *ThrowError
	if !errors.As(err, &thrown) {
		return nil, err
	}

	catchEnv := NewEnvironment(env)
	if _, err := catchEnv.Declare(n.Param, thrown.Value, true); err != nil {
		return nil, err
	}
	return in.eval(n.Handler, catchEnv)
}

func (in *Interpreter) evalArray(n ArrayExpression, env *Environment) (Value, error) {
	elements := make([]Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		v, err := in.eval(el, env)
		if err != nil {
			return nil, err
		}
		elements = append(elements, v)
	}
	return NewArray(elements...), nil
}

func (in *Interpreter) evalObject(n ObjectExpression, env *Environment) (Value, error) {
	obj := NewObject()
	for _, prop := range n.Properties {
		v, err := in.eval(prop.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(prop.Key, v)
	}
	return obj, nil
}

// evalLogical evaluates both operands before combining them.
func (in *Interpreter) evalLogical(n LogicalExpression, env *Environment) (Value, error) {
	left, err := in.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case OpAndAnd:
		return BoolValue(left.Truthy() && right.Truthy()), nil
	case OpOrOr:
		return BoolValue(left.Truthy() || right.Truthy()), nil
	}
	return nil, runtimeErrorf(NotImplemented, "Unknown logical operator %q", n.Operator)
}

func (in *Interpreter) evalUnary(n UnaryExpression, env *Environment) (Value, error) {
	arg, err := in.eval(n.Argument, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case OpNot:
		return BoolValue(!arg.Truthy()), nil
	case OpMinus:
		if num, ok := arg.(NumberValue); ok {
			return -num, nil
		}
		return Null, nil
	case OpPlus:
		if num, ok := arg.(NumberValue); ok {
			return num, nil
		}
		return Null, nil
	}
	return nil, runtimeErrorf(NotImplemented, "Unknown unary operator %q", n.Operator)
}

func (in *Interpreter) evalUpdate(n UpdateExpression, env *Environment) (Value, error) {
	old, err := env.Lookup(n.Argument.Name)
	if err != nil {
		return nil, err
	}
	// only numbers step; anything else reads as null and stays bound
	if _, ok := old.(NumberValue); !ok {
		return Null, nil
	}
	updated, err := binary(n.Operator.desugared(), old, NumberValue(1))
	if err != nil {
		return nil, err
	}
	if _, err := env.Assign(n.Argument.Name, updated); err != nil {
		return nil, err
	}
	if n.Prefix {
		return updated, nil
	}
	return old, nil
}

func (in *Interpreter) evalAssignment(n AssignmentExpression, env *Environment) (Value, error) {
	switch target := n.Left.(type) {
	case Identifier:
		var current Value
		if n.Complex {
			v, err := env.Lookup(target.Name)
			if err != nil {
				return nil, err
			}
			current = v
		}
		value, err := in.assignedValue(n, current, env)
		if err != nil {
			return nil, err
		}
		return env.Assign(target.Name, value)

	case MemberExpression:
		obj, err := in.eval(target.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := in.memberKey(target, env)
		if err != nil {
			return nil, err
		}
		var current Value
		if n.Complex {
			if current, err = in.getProperty(obj, key, env); err != nil {
				return nil, err
			}
		}
		value, err := in.assignedValue(n, current, env)
		if err != nil {
			return nil, err
		}
		if err := setProperty(obj, key, value); err != nil {
			return nil, err
		}
		return value, nil
	}

	return nil, runtimeErrorf(InvalidAssignment, "Invalid assignment target %s", n.Left)
}

// assignedValue evaluates the right-hand side, applying the compound
// operator to current when the assignment is complex.
func (in *Interpreter) assignedValue(n AssignmentExpression, current Value, env *Environment) (Value, error) {
	right, err := in.eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	if !n.Complex {
		return right, nil
	}
	return binary(n.Operator.desugared(), current, right)
}

func (in *Interpreter) evalCall(n CallExpression, env *Environment) (Value, error) {
	args := make([]Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		v, err := in.eval(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	callee, err := in.eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	if _, ok := callee.(NullValue); ok {
		return nil, runtimeErrorf(NotCallable, "%s is not a function", n.Callee)
	}
	return in.Call(callee, args, env)
}

// Call invokes a function value. Native functions receive the caller's
// environment; user functions run in a fresh scope under their closure.
func (in *Interpreter) Call(callee Value, args []Value, env *Environment) (Value, error) {
	switch fn := callee.(type) {
	case *NativeFunctionValue:
		v, err := fn.Fn(args, env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return Null, nil
		}
		return v, nil

	case *FunctionValue:
		scope := NewEnvironment(fn.Env)
		for i, param := range fn.Params {
			if _, err := scope.Declare(param, Arg(args, i), false); err != nil {
				return nil, err
			}
		}

		v, err := in.eval(fn.Body, scope)
		if err != nil {
			var ret returnSignal
			if errors.As(err, &ret) {
				return ret.value, nil
			}
			return nil, escaped(err)
		}
		if _, ok := v.(IgnoreValue); ok {
			return Null, nil
		}
		return v, nil
	}

	return nil, runtimeErrorf(NotCallable, "%s is not a function", describe(callee))
}

func describe(v Value) string {
	switch v := v.(type) {
	case StringValue:
		return DisplayQuote(string(v))
	case IgnoreValue:
		return "nothing"
	}
	return fmt.Sprintf("%s %s", v.Type(), v)
}

func binary(op Operator, left, right Value) (Value, error) {
	switch op {
	case OpEqualEqual:
		return BoolValue(left.Eq(right)), nil
	case OpNotEqual:
		return BoolValue(!left.Eq(right)), nil
	case OpLess, OpGreat, OpLessOrEqual, OpGreatOrEqual:
		return compare(op, left, right), nil
	case OpPlus, OpMinus, OpMul, OpDiv:
		return arithmetic(op, left, right), nil
	}
	return nil, runtimeErrorf(NotImplemented, "Unknown binary operator %q", op)
}

// compare orders two numbers or two strings. Other pairs never compare.
func compare(op Operator, left, right Value) Value {
	var c int
	switch l := left.(type) {
	case NumberValue:
		r, ok := right.(NumberValue)
		if !ok || math.IsNaN(float64(l)) || math.IsNaN(float64(r)) {
			return BoolValue(false)
		}
		c = cmp(float64(l) < float64(r), float64(l) > float64(r))
	case StringValue:
		r, ok := right.(StringValue)
		if !ok {
			return BoolValue(false)
		}
		c = cmp(l < r, l > r)
	default:
		return BoolValue(false)
	}

	switch op {
	case OpLess:
		return BoolValue(c < 0)
	case OpGreat:
		return BoolValue(c > 0)
	case OpLessOrEqual:
		return BoolValue(c <= 0)
	case OpGreatOrEqual:
		return BoolValue(c >= 0)
	}
	return Null
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// arithmetic is defined on two numbers, or two strings for plus. Any other
// combination yields null.
func arithmetic(op Operator, left, right Value) Value {
	if l, ok := left.(StringValue); ok && op == OpPlus {
		if r, ok := right.(StringValue); ok {
			return l + r
		}
		return Null
	}

	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return Null
	}

	switch op {
	case OpPlus:
		return l + r
	case OpMinus:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		return l / r
	}
	return Null
}
