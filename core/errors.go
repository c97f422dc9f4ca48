package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// ParserError is a lexical or syntax error at a 1-based line and column.
type ParserError struct {
	Message string
	Line    int
	Column  int
	// File is set for errors in imported modules.
	File string
}

func (e *ParserError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("Parse error in %s at [%d:%d]: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("Parse error at [%d:%d]: %s", e.Line, e.Column, e.Message)
}

// WithContext renders the error followed by the offending source line and a
// caret under the column.
func (e *ParserError) WithContext(source string) string {
	lines := strings.Split(source, "\n")
	if e.File != "" || e.Line < 1 || e.Line > len(lines) {
		return e.Error()
	}
	line := strings.TrimRight(lines[e.Line-1], "\r")

	prefix := []rune(line)
	if col := e.Column - 1; col < len(prefix) {
		prefix = prefix[:col]
	}
	pad := uniseg.StringWidth(strings.ReplaceAll(string(prefix), "\t", "    "))

	return fmt.Sprintf("%s\n%4d | %s\n     | %s^",
		e.Error(), e.Line, strings.ReplaceAll(line, "\t", "    "), strings.Repeat(" ", pad))
}

type ErrorKind int

const (
	UndefinedVariable ErrorKind = iota
	ConstantAssignment
	Redeclaration
	InvalidAssignment
	NullProperty
	UnknownProperty
	NotCallable
	NotImplemented
	IllegalReturn
	IllegalBreak
	IllegalContinue
	ModuleNotFound
	ImportCycle
	ReadOnly
)

var errorKindNames = [...]string{
	UndefinedVariable:  "UndefinedVariable",
	ConstantAssignment: "ConstantAssignment",
	Redeclaration:      "Redeclaration",
	InvalidAssignment:  "InvalidAssignment",
	NullProperty:       "NullProperty",
	UnknownProperty:    "UnknownProperty",
	NotCallable:        "NotCallable",
	NotImplemented:     "NotImplemented",
	IllegalReturn:      "IllegalReturn",
	IllegalBreak:       "IllegalBreak",
	IllegalContinue:    "IllegalContinue",
	ModuleNotFound:     "ModuleNotFound",
	ImportCycle:        "ImportCycle",
	ReadOnly:           "ReadOnly",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "Unknown"
}

// RuntimeError is a fatal evaluation error. It is never caught by try/catch.
type RuntimeError struct {
	Kind   ErrorKind
	Reason string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Runtime error (%s): %s", e.Kind, e.Reason)
}

func runtimeErrorf(kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a RuntimeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Kind == kind
}

// ThrowError carries a value raised by throw or by a failing native function.
type ThrowError struct {
	Value Value
}

func (e *ThrowError) Error() string {
	return "Uncaught " + e.Value.String()
}

// Throw wraps a message as a catchable string value.
func Throw(format string, args ...interface{}) *ThrowError {
	return &ThrowError{Value: StringValue(fmt.Sprintf(format, args...))}
}

type returnSignal struct {
	value Value
}

func (r returnSignal) Error() string {
	return "return"
}

type breakSignal struct{}

func (breakSignal) Error() string {
	return "break"
}

type continueSignal struct{}

func (continueSignal) Error() string {
	return "continue"
}

// escaped turns a control signal that left its boundary into a fatal error.
func escaped(err error) error {
	switch err.(type) {
	case returnSignal:
		return runtimeErrorf(IllegalReturn, "Cannot use return outside the function")
	case breakSignal:
		return runtimeErrorf(IllegalBreak, "Cannot use break outside the loop")
	case continueSignal:
		return runtimeErrorf(IllegalContinue, "Cannot use continue outside the loop")
	}
	return err
}
