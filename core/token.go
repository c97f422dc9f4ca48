package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type TokenKind int

const (
	UNKNOWN TokenKind = iota
	EOF

	// punctuation
	COMMA
	SEMICOLON
	COLON
	DOT
	OPEN_PAREN
	CLOSE_PAREN
	OPEN_CURLY
	CLOSE_CURLY
	OPEN_SQUARE
	CLOSE_SQUARE

	// operators, by precedence class
	SIMPLE_ASSIGNMENT
	COMPLEX_ASSIGNMENT
	LOGICAL_OR
	LOGICAL_AND
	EQUALITY_OPERATOR
	RELATIONAL_OPERATOR
	ADDITIVE_OPERATOR
	MULTIPLICATIVE_OPERATOR
	ADDITIVE_ONE_OPERATOR
	LOGICAL_NOT

	// keywords
	LET
	CONST
	IF
	ELSE
	FUNCTION
	WHILE
	FOR
	RETURN
	TRY
	CATCH
	THROW
	BREAK
	CONTINUE
	IMPORT
	EXPORT

	// literals
	IDENTIFIER
	NUMBER
	STRING
	BOOLEAN
	NULL
)

var kindNames = map[TokenKind]string{
	UNKNOWN:                 "Unknown",
	EOF:                     "EOF",
	COMMA:                   "Comma",
	SEMICOLON:               "Semicolon",
	COLON:                   "Colon",
	DOT:                     "Dot",
	OPEN_PAREN:              "OpenParen",
	CLOSE_PAREN:             "CloseParen",
	OPEN_CURLY:              "OpenCurly",
	CLOSE_CURLY:             "CloseCurly",
	OPEN_SQUARE:             "OpenSquare",
	CLOSE_SQUARE:            "CloseSquare",
	SIMPLE_ASSIGNMENT:       "SimpleAssignment",
	COMPLEX_ASSIGNMENT:      "ComplexAssignment",
	LOGICAL_OR:              "LogicalOr",
	LOGICAL_AND:             "LogicalAnd",
	EQUALITY_OPERATOR:       "EqualityOperator",
	RELATIONAL_OPERATOR:     "RelationalOperator",
	ADDITIVE_OPERATOR:       "AdditiveOperator",
	MULTIPLICATIVE_OPERATOR: "MultiplicativeOperator",
	ADDITIVE_ONE_OPERATOR:   "AdditiveOneOperator",
	LOGICAL_NOT:             "LogicalNot",
	LET:                     "Let",
	CONST:                   "Const",
	IF:                      "If",
	ELSE:                    "Else",
	FUNCTION:                "Function",
	WHILE:                   "While",
	FOR:                     "For",
	RETURN:                  "Return",
	TRY:                     "Try",
	CATCH:                   "Catch",
	THROW:                   "Throw",
	BREAK:                   "Break",
	CONTINUE:                "Continue",
	IMPORT:                  "Import",
	EXPORT:                  "Export",
	IDENTIFIER:              "Identifier",
	NUMBER:                  "Number",
	STRING:                  "String",
	BOOLEAN:                 "Boolean",
	NULL:                    "Null",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether the kind is spelled by a dialect keyword.
func (k TokenKind) IsKeyword() bool {
	return (k >= LET && k <= EXPORT) || k == BOOLEAN || k == NULL
}

// IsOperator reports whether the kind is one of the operator classes.
func (k TokenKind) IsOperator() bool {
	return k >= SIMPLE_ASSIGNMENT && k <= LOGICAL_NOT
}

// Position is a 1-based line and column (in runes) within a source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("[%d:%d]", p.Line, p.Column)
}

type Token struct {
	Kind    TokenKind
	Payload string
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case IDENTIFIER:
		return fmt.Sprintf("var(%s)", t.Payload)
	case STRING:
		return fmt.Sprintf("string(%s)", t.Payload)
	case NUMBER:
		return fmt.Sprintf("number(%s)", t.Payload)
	default:
		return t.Payload
	}
}

// tokenizerState is everything needed to rewind the tokenizer.
type tokenizerState struct {
	cursor   int
	start    int
	afterDot bool
}

// Tokenizer lazily splits source text into tokens using a dialect's spellings.
type Tokenizer struct {
	dialect  *Dialect
	source   string
	cursor   int
	start    int
	afterDot bool
}

func NewTokenizer(dialect *Dialect) *Tokenizer {
	dialect.compile()
	return &Tokenizer{dialect: dialect}
}

// Init resets the tokenizer to the start of source.
func (t *Tokenizer) Init(source string) {
	t.source = source
	t.cursor = 0
	t.start = 0
	t.afterDot = false
}

func (t *Tokenizer) isEOF() bool {
	return t.cursor >= len(t.source)
}

func (t *Tokenizer) save() tokenizerState {
	return tokenizerState{cursor: t.cursor, start: t.start, afterDot: t.afterDot}
}

func (t *Tokenizer) restore(s tokenizerState) {
	t.cursor = s.cursor
	t.start = s.start
	t.afterDot = s.afterDot
}

// Span returns the byte offsets of the most recently returned token.
func (t *Tokenizer) Span() (start, end int) {
	return t.start, t.cursor
}

// CursorInfo returns the position of the cursor, just past the last token.
func (t *Tokenizer) CursorInfo() Position {
	return t.positionAt(t.cursor)
}

// TokenInfo returns the position where the last token started.
func (t *Tokenizer) TokenInfo() Position {
	return t.positionAt(t.start)
}

func (t *Tokenizer) positionAt(offset int) Position {
	if offset > len(t.source) {
		offset = len(t.source)
	}
	before := t.source[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{Line: line, Column: utf8.RuneCountInString(before[lineStart:]) + 1}
}

// skip consumes whitespace, line comments and block comments.
func (t *Tokenizer) skip() {
	for !t.isEOF() {
		rest := t.source[t.cursor:]
		switch {
		case rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r' || rest[0] == '\f' || rest[0] == '\v':
			t.cursor++
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				t.cursor = len(t.source)
			} else {
				t.cursor += end
			}
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				// an unterminated block comment is not a comment
				return
			}
			t.cursor += end + 4
		default:
			return
		}
	}
}

func (t *Tokenizer) wordAt(offset int) string {
	end := offset
	for end < len(t.source) && isWordByte(t.source[end]) {
		end++
	}
	return t.source[offset:end]
}

func (t *Tokenizer) digitsAt(offset int) int {
	end := offset
	for end < len(t.source) && isDigit(t.source[end]) {
		end++
	}
	return end
}

func (t *Tokenizer) emit(kind TokenKind, end int) Token {
	tok := Token{Kind: kind, Payload: t.source[t.start:end]}
	t.cursor = end
	t.afterDot = kind == DOT
	return tok
}

// Next returns the next token. Once the end is reached it keeps returning EOF.
func (t *Tokenizer) Next() (Token, error) {
	t.skip()
	t.start = t.cursor

	if t.isEOF() {
		t.afterDot = false
		return Token{Kind: EOF, Payload: "EOF"}, nil
	}

	rest := t.source[t.cursor:]

	var word string
	if isWordByte(rest[0]) {
		word = t.wordAt(t.cursor)
	}

	for _, sym := range t.dialect.symbols {
		if sym.word {
			if word == sym.spelling {
				return t.emit(sym.kind, t.cursor+len(word)), nil
			}
		} else if strings.HasPrefix(rest, sym.spelling) {
			return t.emit(sym.kind, t.cursor+len(sym.spelling)), nil
		}
	}

	if isDigit(rest[0]) {
		end := t.digitsAt(t.cursor)
		// a decimal part is only read outside member access, so a.0.1 stays two indexes
		if !t.afterDot && end+1 < len(t.source) && t.source[end] == '.' && isDigit(t.source[end+1]) {
			end = t.digitsAt(end + 1)
		}
		return t.emit(NUMBER, end), nil
	}

	if word != "" {
		if kind, ok := t.dialect.keywords[word]; ok {
			return t.emit(kind, t.cursor+len(word)), nil
		}
		return t.emit(IDENTIFIER, t.cursor+len(word)), nil
	}

	if quote := rest[0]; quote == '"' || quote == '\'' || quote == '`' {
		if end := strings.IndexByte(rest[1:], quote); end >= 0 {
			tok := Token{Kind: STRING, Payload: rest[1 : end+1]}
			t.cursor += end + 2
			t.afterDot = false
			return tok, nil
		}
	}

	ch, _ := utf8.DecodeRuneInString(rest)
	pos := t.positionAt(t.cursor)
	return Token{}, &ParserError{
		Message: fmt.Sprintf("Unexpected token: %q", string(ch)),
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

// Tokenize reads every token up to and including EOF.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	tokens := []Token{}
	for {
		tok, err := t.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}
