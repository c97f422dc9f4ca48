package core

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed dialects/*.yaml
var builtinDialects embed.FS

// DefaultDialectName is used whenever a dialect is requested by an unknown name.
const DefaultDialectName = "myriad"

// Canonical role names. Every dialect must spell every one of them.
var (
	keywordRoles = []string{
		"let", "const", "if", "else", "fun", "true", "false", "null", "while", "for",
		"return", "try", "catch", "throw", "break", "continue", "import", "export",
	}
	operatorRoles = []string{
		"plus", "minus", "mul", "div",
		"equal", "equalEqual", "notEqual",
		"plusEqual", "minusEqual", "mulEqual", "divEqual",
		"plusPlus", "minusMinus",
		"andAnd", "orOr", "not",
		"less", "great", "lessOrEqual", "greatOrEqual",
	}
	bracketRoles = []string{"parenOpen", "parenClose", "curlyOpen", "curlyClose", "sqrOpen", "sqrClose"}
	specialRoles = []string{"comma", "colon", "dot", "semiColon"}
)

// Dialect is a surface syntax: the spelling of every keyword, operator,
// bracket and special symbol, plus optional renames for native globals.
type Dialect struct {
	Name      string            `yaml:"name"`
	Extension string            `yaml:"extension"`
	Keywords  map[string]string `yaml:"keywords"`
	Operators map[string]string `yaml:"operators"`
	Brackets  map[string]string `yaml:"brackets"`
	Specials  map[string]string `yaml:"specials"`
	Globals   map[string]string `yaml:"globals"`

	once     sync.Once
	symbols  []symbol
	keywords map[string]TokenKind
	opRoles  map[string]Operator
}

type symbol struct {
	spelling string
	kind     TokenKind
	word     bool
}

type dialectError struct {
	dialect string
	reason  string
}

func (e dialectError) Error() string {
	return fmt.Sprintf("dialect %q: %s", e.dialect, e.reason)
}

// LoadDialect decodes a YAML dialect document and validates it.
func LoadDialect(r io.Reader) (*Dialect, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	d := &Dialect{}
	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("decode dialect: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDialectFile reads a dialect from disk. A missing name defaults to the
// file's base name.
func LoadDialectFile(path string) (*Dialect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := LoadDialect(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Validate checks that every canonical role has a non-empty spelling and
// that no spelling is claimed by two roles.
func (d *Dialect) Validate() error {
	tables := []struct {
		name  string
		table map[string]string
		roles []string
	}{
		{"keywords", d.Keywords, keywordRoles},
		{"operators", d.Operators, operatorRoles},
		{"brackets", d.Brackets, bracketRoles},
		{"specials", d.Specials, specialRoles},
	}

	seen := map[string]string{}
	for _, tbl := range tables {
		for _, role := range tbl.roles {
			spelling, ok := tbl.table[role]
			if !ok || spelling == "" {
				return dialectError{d.Name, fmt.Sprintf("%s.%s is not spelled", tbl.name, role)}
			}
			if other, dup := seen[spelling]; dup {
				return dialectError{d.Name, fmt.Sprintf("%q spells both %s and %s.%s", spelling, other, tbl.name, role)}
			}
			seen[spelling] = tbl.name + "." + role
		}

		extra := maps.Keys(tbl.table)
		slices.Sort(extra)
		for _, role := range extra {
			if !slices.Contains(tbl.roles, role) {
				return dialectError{d.Name, fmt.Sprintf("unknown role %s.%s", tbl.name, role)}
			}
		}
	}

	for _, role := range keywordRoles {
		if !isWord(d.Keywords[role]) {
			return dialectError{d.Name, fmt.Sprintf("keyword %s must be a word, got %q", role, d.Keywords[role])}
		}
	}
	return nil
}

// Global returns the name a native global is declared under in this dialect.
func (d *Dialect) Global(name string) string {
	if renamed, ok := d.Globals[name]; ok && renamed != "" {
		return renamed
	}
	return name
}

// Keyword returns the spelling of a keyword role.
func (d *Dialect) Keyword(role string) string {
	return d.Keywords[role]
}

// compile builds the lookup tables used by the tokenizer and parser.
func (d *Dialect) compile() {
	d.once.Do(func() {
		d.keywords = map[string]TokenKind{
			d.Keywords["let"]:      LET,
			d.Keywords["const"]:    CONST,
			d.Keywords["if"]:       IF,
			d.Keywords["else"]:     ELSE,
			d.Keywords["fun"]:      FUNCTION,
			d.Keywords["true"]:     BOOLEAN,
			d.Keywords["false"]:    BOOLEAN,
			d.Keywords["null"]:     NULL,
			d.Keywords["while"]:    WHILE,
			d.Keywords["for"]:      FOR,
			d.Keywords["return"]:   RETURN,
			d.Keywords["try"]:      TRY,
			d.Keywords["catch"]:    CATCH,
			d.Keywords["throw"]:    THROW,
			d.Keywords["break"]:    BREAK,
			d.Keywords["continue"]: CONTINUE,
			d.Keywords["import"]:   IMPORT,
			d.Keywords["export"]:   EXPORT,
		}

		add := func(spelling string, kind TokenKind) {
			d.symbols = append(d.symbols, symbol{spelling: spelling, kind: kind, word: isAlpha(spelling[0])})
		}

		add(d.Specials["comma"], COMMA)
		add(d.Specials["semiColon"], SEMICOLON)
		add(d.Specials["colon"], COLON)
		add(d.Specials["dot"], DOT)

		add(d.Brackets["parenOpen"], OPEN_PAREN)
		add(d.Brackets["parenClose"], CLOSE_PAREN)
		add(d.Brackets["curlyOpen"], OPEN_CURLY)
		add(d.Brackets["curlyClose"], CLOSE_CURLY)
		add(d.Brackets["sqrOpen"], OPEN_SQUARE)
		add(d.Brackets["sqrClose"], CLOSE_SQUARE)

		add(d.Operators["equalEqual"], EQUALITY_OPERATOR)
		add(d.Operators["notEqual"], EQUALITY_OPERATOR)
		add(d.Operators["equal"], SIMPLE_ASSIGNMENT)
		add(d.Operators["plusEqual"], COMPLEX_ASSIGNMENT)
		add(d.Operators["minusEqual"], COMPLEX_ASSIGNMENT)
		add(d.Operators["mulEqual"], COMPLEX_ASSIGNMENT)
		add(d.Operators["divEqual"], COMPLEX_ASSIGNMENT)
		add(d.Operators["plusPlus"], ADDITIVE_ONE_OPERATOR)
		add(d.Operators["minusMinus"], ADDITIVE_ONE_OPERATOR)
		add(d.Operators["plus"], ADDITIVE_OPERATOR)
		add(d.Operators["minus"], ADDITIVE_OPERATOR)
		add(d.Operators["mul"], MULTIPLICATIVE_OPERATOR)
		add(d.Operators["div"], MULTIPLICATIVE_OPERATOR)
		add(d.Operators["andAnd"], LOGICAL_AND)
		add(d.Operators["orOr"], LOGICAL_OR)
		add(d.Operators["not"], LOGICAL_NOT)
		add(d.Operators["lessOrEqual"], RELATIONAL_OPERATOR)
		add(d.Operators["greatOrEqual"], RELATIONAL_OPERATOR)
		add(d.Operators["less"], RELATIONAL_OPERATOR)
		add(d.Operators["great"], RELATIONAL_OPERATOR)

		// longest spelling first so "+=" is never read as "+" followed by "="
		slices.SortStableFunc(d.symbols, func(a, b symbol) bool {
			return len(a.spelling) > len(b.spelling)
		})

		d.opRoles = make(map[string]Operator, len(operatorRoles))
		for _, role := range operatorRoles {
			d.opRoles[d.Operators[role]] = Operator(role)
		}
	})
}

// operator maps a surface spelling back to its canonical operator role.
func (d *Dialect) operator(spelling string) Operator {
	d.compile()
	return d.opRoles[spelling]
}

// reserved reports whether word is spelled by a keyword or a word symbol.
func (d *Dialect) reserved(word string) bool {
	d.compile()
	if _, ok := d.keywords[word]; ok {
		return true
	}
	for _, sym := range d.symbols {
		if sym.word && sym.spelling == word {
			return true
		}
	}
	return false
}

// Registry holds the dialects known to a runner, by name and by file extension.
type Registry struct {
	byName map[string]*Dialect
	byExt  map[string]*Dialect
	names  []string
}

// NewRegistry returns a registry preloaded with the embedded dialects.
func NewRegistry() *Registry {
	r := &Registry{
		byName: map[string]*Dialect{},
		byExt:  map[string]*Dialect{},
	}

	entries, err := builtinDialects.ReadDir("dialects")
	if err != nil {
		panic(err)
	}
	for _, entry := range entries {
		f, err := builtinDialects.Open("dialects/" + entry.Name())
		if err != nil {
			panic(err)
		}
		d, err := LoadDialect(f)
		f.Close()
		if err != nil {
			panic(fmt.Sprintf("embedded %s: %s", entry.Name(), err))
		}
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a validated dialect, replacing any dialect of the same name.
func (r *Registry) Register(d *Dialect) error {
	if d.Name == "" {
		return dialectError{"", "missing name"}
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if prev, exists := r.byName[d.Name]; !exists {
		r.names = append(r.names, d.Name)
	} else if prev.Extension != "" && r.byExt[normalizeExt(prev.Extension)] == prev {
		delete(r.byExt, normalizeExt(prev.Extension))
	}
	r.byName[d.Name] = d
	if d.Extension != "" {
		r.byExt[normalizeExt(d.Extension)] = d
	}
	return nil
}

// Lookup returns the dialect registered under name.
func (r *Registry) Lookup(name string) (*Dialect, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Get returns the named dialect, or the default one if the name is unknown.
func (r *Registry) Get(name string) *Dialect {
	if d, ok := r.byName[name]; ok {
		return d
	}
	return r.byName[DefaultDialectName]
}

// ForExtension picks the dialect for a source file extension such as ".genzl".
func (r *Registry) ForExtension(ext string) (*Dialect, bool) {
	d, ok := r.byExt[ext]
	return d, ok
}

// Extensions lists the file extensions of the registered dialects in
// registration order.
func (r *Registry) Extensions() []string {
	exts := []string{}
	for _, name := range r.names {
		if d := r.byName[name]; d.Extension != "" {
			exts = append(exts, normalizeExt(d.Extension))
		}
	}
	return exts
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

// Names lists registered dialect names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordByte(ch byte) bool {
	return isAlpha(ch) || isDigit(ch) || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}
