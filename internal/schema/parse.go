package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// Container type names of the plain-text schema syntax.
const (
	TypeStruct = "Struct"
	TypeList   = "List"
)

// DefaultColumn names the column of a schema that is a lone scalar type.
const DefaultColumn = "value"

// Indent is the indentation Text writes per nesting level.
const Indent = "    "

var (
	ErrSyntax          = errors.New("unexpected schema content")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrPathRenaming    = errors.New("a Struct or List field cannot be renamed")
	ErrUnknownDataType = errors.New("unknown data type")
)

// dataTypes maps lower-cased type names, including the shorthands, to the
// name Parse records.
var dataTypes = map[string]string{
	"struct":  TypeStruct,
	"list":    TypeList,
	"array":   TypeList,
	"boolean": TypeBoolean,
	"bool":    TypeBoolean,
	"null":    TypeNull,
	"unknown": TypeUnknown,
	"string":  TypeString,
	"utf8":    "Utf8",
	"float32": "Float32",
	"float64": TypeFloat64,
	"float":   TypeFloat64,
	"real":    TypeFloat64,
	"int8":    "Int8",
	"int16":   "Int16",
	"int32":   "Int32",
	"int64":   TypeInt64,
	"int":     TypeInt64,
	"integer": TypeInt64,
	"uint8":   "UInt8",
	"uint16":  "UInt16",
	"uint32":  "UInt32",
	"uint64":  "UInt64",
}

// Field is one entry of a parsed schema. Name is empty for a list element
// and for a lone type at the top level.
type Field struct {
	Name   string
	Rename string
	Type   string
	Fields []*Field // Struct members
	Elem   *Field   // List element; nil for List()
	Path   pathid.Path
}

// IsContainer reports whether f is a Struct or a List.
func (f *Field) IsContainer() bool { return f.Type == TypeStruct || f.Type == TypeList }

// Column is a leaf of the schema: one column of the flattened output.
type Column struct {
	Name  string
	Type  string
	Path  pathid.Path
	Field *Field
}

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typeName   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
)

// Selector returns the jq-style path of the column within a record, e.g.
// ".payload.lines[].product". A lone scalar schema selects ".".
func (c Column) Selector() string {
	if c.Path.IsRoot() {
		return "."
	}
	var b strings.Builder
	for _, s := range c.Path.Steps() {
		switch {
		case s.Item && b.Len() == 0:
			b.WriteString(".[]")
		case s.Item:
			b.WriteString("[]")
		case identifier.MatchString(s.Key):
			b.WriteString("." + s.Key)
		default:
			b.WriteString("." + jsonvalue.Quote(s.Key))
		}
	}
	return b.String()
}

// Schema is the parsed form of the plain-text schema syntax that the schema
// view renders. Columns lists the leaves in document order under their
// final names.
type Schema struct {
	Fields  []*Field
	Columns []Column
}

// ParseError reports schema text that cannot be parsed. Err is one of
// ErrSyntax, ErrDuplicateColumn, ErrPathRenaming or ErrUnknownDataType,
// possibly wrapped with detail.
type ParseError struct {
	Line   int    // 1-based
	Column int    // 1-based, in bytes
	Token  string // offending text; empty at end of input
	Err    error
	source string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("schema line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("schema line %d, column %d: %v: %q", e.Line, e.Column, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Excerpt returns the lines leading up to the error, numbered, with the
// offending token underlined:
//
//	   1 │ headers: Struct(
//	   2 │     timestamp: Foo
//	     │                ^^^
func (e *ParseError) Excerpt() string {
	const contextLines = 4
	lines := strings.Split(e.source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}
	var b strings.Builder
	for n := max(1, e.Line-contextLines); n <= e.Line; n++ {
		fmt.Fprintf(&b, "%4d │ %s\n", n, lines[n-1])
	}
	line := lines[e.Line-1]
	col := min(max(e.Column-1, 0), len(line))
	carets := max(1, runewidth.StringWidth(e.Token))
	fmt.Fprintf(&b, "     │ %s%s\n", strings.Repeat(" ", runewidth.StringWidth(line[:col])), strings.Repeat("^", carets))
	return b.String()
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokEquals
	tokColon
	tokOpen
	tokClose
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

func isDelimiter(r rune) bool {
	return strings.ContainsRune("=:,([{<)]}>", r)
}

// lex splits text into tokens. Commas and whitespace separate tokens and
// are otherwise ignored. Any of ( [ { < opens a container and any of
// ) ] } > closes one.
func lex(text string) []token {
	var toks []token
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == ',' || unicode.IsSpace(r):
			i += size
		case r == '=':
			toks = append(toks, token{kind: tokEquals, text: "=", offset: i})
			i += size
		case r == ':':
			toks = append(toks, token{kind: tokColon, text: ":", offset: i})
			i += size
		case strings.ContainsRune("([{<", r):
			toks = append(toks, token{kind: tokOpen, text: string(r), offset: i})
			i += size
		case strings.ContainsRune(")]}>", r):
			toks = append(toks, token{kind: tokClose, text: string(r), offset: i})
			i += size
		default:
			start := i
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if unicode.IsSpace(r) || isDelimiter(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokName, text: text[start:i], offset: start})
		}
	}
	return append(toks, token{kind: tokEOF, offset: len(text)})
}

type scope int

const (
	scopeTop scope = iota
	scopeStruct
	scopeList
)

type parser struct {
	source  string
	toks    []token
	pos     int
	columns map[string]bool
	schema  *Schema
	loneTop bool
}

// Parse reads the plain-text schema syntax:
//
//	headers: Struct(
//	    timestamp: Int64
//	    source=origin: String
//	)
//	lines: List(
//	    Struct(
//	        product: Int64
//	    )
//	)
//
// A field is name: Type or name=column: Type. A lone Type is the element of
// a List, or the type of the whole record at the top level. Type names are
// case-insensitive and include Int8 to Int64, UInt8 to UInt64, Float32,
// Float64, Utf8 and the shorthands int, integer, float, real and string.
// Delimiters may be any of (), [], {} or <>, and commas are optional.
//
// Only leaves can be renamed, since only leaves become columns. A Struct or
// List may carry a rename equal to its flattened path, which is what the
// schema view prints for colliding container keys; any other rename is
// ErrPathRenaming. Text of a parsed schema reproduces the schema view's
// plain text for documents whose keys hold no whitespace or delimiter
// characters.
func Parse(text string) (*Schema, error) {
	p := &parser{
		source:  text,
		toks:    lex(text),
		columns: make(map[string]bool),
		schema:  &Schema{},
	}
	fields, err := p.entries(scopeTop, pathid.Root(""), "")
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorAt(t, fmt.Errorf("%w: unmatched closing delimiter", ErrSyntax))
	}
	p.schema.Fields = fields
	return p.schema, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorAt(t, fmt.Errorf("%w: expected %s", ErrSyntax, what))
	}
	return t, nil
}

func (p *parser) errorAt(t token, err error) *ParseError {
	before := p.source[:t.offset]
	line := strings.Count(before, "\n") + 1
	col := t.offset - strings.LastIndexByte(before, '\n')
	return &ParseError{Line: line, Column: col, Token: t.text, Err: err, source: p.source}
}

// entries parses fields until the closing delimiter of the enclosing
// container, which is left for the caller. owner is the column name that
// nameless leaves below inherit.
func (p *parser) entries(sc scope, parent pathid.Path, owner string) ([]*Field, error) {
	var fields []*Field
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			if sc != scopeTop {
				return nil, p.errorAt(t, fmt.Errorf("%w: missing closing delimiter", ErrSyntax))
			}
			return fields, nil
		case tokClose:
			if sc == scopeTop {
				return nil, p.errorAt(t, fmt.Errorf("%w: unmatched closing delimiter", ErrSyntax))
			}
			return fields, nil
		case tokName:
		default:
			return nil, p.errorAt(t, ErrSyntax)
		}

		f, err := p.entry(sc, parent, owner, len(fields))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
}

func (p *parser) entry(sc scope, parent pathid.Path, owner string, index int) (*Field, error) {
	first := p.next()
	f := &Field{}
	var nameTok, renameTok, typeTok token
	switch p.peek().kind {
	case tokEquals:
		p.next()
		nameTok = first
		var err error
		if renameTok, err = p.expect(tokName, "a column name after '='"); err != nil {
			return nil, err
		}
		if _, err = p.expect(tokColon, "':' after the column name"); err != nil {
			return nil, err
		}
		if typeTok, err = p.expect(tokName, "a type"); err != nil {
			return nil, err
		}
	case tokColon:
		p.next()
		nameTok = first
		var err error
		if typeTok, err = p.expect(tokName, "a type"); err != nil {
			return nil, err
		}
	default:
		typeTok = first
	}
	f.Name, f.Rename = nameTok.text, renameTok.text

	switch {
	case sc == scopeStruct && f.Name == "":
		return nil, p.errorAt(first, fmt.Errorf("%w: Struct members need a name", ErrSyntax))
	case sc == scopeList && f.Name != "":
		return nil, p.errorAt(first, fmt.Errorf("%w: a List element has no name", ErrSyntax))
	case sc == scopeList && index > 0:
		return nil, p.errorAt(first, fmt.Errorf("%w: a List holds a single element type", ErrSyntax))
	case sc == scopeTop && index > 0 && (f.Name == "" || p.loneTop):
		return nil, p.errorAt(first, fmt.Errorf("%w: a lone top-level type must be the only entry", ErrSyntax))
	}

	if !typeName.MatchString(typeTok.text) {
		return nil, p.errorAt(typeTok, fmt.Errorf("%w: expected a type", ErrSyntax))
	}
	typ, ok := dataTypes[strings.ToLower(typeTok.text)]
	if !ok {
		return nil, p.errorAt(typeTok, ErrUnknownDataType)
	}
	f.Type = typ

	switch {
	case f.Name != "":
		f.Path = parent.Key(f.Name)
	case sc == scopeList:
		f.Path = parent.Item()
	default:
		f.Path = parent
	}
	if sc == scopeTop && f.Name == "" {
		p.loneTop = true
	}

	if !f.IsContainer() {
		return f, p.addColumn(f, owner, first, renameTok)
	}

	if f.Rename != "" && f.Rename != f.Path.Normalized() {
		return nil, p.errorAt(renameTok, ErrPathRenaming)
	}
	if _, err := p.expect(tokOpen, "an opening delimiter after "+f.Type); err != nil {
		return nil, err
	}
	childScope := scopeStruct
	if f.Type == TypeList {
		childScope = scopeList
	}
	children, err := p.entries(childScope, f.Path, f.columnOwner(owner))
	if err != nil {
		return nil, err
	}
	p.next() // closing delimiter, checked by entries
	if f.Type == TypeStruct {
		f.Fields = children
	} else if len(children) == 1 {
		f.Elem = children[0]
	}
	return f, nil
}

// columnOwner is the name nameless leaves below f take.
func (f *Field) columnOwner(inherited string) string {
	switch {
	case f.Rename != "":
		return f.Rename
	case f.Name != "":
		return f.Name
	default:
		return inherited
	}
}

func (p *parser) addColumn(f *Field, owner string, first, renameTok token) error {
	name := f.columnOwner(owner)
	if name == "" {
		name = DefaultColumn
	}
	if p.columns[name] {
		at := first
		if renameTok.text != "" {
			at = renameTok
		}
		return p.errorAt(at, ErrDuplicateColumn)
	}
	p.columns[name] = true
	p.schema.Columns = append(p.schema.Columns, Column{Name: name, Type: f.Type, Path: f.Path, Field: f})
	return nil
}

// Text writes s in the plain-text schema syntax, one field per line.
// Empty containers stay on one line, as in List().
func (s *Schema) Text() string {
	var b strings.Builder
	for _, f := range s.Fields {
		writeField(&b, f, 0)
	}
	return b.String()
}

func writeField(b *strings.Builder, f *Field, depth int) {
	b.WriteString(strings.Repeat(Indent, depth))
	if f.Name != "" {
		b.WriteString(f.Name)
		if f.Rename != "" {
			b.WriteString("=" + f.Rename)
		}
		b.WriteString(": ")
	}
	if !f.IsContainer() {
		b.WriteString(f.Type + "\n")
		return
	}
	children := f.Fields
	if f.Elem != nil {
		children = []*Field{f.Elem}
	}
	if len(children) == 0 {
		b.WriteString(f.Type + "()\n")
		return
	}
	b.WriteString(f.Type + "(\n")
	for _, c := range children {
		writeField(b, c, depth+1)
	}
	b.WriteString(strings.Repeat(Indent, depth) + ")\n")
}
