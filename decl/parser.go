package decl

import (
	"fmt"
	"io"
	"strings"

	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

// Modifiers that may appear on members but carry no meaning for types
var memberModifiers = map[string]bool{
	"default":      true,
	"transient":    true,
	"volatile":     true,
	"synchronized": true,
	"native":       true,
}

// Parser reads declaration stubs. Only type declarations and their
// supertype clauses are retained; other members are skipped.
type Parser struct {
	lexer        *lexer
	currentToken *token
	peeked       *token
	file         *File
}

// NewParser creates a new stub parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses one compilation unit. The name is used in error messages.
func (p *Parser) Parse(name string, reader io.Reader) (*File, error) {
	p.lexer = newLexer(name, reader)
	p.currentToken = nil
	p.peeked = nil
	p.file = &File{Name: name}

	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if err := p.parseCompilationUnit(); err != nil {
		return nil, err
	}
	return p.file, nil
}

// ParseFile is a shorthand for NewParser().Parse.
func ParseFile(name string, reader io.Reader) (*File, error) {
	return NewParser().Parse(name, reader)
}

func (p *Parser) nextToken() error {
	if p.peeked != nil {
		p.currentToken, p.peeked = p.peeked, nil
		return nil
	}
	var err error
	p.currentToken, err = p.lexer.nextToken()
	return err
}

func (p *Parser) peek() (*token, error) {
	if p.peeked == nil {
		tok, err := p.lexer.nextToken()
		if err != nil {
			return nil, err
		}
		p.peeked = tok
	}
	return p.peeked, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{File: p.file.Name, Pos: p.currentToken.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) is(typ tokenType) bool {
	return p.currentToken.typ == typ
}

func (p *Parser) isKeyword(word string) bool {
	return p.currentToken.typ == tokenIdentifier && p.currentToken.value == word
}

func (p *Parser) expect(typ tokenType, what string) error {
	if p.currentToken.typ != typ {
		return p.errorf("expected %s, got %s", what, p.currentToken)
	}
	return p.nextToken()
}

func (p *Parser) parseCompilationUnit() error {
	for !p.is(tokenEOF) {
		if p.is(tokenSemicolon) {
			if err := p.nextToken(); err != nil {
				return err
			}
			continue
		}

		mods, err := p.parseModifiers()
		if err != nil {
			return err
		}

		switch {
		case p.isKeyword("package"):
			if err := p.parsePackage(); err != nil {
				return err
			}
		case p.isKeyword("import"):
			if err := p.parseImport(); err != nil {
				return err
			}
		default:
			kind, ok, err := p.typeKeyword()
			if err != nil {
				return err
			}
			if !ok {
				return p.errorf("expected type declaration, got %s", p.currentToken)
			}
			d, err := p.parseTypeDecl(kind, mods)
			if err != nil {
				return err
			}
			p.file.Types = append(p.file.Types, d)
		}
	}
	return nil
}

func (p *Parser) parsePackage() error {
	if p.file.Package != "" || len(p.file.Imports) > 0 || len(p.file.Types) > 0 {
		return p.errorf("unexpected package declaration")
	}
	if err := p.nextToken(); err != nil {
		return err
	}
	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}
	p.file.Package = name
	return p.expect(tokenSemicolon, "';' after package declaration")
}

func (p *Parser) parseImport() error {
	imp := Import{Pos: p.currentToken.pos}
	if err := p.nextToken(); err != nil {
		return err
	}
	if p.isKeyword("static") {
		imp.Static = true
		if err := p.nextToken(); err != nil {
			return err
		}
	}

	if p.currentToken.typ != tokenIdentifier {
		return p.errorf("expected import name, got %s", p.currentToken)
	}
	parts := []string{p.currentToken.value}
	if err := p.nextToken(); err != nil {
		return err
	}
	for p.is(tokenDot) {
		if err := p.nextToken(); err != nil {
			return err
		}
		if p.is(tokenOperator) && p.currentToken.value == "*" {
			imp.OnDemand = true
			if err := p.nextToken(); err != nil {
				return err
			}
			break
		}
		if p.currentToken.typ != tokenIdentifier {
			return p.errorf("expected identifier in import, got %s", p.currentToken)
		}
		parts = append(parts, p.currentToken.value)
		if err := p.nextToken(); err != nil {
			return err
		}
	}
	imp.Path = strings.Join(parts, ".")
	p.file.Imports = append(p.file.Imports, imp)
	return p.expect(tokenSemicolon, "';' after import")
}

func (p *Parser) parseQualifiedName() (string, error) {
	if p.currentToken.typ != tokenIdentifier {
		return "", p.errorf("expected identifier, got %s", p.currentToken)
	}
	parts := []string{p.currentToken.value}
	if err := p.nextToken(); err != nil {
		return "", err
	}
	for p.is(tokenDot) {
		if err := p.nextToken(); err != nil {
			return "", err
		}
		if p.currentToken.typ != tokenIdentifier {
			return "", p.errorf("expected identifier after '.', got %s", p.currentToken)
		}
		parts = append(parts, p.currentToken.value)
		if err := p.nextToken(); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, "."), nil
}

// parseModifiers consumes annotations and modifier keywords.
func (p *Parser) parseModifiers() (scope.Modifiers, error) {
	var mods scope.Modifiers
	for {
		switch {
		case p.is(tokenAt):
			next, err := p.peek()
			if err != nil {
				return 0, err
			}
			if next.typ == tokenIdentifier && next.value == "interface" {
				return mods, nil
			}
			if err := p.skipAnnotation(); err != nil {
				return 0, err
			}
		case p.isKeyword("non"):
			next, err := p.peek()
			if err != nil {
				return 0, err
			}
			if next.typ != tokenOperator || next.value != "-" {
				return mods, nil
			}
			if err := p.nextToken(); err != nil {
				return 0, err
			}
			if err := p.nextToken(); err != nil {
				return 0, err
			}
			if !p.isKeyword("sealed") {
				return 0, p.errorf("expected 'sealed' after 'non-', got %s", p.currentToken)
			}
			mods |= scope.ModNonSealed
			if err := p.nextToken(); err != nil {
				return 0, err
			}
		case p.is(tokenIdentifier):
			if mod, ok := scope.ParseModifier(p.currentToken.value); ok {
				mods |= mod
			} else if !memberModifiers[p.currentToken.value] {
				return mods, nil
			}
			if err := p.nextToken(); err != nil {
				return 0, err
			}
		default:
			return mods, nil
		}
	}
}

func (p *Parser) skipAnnotation() error {
	if err := p.nextToken(); err != nil {
		return err
	}
	if _, err := p.parseQualifiedName(); err != nil {
		return err
	}
	if p.is(tokenOpenParen) {
		return p.skipBalanced(tokenOpenParen, tokenCloseParen)
	}
	return nil
}

// typeKeyword reports whether the current token starts a type declaration.
func (p *Parser) typeKeyword() (symtab.DefinitionKind, bool, error) {
	switch {
	case p.isKeyword("class"):
		return symtab.DK_CLASS, true, nil
	case p.isKeyword("interface"):
		return symtab.DK_INTERFACE, true, nil
	case p.isKeyword("enum"):
		return symtab.DK_ENUM, true, nil
	case p.is(tokenAt):
		next, err := p.peek()
		if err != nil {
			return 0, false, err
		}
		if next.typ == tokenIdentifier && next.value == "interface" {
			return symtab.DK_ANNOTATION, true, nil
		}
	case p.isKeyword("record"):
		// record is a contextual keyword
		next, err := p.peek()
		if err != nil {
			return 0, false, err
		}
		if next.typ == tokenIdentifier {
			return symtab.DK_RECORD, true, nil
		}
	}
	return symtab.DK_NONE, false, nil
}

func (p *Parser) parseTypeDecl(kind symtab.DefinitionKind, mods scope.Modifiers) (*TypeDecl, error) {
	d := &TypeDecl{Kind: kind, Modifiers: mods, Pos: p.currentToken.pos}

	// Skip the keyword; "@interface" is two tokens
	if kind == symtab.DK_ANNOTATION {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}

	if p.currentToken.typ != tokenIdentifier {
		return nil, p.errorf("expected %s name, got %s", kind.Keyword(), p.currentToken)
	}
	d.Name = p.currentToken.value
	if err := p.nextToken(); err != nil {
		return nil, err
	}

	if p.is(tokenLess) {
		if err := p.skipBalanced(tokenLess, tokenGreater); err != nil {
			return nil, err
		}
	}
	if kind == symtab.DK_RECORD {
		if !p.is(tokenOpenParen) {
			return nil, p.errorf("expected record header, got %s", p.currentToken)
		}
		if err := p.skipBalanced(tokenOpenParen, tokenCloseParen); err != nil {
			return nil, err
		}
	}

	for {
		var (
			list *[]string
			err  error
		)
		switch {
		case p.isKeyword("extends"):
			list = &d.Extends
		case p.isKeyword("implements"):
			list = &d.Implements
		case p.isKeyword("permits"):
			list = &d.Permits
		}
		if list == nil {
			break
		}
		if err = p.nextToken(); err != nil {
			return nil, err
		}
		if *list, err = p.parseTypeList(); err != nil {
			return nil, err
		}
	}

	if kind == symtab.DK_CLASS && len(d.Extends) > 1 {
		return nil, &SyntaxError{File: p.file.Name, Pos: d.Pos, Msg: fmt.Sprintf("class %s extends more than one class", d.Name)}
	}

	if err := p.expect(tokenOpenBrace, fmt.Sprintf("'{' after %s header", d.Name)); err != nil {
		return nil, err
	}
	if err := p.parseBody(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseTypeList() ([]string, error) {
	var names []string
	for {
		name, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.is(tokenComma) {
			return names, nil
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}
}

// parseTypeName reads a possibly qualified, possibly parameterized type
// and returns its name without type arguments or annotations.
func (p *Parser) parseTypeName() (string, error) {
	var parts []string
	for {
		for p.is(tokenAt) {
			if err := p.skipAnnotation(); err != nil {
				return "", err
			}
		}
		if p.currentToken.typ != tokenIdentifier {
			return "", p.errorf("expected type name, got %s", p.currentToken)
		}
		parts = append(parts, p.currentToken.value)
		if err := p.nextToken(); err != nil {
			return "", err
		}
		if p.is(tokenLess) {
			if err := p.skipBalanced(tokenLess, tokenGreater); err != nil {
				return "", err
			}
		}
		if !p.is(tokenDot) {
			return strings.Join(parts, "."), nil
		}
		if err := p.nextToken(); err != nil {
			return "", err
		}
	}
}

// parseBody parses members up to and including the closing brace.
func (p *Parser) parseBody(d *TypeDecl) error {
	if d.Kind == symtab.DK_ENUM {
		done, err := p.skipEnumConstants()
		if err != nil || done {
			return err
		}
	}

	for {
		switch {
		case p.is(tokenCloseBrace):
			return p.nextToken()
		case p.is(tokenEOF):
			return p.errorf("unexpected end of file in body of %s", d.Name)
		case p.is(tokenSemicolon):
			if err := p.nextToken(); err != nil {
				return err
			}
			continue
		case p.is(tokenOpenBrace):
			// initializer block
			if err := p.skipBalanced(tokenOpenBrace, tokenCloseBrace); err != nil {
				return err
			}
			continue
		}

		mods, err := p.parseModifiers()
		if err != nil {
			return err
		}
		kind, ok, err := p.typeKeyword()
		if err != nil {
			return err
		}
		if ok {
			nested, err := p.parseTypeDecl(kind, mods)
			if err != nil {
				return err
			}
			d.Nested = append(d.Nested, nested)
			continue
		}
		if err := p.skipMember(); err != nil {
			return err
		}
	}
}

// skipEnumConstants skips the constant list of an enum body. It reports
// true when the closing brace of the body was consumed.
func (p *Parser) skipEnumConstants() (bool, error) {
	for {
		switch {
		case p.is(tokenSemicolon):
			return false, p.nextToken()
		case p.is(tokenCloseBrace):
			return true, p.nextToken()
		case p.is(tokenEOF):
			return false, p.errorf("unexpected end of file in enum constants")
		case p.is(tokenOpenParen):
			if err := p.skipBalanced(tokenOpenParen, tokenCloseParen); err != nil {
				return false, err
			}
		case p.is(tokenOpenBrace):
			if err := p.skipBalanced(tokenOpenBrace, tokenCloseBrace); err != nil {
				return false, err
			}
		default:
			if err := p.nextToken(); err != nil {
				return false, err
			}
		}
	}
}

// skipMember skips a field, method or constructor: up to a ';' at
// nesting depth zero, or through a block that ends the member.
func (p *Parser) skipMember() error {
	depth := 0
	for {
		switch {
		case p.is(tokenEOF):
			return p.errorf("unexpected end of file in member declaration")
		case p.is(tokenOpenParen), p.is(tokenOpenBracket):
			depth++
		case p.is(tokenCloseParen), p.is(tokenCloseBracket):
			depth--
		case p.is(tokenOpenBrace):
			if err := p.skipBalanced(tokenOpenBrace, tokenCloseBrace); err != nil {
				return err
			}
			if depth == 0 {
				return nil
			}
			continue
		case p.is(tokenCloseBrace):
			if depth == 0 {
				return nil
			}
			return p.errorf("unbalanced '}'")
		case p.is(tokenSemicolon):
			if depth == 0 {
				return p.nextToken()
			}
		}
		if err := p.nextToken(); err != nil {
			return err
		}
	}
}

// skipBalanced skips from the current open token through its matching close.
func (p *Parser) skipBalanced(open, close tokenType) error {
	start := p.currentToken
	depth := 0
	for {
		switch p.currentToken.typ {
		case open:
			depth++
		case close:
			depth--
		case tokenEOF:
			return &SyntaxError{File: p.file.Name, Pos: start.pos, Msg: fmt.Sprintf("unbalanced %s", start)}
		}
		if err := p.nextToken(); err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}
