package decl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError reports a lexical or grammatical error in a stub file
type SyntaxError struct {
	File string
	Pos  Position
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
}

// Token types for lexical analysis
type tokenType int

const (
	tokenIdentifier tokenType = iota
	tokenNumber
	tokenString
	tokenChar
	tokenOperator
	tokenOpenBrace
	tokenCloseBrace
	tokenOpenParen
	tokenCloseParen
	tokenOpenBracket
	tokenCloseBracket
	tokenLess
	tokenGreater
	tokenSemicolon
	tokenComma
	tokenDot
	tokenAt
	tokenEOF
)

// token is a lexical token
type token struct {
	typ   tokenType
	value string
	pos   Position
}

func (t *token) String() string {
	if t.typ == tokenEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.value)
}

var punctuation = map[rune]tokenType{
	'{': tokenOpenBrace,
	'}': tokenCloseBrace,
	'(': tokenOpenParen,
	')': tokenCloseParen,
	'[': tokenOpenBracket,
	']': tokenCloseBracket,
	'<': tokenLess,
	'>': tokenGreater,
	';': tokenSemicolon,
	',': tokenComma,
	'@': tokenAt,
}

// lexer performs lexical analysis of stub files
type lexer struct {
	file    string
	reader  *bufio.Reader
	current rune
	eof     bool
	line    int
	col     int
}

func newLexer(file string, r io.Reader) *lexer {
	lex := &lexer{
		file:   file,
		reader: bufio.NewReader(r),
		line:   1,
	}
	lex.readChar()
	return lex
}

func (l *lexer) readChar() {
	if l.current == '\n' {
		l.line++
		l.col = 0
	}
	l.col++
	r, _, err := l.reader.ReadRune()
	if err != nil {
		l.eof = true
		l.current = 0
		return
	}
	l.current = r
}

// peek returns the byte after the current rune, or 0 at end of input.
func (l *lexer) peek() byte {
	b, err := l.reader.Peek(1)
	if err != nil {
		return 0
	}
	return b[0]
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Col: l.col}
}

func (l *lexer) errorf(pos Position, format string, args ...interface{}) error {
	return &SyntaxError{File: l.file, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipWhitespace() {
	for !l.eof && unicode.IsSpace(l.current) {
		l.readChar()
	}
}

// skipComment skips a comment starting at the current '/'.
func (l *lexer) skipComment() error {
	start := l.pos()
	l.readChar()
	if l.current == '/' {
		for !l.eof && l.current != '\n' {
			l.readChar()
		}
		return nil
	}

	l.readChar()
	for !l.eof {
		if l.current == '*' && l.peek() == '/' {
			l.readChar()
			l.readChar()
			return nil
		}
		l.readChar()
	}
	return l.errorf(start, "unterminated comment")
}

// nextToken returns the next token
func (l *lexer) nextToken() (*token, error) {
	for {
		l.skipWhitespace()
		if l.current == '/' && (l.peek() == '/' || l.peek() == '*') {
			if err := l.skipComment(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	pos := l.pos()
	if l.eof {
		return &token{typ: tokenEOF, pos: pos}, nil
	}

	if typ, ok := punctuation[l.current]; ok {
		value := string(l.current)
		l.readChar()
		return &token{typ: typ, value: value, pos: pos}, nil
	}

	switch {
	case l.current == '.':
		if l.peek() >= '0' && l.peek() <= '9' {
			return l.readNumber(pos), nil
		}
		l.readChar()
		return &token{typ: tokenDot, value: ".", pos: pos}, nil
	case isIdentStart(l.current):
		return l.readIdentifier(pos), nil
	case isDigit(l.current):
		return l.readNumber(pos), nil
	case l.current == '"':
		return l.readString(pos)
	case l.current == '\'':
		return l.readCharLiteral(pos)
	case isOperator(l.current):
		value := string(l.current)
		l.readChar()
		return &token{typ: tokenOperator, value: value, pos: pos}, nil
	default:
		return nil, l.errorf(pos, "unexpected character %q", l.current)
	}
}

func (l *lexer) readIdentifier(pos Position) *token {
	var ident strings.Builder
	for !l.eof && isIdentPart(l.current) {
		ident.WriteRune(l.current)
		l.readChar()
	}
	return &token{typ: tokenIdentifier, value: ident.String(), pos: pos}
}

// readNumber reads a numeric literal loosely: digits, letters, underscores
// and dots, with signed exponents.
func (l *lexer) readNumber(pos Position) *token {
	var num strings.Builder
	for !l.eof && (isIdentPart(l.current) || l.current == '.') {
		prev := l.current
		num.WriteRune(l.current)
		l.readChar()
		if (prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P') && (l.current == '+' || l.current == '-') {
			num.WriteRune(l.current)
			l.readChar()
		}
	}
	return &token{typ: tokenNumber, value: num.String(), pos: pos}
}

func (l *lexer) readString(pos Position) (*token, error) {
	l.readChar()
	if l.current == '"' && l.peek() == '"' {
		l.readChar()
		l.readChar()
		return l.readTextBlock(pos)
	}

	var str strings.Builder
	for !l.eof && l.current != '"' && l.current != '\n' {
		if l.current == '\\' {
			l.readChar()
			if l.eof {
				break
			}
		}
		str.WriteRune(l.current)
		l.readChar()
	}
	if l.current != '"' {
		return nil, l.errorf(pos, "unterminated string literal")
	}
	l.readChar()
	return &token{typ: tokenString, value: str.String(), pos: pos}, nil
}

func (l *lexer) readTextBlock(pos Position) (*token, error) {
	var str strings.Builder
	quotes := 0
	for !l.eof {
		c := l.current
		l.readChar()
		switch {
		case c == '\\':
			str.WriteRune(c)
			if !l.eof {
				str.WriteRune(l.current)
				l.readChar()
			}
			quotes = 0
			continue
		case c == '"':
			quotes++
			if quotes == 3 {
				s := str.String()
				return &token{typ: tokenString, value: s[:len(s)-2], pos: pos}, nil
			}
		default:
			quotes = 0
		}
		str.WriteRune(c)
	}
	return nil, l.errorf(pos, "unterminated text block")
}

func (l *lexer) readCharLiteral(pos Position) (*token, error) {
	var ch strings.Builder
	l.readChar()
	for !l.eof && l.current != '\'' && l.current != '\n' {
		if l.current == '\\' {
			ch.WriteRune(l.current)
			l.readChar()
			if l.eof {
				break
			}
		}
		ch.WriteRune(l.current)
		l.readChar()
	}
	if l.current != '\'' {
		return nil, l.errorf(pos, "unterminated character literal")
	}
	l.readChar()
	return &token{typ: tokenChar, value: ch.String(), pos: pos}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isOperator(r rune) bool {
	return strings.ContainsRune("+-*/=!&|^%?:~", r)
}
