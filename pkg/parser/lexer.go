package parser

import (
	"fmt"

	"github.com/leapstack-labs/symtree/pkg/token"
)

// Lexer tokenizes expression input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	col     int  // current column number (1-based)

	errors []error
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: 1, Column: l.col, Offset: l.pos}
}

// Errors returns the lexical errors seen so far.
func (l *Lexer) Errors() []error { return l.errors }

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}

	pos := l.currentPos()
	tok := token.Token{Pos: pos}

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		return tok
	case '+':
		tok.Type, tok.Literal = token.PLUS, "+"
	case '-':
		tok.Type, tok.Literal = token.MINUS, "-"
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok.Type, tok.Literal = token.DSTAR, "**"
		} else {
			tok.Type, tok.Literal = token.STAR, "*"
		}
	case '/':
		tok.Type, tok.Literal = token.SLASH, "/"
	case '^':
		tok.Type, tok.Literal = token.CARET, "^"
	case '(':
		tok.Type, tok.Literal = token.LPAREN, "("
	case ')':
		tok.Type, tok.Literal = token.RPAREN, ")"
	case ',':
		tok.Type, tok.Literal = token.COMMA, ","
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Type = token.IDENT
			tok.Literal = l.readIdentifier()
			return tok
		case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok
		default:
			tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
			l.errors = append(l.errors, &LexError{Pos: pos, Message: fmt.Sprintf("unexpected character %q", l.ch)})
		}
	}

	l.readChar()
	return tok
}

// readIdentifier reads an identifier: a letter or underscore followed by
// letters, digits and underscores.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a decimal literal with optional fraction and exponent.
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
