package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenScanner is the token stream the compiler consumes. Scan reports
// false at end of input or on error, in which case Err is non-nil.
type TokenScanner interface {
	Token() Token
	Err() error
	Scan() bool
}

// Tokenizer splits Jack source into tokens, dropping whitespace and
// both comment forms.
type Tokenizer struct {
	reader  *bufio.Reader
	line    int
	current Token
	err     error
}

func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{reader: bufio.NewReader(r), line: 1}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentifierStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentifierPart(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

// HasMoreTokens skips whitespace and comments and reports whether any
// token text is left. An unterminated block comment or a read failure
// makes it return false with the cause available from Err.
func (t *Tokenizer) HasMoreTokens() bool {
	if t.err != nil {
		return false
	}
	for {
		next, err := t.reader.Peek(1)
		if err != nil {
			t.setReadErr(err)
			return false
		}
		c := next[0]
		switch {
		case c == '\n':
			t.line++
			t.reader.Discard(1)
		case isSpace(c):
			t.reader.Discard(1)
		case c == '/':
			pair, _ := t.reader.Peek(2)
			if len(pair) < 2 || (pair[1] != '/' && pair[1] != '*') {
				return true
			}
			t.reader.Discard(2)
			if pair[1] == '/' {
				err = t.skipLineComment()
			} else {
				err = t.skipBlockComment()
			}
			if err != nil {
				t.setReadErr(err)
				return false
			}
		default:
			return true
		}
	}
}

func (t *Tokenizer) setReadErr(err error) {
	if !errors.Is(err, io.EOF) {
		t.err = err
	}
}

func (t *Tokenizer) skipLineComment() error {
	_, err := t.reader.ReadString('\n')
	if err != nil {
		return err
	}
	t.line++
	return nil
}

func (t *Tokenizer) skipBlockComment() error {
	startLine := t.line
	var prev byte
	for {
		c, err := t.reader.ReadByte()
		if errors.Is(err, io.EOF) {
			return &LexError{Line: startLine, Msg: "unterminated comment, expected '*/'"}
		} else if err != nil {
			return err
		}
		if c == '\n' {
			t.line++
		}
		if prev == '*' && c == '/' {
			return nil
		}
		prev = c
	}
}

// Advance reads the next token and makes it current. It must only be
// called while HasMoreTokens reports true; otherwise it returns
// ErrNoMoreTokens, or the error that stopped HasMoreTokens.
func (t *Tokenizer) Advance() error {
	if !t.HasMoreTokens() {
		if t.err != nil {
			return t.err
		}
		return ErrNoMoreTokens
	}

	token, err := t.readToken()
	if err != nil {
		t.err = err
		return err
	}
	t.current = token
	return nil
}

func (t *Tokenizer) readToken() (Token, error) {
	c, err := t.reader.ReadByte()
	if err != nil {
		return Token{}, err
	}
	token := Token{line: t.line}

	switch {
	case isSymbol(c):
		token.tokenType = SymbolToken
		token.terminal = string(c)
	case isDigit(c):
		token.tokenType = IntegerConstant
		token.terminal = t.readWhile(c, isDigit)
		word, err := strconv.Atoi(token.terminal)
		if err != nil || word > maxIntegerConstant {
			return Token{}, &LexError{Line: token.line, Msg: fmt.Sprintf("integer constant %s exceeds %d", token.terminal, maxIntegerConstant)}
		}
		token.intValue = MachineWord(word)
	case c == '"':
		token.tokenType = StringConstant
		token.terminal, token.stringValue, err = t.readString()
		if err != nil {
			return Token{}, err
		}
	case isIdentifierStart(c):
		token.terminal = t.readWhile(c, isIdentifierPart)
		token.tokenType = Identifier
		if _, ok := keywords[token.terminal]; ok {
			token.tokenType = Keyword
		}
	default:
		return Token{}, &LexError{Line: token.line, Msg: fmt.Sprintf("illegal character %q", c)}
	}
	return token, nil
}

func isSymbol(c byte) bool {
	_, ok := symbols[c]
	return ok
}

// readWhile returns first followed by the longest run of bytes
// accepted by accept.
func (t *Tokenizer) readWhile(first byte, accept func(byte) bool) string {
	var b strings.Builder
	b.WriteByte(first)
	for {
		next, err := t.reader.Peek(1)
		if err != nil || !accept(next[0]) {
			return b.String()
		}
		b.WriteByte(next[0])
		t.reader.Discard(1)
	}
}

// readString reads up to the closing quote, the opening one being
// consumed already. It returns the raw lexeme and the decoded value.
func (t *Tokenizer) readString() (raw string, value string, err error) {
	startLine := t.line
	var rawBuilder, valueBuilder strings.Builder
	rawBuilder.WriteByte('"')
	for {
		c, readErr := t.reader.ReadByte()
		if errors.Is(readErr, io.EOF) {
			return "", "", &LexError{Line: startLine, Msg: "unterminated string constant"}
		} else if readErr != nil {
			return "", "", readErr
		}
		rawBuilder.WriteByte(c)

		switch c {
		case '"':
			value = valueBuilder.String()
			for _, r := range value {
				if r == utf8.RuneError || r > maxIntegerConstant {
					return "", "", &LexError{Line: startLine, Msg: fmt.Sprintf("character %q cannot be represented", r)}
				}
			}
			return rawBuilder.String(), value, nil
		case '\\':
			next, peekErr := t.reader.Peek(1)
			if peekErr == nil && (next[0] == '"' || next[0] == '\\') {
				rawBuilder.WriteByte(next[0])
				valueBuilder.WriteByte(next[0])
				t.reader.Discard(1)
				continue
			}
		case '\n':
			t.line++
		}
		valueBuilder.WriteByte(c)
	}
}

func (t *Tokenizer) Err() error {
	return t.err
}

// Scan advances to the next token, reporting false at end of input or
// on error.
func (t *Tokenizer) Scan() bool {
	if !t.HasMoreTokens() {
		return false
	}
	return t.Advance() == nil
}

func (t *Tokenizer) Token() Token {
	return t.current
}

func (t *Tokenizer) TokenType() TokenType {
	return t.current.tokenType
}

// The accessors below panic when the current token is of another type;
// callers check TokenType first.

func (t *Tokenizer) Keyword() string {
	t.current.mustBe(Keyword)
	return t.current.terminal
}

func (t *Tokenizer) Symbol() byte {
	return t.current.asSymbol()
}

func (t *Tokenizer) Identifier() string {
	t.current.mustBe(Identifier)
	return t.current.terminal
}

func (t *Tokenizer) IntVal() MachineWord {
	return t.current.asInt()
}

func (t *Tokenizer) StringVal() string {
	return t.current.asString()
}
