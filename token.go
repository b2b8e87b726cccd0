package main

import (
	"fmt"
)

// MachineWord is the value range of an integer constant: non-negative
// 16 bit, the minus sign being a separate operator token.
type MachineWord int16

const maxIntegerConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolToken     TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

var keywords = map[string]struct{}{
	"class": {}, "constructor": {}, "function": {}, "method": {},
	"field": {}, "static": {}, "var": {}, "int": {}, "char": {},
	"boolean": {}, "void": {}, "true": {}, "false": {}, "null": {},
	"this": {}, "let": {}, "do": {}, "if": {}, "else": {},
	"while": {}, "return": {},
}

var symbols = map[byte]struct{}{
	'{': {}, '}': {}, '(': {}, ')': {}, '[': {}, ']': {}, '.': {},
	',': {}, ';': {}, '+': {}, '-': {}, '*': {}, '/': {}, '&': {},
	'|': {}, '<': {}, '>': {}, '=': {}, '~': {},
}

// Token is one lexeme of Jack source. terminal holds the text as it
// appeared in the source, quotes included for string constants.
// InvalidToken marks the end of input.
type Token struct {
	tokenType   TokenType
	terminal    string
	intValue    MachineWord
	stringValue string
	line        int
}

func (t Token) asInt() MachineWord {
	t.mustBe(IntegerConstant)
	return t.intValue
}

func (t Token) asString() string {
	t.mustBe(StringConstant)
	return t.stringValue
}

func (t Token) asSymbol() byte {
	t.mustBe(SymbolToken)
	return t.terminal[0]
}

func (t Token) mustBe(tokenType TokenType) {
	if t.tokenType != tokenType {
		panic(fmt.Sprintf("token %s is not of type %s", t, tokenType))
	}
}

func (t Token) is(tokenType TokenType, terminals ...string) bool {
	if t.tokenType != tokenType {
		return false
	}
	for _, terminal := range terminals {
		if t.terminal == terminal {
			return true
		}
	}
	return len(terminals) == 0
}

func (t Token) String() string {
	if t.tokenType == InvalidToken {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.tokenType, t.terminal)
}
