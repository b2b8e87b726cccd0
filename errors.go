package main

import (
	"errors"
	"fmt"
)

// ErrNoMoreTokens is returned by Advance when it is called although
// HasMoreTokens reports false.
var ErrNoMoreTokens = errors.New("advance called with no more tokens")

// LexError reports malformed source text.
type LexError struct {
	Line int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// SyntaxError reports a token that does not fit the grammar production
// being compiled.
type SyntaxError struct {
	Line     int
	Expected string
	Got      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: expected %s, got %s", e.Line, e.Expected, e.Got)
}

// IdentifierError reports misuse of the symbol table: an invalid kind,
// a name declared twice in one scope, or a variable that was never
// declared.
type IdentifierError struct {
	Line   int
	Name   string
	Reason string
}

func (e *IdentifierError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("identifier %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("line %d: identifier %q: %s", e.Line, e.Name, e.Reason)
}
