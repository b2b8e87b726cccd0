package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseTreeWriter records the productions recognized by the compiler as
// nested XML elements, with every consumed token as a leaf. A nil
// *ParseTreeWriter records nothing.
type ParseTreeWriter struct {
	output *bufio.Writer
	depth  int
}

func NewParseTreeWriter(w io.Writer) *ParseTreeWriter {
	return &ParseTreeWriter{output: bufio.NewWriter(w)}
}

func (p *ParseTreeWriter) indent() string {
	return strings.Repeat("  ", p.depth)
}

func (p *ParseTreeWriter) open(production string) {
	if p == nil {
		return
	}
	fmt.Fprintf(p.output, "%s<%s>\n", p.indent(), production)
	p.depth++
}

func (p *ParseTreeWriter) close(production string) {
	if p == nil {
		return
	}
	p.depth--
	fmt.Fprintf(p.output, "%s</%s>\n", p.indent(), production)
}

func (p *ParseTreeWriter) terminal(token Token) {
	if p == nil {
		return
	}
	writeTokenElement(p.output, p.indent(), token)
}

// Close flushes the tree and returns the first write error.
func (p *ParseTreeWriter) Close() error {
	if p == nil {
		return nil
	}
	return p.output.Flush()
}
