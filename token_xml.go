package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var xmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;", `"`, "&quot;")

// writeTokenElement writes token as <category> value </category>.
// String constants print their decoded value.
func writeTokenElement(w io.Writer, indent string, token Token) {
	value := token.terminal
	if token.tokenType == StringConstant {
		value = token.asString()
	}
	fmt.Fprintf(w, "%s<%s> %s </%s>\n", indent, token.tokenType, xmlEscaper.Replace(value), token.tokenType)
}

// WriteTokensXML lists every token of the source as one
// <category> value </category> line inside a <tokens> element.
func WriteTokensXML(tokens TokenScanner, w io.Writer) error {
	output := bufio.NewWriter(w)
	fmt.Fprintln(output, "<tokens>")
	for tokens.Scan() {
		writeTokenElement(output, "", tokens.Token())
	}
	if err := tokens.Err(); err != nil {
		return err
	}
	fmt.Fprintln(output, "</tokens>")
	return output.Flush()
}
