package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type lexeme struct {
	tokenType TokenType
	terminal  string
}

func scanAll(t *testing.T, source string) ([]Token, error) {
	t.Helper()
	tokenizer := NewTokenizer(strings.NewReader(source))
	var tokens []Token
	for tokenizer.Scan() {
		tokens = append(tokens, tokenizer.Token())
	}
	return tokens, tokenizer.Err()
}

func lexemes(tokens []Token) []lexeme {
	result := []lexeme{}
	for _, token := range tokens {
		result = append(result, lexeme{token.tokenType, token.terminal})
	}
	return result
}

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexeme
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []lexeme{},
		},
		{
			name:     "Only whitespace and comments",
			input:    "  \t\n// line\n/* block */ /** doc\n * comment */\n",
			expected: []lexeme{},
		},
		{
			name:  "Symbols",
			input: "{ } ( ) [ ] . , ; + - * / & | < > = ~",
			expected: []lexeme{
				{SymbolToken, "{"}, {SymbolToken, "}"}, {SymbolToken, "("}, {SymbolToken, ")"},
				{SymbolToken, "["}, {SymbolToken, "]"}, {SymbolToken, "."}, {SymbolToken, ","},
				{SymbolToken, ";"}, {SymbolToken, "+"}, {SymbolToken, "-"}, {SymbolToken, "*"},
				{SymbolToken, "/"}, {SymbolToken, "&"}, {SymbolToken, "|"}, {SymbolToken, "<"},
				{SymbolToken, ">"}, {SymbolToken, "="}, {SymbolToken, "~"},
			},
		},
		{
			name:  "Keywords and identifiers",
			input: "class classy _under_score x1 return returned this",
			expected: []lexeme{
				{Keyword, "class"}, {Identifier, "classy"}, {Identifier, "_under_score"},
				{Identifier, "x1"}, {Keyword, "return"}, {Identifier, "returned"}, {Keyword, "this"},
			},
		},
		{
			name:  "No whitespace between tokens",
			input: "let a[i]=x-1;",
			expected: []lexeme{
				{Keyword, "let"}, {Identifier, "a"}, {SymbolToken, "["}, {Identifier, "i"},
				{SymbolToken, "]"}, {SymbolToken, "="}, {Identifier, "x"}, {SymbolToken, "-"},
				{IntegerConstant, "1"}, {SymbolToken, ";"},
			},
		},
		{
			name:  "Digits then letters",
			input: "12ab",
			expected: []lexeme{
				{IntegerConstant, "12"}, {Identifier, "ab"},
			},
		},
		{
			name:  "Division is not a comment",
			input: "a / b /c",
			expected: []lexeme{
				{Identifier, "a"}, {SymbolToken, "/"}, {Identifier, "b"}, {SymbolToken, "/"}, {Identifier, "c"},
			},
		},
		{
			name:  "Comments between tokens",
			input: "do/* x */f(); // trailing\nreturn/**/;",
			expected: []lexeme{
				{Keyword, "do"}, {Identifier, "f"}, {SymbolToken, "("}, {SymbolToken, ")"},
				{SymbolToken, ";"}, {Keyword, "return"}, {SymbolToken, ";"},
			},
		},
		{
			name:  "Comment markers inside strings",
			input: `"http://x /* y */"`,
			expected: []lexeme{
				{StringConstant, `"http://x /* y */"`},
			},
		},
		{
			name:  "Line comment at end of input",
			input: "x // no newline",
			expected: []lexeme{
				{Identifier, "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := scanAll(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := lexemes(tokens); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTokenizerIntegerConstants(t *testing.T) {
	for _, input := range []string{"0", "1", "007", "32767"} {
		tokenizer := NewTokenizer(strings.NewReader(input))
		if err := tokenizer.Advance(); err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}
		if tokenizer.TokenType() != IntegerConstant {
			t.Fatalf("%s: expected integer constant, got %v", input, tokenizer.Token())
		}
		expected := map[string]MachineWord{"0": 0, "1": 1, "007": 7, "32767": 32767}[input]
		if tokenizer.IntVal() != expected {
			t.Errorf("%s: expected %d, got %d", input, expected, tokenizer.IntVal())
		}
	}

	for _, input := range []string{"32768", "99999", "123456789012345678901234567890"} {
		_, err := scanAll(t, input)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("%s: expected LexError, got %v", input, err)
		}
	}
}

func TestTokenizerStringConstants(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`""`, ""},
		{`"Hello, World!"`, "Hello, World!"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
		{`"kept \n"`, `kept \n`},
		{"\"two\nlines\"", "two\nlines"},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(strings.NewReader(tt.input))
		if err := tokenizer.Advance(); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.input, err)
		}
		if got := tokenizer.StringVal(); got != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.expected, got)
		}
		if got := tokenizer.Token().terminal; got != tt.input {
			t.Errorf("%s: expected raw lexeme %q, got %q", tt.input, tt.input, got)
		}
	}
}

func TestTokenizerLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"Unterminated string", "let s = \"abc;\n", 1},
		{"Unterminated escaped quote", `"abc\"`, 1},
		{"Unterminated comment", "x\n/* never closed", 2},
		{"Comment closer without star", "/*/", 1},
		{"Illegal character", "let x = 1;\nlet y = #;", 2},
		{"Oversized integer", "\n\n40000", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanAll(t, tt.input)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected LexError, got %v", err)
			}
			if lexErr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, lexErr.Line)
			}
		})
	}
}

func TestTokenizerLines(t *testing.T) {
	tokens, err := scanAll(t, "class\n// c\n/* a\nb */ Main\n\n{")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []int{1, 4, 6}
	for i, token := range tokens {
		if token.line != expected[i] {
			t.Errorf("token %v: expected line %d, got %d", token, expected[i], token.line)
		}
	}
}

func TestTokenizerAdvancePastEnd(t *testing.T) {
	tokenizer := NewTokenizer(strings.NewReader("  x  // done"))
	if !tokenizer.HasMoreTokens() {
		t.Fatal("expected a token")
	}
	if err := tokenizer.Advance(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenizer.HasMoreTokens() {
		t.Fatal("expected no more tokens")
	}
	if err := tokenizer.Advance(); !errors.Is(err, ErrNoMoreTokens) {
		t.Errorf("expected ErrNoMoreTokens, got %v", err)
	}
	if tokenizer.Identifier() != "x" {
		t.Errorf("failed Advance replaced the current token: %v", tokenizer.Token())
	}
}

func TestTokenizerAccessorOfWrongType(t *testing.T) {
	tokenizer := NewTokenizer(strings.NewReader("+"))
	if err := tokenizer.Advance(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenizer.Symbol() != '+' {
		t.Errorf("expected '+', got %q", tokenizer.Symbol())
	}

	defer func() {
		if recover() == nil {
			t.Error("expected IntVal on a symbol to panic")
		}
	}()
	tokenizer.IntVal()
}

func TestTokenizerIsRepeatable(t *testing.T) {
	source := `class Main {
		/** entry point */
		function void main() {
			var String s;
			let s = "a // b";
			do Output.printInt(32767 - (2 * 3));
			return;
		}
	}`
	first, err := scanAll(t, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := scanAll(t, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("token sequences differ:\n%v\n%v", first, second)
	}
}
