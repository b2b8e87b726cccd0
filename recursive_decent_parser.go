package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

var binaryOperations = map[string]func(w *VMWriter){
	"+": func(w *VMWriter) { w.WriteArithmetic(AddVMOperation) },
	"-": func(w *VMWriter) { w.WriteArithmetic(SubVMOperation) },
	"&": func(w *VMWriter) { w.WriteArithmetic(AndVMOperation) },
	"|": func(w *VMWriter) { w.WriteArithmetic(OrVMOperation) },
	"<": func(w *VMWriter) { w.WriteArithmetic(LtVMOperation) },
	">": func(w *VMWriter) { w.WriteArithmetic(GtVMOperation) },
	"=": func(w *VMWriter) { w.WriteArithmetic(EqVMOperation) },
	"*": func(w *VMWriter) { w.WriteCall("Math.multiply", 2) },
	"/": func(w *VMWriter) { w.WriteCall("Math.divide", 2) },
}

var statementKeywords = []string{"let", "if", "while", "do", "return"}

// JackCompiler compiles one Jack class into VM code in a single pass:
// commands are written as soon as each production is recognized.
type JackCompiler struct {
	tokens     TokenScanner
	writer     *VMWriter
	symbols    *SymbolTable
	current    Token
	className  string
	labelCount int
	trace      *log.Logger
	tree       *ParseTreeWriter
}

func NewJackCompiler(tokens TokenScanner, writer *VMWriter) *JackCompiler {
	return &JackCompiler{
		tokens:  tokens,
		writer:  writer,
		symbols: NewSymbolTable(),
		current: Token{line: 1},
		trace:   log.New(io.Discard, "", 0),
	}
}

// SetTrace logs every production and symbol declaration to logger.
func (c *JackCompiler) SetTrace(logger *log.Logger) {
	c.trace = logger
}

// SetParseTree records the recognized productions to tree.
func (c *JackCompiler) SetParseTree(tree *ParseTreeWriter) {
	c.tree = tree
}

// ClassName is the name declared by the compiled class.
func (c *JackCompiler) ClassName() string {
	return c.className
}

// Compile compiles the whole class and flushes the writer. Output
// written before a failure is incomplete and must be discarded.
func (c *JackCompiler) Compile() error {
	if err := c.advance(); err != nil {
		return err
	}
	if err := c.compileClass(); err != nil {
		return err
	}
	if c.current.tokenType != InvalidToken {
		return c.unexpected("end of input")
	}
	if err := c.tree.Close(); err != nil {
		return err
	}
	return c.writer.Close()
}

type compilationStep func() error

func chain(steps ...compilationStep) compilationStep {
	return func() error {
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	}
}

// advance consumes the current token and makes the next one current;
// at end of input the current token becomes an InvalidToken.
func (c *JackCompiler) advance() error {
	if c.current.tokenType != InvalidToken {
		c.tree.terminal(c.current)
	}
	if c.tokens.Scan() {
		c.current = c.tokens.Token()
		return nil
	}
	if err := c.tokens.Err(); err != nil {
		return err
	}
	c.current = Token{line: c.current.line}
	return nil
}

func (c *JackCompiler) unexpected(expectation string) error {
	return &SyntaxError{Line: c.current.line, Expected: expectation, Got: c.current.String()}
}

func (c *JackCompiler) isKeyword(keywords ...string) bool {
	return c.current.is(Keyword, keywords...)
}

func (c *JackCompiler) isSymbol(symbol string) bool {
	return c.current.is(SymbolToken, symbol)
}

// compileTerminal consumes a keyword or symbol with the given text.
func (c *JackCompiler) compileTerminal(terminal string) error {
	if !c.isKeyword(terminal) && !c.isSymbol(terminal) {
		return c.unexpected(fmt.Sprintf("%q", terminal))
	}
	return c.advance()
}

func (c *JackCompiler) terminal(terminal string) compilationStep {
	return func() error {
		return c.compileTerminal(terminal)
	}
}

// compileKeyword consumes one of keywords and returns it.
func (c *JackCompiler) compileKeyword(keywords ...string) (string, error) {
	if !c.isKeyword(keywords...) {
		return "", c.unexpected(strings.Join(keywords, " or "))
	}
	keyword := c.current.terminal
	return keyword, c.advance()
}

func (c *JackCompiler) compileIdentifier() (string, error) {
	if c.current.tokenType != Identifier {
		return "", c.unexpected("identifier")
	}
	name := c.current.terminal
	return name, c.advance()
}

// compileMemberName consumes the subroutine name after a '.'. A
// keyword is accepted there, as in obj.method(), since the name is
// only qualified by the class and never resolved in this class.
func (c *JackCompiler) compileMemberName() (string, error) {
	if c.current.tokenType != Identifier && c.current.tokenType != Keyword {
		return "", c.unexpected("subroutine name")
	}
	name := c.current.terminal
	return name, c.advance()
}

// compileType consumes int, char, boolean or a class name.
func (c *JackCompiler) compileType() (string, error) {
	if c.isKeyword("int", "char", "boolean") {
		return c.compileKeyword("int", "char", "boolean")
	}
	if c.current.tokenType != Identifier {
		return "", c.unexpected("type")
	}
	return c.compileIdentifier()
}

func (c *JackCompiler) define(name, variableType string, symbolType SymbolType, line int) error {
	symbol, err := c.symbols.Define(name, variableType, symbolType)
	if err != nil {
		return atLine(err, line)
	}
	c.trace.Printf("\tRegistered %s %s %q as %s %d", symbolType, variableType, name, symbolType.segment(), symbol.index)
	return nil
}

func (c *JackCompiler) lookup(name string, line int) (Symbol, error) {
	symbol, err := c.symbols.Lookup(name)
	if err != nil {
		return symbol, atLine(err, line)
	}
	return symbol, nil
}

// atLine attaches the source line to a symbol table error.
func atLine(err error, line int) error {
	var identifierErr *IdentifierError
	if errors.As(err, &identifierErr) {
		identifierErr.Line = line
	}
	return err
}

func (c *JackCompiler) newLabels(prefixes ...string) []string {
	labels := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		labels[i] = fmt.Sprintf("%s%d", prefix, c.labelCount)
	}
	c.labelCount++
	return labels
}

// class := 'class' className '{' classVarDec* subroutineDec* '}'
func (c *JackCompiler) compileClass() (err error) {
	c.trace.Printf("Compiling class")
	c.tree.open("class")
	defer c.tree.close("class")
	if err = c.compileTerminal("class"); err != nil {
		return
	}
	if c.className, err = c.compileIdentifier(); err != nil {
		return
	}
	if err = c.compileTerminal("{"); err != nil {
		return
	}
	for c.isKeyword("static", "field") {
		if err = c.compileClassVarDec(); err != nil {
			return
		}
	}
	for c.isKeyword("constructor", "function", "method") {
		if err = c.compileSubroutineDec(); err != nil {
			return
		}
	}
	return c.compileTerminal("}")
}

// classVarDec := ('static'|'field') type varName (',' varName)* ';'
func (c *JackCompiler) compileClassVarDec() error {
	c.trace.Printf("Compiling class var declaration")
	c.tree.open("classVarDec")
	defer c.tree.close("classVarDec")
	keyword, err := c.compileKeyword("static", "field")
	if err != nil {
		return err
	}
	symbolType := StaticSymbol
	if keyword == "field" {
		symbolType = FieldSymbol
	}
	return c.compileVarNames(symbolType)
}

// compileVarNames compiles type varName (',' varName)* ';' declaring
// every name with symbolType.
func (c *JackCompiler) compileVarNames(symbolType SymbolType) error {
	variableType, err := c.compileType()
	if err != nil {
		return err
	}
	for {
		line := c.current.line
		name, err := c.compileIdentifier()
		if err != nil {
			return err
		}
		if err := c.define(name, variableType, symbolType, line); err != nil {
			return err
		}
		if !c.isSymbol(",") {
			break
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
	return c.compileTerminal(";")
}

// subroutineDec := ('constructor'|'function'|'method') ('void'|type)
// subroutineName '(' parameterList ')' '{' varDec* statements '}'
func (c *JackCompiler) compileSubroutineDec() error {
	c.trace.Printf("Compiling subroutine dec")
	c.tree.open("subroutineDec")
	defer c.tree.close("subroutineDec")
	c.symbols.StartSubroutine()

	kind, err := c.compileKeyword("constructor", "function", "method")
	if err != nil {
		return err
	}
	if c.isKeyword("void") {
		err = c.advance()
	} else {
		_, err = c.compileType()
	}
	if err != nil {
		return err
	}
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	if kind == "method" {
		if err := c.define("this", c.className, ArgumentSymbol, c.current.line); err != nil {
			return err
		}
	}

	err = chain(
		c.terminal("("),
		c.compileParameterList,
		c.terminal(")"),
	)()
	if err != nil {
		return err
	}
	return c.compileSubroutineBody(kind, c.className+"."+name)
}

// subroutineBody := '{' varDec* statements '}'
func (c *JackCompiler) compileSubroutineBody(kind, functionName string) error {
	c.tree.open("subroutineBody")
	defer c.tree.close("subroutineBody")
	if err := c.compileTerminal("{"); err != nil {
		return err
	}
	for c.isKeyword("var") {
		if err := c.compileVarDec(); err != nil {
			return err
		}
	}

	c.writer.WriteFunction(functionName, c.symbols.VarCount(VarSymbol))
	switch kind {
	case "method":
		c.writer.WritePush(ArgumentVMSegment, 0)
		c.writer.WritePop(PointerVMSegment, 0)
	case "constructor":
		c.writer.WritePush(ConstVMSegment, c.symbols.VarCount(FieldSymbol))
		c.writer.WriteCall("Memory.alloc", 1)
		c.writer.WritePop(PointerVMSegment, 0)
	}
	c.trace.Printf("Symbols of %s:", functionName)
	for _, line := range strings.Split(strings.TrimSuffix(c.symbols.String(), "\n"), "\n") {
		c.trace.Print(line)
	}

	return chain(
		c.compileStatements,
		c.terminal("}"),
	)()
}

// parameterList := ((type varName) (',' type varName)*)?
func (c *JackCompiler) compileParameterList() error {
	c.trace.Printf("Compiling param list")
	c.tree.open("parameterList")
	defer c.tree.close("parameterList")
	if c.isSymbol(")") {
		return nil
	}
	for {
		variableType, err := c.compileType()
		if err != nil {
			return err
		}
		line := c.current.line
		name, err := c.compileIdentifier()
		if err != nil {
			return err
		}
		if err := c.define(name, variableType, ArgumentSymbol, line); err != nil {
			return err
		}
		if !c.isSymbol(",") {
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
}

// varDec := 'var' type varName (',' varName)* ';'
func (c *JackCompiler) compileVarDec() error {
	c.trace.Printf("Compiling var declaration")
	c.tree.open("varDec")
	defer c.tree.close("varDec")
	if err := c.compileTerminal("var"); err != nil {
		return err
	}
	return c.compileVarNames(VarSymbol)
}

func (c *JackCompiler) compileStatements() error {
	c.trace.Printf("Compiling statements")
	c.tree.open("statements")
	defer c.tree.close("statements")
	for c.isKeyword(statementKeywords...) {
		var err error
		switch c.current.terminal {
		case "let":
			err = c.compileLetStatement()
		case "if":
			err = c.compileIfStatement()
		case "while":
			err = c.compileWhileStatement()
		case "do":
			err = c.compileDoStatement()
		case "return":
			err = c.compileReturnStatement()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// letStatement := 'let' varName ('[' expression ']')? '=' expression ';'
//
// For an array element the target address is loaded into pointer 1
// before the right hand side is compiled; element reads on that side
// restore pointer 1 once they are done.
func (c *JackCompiler) compileLetStatement() error {
	c.trace.Printf("Compiling let statement")
	c.tree.open("letStatement")
	defer c.tree.close("letStatement")
	if err := c.compileTerminal("let"); err != nil {
		return err
	}
	line := c.current.line
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	symbol, err := c.lookup(name, line)
	if err != nil {
		return err
	}

	segment, index := symbol.symbolType.segment(), symbol.index
	if c.isSymbol("[") {
		if err := c.compileArrayAddress(symbol); err != nil {
			return err
		}
		segment, index = ThatVMSegment, 0
	}

	err = chain(
		c.terminal("="),
		c.compileExpression,
		c.terminal(";"),
	)()
	if err != nil {
		return err
	}
	c.writer.WritePop(segment, index)
	return nil
}

// compileArrayAddress compiles '[' expression ']' after an array
// variable and points that at the element.
func (c *JackCompiler) compileArrayAddress(array Symbol) error {
	c.writer.WritePush(array.symbolType.segment(), array.index)
	err := chain(
		c.terminal("["),
		c.compileExpression,
		c.terminal("]"),
	)()
	if err != nil {
		return err
	}
	c.writer.WriteArithmetic(AddVMOperation)
	c.writer.WritePop(PointerVMSegment, 1)
	return nil
}

// ifStatement := 'if' '(' expression ')' '{' statements '}'
// ('else' '{' statements '}')?
func (c *JackCompiler) compileIfStatement() error {
	c.trace.Printf("Compiling if statement")
	c.tree.open("ifStatement")
	defer c.tree.close("ifStatement")
	labels := c.newLabels("IF_FALSE", "IF_END")
	elseLabel, endLabel := labels[0], labels[1]

	err := chain(
		c.terminal("if"),
		c.terminal("("),
		c.compileExpression,
		c.terminal(")"),
	)()
	if err != nil {
		return err
	}
	c.writer.WriteArithmetic(NotVMOperation)
	c.writer.WriteIf(elseLabel)

	err = chain(
		c.terminal("{"),
		c.compileStatements,
		c.terminal("}"),
	)()
	if err != nil {
		return err
	}
	c.writer.WriteGoto(endLabel)
	c.writer.WriteLabel(elseLabel)

	if c.isKeyword("else") {
		err = chain(
			c.terminal("else"),
			c.terminal("{"),
			c.compileStatements,
			c.terminal("}"),
		)()
		if err != nil {
			return err
		}
	}
	c.writer.WriteLabel(endLabel)
	return nil
}

// whileStatement := 'while' '(' expression ')' '{' statements '}'
func (c *JackCompiler) compileWhileStatement() error {
	c.trace.Printf("Compiling while statement")
	c.tree.open("whileStatement")
	defer c.tree.close("whileStatement")
	labels := c.newLabels("WHILE_EXP", "WHILE_END")
	testLabel, endLabel := labels[0], labels[1]

	if err := c.compileTerminal("while"); err != nil {
		return err
	}
	c.writer.WriteLabel(testLabel)
	err := chain(
		c.terminal("("),
		c.compileExpression,
		c.terminal(")"),
	)()
	if err != nil {
		return err
	}
	c.writer.WriteArithmetic(NotVMOperation)
	c.writer.WriteIf(endLabel)

	err = chain(
		c.terminal("{"),
		c.compileStatements,
		c.terminal("}"),
	)()
	if err != nil {
		return err
	}
	c.writer.WriteGoto(testLabel)
	c.writer.WriteLabel(endLabel)
	return nil
}

// doStatement := 'do' subroutineCall ';'
func (c *JackCompiler) compileDoStatement() error {
	c.trace.Printf("Compiling do statement")
	c.tree.open("doStatement")
	defer c.tree.close("doStatement")
	if err := c.compileTerminal("do"); err != nil {
		return err
	}
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	if err := c.compileSubroutineCall(name); err != nil {
		return err
	}
	if err := c.compileTerminal(";"); err != nil {
		return err
	}
	c.writer.WritePop(TempVMSegment, 0)
	return nil
}

// returnStatement := 'return' expression? ';'
func (c *JackCompiler) compileReturnStatement() error {
	c.trace.Printf("Compiling return statement")
	c.tree.open("returnStatement")
	defer c.tree.close("returnStatement")
	if err := c.compileTerminal("return"); err != nil {
		return err
	}
	if c.isSymbol(";") {
		c.writer.WritePush(ConstVMSegment, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal(";"); err != nil {
		return err
	}
	c.writer.WriteReturn()
	return nil
}

// expression := term (op term)*
//
// Operators apply left to right without precedence.
func (c *JackCompiler) compileExpression() error {
	c.trace.Printf("Compiling expression")
	c.tree.open("expression")
	defer c.tree.close("expression")
	if err := c.compileTerm(); err != nil {
		return err
	}
	for c.current.tokenType == SymbolToken {
		writeOperation, ok := binaryOperations[c.current.terminal]
		if !ok {
			break
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		writeOperation(c.writer)
	}
	return nil
}

// term := integerConstant | stringConstant | keywordConstant | varName
// | varName '[' expression ']' | subroutineCall | '(' expression ')'
// | unaryOp term
func (c *JackCompiler) compileTerm() error {
	c.trace.Printf("Compiling term")
	c.tree.open("term")
	defer c.tree.close("term")
	token := c.current
	switch token.tokenType {
	case IntegerConstant:
		c.writer.WritePush(ConstVMSegment, int(token.asInt()))
		return c.advance()
	case StringConstant:
		c.compileStringConstant(token.asString())
		return c.advance()
	case Keyword:
		return c.compileKeywordConstant()
	case SymbolToken:
		switch token.terminal {
		case "(":
			return chain(
				c.terminal("("),
				c.compileExpression,
				c.terminal(")"),
			)()
		case "-", "~":
			if err := c.advance(); err != nil {
				return err
			}
			if err := c.compileTerm(); err != nil {
				return err
			}
			if token.terminal == "-" {
				c.writer.WriteArithmetic(NegVMOperation)
			} else {
				c.writer.WriteArithmetic(NotVMOperation)
			}
			return nil
		}
	case Identifier:
		return c.compileVarNameSubterm()
	}
	return c.unexpected("term")
}

func (c *JackCompiler) compileKeywordConstant() error {
	switch c.current.terminal {
	case "true":
		c.writer.WritePush(ConstVMSegment, 1)
		c.writer.WriteArithmetic(NegVMOperation)
	case "false", "null":
		c.writer.WritePush(ConstVMSegment, 0)
	case "this":
		c.writer.WritePush(PointerVMSegment, 0)
	default:
		return c.unexpected("term")
	}
	return c.advance()
}

// compileStringConstant builds the string with String.new and one
// String.appendChar per character, keeping the string in temp 0
// between appends.
func (c *JackCompiler) compileStringConstant(constant string) {
	characters := []rune(constant)
	c.writer.WritePush(ConstVMSegment, len(characters))
	c.writer.WriteCall("String.new", 1)
	c.writer.WritePop(TempVMSegment, 0)
	for _, character := range characters {
		c.writer.WritePush(TempVMSegment, 0)
		c.writer.WritePush(ConstVMSegment, int(character))
		c.writer.WriteCall("String.appendChar", 2)
		c.writer.WritePop(TempVMSegment, 0)
	}
	c.writer.WritePush(TempVMSegment, 0)
}

// compileVarNameSubterm compiles a term starting with an identifier:
// a variable, an array element or a subroutine call.
func (c *JackCompiler) compileVarNameSubterm() error {
	line := c.current.line
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	if c.isSymbol("(") || c.isSymbol(".") {
		return c.compileSubroutineCall(name)
	}

	symbol, err := c.lookup(name, line)
	if err != nil {
		return err
	}
	if !c.isSymbol("[") {
		c.writer.WritePush(symbol.symbolType.segment(), symbol.index)
		return nil
	}

	// The enclosing statement may have pointer 1 in use, keep it on
	// the stack while the element is read.
	c.writer.WritePush(PointerVMSegment, 1)
	if err := c.compileArrayAddress(symbol); err != nil {
		return err
	}
	c.writer.WritePush(ThatVMSegment, 0)
	c.writer.WritePop(TempVMSegment, 0)
	c.writer.WritePop(PointerVMSegment, 1)
	c.writer.WritePush(TempVMSegment, 0)
	return nil
}

// compileSubroutineCall compiles the rest of a call whose first
// identifier, name, has been consumed:
//
//	name(args)            method of the current object
//	variable.method(args) method of the object held by a variable
//	Class.function(args)  function or constructor
func (c *JackCompiler) compileSubroutineCall(name string) error {
	c.trace.Printf("Compiling call")
	var callee string
	nArgs := 0

	if c.isSymbol(".") {
		if err := c.advance(); err != nil {
			return err
		}
		subroutineName, err := c.compileMemberName()
		if err != nil {
			return err
		}
		if symbol, err := c.symbols.Lookup(name); err == nil {
			c.writer.WritePush(symbol.symbolType.segment(), symbol.index)
			nArgs++
			callee = symbol.variableType + "." + subroutineName
		} else {
			callee = name + "." + subroutineName
		}
	} else {
		c.writer.WritePush(PointerVMSegment, 0)
		nArgs++
		callee = c.className + "." + name
	}

	if err := c.compileTerminal("("); err != nil {
		return err
	}
	n, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if err := c.compileTerminal(")"); err != nil {
		return err
	}
	c.writer.WriteCall(callee, nArgs+n)
	return nil
}

// expressionList := (expression (',' expression)*)?
func (c *JackCompiler) compileExpressionList() (int, error) {
	c.trace.Printf("Compiling expression list")
	c.tree.open("expressionList")
	defer c.tree.close("expressionList")
	if c.isSymbol(")") {
		return 0, nil
	}
	n := 0
	for {
		if err := c.compileExpression(); err != nil {
			return n, err
		}
		n++
		if !c.isSymbol(",") {
			return n, nil
		}
		if err := c.advance(); err != nil {
			return n, err
		}
	}
}
