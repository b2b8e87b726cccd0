package main

// SymbolType is the kind of a declared variable. Static and field
// variables live in the class scope, arguments and locals in the
// subroutine scope.
type SymbolType string

const (
	StaticSymbol   SymbolType = "static"
	FieldSymbol    SymbolType = "field"
	ArgumentSymbol SymbolType = "argument"
	VarSymbol      SymbolType = "var"
	NoneSymbol     SymbolType = ""
)

func (s SymbolType) inClassScope() bool {
	return s == StaticSymbol || s == FieldSymbol
}

func (s SymbolType) inSubroutineScope() bool {
	return s == ArgumentSymbol || s == VarSymbol
}

// segment maps a variable kind to the VM segment holding it.
func (s SymbolType) segment() VMSegmentType {
	switch s {
	case StaticSymbol:
		return StaticVMSegment
	case FieldSymbol:
		return ThisVMSegment
	case ArgumentSymbol:
		return ArgumentVMSegment
	case VarSymbol:
		return LocalVMSegment
	}
	return InvalidVMSegmentType
}

type Symbol struct {
	name         string
	symbolType   SymbolType
	variableType string
	index        int
}
