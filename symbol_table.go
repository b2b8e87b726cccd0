package main

import (
	"fmt"
	"sort"
	"strings"
)

type Scope string

const (
	FunctionScope Scope = "FunctionScope"
	ClassScope    Scope = "ClassScope"
)

// scopeTable holds the symbols of one scope together with the next free
// index of every kind in it.
type scopeTable struct {
	symbols map[string]Symbol
	counts  map[SymbolType]int
}

func newScopeTable() scopeTable {
	return scopeTable{
		symbols: make(map[string]Symbol),
		counts:  make(map[SymbolType]int),
	}
}

func (t *scopeTable) register(name string, symbol Symbol) (Symbol, error) {
	if _, ok := t.symbols[name]; ok {
		return Symbol{}, &IdentifierError{Name: name, Reason: "already declared in this scope"}
	}
	symbol.name = name
	symbol.index = t.counts[symbol.symbolType]
	t.counts[symbol.symbolType]++
	t.symbols[name] = symbol
	return symbol, nil
}

type SymbolTable struct {
	classScopeTable    scopeTable
	functionScopeTable scopeTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScopeTable:    newScopeTable(),
		functionScopeTable: newScopeTable(),
	}
}

func (s *SymbolTable) tableFor(symbolType SymbolType) *scopeTable {
	switch {
	case symbolType.inClassScope():
		return &s.classScopeTable
	case symbolType.inSubroutineScope():
		return &s.functionScopeTable
	}
	return nil
}

// StartSubroutine empties the subroutine scope.
func (s *SymbolTable) StartSubroutine() {
	s.functionScopeTable = newScopeTable()
}

// Define declares name in the scope implied by symbolType and assigns
// it the next index of that kind. Declaring a name twice in one scope
// is an error; the first declaration stays in effect.
func (s *SymbolTable) Define(name, variableType string, symbolType SymbolType) (Symbol, error) {
	table := s.tableFor(symbolType)
	if table == nil {
		return Symbol{}, &IdentifierError{Name: name, Reason: fmt.Sprintf("invalid variable kind %q", symbolType)}
	}
	return table.register(name, Symbol{symbolType: symbolType, variableType: variableType})
}

func (s *SymbolTable) VarCount(symbolType SymbolType) int {
	if table := s.tableFor(symbolType); table != nil {
		return table.counts[symbolType]
	}
	return 0
}

// Lookup searches the subroutine scope, then the class scope.
func (s *SymbolTable) Lookup(name string) (Symbol, error) {
	if symbol, ok := s.functionScopeTable.symbols[name]; ok {
		return symbol, nil
	}
	if symbol, ok := s.classScopeTable.symbols[name]; ok {
		return symbol, nil
	}
	return Symbol{}, &IdentifierError{Name: name, Reason: "not declared"}
}

// KindOf returns NoneSymbol for unknown names.
func (s *SymbolTable) KindOf(name string) SymbolType {
	symbol, err := s.Lookup(name)
	if err != nil {
		return NoneSymbol
	}
	return symbol.symbolType
}

// TypeOf returns "" for unknown names.
func (s *SymbolTable) TypeOf(name string) string {
	symbol, _ := s.Lookup(name)
	return symbol.variableType
}

// IndexOf returns -1 for unknown names.
func (s *SymbolTable) IndexOf(name string) int {
	symbol, err := s.Lookup(name)
	if err != nil {
		return -1
	}
	return symbol.index
}

func (s *SymbolTable) String() string {
	var b strings.Builder
	for _, scope := range []struct {
		name  Scope
		table scopeTable
	}{{ClassScope, s.classScopeTable}, {FunctionScope, s.functionScopeTable}} {
		names := make([]string, 0, len(scope.table.symbols))
		for name := range scope.table.symbols {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(&b, "%s:\n", scope.name)
		for _, name := range names {
			symbol := scope.table.symbols[name]
			fmt.Fprintf(&b, "\t%-12s %-10s %-8s %d\n", name, symbol.variableType, symbol.symbolType, symbol.index)
		}
	}
	return b.String()
}
