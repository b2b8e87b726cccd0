package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestSymbolTable(t *testing.T) {
	t.Run("IndicesPerKind", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "count", "int", StaticSymbol)
		mustDefine(t, s, "x", "int", FieldSymbol)
		mustDefine(t, s, "y", "int", FieldSymbol)
		mustDefine(t, s, "instances", "Array", StaticSymbol)
		mustDefine(t, s, "a", "int", ArgumentSymbol)
		mustDefine(t, s, "i", "int", VarSymbol)
		mustDefine(t, s, "b", "Point", ArgumentSymbol)

		expected := map[string]struct {
			kind  SymbolType
			typ   string
			index int
		}{
			"count":     {StaticSymbol, "int", 0},
			"instances": {StaticSymbol, "Array", 1},
			"x":         {FieldSymbol, "int", 0},
			"y":         {FieldSymbol, "int", 1},
			"a":         {ArgumentSymbol, "int", 0},
			"b":         {ArgumentSymbol, "Point", 1},
			"i":         {VarSymbol, "int", 0},
		}
		for name, want := range expected {
			if got := s.KindOf(name); got != want.kind {
				t.Errorf("KindOf(%s): expected %q, got %q", name, want.kind, got)
			}
			if got := s.TypeOf(name); got != want.typ {
				t.Errorf("TypeOf(%s): expected %q, got %q", name, want.typ, got)
			}
			if got := s.IndexOf(name); got != want.index {
				t.Errorf("IndexOf(%s): expected %d, got %d", name, want.index, got)
			}
		}

		counts := map[SymbolType]int{StaticSymbol: 2, FieldSymbol: 2, ArgumentSymbol: 2, VarSymbol: 1, NoneSymbol: 0}
		for kind, want := range counts {
			if got := s.VarCount(kind); got != want {
				t.Errorf("VarCount(%q): expected %d, got %d", kind, want, got)
			}
		}
	})

	t.Run("FieldIndicesAreDense", func(t *testing.T) {
		for _, n := range []int{0, 1, 5, 40} {
			s := NewSymbolTable()
			seen := map[int]bool{}
			for i := 0; i < n; i++ {
				symbol := mustDefine(t, s, fmt.Sprintf("f%d", i), "int", FieldSymbol)
				seen[symbol.index] = true
			}
			if s.VarCount(FieldSymbol) != n {
				t.Errorf("expected %d fields, got %d", n, s.VarCount(FieldSymbol))
			}
			for i := 0; i < n; i++ {
				if !seen[i] {
					t.Errorf("%d fields: index %d was not assigned", n, i)
				}
			}
		}
	})

	t.Run("StartSubroutineClearsSubroutineScope", func(t *testing.T) {
		s := NewSymbolTable()
		s.StartSubroutine()
		mustDefine(t, s, "x", "int", FieldSymbol)
		mustDefine(t, s, "a", "int", ArgumentSymbol)
		mustDefine(t, s, "v", "int", VarSymbol)

		s.StartSubroutine()
		s.StartSubroutine()
		if s.KindOf("a") != NoneSymbol || s.KindOf("v") != NoneSymbol {
			t.Errorf("subroutine symbols survived StartSubroutine:\n%s", s)
		}
		if s.KindOf("x") != FieldSymbol {
			t.Errorf("class symbol lost by StartSubroutine")
		}
		if s.VarCount(ArgumentSymbol) != 0 || s.VarCount(VarSymbol) != 0 {
			t.Errorf("subroutine counts not reset")
		}

		symbol := mustDefine(t, s, "w", "int", VarSymbol)
		if symbol.index != 0 {
			t.Errorf("expected index 0 in a fresh subroutine, got %d", symbol.index)
		}
	})

	t.Run("SubroutineScopeShadowsClassScope", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "x", "int", FieldSymbol)
		mustDefine(t, s, "x", "boolean", VarSymbol)

		symbol, err := s.Lookup("x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if symbol.symbolType != VarSymbol || symbol.variableType != "boolean" {
			t.Errorf("expected the local x, got %+v", symbol)
		}

		s.StartSubroutine()
		if s.KindOf("x") != FieldSymbol {
			t.Errorf("expected the field x once the subroutine ends")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		s := NewSymbolTable()
		if s.KindOf("missing") != NoneSymbol {
			t.Errorf("expected NoneSymbol")
		}
		if s.TypeOf("missing") != "" {
			t.Errorf("expected empty type")
		}
		if s.IndexOf("missing") != -1 {
			t.Errorf("expected index -1")
		}
		_, err := s.Lookup("missing")
		var identifierErr *IdentifierError
		if !errors.As(err, &identifierErr) || identifierErr.Name != "missing" {
			t.Errorf("expected IdentifierError for missing, got %v", err)
		}
	})

	t.Run("DefineNoneKind", func(t *testing.T) {
		s := NewSymbolTable()
		_, err := s.Define("x", "int", NoneSymbol)
		var identifierErr *IdentifierError
		if !errors.As(err, &identifierErr) {
			t.Fatalf("expected IdentifierError, got %v", err)
		}
		if s.KindOf("x") != NoneSymbol {
			t.Errorf("x must not be declared")
		}
	})

	t.Run("Redefinition", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "x", "int", FieldSymbol)

		_, err := s.Define("x", "char", StaticSymbol)
		var identifierErr *IdentifierError
		if !errors.As(err, &identifierErr) {
			t.Fatalf("expected IdentifierError, got %v", err)
		}
		if s.TypeOf("x") != "int" || s.KindOf("x") != FieldSymbol {
			t.Errorf("first declaration must stay in effect")
		}
		if s.VarCount(StaticSymbol) != 0 {
			t.Errorf("rejected declaration must not take an index")
		}
	})
}

func mustDefine(t *testing.T, s *SymbolTable, name, variableType string, symbolType SymbolType) Symbol {
	t.Helper()
	symbol, err := s.Define(name, variableType, symbolType)
	if err != nil {
		t.Fatalf("Define(%s): %v", name, err)
	}
	return symbol
}
