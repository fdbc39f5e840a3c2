// Package sema implements the two name-analysis passes and the type
// analyser: scoped symbol resolution, duplicate and undefined-identifier
// detection, implicit numeric upcasting, and operator-overload/
// constructor resolution.
//
// Every scope-opening construct (function, class, block, lambda) gets
// its own Scope in a full scope chain; classes additionally carry a
// table of fields, operator overloads and constructors.
package sema

import (
	"fmt"

	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/diag"
	"github.com/plasm-lang/plasm/internal/types"
)

// SymbolKind discriminates what a Symbol names.
type SymbolKind int

const (
	SymConstant SymbolKind = iota
	SymFunction
	SymProcedure
	SymClass
	SymParameter
	SymVariable
	SymField
)

// Symbol is one entry of a Scope: its name, kind, type, declaring AST
// node, and whether it has been assigned yet.
type Symbol struct {
	Name        string
	Kind        SymbolKind
	Type        *types.PlasmType
	Declaration ast.Node
	Assigned    bool
}

// Scope is one link of the scope chain.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Declare adds name to this scope. Re-declaration within the same scope
// is an error; shadowing an outer scope is allowed.
func (s *Scope) Declare(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("error: %s '%s' already declared", symbolKindNoun(sym.Kind), sym.Name)
	}
	s.symbols[sym.Name] = sym
	return nil
}

func symbolKindNoun(k SymbolKind) string {
	switch k {
	case SymConstant:
		return "constant"
	case SymFunction:
		return "function"
	case SymProcedure:
		return "procedure"
	case SymClass:
		return "class"
	case SymParameter:
		return "parameter"
	case SymField:
		return "field"
	default:
		return "variable"
	}
}

// Lookup walks this scope and its ancestors.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// ClassInfo records a class's fields, operator overloads and
// constructors for use during type analysis and IR lowering.
type ClassInfo struct {
	Name         string
	Fields       []*ast.FieldDecl
	Operators    map[string]*ast.OperatorDecl // symbol -> decl
	Constructors []*ast.ConstructorDecl
	Methods      []ast.ClassMember // FunctionDecl/ProcedureDecl
}

// SymbolTable is the compilation unit's global symbol and class registry,
// built once by BuildSymbolTable and then consulted read-only by later
// phases.
type SymbolTable struct {
	Global  *Scope
	Classes map[string]*ClassInfo
	Errors  diag.List

	// NodeScope records, per scope-opening AST node, the Scope created for
	// it, so the type analyser can re-enter the same lexical structure.
	NodeScope map[ast.Node]*Scope

	// Refs is the name-resolution side-table: every resolved identifier
	// use (including assignment targets) maps to the Symbol it refers to.
	Refs map[ast.Node]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Global:    newScope(nil),
		Classes:   make(map[string]*ClassInfo),
		NodeScope: make(map[ast.Node]*Scope),
	}
}

// declareIn creates a symbol of the given kind and declares it in scope;
// name analysis uses it for every declaration, parameter and binding.
func (st *SymbolTable) declareIn(scope *Scope, name string, kind SymbolKind, typ *types.PlasmType, decl ast.Node) (*Symbol, error) {
	sym := &Symbol{Name: name, Kind: kind, Type: typ, Declaration: decl, Assigned: kind == SymParameter || kind == SymField}
	if err := scope.Declare(sym); err != nil {
		return nil, err
	}
	return sym, nil
}
