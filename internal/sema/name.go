package sema

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/types"
)

// BuildSymbolTable runs both name-analysis passes over a parsed program:
// pass one registers every top-level declaration in the outermost scope
// (reporting duplicates), pass two walks scope-opening constructs and
// resolves every identifier use, recording results in st.Refs (the
// side-table keyed by AST-node identity) rather than mutating the AST.
func BuildSymbolTable(prog *ast.Program) *SymbolTable {
	st := NewSymbolTable()
	st.Refs = make(map[ast.Node]*Symbol)

	for _, decl := range prog.Declarations {
		st.registerTopLevel(decl)
	}
	for _, decl := range prog.Declarations {
		st.resolveDeclaration(decl, st.Global)
	}
	return st
}

func (st *SymbolTable) registerTopLevel(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.ConstDecl:
		typ := resolveTypeSpecShallow(d.Type)
		if _, err := st.declareIn(st.Global, d.Name, SymConstant, typ, d); err != nil {
			st.Errors.Addf("Name", d.Line, d.Column, "%s", err.Error())
		}
	case *ast.FunctionDecl:
		typ := functionTypeOf(d.Params, d.ReturnType)
		if _, err := st.declareIn(st.Global, d.Name, SymFunction, typ, d); err != nil {
			st.Errors.Addf("Name", d.Line, d.Column, "%s", err.Error())
		}
	case *ast.ProcedureDecl:
		typ := functionTypeOf(d.Params, d.ReturnType)
		if _, err := st.declareIn(st.Global, d.Name, SymProcedure, typ, d); err != nil {
			st.Errors.Addf("Name", d.Line, d.Column, "%s", err.Error())
		}
	case *ast.ClassDecl:
		if _, err := st.declareIn(st.Global, d.Name, SymClass, types.NamedType(d.Name), d); err != nil {
			st.Errors.Addf("Name", d.Line, d.Column, "%s", err.Error())
		}
		st.registerClass(d)
	}
}

func (st *SymbolTable) registerClass(d *ast.ClassDecl) {
	info := &ClassInfo{Name: d.Name, Operators: make(map[string]*ast.OperatorDecl)}
	for _, m := range d.Members {
		switch mem := m.(type) {
		case *ast.FieldDecl:
			info.Fields = append(info.Fields, mem)
		case *ast.ConstructorDecl:
			info.Constructors = append(info.Constructors, mem)
		case *ast.OperatorDecl:
			info.Operators[mem.Symbol] = mem
		case *ast.FunctionDecl, *ast.ProcedureDecl:
			info.Methods = append(info.Methods, mem)
		}
	}
	st.Classes[d.Name] = info
}

// resolveTypeSpecShallow resolves a TypeSpec without requiring the full
// class registry (used while registering top-level const declarations,
// before class wiring is guaranteed complete for forward references).
func resolveTypeSpecShallow(t *ast.TypeSpec) *types.PlasmType {
	if t == nil {
		return nil
	}
	return ResolveTypeSpec(t)
}

// ResolveTypeSpec converts a syntax-level TypeSpec into a semantic
// PlasmType.
func ResolveTypeSpec(t *ast.TypeSpec) *types.PlasmType {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case ast.TypeVoid:
		return types.Void
	case ast.TypeAny:
		return types.Any
	case ast.TypeSimple:
		if prim := types.PrimitiveByName(t.Name); prim != nil {
			return prim
		}
		return types.NamedType(t.Name)
	case ast.TypeGeneric:
		args := make([]*types.PlasmType, len(t.GenericArgs))
		for i, a := range t.GenericArgs {
			args[i] = ResolveTypeSpec(a)
		}
		return types.GenericType(t.GenericName, args...)
	case ast.TypeFunc:
		params := make([]*types.PlasmType, len(t.FuncParams))
		for i, p := range t.FuncParams {
			params[i] = ResolveTypeSpec(p)
		}
		return types.FunctionType(params, ResolveTypeSpec(t.FuncReturns))
	case ast.TypeTuple:
		args := make([]*types.PlasmType, len(t.TupleElems))
		for i, e := range t.TupleElems {
			args[i] = ResolveTypeSpec(e)
		}
		return types.GenericType("tuple", args...)
	}
	return types.Void
}

func functionTypeOf(params []*ast.Param, ret *ast.TypeSpec) *types.PlasmType {
	ptypes := make([]*types.PlasmType, len(params))
	for i, p := range params {
		ptypes[i] = ResolveTypeSpec(p.Type)
	}
	return types.FunctionType(ptypes, ResolveTypeSpec(ret))
}

func (st *SymbolTable) resolveDeclaration(decl ast.Declaration, scope *Scope) {
	switch d := decl.(type) {
	case *ast.ConstDecl:
		st.resolveExpr(d.Value, scope)
	case *ast.FunctionDecl:
		st.resolveFunctionLike(d, d.Params, d.Body, scope)
	case *ast.ProcedureDecl:
		st.resolveFunctionLike(d, d.Params, d.Body, scope)
	case *ast.ClassDecl:
		st.resolveClass(d, scope)
	}
}

func (st *SymbolTable) resolveFunctionLike(node ast.Node, params []*ast.Param, body *ast.Block, parent *Scope) {
	fscope := newScope(parent)
	st.NodeScope[node] = fscope
	for _, p := range params {
		if _, err := st.declareIn(fscope, p.Name, SymParameter, ResolveTypeSpec(p.Type), p); err != nil {
			st.Errors.Addf("Name", p.Line, p.Column, "%s", err.Error())
		}
	}
	st.resolveBlock(body, fscope)
}

func (st *SymbolTable) resolveClass(d *ast.ClassDecl, parent *Scope) {
	cscope := newScope(parent)
	st.NodeScope[d] = cscope
	info := st.Classes[d.Name]
	self := types.NamedType(d.Name)

	for _, f := range info.Fields {
		if _, err := st.declareIn(cscope, f.Name, SymField, ResolveTypeSpec(f.Type), f); err != nil {
			st.Errors.Addf("Name", f.Line, f.Column, "%s", err.Error())
		}
		if f.Default != nil {
			st.resolveExpr(f.Default, cscope)
		}
	}
	for _, c := range info.Constructors {
		cfscope := newScope(cscope)
		st.NodeScope[c] = cfscope
		for _, p := range c.Params {
			if _, err := st.declareIn(cfscope, p.Name, SymParameter, ResolveTypeSpec(p.Type), p); err != nil {
				st.Errors.Addf("Name", p.Line, p.Column, "%s", err.Error())
			}
		}
		st.resolveBlock(c.Body, cfscope)
	}
	for _, op := range info.Operators {
		ofscope := newScope(cscope)
		st.NodeScope[op] = ofscope
		if _, err := st.declareIn(ofscope, "self", SymParameter, self, op); err != nil {
			st.Errors.Addf("Name", op.Line, op.Column, "%s", err.Error())
		}
		if op.Param != nil {
			if _, err := st.declareIn(ofscope, op.Param.Name, SymParameter, ResolveTypeSpec(op.Param.Type), op.Param); err != nil {
				st.Errors.Addf("Name", op.Param.Line, op.Param.Column, "%s", err.Error())
			}
		}
		st.resolveBlock(op.Body, ofscope)
	}
	for _, m := range info.Methods {
		switch meth := m.(type) {
		case *ast.FunctionDecl:
			st.resolveFunctionLike(meth, meth.Params, meth.Body, cscope)
		case *ast.ProcedureDecl:
			st.resolveFunctionLike(meth, meth.Params, meth.Body, cscope)
		}
	}
}

func (st *SymbolTable) resolveBlock(b *ast.Block, parent *Scope) {
	if b == nil {
		return
	}
	bscope := newScope(parent)
	st.NodeScope[b] = bscope
	for _, s := range b.Statements {
		st.resolveStmt(s, bscope)
	}
}

func (st *SymbolTable) resolveStmt(s ast.Stmt, scope *Scope) {
	switch node := s.(type) {
	case *ast.Block:
		st.resolveBlock(node, scope)
	case *ast.VarDecl:
		for _, b := range node.Bindings {
			if b.Init != nil {
				st.resolveExpr(b.Init, scope)
			}
			typ := ResolveTypeSpec(node.Type)
			sym, err := st.declareIn(scope, b.Name, SymVariable, typ, b)
			if err != nil {
				st.Errors.Addf("Name", b.Line, b.Column, "%s", err.Error())
				continue
			}
			if b.Init != nil {
				sym.Assigned = true
			}
		}
	case *ast.IfStatement:
		st.resolveExpr(node.Cond, scope)
		st.resolveBlock(node.Then, scope)
		st.resolveBlock(node.Else, scope)
	case *ast.WhileStatement:
		st.resolveExpr(node.Cond, scope)
		st.resolveBlock(node.Body, scope)
	case *ast.ReturnStatement:
		if node.Value != nil {
			st.resolveExpr(node.Value, scope)
		}
	case *ast.ExpressionStatement:
		st.resolveExpr(node.Expr, scope)
	}
}

func (st *SymbolTable) resolveExpr(e ast.Expr, scope *Scope) {
	switch node := e.(type) {
	case nil:
		return
	case *ast.Identifier:
		sym := scope.Lookup(node.Name)
		if sym == nil {
			st.Errors.Addf("Name", node.Line, node.Column, "Undefined identifier: %s", node.Name)
			return
		}
		st.Refs[node] = sym
	case *ast.BinaryExpr:
		st.resolveExpr(node.Left, scope)
		st.resolveExpr(node.Right, scope)
	case *ast.UnaryExpr:
		st.resolveExpr(node.Operand, scope)
	case *ast.CallExpr:
		// A bare-identifier callee that resolves to a class is a
		// constructor call; resolve it like any other identifier so the
		// type analyser can distinguish the cases later.
		st.resolveExpr(node.Callee, scope)
		for _, a := range node.Args {
			st.resolveExpr(a, scope)
		}
	case *ast.MemberAccessExpr:
		st.resolveExpr(node.Receiver, scope)
	case *ast.TupleExpr:
		for _, el := range node.Elements {
			st.resolveExpr(el, scope)
		}
	case *ast.ConstructorCallExpr:
		if scope.Lookup(node.ClassName) == nil {
			st.Errors.Addf("Name", node.Line, node.Column, "unknown class on constructor call: %s", node.ClassName)
		}
		for _, a := range node.Args {
			st.resolveExpr(a, scope)
		}
	case *ast.CastExpr:
		st.resolveExpr(node.Value, scope)
	case *ast.TypeTestExpr:
		st.resolveExpr(node.Value, scope)
	case *ast.AssignmentExpr:
		sym := scope.Lookup(node.Target.Name)
		if sym == nil {
			st.Errors.Addf("Name", node.Target.Line, node.Target.Column, "Undefined identifier: %s", node.Target.Name)
		} else if sym.Kind == SymConstant || sym.Kind == SymFunction || sym.Kind == SymProcedure {
			st.Errors.Addf("Name", node.Line, node.Column, "illegal assignment target: %s", node.Target.Name)
		} else {
			st.Refs[node.Target] = sym
			sym.Assigned = true
		}
		st.resolveExpr(node.Value, scope)
	case *ast.LambdaExpr:
		lscope := newScope(scope)
		st.NodeScope[node] = lscope
		for _, p := range node.Params {
			if _, err := st.declareIn(lscope, p.Name, SymParameter, ResolveTypeSpec(p.Type), p); err != nil {
				st.Errors.Addf("Name", p.Line, p.Column, "%s", err.Error())
			}
		}
		if node.BodyExpr != nil {
			st.resolveExpr(node.BodyExpr, lscope)
		}
		st.resolveBlock(node.BodyBlock, lscope)
	case *ast.ArrayAllocExpr:
		st.resolveExpr(node.Size, scope)
	case *ast.ArrayIndexExpr:
		st.resolveExpr(node.Array, scope)
		st.resolveExpr(node.Index, scope)
	case *ast.ArrayLiteralExpr:
		for _, el := range node.Elements {
			st.resolveExpr(el, scope)
		}
	case *ast.StringInterpolationExpr:
		for _, el := range node.Exprs {
			st.resolveExpr(el, scope)
		}
	}
}
