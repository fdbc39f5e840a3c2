package sema

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/diag"
	"github.com/plasm-lang/plasm/internal/types"
)

// TypeTable is the type analyser's side-table mapping AST-expression
// node identity to its inferred PlasmType, the source of truth every
// later phase reads.
type TypeTable map[ast.Node]*types.PlasmType

// TypeChecker carries the mutable state of one type-analysis pass:
// the symbol table it walks alongside, the type side-table it fills in,
// and the enclosing function's declared return type (needed to check
// `return` statements).
type TypeChecker struct {
	Symbols     *SymbolTable
	Types       TypeTable
	Errors      diag.List
	currentFunc *types.PlasmType // the enclosing function/method/lambda's (params)->return type
}

func NewTypeChecker(st *SymbolTable) *TypeChecker {
	return &TypeChecker{Symbols: st, Types: make(TypeTable)}
}

// CheckProgram type-checks every declaration, accumulating diagnostics
// without aborting: a panic inside one declaration's check
// is recovered and folded into tc.Errors as an internal error so a single
// broken declaration cannot abort the whole pass.
func CheckProgram(prog *ast.Program, st *SymbolTable) *TypeChecker {
	tc := NewTypeChecker(st)
	for _, decl := range prog.Declarations {
		tc.checkDeclarationSafely(decl)
	}
	return tc
}

func (tc *TypeChecker) checkDeclarationSafely(decl ast.Declaration) {
	defer func() {
		if r := recover(); r != nil {
			tc.Errors.Addf("Type analysis", 0, 0, "Type analysis error: %v", r)
		}
	}()
	tc.checkDeclaration(decl)
}

func (tc *TypeChecker) checkDeclaration(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.ConstDecl:
		declared := ResolveTypeSpec(d.Type)
		valType := tc.checkExpr(d.Value, declared)
		tc.Types[d] = orElse(declared, valType)
	case *ast.FunctionDecl:
		tc.checkFunctionLike(d.Params, ResolveTypeSpec(d.ReturnType), d.Body)
	case *ast.ProcedureDecl:
		tc.checkFunctionLike(d.Params, ResolveTypeSpec(d.ReturnType), d.Body)
	case *ast.ClassDecl:
		tc.checkClass(d)
	}
}

func orElse(a, b *types.PlasmType) *types.PlasmType {
	if a != nil {
		return a
	}
	return b
}

func (tc *TypeChecker) checkFunctionLike(params []*ast.Param, ret *types.PlasmType, body *ast.Block) {
	savedFunc := tc.currentFunc
	ptypes := make([]*types.PlasmType, len(params))
	for i, p := range params {
		ptypes[i] = ResolveTypeSpec(p.Type)
	}
	tc.currentFunc = types.FunctionType(ptypes, ret)
	tc.checkBlock(body)
	tc.currentFunc = savedFunc
}

func (tc *TypeChecker) checkClass(d *ast.ClassDecl) {
	info := tc.Symbols.Classes[d.Name]
	self := types.NamedType(d.Name)
	for _, f := range info.Fields {
		ftype := ResolveTypeSpec(f.Type)
		if f.Default != nil {
			tc.checkExpr(f.Default, ftype)
		}
	}
	for _, c := range info.Constructors {
		savedFunc := tc.currentFunc
		ptypes := make([]*types.PlasmType, len(c.Params))
		for i, p := range c.Params {
			ptypes[i] = ResolveTypeSpec(p.Type)
		}
		tc.currentFunc = types.FunctionType(ptypes, self)
		tc.checkBlock(c.Body)
		tc.currentFunc = savedFunc
	}
	for _, op := range info.Operators {
		var ptype *types.PlasmType
		if op.Param != nil {
			ptype = ResolveTypeSpec(op.Param.Type)
		}
		savedFunc := tc.currentFunc
		tc.currentFunc = types.FunctionType([]*types.PlasmType{ptype}, ResolveTypeSpec(op.ReturnType))
		tc.checkBlock(op.Body)
		tc.currentFunc = savedFunc
	}
	for _, m := range info.Methods {
		switch meth := m.(type) {
		case *ast.FunctionDecl:
			tc.checkFunctionLike(meth.Params, ResolveTypeSpec(meth.ReturnType), meth.Body)
		case *ast.ProcedureDecl:
			tc.checkFunctionLike(meth.Params, ResolveTypeSpec(meth.ReturnType), meth.Body)
		}
	}
}

func (tc *TypeChecker) checkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		tc.checkStmt(s)
	}
}

func (tc *TypeChecker) checkStmt(s ast.Stmt) {
	switch node := s.(type) {
	case *ast.Block:
		tc.checkBlock(node)
	case *ast.VarDecl:
		declared := ResolveTypeSpec(node.Type)
		for _, b := range node.Bindings {
			if b.Init == nil {
				continue
			}
			initType := tc.checkExprWithLiteralWidening(b.Init, declared)
			effective := orElse(declared, initType)
			if declared != nil && initType != nil && !types.IsCompatibleWith(initType, declared) {
				tc.Errors.Addf("Type", b.Line, b.Column, "cannot assign %s to declared type %s", initType.String(), declared.String())
			}
			tc.Types[b] = effective
		}
	case *ast.IfStatement:
		condType := tc.checkExpr(node.Cond, types.Bool)
		if condType != nil && !types.IsCompatibleWith(condType, types.Bool) {
			tc.Errors.Addf("Type", node.Line, node.Column, "if condition must be bool, got %s", condType.String())
		}
		tc.checkBlock(node.Then)
		tc.checkBlock(node.Else)
	case *ast.WhileStatement:
		condType := tc.checkExpr(node.Cond, types.Bool)
		if condType != nil && !types.IsCompatibleWith(condType, types.Bool) {
			tc.Errors.Addf("Type", node.Line, node.Column, "while condition must be bool, got %s", condType.String())
		}
		tc.checkBlock(node.Body)
	case *ast.ReturnStatement:
		var retType *types.PlasmType
		if tc.currentFunc != nil {
			retType = tc.currentFunc.Returns
		}
		if node.Value == nil {
			if retType != nil && !types.Equal(retType, types.Void) {
				tc.Errors.Addf("Type", node.Line, node.Column, "bare return not allowed, enclosing function returns %s", retType.String())
			}
			return
		}
		valType := tc.checkExpr(node.Value, retType)
		if retType != nil && valType != nil && !types.IsCompatibleWith(valType, retType) {
			tc.Errors.Addf("Type", node.Line, node.Column, "return-type mismatch: cannot return %s from function returning %s", valType.String(), retType.String())
		}
	case *ast.ExpressionStatement:
		tc.checkExpr(node.Expr, nil)
	}
}

// checkExprWithLiteralWidening implements the literal-binding exception:
// an integer-literal initialiser whose declared target type is an
// integer adopts the target type, instead of defaulting to i64.
func (tc *TypeChecker) checkExprWithLiteralWidening(e ast.Expr, declared *types.PlasmType) *types.PlasmType {
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.IntLiteral && types.IsInteger(declared) {
		tc.Types[lit] = declared
		return declared
	}
	return tc.checkExpr(e, declared)
}

// checkExpr infers and records the type of e. expected, when non-nil, is
// the contextual type used only for the literal-binding exception above;
// it does not otherwise constrain inference.
func (tc *TypeChecker) checkExpr(e ast.Expr, expected *types.PlasmType) *types.PlasmType {
	if e == nil {
		return nil
	}
	t := tc.inferExpr(e, expected)
	tc.Types[e] = t
	return t
}

func (tc *TypeChecker) inferExpr(e ast.Expr, expected *types.PlasmType) *types.PlasmType {
	switch node := e.(type) {
	case *ast.Literal:
		switch node.Kind {
		case ast.IntLiteral:
			if types.IsInteger(expected) {
				return expected
			}
			return types.I64
		case ast.FloatLiteral:
			return types.F64
		case ast.StringLiteral:
			return types.String
		case ast.BoolLiteral:
			return types.Bool
		}
	case *ast.Identifier:
		if sym := tc.Symbols.Refs[node]; sym != nil {
			if b, ok := sym.Declaration.(*ast.Binding); ok && sym.Type == nil {
				return tc.Types[b]
			}
			return sym.Type
		}
		return types.Any
	case *ast.SelfExpr:
		return types.Any
	case *ast.BinaryExpr:
		return tc.inferBinary(node)
	case *ast.UnaryExpr:
		return tc.inferUnary(node)
	case *ast.CallExpr:
		return tc.inferCall(node)
	case *ast.MemberAccessExpr:
		tc.checkExpr(node.Receiver, nil)
		return types.Any
	case *ast.TupleExpr:
		args := make([]*types.PlasmType, len(node.Elements))
		for i, el := range node.Elements {
			args[i] = tc.checkExpr(el, nil)
		}
		return types.GenericType("tuple", args...)
	case *ast.ConstructorCallExpr:
		return tc.inferConstructorCall(node.ClassName, node.Args, node.Line, node.Column)
	case *ast.CastExpr:
		tc.checkExpr(node.Value, nil)
		return ResolveTypeSpec(node.Target)
	case *ast.TypeTestExpr:
		tc.checkExpr(node.Value, nil)
		return types.Bool
	case *ast.AssignmentExpr:
		var targetType *types.PlasmType
		if sym := tc.Symbols.Refs[node.Target]; sym != nil {
			targetType = sym.Type
		}
		valType := tc.checkExprWithLiteralWidening(node.Value, targetType)
		if targetType != nil && valType != nil && !types.IsCompatibleWith(valType, targetType) {
			tc.Errors.Addf("Type", node.Line, node.Column, "cannot assign %s to %s", valType.String(), targetType.String())
		}
		tc.Types[node.Target] = targetType
		return valType
	case *ast.LambdaExpr:
		return tc.inferLambda(node)
	case *ast.ArrayAllocExpr:
		sizeType := tc.checkExpr(node.Size, nil)
		if sizeType != nil && !types.IsInteger(sizeType) {
			tc.Errors.Addf("Type", node.Line, node.Column, "array size must be integral, got %s", sizeType.String())
		}
		return types.ArrayOf(ResolveTypeSpec(node.ElemType))
	case *ast.ArrayIndexExpr:
		arrType := tc.checkExpr(node.Array, nil)
		tc.checkExpr(node.Index, nil)
		if arrType != nil && arrType.Kind == types.Generic && arrType.GenericName == "array" && len(arrType.Args) == 1 {
			return arrType.Args[0]
		}
		return types.Any
	case *ast.ArrayLiteralExpr:
		if len(node.Elements) == 0 {
			return types.ArrayOf(types.Any)
		}
		first := tc.checkExpr(node.Elements[0], nil)
		for _, el := range node.Elements[1:] {
			et := tc.checkExpr(el, first)
			if et != nil && first != nil && !types.IsCompatibleWith(et, first) {
				tc.Errors.Addf("Type", el.Position().Line, el.Position().Column, "array element type mismatch: %s is not compatible with %s", et.String(), first.String())
			}
		}
		return types.ArrayOf(first)
	case *ast.StringInterpolationExpr:
		for _, el := range node.Exprs {
			tc.checkExpr(el, nil)
		}
		return types.String
	}
	return types.Void
}

func (tc *TypeChecker) inferUnary(node *ast.UnaryExpr) *types.PlasmType {
	operandType := tc.checkExpr(node.Operand, nil)
	switch node.Op {
	case "!":
		return types.Bool
	default: // "-"
		return operandType
	}
}

// inferBinary implements the binary-operator type rules, including the
// fallback to operator-overload resolution for non-numeric (class)
// left-hand operands.
func (tc *TypeChecker) inferBinary(node *ast.BinaryExpr) *types.PlasmType {
	leftType := tc.checkExpr(node.Left, nil)
	rightType := tc.checkExpr(node.Right, nil)

	if leftType != nil && leftType.Kind == types.Named {
		if result, ok := tc.resolveOperatorOverload(leftType.ClassName, node.Op, rightType); ok {
			return result
		}
		// No applicable overload on a non-numeric operand is a diagnosed
		// type error, not a silently-propagated nil.
		tc.Errors.Addf("Type", node.Line, node.Column, "operator %s not applicable to %s: no matching overload", node.Op, leftType.String())
		return nil
	}

	switch node.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		if leftType != nil && rightType != nil && !types.IsNumeric(leftType) && !types.IsNumeric(rightType) && !types.Equal(leftType, rightType) {
			tc.Errors.Addf("Type", node.Line, node.Column, "incompatible operand types for %s: %s and %s", node.Op, leftType.String(), rightType.String())
		}
		return types.Bool
	case "&&", "||":
		if leftType != nil && !types.IsCompatibleWith(leftType, types.Bool) {
			tc.Errors.Addf("Type", node.Line, node.Column, "operand of %s must be bool, got %s", node.Op, leftType.String())
		}
		if rightType != nil && !types.IsCompatibleWith(rightType, types.Bool) {
			tc.Errors.Addf("Type", node.Line, node.Column, "operand of %s must be bool, got %s", node.Op, rightType.String())
		}
		return types.Bool
	default: // + - * / %
		if leftType != nil && !types.IsNumeric(leftType) {
			tc.Errors.Addf("Type", node.Line, node.Column, "operator %s requires numeric operands, got %s", node.Op, leftType.String())
		}
		return leftType
	}
}

func (tc *TypeChecker) resolveOperatorOverload(className, symbol string, argType *types.PlasmType) (*types.PlasmType, bool) {
	info := tc.Symbols.Classes[className]
	if info == nil {
		return nil, false
	}
	op, ok := info.Operators[symbol]
	if !ok {
		return nil, false
	}
	if op.Param != nil && argType != nil {
		paramType := ResolveTypeSpec(op.Param.Type)
		if !types.IsCompatibleWith(argType, paramType) {
			return nil, false
		}
	}
	return ResolveTypeSpec(op.ReturnType), true
}

// inferCall implements the call-expression type rule: indirect call
// through a function-typed callee, direct call through a known
// function/procedure symbol, constructor-call dispatch when the callee
// names a class, or a void fallback.
func (tc *TypeChecker) inferCall(node *ast.CallExpr) *types.PlasmType {
	for _, a := range node.Args {
		tc.checkExpr(a, nil)
	}

	ident, isIdent := node.Callee.(*ast.Identifier)
	if isIdent {
		sym := tc.Symbols.Refs[ident]
		if sym != nil && sym.Kind == SymClass {
			return tc.inferConstructorCall(ident.Name, node.Args, node.Line, node.Column)
		}
		if sym != nil && (sym.Kind == SymFunction || sym.Kind == SymProcedure) && sym.Type != nil {
			tc.Types[ident] = sym.Type
			return tc.checkIndirectCall(sym.Type, node)
		}
	}

	calleeType := tc.checkExpr(node.Callee, nil)
	if calleeType != nil && calleeType.Kind == types.Function {
		return tc.checkIndirectCall(calleeType, node)
	}
	return types.Void
}

func (tc *TypeChecker) checkIndirectCall(fnType *types.PlasmType, node *ast.CallExpr) *types.PlasmType {
	if len(node.Args) != len(fnType.Params) {
		tc.Errors.Addf("Type", node.Line, node.Column, "argument count mismatch: expected %d, got %d", len(fnType.Params), len(node.Args))
		return fnType.Returns
	}
	for i, a := range node.Args {
		argType := tc.Types[a]
		if argType != nil && !types.IsCompatibleWith(argType, fnType.Params[i]) {
			tc.Errors.Addf("Type", a.Position().Line, a.Position().Column, "argument %d type mismatch: cannot use %s as %s", i, argType.String(), fnType.Params[i].String())
		}
	}
	return fnType.Returns
}

// inferConstructorCall implements constructor resolution: filter by
// arity, then pick the first same-arity candidate whose parameter types
// are each compatible with the corresponding argument.
func (tc *TypeChecker) inferConstructorCall(className string, args []ast.Expr, line, col int) *types.PlasmType {
	result := types.NamedType(className)
	info := tc.Symbols.Classes[className]
	if info == nil {
		tc.Errors.Addf("Type", line, col, "unknown class: %s", className)
		return result
	}
	argTypes := make([]*types.PlasmType, len(args))
	for i, a := range args {
		argTypes[i] = tc.checkExpr(a, nil)
	}
	if len(info.Constructors) == 0 {
		tc.Errors.Addf("Type", line, col, "no constructors defined for class %s", className)
		return result
	}
	var sameArity []*ast.ConstructorDecl
	for _, c := range info.Constructors {
		if len(c.Params) == len(args) {
			sameArity = append(sameArity, c)
		}
	}
	if len(sameArity) == 0 {
		tc.Errors.Addf("Type", line, col, "no constructor matching arity %d for class %s", len(args), className)
		return result
	}
	for _, c := range sameArity {
		if constructorMatches(c, argTypes) {
			return result
		}
	}
	tc.Errors.Addf("Type", line, col, "no constructor matching argument types for class %s", className)
	return result
}

func constructorMatches(c *ast.ConstructorDecl, argTypes []*types.PlasmType) bool {
	for i, p := range c.Params {
		paramType := ResolveTypeSpec(p.Type)
		if argTypes[i] != nil && !types.IsCompatibleWith(argTypes[i], paramType) {
			return false
		}
	}
	return true
}

// inferLambda enters a new scope (already created by name analysis),
// binds parameter types, type-checks the body, and yields a function
// type.
func (tc *TypeChecker) inferLambda(node *ast.LambdaExpr) *types.PlasmType {
	ptypes := make([]*types.PlasmType, len(node.Params))
	for i, p := range node.Params {
		ptypes[i] = ResolveTypeSpec(p.Type)
	}

	savedFunc := tc.currentFunc
	var bodyType *types.PlasmType
	if node.BodyExpr != nil {
		declaredRet := ResolveTypeSpec(node.ReturnType)
		tc.currentFunc = types.FunctionType(ptypes, declaredRet)
		bodyType = tc.checkExpr(node.BodyExpr, declaredRet)
	} else {
		declaredRet := ResolveTypeSpec(node.ReturnType)
		if declaredRet == nil {
			declaredRet = types.Void
		}
		tc.currentFunc = types.FunctionType(ptypes, declaredRet)
		tc.checkBlock(node.BodyBlock)
		bodyType = declaredRet
	}
	tc.currentFunc = savedFunc

	if bodyType == nil {
		bodyType = types.Void
	}
	return types.FunctionType(ptypes, bodyType)
}

// CheckExpression is a thin adapter kept for callers (and tests) that
// want to type-check a single freestanding expression node against an
// otherwise-empty type checker.
func CheckExpression(e ast.Expr, tc *TypeChecker) error {
	tc.checkExpr(e, nil)
	if tc.Errors.HasErrors() {
		return errString(tc.Errors.String())
	}
	return nil
}

// CheckAssignment is a thin adapter for checking a single assignment.
func CheckAssignment(lhs, rhs ast.Expr, tc *TypeChecker) error {
	ident, ok := lhs.(*ast.Identifier)
	if !ok {
		return errString("assignment target must be a bare identifier")
	}
	assign := &ast.AssignmentExpr{Pos: ident.Pos, Target: ident, Value: rhs}
	tc.checkExpr(assign, nil)
	if tc.Errors.HasErrors() {
		return errString(tc.Errors.String())
	}
	return nil
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func errString(s string) error { return simpleError(s) }
