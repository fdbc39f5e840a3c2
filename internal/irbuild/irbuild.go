// Package irbuild lowers a type-checked ast.Program into an ir.Module:
// one IrGlobal per constant, one IrFunction per function/procedure/
// method/operator/constructor, with lambdas lifted to fresh top-level
// functions named __lambda_<n>.
package irbuild

import (
	"fmt"
	"strings"

	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/ir"
	"github.com/plasm-lang/plasm/internal/sema"
	"github.com/plasm-lang/plasm/internal/types"
)

var opMangling = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "div", "%": "mod",
	"==": "eq", "!=": "neq", "<=": "lte", ">=": "gte", "<": "lt", ">": "gt",
	"&&": "and", "||": "or",
}

var opcodeByMangled = map[string]ir.Opcode{
	"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul, "div": ir.OpDiv, "mod": ir.OpMod,
	"eq": ir.OpEq, "neq": ir.OpNeq, "lte": ir.OpLte, "gte": ir.OpGte, "lt": ir.OpLt, "gt": ir.OpGt,
	"and": ir.OpAnd, "or": ir.OpOr,
}

// Builder carries the mutable state of one lowering pass: the id
// counters, the module under construction, the currently open function
// and block, and the lexical value bindings visible at the current
// point, one scope frame per active source scope, discarded when that
// scope closes.
type Builder struct {
	Symbols *sema.SymbolTable
	Types   sema.TypeTable

	module *ir.Module

	valueCounter int
	blockCounter int

	currentFunc   *ir.Function
	currentBlock  *ir.Block
	namedValues   map[string]*ir.Value
	scopeStack    []map[string]*ir.Value
	constructorNo map[string]int
	self          *ir.Value
}

func NewBuilder(st *sema.SymbolTable, tt sema.TypeTable) *Builder {
	return &Builder{
		Symbols:       st,
		Types:         tt,
		module:        ir.NewModule(),
		namedValues:   make(map[string]*ir.Value),
		constructorNo: make(map[string]int),
	}
}

// BuildModule lowers every declaration in prog into b's module.
func BuildModule(prog *ast.Program, st *sema.SymbolTable, tt sema.TypeTable) *ir.Module {
	b := NewBuilder(st, tt)
	for name, info := range st.Classes {
		b.module.Types = append(b.module.Types, classTypeDef(name, info))
	}
	for _, decl := range prog.Declarations {
		b.lowerDeclaration(decl)
	}
	return b.module
}

func classTypeDef(name string, info *sema.ClassInfo) *ir.TypeDef {
	def := &ir.TypeDef{Name: name}
	for _, f := range info.Fields {
		def.Fields = append(def.Fields, ir.FieldDef{
			Name: f.Name,
			Type: lowerType(sema.ResolveTypeSpec(f.Type)),
			Mut:  !f.Final,
		})
	}
	return def
}

func (b *Builder) nextValueID() int {
	b.valueCounter++
	return b.valueCounter
}

func (b *Builder) nextBlockID() int {
	id := b.blockCounter
	b.blockCounter++
	return id
}

func (b *Builder) pushScope() {
	b.scopeStack = append(b.scopeStack, b.namedValues)
	fresh := make(map[string]*ir.Value, len(b.namedValues))
	for k, v := range b.namedValues {
		fresh[k] = v
	}
	b.namedValues = fresh
}

func (b *Builder) popScope() {
	n := len(b.scopeStack)
	b.namedValues = b.scopeStack[n-1]
	b.scopeStack = b.scopeStack[:n-1]
}

func (b *Builder) newBlock(label string) *ir.Block {
	blk := &ir.Block{ID: b.nextBlockID(), Label: label}
	b.currentFunc.Blocks = append(b.currentFunc.Blocks, blk)
	return blk
}

func (b *Builder) emit(ins *ir.Instruction) *ir.Value {
	ins.ID = b.nextValueID()
	if ins.Result != nil {
		ins.Result.ID = ins.ID
		ins.Result.Instr = ins
	}
	b.currentBlock.Instructions = append(b.currentBlock.Instructions, ins)
	return ins.Result
}

func (b *Builder) constInt(v int64, t *ir.Type) *ir.Value {
	val := &ir.Value{Type: t, IsConstant: true, ConstInt: v}
	return b.emit(&ir.Instruction{Op: ir.OpConst, Result: val})
}

// lowerType implements the PlasmType -> IrType mapping.
func lowerType(t *types.PlasmType) *ir.Type {
	if t == nil {
		return ir.Void
	}
	switch t.Kind {
	case types.Primitive:
		if t.Name == "void" {
			return ir.Void
		}
		return ir.Primitive(t.Name)
	case types.Named:
		return ir.Class(t.ClassName)
	case types.Generic:
		if t.GenericName == "array" && len(t.Args) == 1 {
			return ir.Array(lowerType(t.Args[0]))
		}
		return ir.Void
	case types.Function:
		return ir.FuncRef
	}
	return ir.Void
}

// ---- Declarations ----------------------------------------------------

func (b *Builder) lowerDeclaration(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.ConstDecl:
		b.lowerConst(d)
	case *ast.FunctionDecl:
		b.lowerFunctionLike(d.Name, d.Params, d.ReturnType, d.Body, nil, "")
	case *ast.ProcedureDecl:
		b.lowerFunctionLike(d.Name, d.Params, d.ReturnType, d.Body, nil, "")
	case *ast.ClassDecl:
		b.lowerClass(d)
	}
}

func (b *Builder) lowerConst(d *ast.ConstDecl) {
	declType := sema.ResolveTypeSpec(d.Type)
	if declType == nil {
		declType = b.Types[d]
	}
	g := &ir.Global{
		Name:       d.Name,
		Type:       lowerType(declType),
		IsConstant: true,
	}
	if d.Value != nil {
		if v := b.lowerConstExpr(d.Value); v != nil {
			g.Initializer = v
		}
	}
	b.module.Globals = append(b.module.Globals, g)
	b.namedValues[d.Name] = &ir.Value{Name: d.Name, Type: g.Type, IsGlobal: true}
}

// lowerConstExpr lowers a global initialiser without an active block —
// only literal values are meaningful in that position.
func (b *Builder) lowerConstExpr(e ast.Expr) *ir.Value {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return nil
	}
	t := b.Types[e]
	switch lit.Kind {
	case ast.IntLiteral:
		return &ir.Value{Type: lowerType(t), IsConstant: true, ConstInt: lit.IntValue}
	case ast.FloatLiteral:
		return &ir.Value{Type: lowerType(t), IsConstant: true, ConstFloat: lit.FloatValue}
	case ast.BoolLiteral:
		return &ir.Value{Type: ir.Primitive("bool"), IsConstant: true, ConstBool: lit.BoolValue}
	case ast.StringLiteral:
		return &ir.Value{Type: ir.Primitive("string"), IsConstant: true, ConstStr: lit.StringValue}
	}
	return nil
}

func (b *Builder) lowerFunctionLike(name string, params []*ast.Param, retSpec *ast.TypeSpec, body *ast.Block, selfType *types.PlasmType, selfName string) *ir.Function {
	fn := &ir.Function{Name: name, ReturnType: lowerType(sema.ResolveTypeSpec(retSpec))}
	if name == "" {
		fn.Name = "$anonymous"
	}
	fn.IsExternal = isExternalName(name)

	savedFunc, savedBlock, savedNamed := b.currentFunc, b.currentBlock, b.namedValues
	b.currentFunc = fn
	b.namedValues = make(map[string]*ir.Value, len(params)+1)
	entry := b.newBlock("entry")
	b.currentBlock = entry

	if selfType != nil {
		selfVal := &ir.Value{ID: b.nextValueID(), Name: selfName, Type: lowerType(selfType), IsParam: true}
		fn.Params = append(fn.Params, selfVal)
		b.namedValues[selfName] = selfVal
	}
	for _, p := range params {
		pv := &ir.Value{ID: b.nextValueID(), Name: p.Name, Type: lowerType(sema.ResolveTypeSpec(p.Type)), IsParam: true}
		fn.Params = append(fn.Params, pv)
		b.namedValues[p.Name] = pv
	}

	if !fn.IsExternal {
		b.lowerBlock(body)
		if !b.currentBlock.Terminated() {
			b.currentBlock.Term = ir.Terminator{Kind: ir.TermRet}
		}
	}

	b.module.Functions = append(b.module.Functions, fn)
	b.currentFunc, b.currentBlock, b.namedValues = savedFunc, savedBlock, savedNamed
	return fn
}

func isExternalName(name string) bool {
	return strings.HasPrefix(name, "__external_") || strings.HasPrefix(name, "$__external_")
}

func (b *Builder) lowerClass(d *ast.ClassDecl) {
	info := b.Symbols.Classes[d.Name]
	selfType := types.NamedType(d.Name)

	for _, m := range info.Methods {
		switch meth := m.(type) {
		case *ast.FunctionDecl:
			b.lowerFunctionLike(meth.Name, meth.Params, meth.ReturnType, meth.Body, nil, "")
		case *ast.ProcedureDecl:
			b.lowerFunctionLike(meth.Name, meth.Params, meth.ReturnType, meth.Body, nil, "")
		}
	}

	for _, op := range info.Operators {
		mangled := opMangling[op.Symbol]
		name := fmt.Sprintf("%s_op_%s", d.Name, mangled)
		var params []*ast.Param
		if op.Param != nil {
			params = []*ast.Param{op.Param}
		}
		b.lowerFunctionLike(name, params, op.ReturnType, op.Body, selfType, "self")
	}

	for _, c := range info.Constructors {
		n := b.constructorNo[d.Name]
		b.constructorNo[d.Name] = n + 1
		name := fmt.Sprintf("%s_constructor_%d", d.Name, n)
		retSpec := &ast.TypeSpec{Kind: ast.TypeSimple, Name: d.Name}
		b.lowerFunctionLike(name, c.Params, retSpec, c.Body, selfType, "self")
	}
}

// ---- Statements --------------------------------------------------------

func (b *Builder) lowerBlock(blk *ast.Block) {
	if blk == nil {
		return
	}
	b.pushScope()
	defer b.popScope()
	for _, s := range blk.Statements {
		if b.currentBlock.Terminated() {
			return
		}
		b.lowerStmt(s)
	}
}

func (b *Builder) lowerStmt(s ast.Stmt) {
	switch node := s.(type) {
	case *ast.Block:
		b.lowerBlock(node)
	case *ast.VarDecl:
		b.lowerVarDecl(node)
	case *ast.IfStatement:
		b.lowerIf(node)
	case *ast.WhileStatement:
		b.lowerWhile(node)
	case *ast.ReturnStatement:
		var v *ir.Value
		if node.Value != nil {
			v = b.lowerExpr(node.Value)
		}
		b.currentBlock.Term = ir.Terminator{Kind: ir.TermRet, Value: v}
	case *ast.ExpressionStatement:
		b.lowerExpr(node.Expr)
	}
}

func (b *Builder) lowerVarDecl(node *ast.VarDecl) {
	for _, binding := range node.Bindings {
		if binding.Init != nil {
			v := b.lowerExpr(binding.Init)
			b.namedValues[binding.Name] = v
			continue
		}
		declType := lowerType(sema.ResolveTypeSpec(node.Type))
		if declType == ir.Void {
			declType = ir.Primitive("i64")
		}
		slot := &ir.Value{Name: binding.Name, Type: declType}
		b.emit(&ir.Instruction{Op: ir.OpAlloca, Result: slot, CalleeType: declType})
		b.namedValues[binding.Name] = slot
	}
}

func (b *Builder) lowerIf(node *ast.IfStatement) {
	cond := b.lowerExpr(node.Cond)
	thenBlock := b.newBlock("then")
	var elseBlock, mergeBlock *ir.Block

	openBlock := b.currentBlock
	b.currentBlock = thenBlock
	b.lowerBlock(node.Then)
	thenEnd := b.currentBlock

	if node.Else != nil {
		elseBlock = b.newBlock("else")
		b.currentBlock = elseBlock
		b.lowerBlock(node.Else)
	}
	elseEnd := b.currentBlock

	mergeBlock = b.newBlock("merge")

	openBlock.Term = ir.Terminator{Kind: ir.TermCondBr, Cond: cond, Then: thenBlock, Else: elseBlock}
	if !thenEnd.Terminated() {
		thenEnd.Term = ir.Terminator{Kind: ir.TermBr, Target: mergeBlock}
	}
	if elseBlock != nil && !elseEnd.Terminated() {
		elseEnd.Term = ir.Terminator{Kind: ir.TermBr, Target: mergeBlock}
	}
	b.currentBlock = mergeBlock
}

func (b *Builder) lowerWhile(node *ast.WhileStatement) {
	openBlock := b.currentBlock
	header := b.newBlock("while_header")
	body := b.newBlock("while_body")
	exit := b.newBlock("while_exit")

	openBlock.Term = ir.Terminator{Kind: ir.TermBr, Target: header}

	b.currentBlock = header
	cond := b.lowerExpr(node.Cond)
	header.Term = ir.Terminator{Kind: ir.TermCondBr, Cond: cond, Then: body, Else: exit}

	b.currentBlock = body
	b.lowerBlock(node.Body)
	if !b.currentBlock.Terminated() {
		b.currentBlock.Term = ir.Terminator{Kind: ir.TermBr, Target: header}
	}

	b.currentBlock = exit
}

// ---- Expressions --------------------------------------------------------

func (b *Builder) lowerExpr(e ast.Expr) *ir.Value {
	switch node := e.(type) {
	case *ast.Literal:
		return b.lowerLiteral(node)
	case *ast.Identifier:
		if v, ok := b.namedValues[node.Name]; ok {
			return v
		}
		return b.emit(&ir.Instruction{Op: ir.OpConst, Result: &ir.Value{Type: ir.Void}})
	case *ast.SelfExpr:
		return b.namedValues["self"]
	case *ast.BinaryExpr:
		return b.lowerBinary(node)
	case *ast.UnaryExpr:
		return b.lowerUnary(node)
	case *ast.CallExpr:
		return b.lowerCall(node)
	case *ast.ConstructorCallExpr:
		return b.lowerConstructorCall(node.ClassName, node.Args)
	case *ast.AssignmentExpr:
		return b.lowerAssignment(node)
	case *ast.CastExpr:
		return b.lowerCast(node)
	case *ast.LambdaExpr:
		return b.lowerLambda(node)
	case *ast.ArrayAllocExpr:
		return b.lowerArrayAlloc(node)
	case *ast.ArrayIndexExpr:
		return b.lowerArrayIndex(node)
	case *ast.ArrayLiteralExpr:
		return b.lowerArrayLiteral(node)
	case *ast.MemberAccessExpr:
		return b.lowerMemberAccess(node)
	case *ast.TypeTestExpr:
		v := b.lowerExpr(node.Value)
		return b.emit(&ir.Instruction{Op: ir.OpRefIsNull, Operands: []*ir.Value{v}, Result: &ir.Value{Type: ir.Primitive("bool")}})
	case *ast.TupleExpr:
		var last *ir.Value
		for _, el := range node.Elements {
			last = b.lowerExpr(el)
		}
		return last
	}
	return nil
}

func (b *Builder) lowerLiteral(lit *ast.Literal) *ir.Value {
	t := lowerType(b.Types[lit])
	switch lit.Kind {
	case ast.IntLiteral:
		return b.emit(&ir.Instruction{Op: ir.OpConst, Result: &ir.Value{Type: t, IsConstant: true, ConstInt: lit.IntValue}})
	case ast.FloatLiteral:
		return b.emit(&ir.Instruction{Op: ir.OpConst, Result: &ir.Value{Type: ir.Primitive("f64"), IsConstant: true, ConstFloat: lit.FloatValue}})
	case ast.BoolLiteral:
		return b.emit(&ir.Instruction{Op: ir.OpConst, Result: &ir.Value{Type: ir.Primitive("bool"), IsConstant: true, ConstBool: lit.BoolValue}})
	case ast.StringLiteral:
		return b.emit(&ir.Instruction{Op: ir.OpConst, Result: &ir.Value{Type: ir.Primitive("string"), IsConstant: true, ConstStr: lit.StringValue}})
	}
	return nil
}

// lowerBinary implements the operator table: a class-typed left operand
// with a lowered `<C>_op_<mangled>` function in the module dispatches to
// a direct call; otherwise it emits the matching arithmetic/comparison/
// logical opcode.
func (b *Builder) lowerBinary(node *ast.BinaryExpr) *ir.Value {
	left := b.lowerExpr(node.Left)
	right := b.lowerExpr(node.Right)

	if left != nil && left.Type != nil && left.Type.Kind == ir.TClass {
		mangled := opMangling[node.Op]
		fnName := fmt.Sprintf("%s_op_%s", left.Type.Name, mangled)
		if b.module.FindFunction(fnName) != nil {
			resultType := b.classOperatorReturnType(left.Type.Name, node.Op)
			return b.emit(&ir.Instruction{Op: ir.OpCall, CalleeName: fnName, Operands: []*ir.Value{left, right}, Result: &ir.Value{Type: resultType}})
		}
	}

	op, ok := opcodeByMangled[opMangling[node.Op]]
	if !ok {
		op = ir.OpAdd
	}
	resultType := left.Type
	switch node.Op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		resultType = ir.Primitive("bool")
	}
	return b.emit(&ir.Instruction{Op: op, Operands: []*ir.Value{left, right}, Result: &ir.Value{Type: resultType}})
}

func (b *Builder) classOperatorReturnType(className, sym string) *ir.Type {
	info := b.Symbols.Classes[className]
	if info == nil {
		return ir.Void
	}
	op, ok := info.Operators[sym]
	if !ok {
		return ir.Void
	}
	return lowerType(sema.ResolveTypeSpec(op.ReturnType))
}

func (b *Builder) lowerUnary(node *ast.UnaryExpr) *ir.Value {
	operand := b.lowerExpr(node.Operand)
	op := ir.OpNeg
	resultType := operand.Type
	if node.Op == "!" {
		op = ir.OpNot
		resultType = ir.Primitive("bool")
	}
	return b.emit(&ir.Instruction{Op: op, Operands: []*ir.Value{operand}, Result: &ir.Value{Type: resultType}})
}

// lowerCall implements the indirect-vs-direct call rule: a function-typed
// callee value emits callIndirect; a bare identifier emits a direct call
// whose target function is named by the instruction's CalleeName (no
// string constant operand is emitted for the name).
func (b *Builder) lowerCall(node *ast.CallExpr) *ir.Value {
	args := make([]*ir.Value, len(node.Args))
	for i, a := range node.Args {
		args[i] = b.lowerExpr(a)
	}

	if ident, ok := node.Callee.(*ast.Identifier); ok {
		if sym := b.Symbols.Refs[ident]; sym != nil && sym.Kind == sema.SymClass {
			return b.lowerConstructorCall(ident.Name, node.Args)
		}
		if v, isLocal := b.namedValues[ident.Name]; isLocal && v.Type != nil && v.Type.Kind == ir.TFuncRef {
			return b.emit(&ir.Instruction{Op: ir.OpCallIndirect, Operands: append([]*ir.Value{v}, args...), Result: &ir.Value{Type: lowerType(b.Types[node])}})
		}
		return b.emit(&ir.Instruction{Op: ir.OpCall, CalleeName: ident.Name, Operands: args, Result: &ir.Value{Type: lowerType(b.Types[node])}})
	}

	callee := b.lowerExpr(node.Callee)
	return b.emit(&ir.Instruction{Op: ir.OpCallIndirect, Operands: append([]*ir.Value{callee}, args...), Result: &ir.Value{Type: lowerType(b.Types[node])}})
}

func (b *Builder) lowerConstructorCall(className string, argExprs []ast.Expr) *ir.Value {
	args := make([]*ir.Value, len(argExprs))
	for i, a := range argExprs {
		args[i] = b.lowerExpr(a)
	}
	fnName := b.resolveConstructorName(className, argExprs)
	return b.emit(&ir.Instruction{Op: ir.OpCall, CalleeName: fnName, Operands: args, Result: &ir.Value{Type: ir.Class(className)}})
}

// resolveConstructorName finds the lowered function name of the
// constructor a call resolves to, replicating sema's own resolution
// (first same-arity constructor whose parameter types are each
// compatible with the call's argument types) so the two phases never
// pick different overloads for the same call. The name is derived from
// the class's constructor declaration order and the naming convention,
// without looking the function up in the module, so it also works for a
// call that is lowered before the class itself. If no same-arity
// constructor is compatible, the first same-arity one is named; with no
// class info or no same-arity constructor, `<class>_constructor_0`.
func (b *Builder) resolveConstructorName(className string, argExprs []ast.Expr) string {
	info := b.Symbols.Classes[className]
	if info == nil {
		return fmt.Sprintf("%s_constructor_0", className)
	}
	argTypes := make([]*types.PlasmType, len(argExprs))
	for i, a := range argExprs {
		argTypes[i] = b.Types[a]
	}
	n := 0
	fallback := ""
	haveFallback := false
	for _, c := range info.Constructors {
		if len(c.Params) == len(argExprs) {
			name := fmt.Sprintf("%s_constructor_%d", className, n)
			if !haveFallback {
				fallback, haveFallback = name, true
			}
			if constructorParamsCompatible(c, argTypes) {
				return name
			}
		}
		n++
	}
	if haveFallback {
		return fallback
	}
	return fmt.Sprintf("%s_constructor_0", className)
}

func constructorParamsCompatible(c *ast.ConstructorDecl, argTypes []*types.PlasmType) bool {
	for i, p := range c.Params {
		paramType := sema.ResolveTypeSpec(p.Type)
		if argTypes[i] != nil && !types.IsCompatibleWith(argTypes[i], paramType) {
			return false
		}
	}
	return true
}

func (b *Builder) lowerAssignment(node *ast.AssignmentExpr) *ir.Value {
	value := b.lowerExpr(node.Value)
	target, ok := b.namedValues[node.Target.Name]
	if !ok {
		target = &ir.Value{Name: node.Target.Name, Type: value.Type}
	}
	b.emit(&ir.Instruction{Op: ir.OpStore, Operands: []*ir.Value{value, target}})
	b.namedValues[node.Target.Name] = value
	return value
}

func (b *Builder) lowerCast(node *ast.CastExpr) *ir.Value {
	v := b.lowerExpr(node.Value)
	targetType := lowerType(sema.ResolveTypeSpec(node.Target))
	return b.emit(&ir.Instruction{Op: ir.OpCast, Operands: []*ir.Value{v}, CalleeType: targetType, Result: &ir.Value{Type: targetType}})
}

// lowerLambda saves the current function/block/scope, builds a fresh
// __lambda_<n> top-level function, then restores context and yields a
// funcRef value naming it.
func (b *Builder) lowerLambda(node *ast.LambdaExpr) *ir.Value {
	name := fmt.Sprintf("__lambda_%d", len(b.module.Functions))
	retType := lowerType(sema.ResolveTypeSpec(node.ReturnType))
	if ft := b.Types[node]; node.ReturnType == nil && ft != nil && ft.Kind == types.Function {
		retType = lowerType(ft.Returns)
	}

	savedFunc, savedBlock, savedNamed := b.currentFunc, b.currentBlock, b.namedValues
	fn := &ir.Function{Name: name, ReturnType: retType}
	b.currentFunc = fn
	// The lifted function receives no captured environment. The
	// enclosing named values are copied into its name map, so a body
	// reference to an enclosing local resolves to the enclosing
	// function's IR value, not to a parameter of the lifted function.
	b.namedValues = make(map[string]*ir.Value, len(savedNamed)+len(node.Params))
	for k, v := range savedNamed {
		b.namedValues[k] = v
	}
	entry := &ir.Block{ID: b.nextBlockID(), Label: "entry"}
	fn.Blocks = append(fn.Blocks, entry)
	b.currentBlock = entry

	for _, p := range node.Params {
		pv := &ir.Value{ID: b.nextValueID(), Name: p.Name, Type: lowerType(sema.ResolveTypeSpec(p.Type)), IsParam: true}
		fn.Params = append(fn.Params, pv)
		b.namedValues[p.Name] = pv
	}

	if node.BodyExpr != nil {
		v := b.lowerExpr(node.BodyExpr)
		b.currentBlock.Term = ir.Terminator{Kind: ir.TermRet, Value: v}
	} else {
		b.lowerBlock(node.BodyBlock)
		if !b.currentBlock.Terminated() {
			b.currentBlock.Term = ir.Terminator{Kind: ir.TermRet}
		}
	}

	b.module.Functions = append(b.module.Functions, fn)
	b.currentFunc, b.currentBlock, b.namedValues = savedFunc, savedBlock, savedNamed

	return b.emit(&ir.Instruction{Op: ir.OpFuncRef, CalleeName: name, Result: &ir.Value{Type: ir.FuncRef}})
}

func (b *Builder) lowerArrayAlloc(node *ast.ArrayAllocExpr) *ir.Value {
	size := b.lowerExpr(node.Size)
	elemType := lowerType(sema.ResolveTypeSpec(node.ElemType))
	return b.emit(&ir.Instruction{Op: ir.OpArrayNewDefault, Operands: []*ir.Value{size}, CalleeType: elemType, Result: &ir.Value{Type: ir.Array(elemType)}})
}

func (b *Builder) lowerArrayIndex(node *ast.ArrayIndexExpr) *ir.Value {
	arr := b.lowerExpr(node.Array)
	idx := b.lowerExpr(node.Index)
	elemType := ir.Void
	if arr.Type != nil && arr.Type.Kind == ir.TArray {
		elemType = arr.Type.Elem
	}
	return b.emit(&ir.Instruction{Op: ir.OpArrayGet, Operands: []*ir.Value{arr, idx}, Result: &ir.Value{Type: elemType}})
}

// lowerArrayLiteral emits arrayNewDefault(length) then one arraySet per
// element at ascending indices.
func (b *Builder) lowerArrayLiteral(node *ast.ArrayLiteralExpr) *ir.Value {
	elemType := lowerType(b.Types[node])
	if elemType != nil && elemType.Kind == ir.TArray {
		elemType = elemType.Elem
	}
	length := b.constInt(int64(len(node.Elements)), ir.Primitive("i64"))
	arr := b.emit(&ir.Instruction{Op: ir.OpArrayNewDefault, Operands: []*ir.Value{length}, CalleeType: elemType, Result: &ir.Value{Type: ir.Array(elemType)}})
	for i, el := range node.Elements {
		v := b.lowerExpr(el)
		idx := b.constInt(int64(i), ir.Primitive("i64"))
		b.emit(&ir.Instruction{Op: ir.OpArraySet, Operands: []*ir.Value{arr, idx, v}})
	}
	return arr
}

func (b *Builder) lowerMemberAccess(node *ast.MemberAccessExpr) *ir.Value {
	receiver := b.lowerExpr(node.Receiver)
	className := ""
	if receiver != nil && receiver.Type != nil {
		className = receiver.Type.Name
	}
	fieldType := ir.Void
	if info := b.Symbols.Classes[className]; info != nil {
		for _, f := range info.Fields {
			if f.Name == node.Member {
				fieldType = lowerType(sema.ResolveTypeSpec(f.Type))
			}
		}
	}
	return b.emit(&ir.Instruction{Op: ir.OpStructGet, Operands: []*ir.Value{receiver}, ClassName: className, FieldName: node.Member, Result: &ir.Value{Type: fieldType}})
}
