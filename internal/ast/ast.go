// Package ast defines the typed AST node variants produced by the parser
// and consumed by every later phase, plus the side-table key contract
// (node identity) used by the type analyser.
//
// Each node variant is its own struct rather than a single generic node
// discriminated by a kind tag — a sum-of-products encoding that favours
// exhaustive dispatch over
// inheritance. Plasm's grammar carries enough per-variant structure
// (typed parameters, class members, cast targets) that cramming it all
// into one generic node would be unreadable, so each variant here is its
// own struct; Node is the tagged-union contract (an interface
// implemented only by this package's variants), and the visitor in
// visitor.go is a convenience, not a requirement.
package ast

// Pos is the source position embedded in every node.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) Position() Pos { return p }

// Node is implemented by every AST variant. positioned is unexported so
// external packages cannot add new variants, keeping the union closed —
// the same closed-world assumption a Kind-tagged switch would rely on.
type Node interface {
	Position() Pos
	positioned()
}

// ---- Top level ----------------------------------------------------------

type Program struct {
	Pos
	Imports      []*ImportDecl
	Declarations []Declaration
	Errors       []string // parse-level diagnostics, separate from per-phase lists
}

type ImportDecl struct {
	Pos
	Path string
}

// Declaration is implemented by ConstDecl, FunctionDecl, ProcedureDecl,
// ClassDecl.
type Declaration interface {
	Node
	declNode()
}

type Visibility int

const (
	VisDefault Visibility = iota
	VisPub
	VisProt
)

type ConstDecl struct {
	Pos
	Visibility Visibility
	Name       string
	Type       *TypeSpec // optional, nil if inferred
	Value      Expr
}

type Param struct {
	Pos
	Name string
	Type *TypeSpec
}

type FunctionDecl struct {
	Pos
	Visibility Visibility
	Static     bool
	Name       string
	Params     []*Param
	ReturnType *TypeSpec
	Body       *Block
}

type ProcedureDecl struct {
	Pos
	Visibility Visibility
	Static     bool
	Name       string // includes leading '$'
	Params     []*Param
	ReturnType *TypeSpec
	Body       *Block
}

// ClassMember is implemented by FieldDecl, ConstructorDecl, OperatorDecl,
// FunctionDecl and ProcedureDecl (nested methods).
type ClassMember interface {
	Node
	classMemberNode()
}

type ClassDecl struct {
	Pos
	Visibility Visibility
	Name       string
	Members    []ClassMember
}

type FieldDecl struct {
	Pos
	Visibility Visibility
	Final      bool // final vs let
	Name       string
	Type       *TypeSpec
	Default    Expr // optional
}

type ConstructorDecl struct {
	Pos
	Visibility Visibility
	Params     []*Param
	Body       *Block
}

// OperatorDecl is `op(<sym>)(param) returnType block` on a class.
type OperatorDecl struct {
	Pos
	Visibility Visibility
	Symbol     string // "+", "==", "&&", ...
	Param      *Param
	ReturnType *TypeSpec
	Body       *Block
}

func (*Program) positioned()    {}
func (*ImportDecl) positioned() {}
func (*Param) positioned()      {}
func (*Binding) positioned()    {}

func (*ConstDecl) positioned()       {}
func (*FunctionDecl) positioned()    {}
func (*ProcedureDecl) positioned()   {}
func (*ClassDecl) positioned()       {}
func (*FieldDecl) positioned()       {}
func (*ConstructorDecl) positioned() {}
func (*OperatorDecl) positioned()    {}

func (*ConstDecl) declNode()     {}
func (*FunctionDecl) declNode()  {}
func (*ProcedureDecl) declNode() {}
func (*ClassDecl) declNode()     {}

func (*FieldDecl) classMemberNode()       {}
func (*ConstructorDecl) classMemberNode() {}
func (*OperatorDecl) classMemberNode()    {}
func (*FunctionDecl) classMemberNode()    {}
func (*ProcedureDecl) classMemberNode()   {}

// ---- Statements ----------------------------------------------------------

// Stmt is implemented by every statement variant.
type Stmt interface {
	Node
	stmtNode()
}

type Block struct {
	Pos
	Statements []Stmt
}

type Binding struct {
	Pos
	Name string
	Init Expr // optional
}

// VarDecl is a `final`/`let` statement; it may declare several comma
// separated bindings sharing one optional leading type.
type VarDecl struct {
	Pos
	Final    bool
	Type     *TypeSpec // optional, nil if every binding must infer
	Bindings []*Binding
}

type IfStatement struct {
	Pos
	Cond Expr
	Then *Block
	Else *Block // optional; may itself wrap a single IfStatement for else-if
}

type WhileStatement struct {
	Pos
	Cond Expr
	Body *Block
}

type ReturnStatement struct {
	Pos
	Value Expr // optional
}

type ExpressionStatement struct {
	Pos
	Expr Expr
}

func (*Block) positioned()               {}
func (*VarDecl) positioned()             {}
func (*IfStatement) positioned()         {}
func (*WhileStatement) positioned()      {}
func (*ReturnStatement) positioned()     {}
func (*ExpressionStatement) positioned() {}

func (*Block) stmtNode()               {}
func (*VarDecl) stmtNode()             {}
func (*IfStatement) stmtNode()         {}
func (*WhileStatement) stmtNode()      {}
func (*ReturnStatement) stmtNode()     {}
func (*ExpressionStatement) stmtNode() {}

// ---- Expressions -----------------------------------------------------------

// Expr is implemented by every expression variant.
type Expr interface {
	Node
	exprNode()
}

type Identifier struct {
	Pos
	Name string
}

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
	BoolLiteral
)

type Literal struct {
	Pos
	Kind        LiteralKind
	IntValue    int64
	FloatValue  float64
	StringValue string
	BoolValue   bool
}

type BinaryExpr struct {
	Pos
	Op          string
	Left, Right Expr
}

type UnaryExpr struct {
	Pos
	Op      string
	Operand Expr
}

type CallExpr struct {
	Pos
	Callee Expr
	Args   []Expr
}

type MemberAccessExpr struct {
	Pos
	Receiver Expr
	Member   string
	IsProc   bool // `.` on a $-identifier member
}

type SelfExpr struct {
	Pos
}

type TupleExpr struct {
	Pos
	Elements []Expr
}

type ConstructorCallExpr struct {
	Pos
	ClassName string
	Args      []Expr
}

type CastExpr struct {
	Pos
	Value  Expr
	Target *TypeSpec
}

type TypeTestExpr struct {
	Pos
	Value  Expr
	Target *TypeSpec
}

type AssignmentExpr struct {
	Pos
	Target *Identifier // restricted to a bare identifier
	Value  Expr
}

type LambdaExpr struct {
	Pos
	Params     []*Param
	ReturnType *TypeSpec // optional, inferred for expression-bodied lambdas
	BodyExpr   Expr      // set when `=> expr` form used
	BodyBlock  *Block    // set when block form used
}

type ArrayAllocExpr struct {
	Pos
	ElemType *TypeSpec
	Size     Expr
}

type ArrayIndexExpr struct {
	Pos
	Array Expr
	Index Expr
}

type ArrayLiteralExpr struct {
	Pos
	Elements []Expr
}

// StringInterpolationExpr represents `"... ${expr} ..."`-style parts;
// Literals holds the literal text pieces and Exprs the embedded
// expressions.
type StringInterpolationExpr struct {
	Pos
	Literals []string
	Exprs    []Expr
}

func (*Identifier) positioned()              {}
func (*Literal) positioned()                 {}
func (*BinaryExpr) positioned()              {}
func (*UnaryExpr) positioned()               {}
func (*CallExpr) positioned()                {}
func (*MemberAccessExpr) positioned()        {}
func (*SelfExpr) positioned()                {}
func (*TupleExpr) positioned()               {}
func (*ConstructorCallExpr) positioned()     {}
func (*CastExpr) positioned()                {}
func (*TypeTestExpr) positioned()            {}
func (*AssignmentExpr) positioned()          {}
func (*LambdaExpr) positioned()              {}
func (*ArrayAllocExpr) positioned()          {}
func (*ArrayIndexExpr) positioned()          {}
func (*ArrayLiteralExpr) positioned()        {}
func (*StringInterpolationExpr) positioned() {}

func (*Identifier) exprNode()              {}
func (*Literal) exprNode()                 {}
func (*BinaryExpr) exprNode()              {}
func (*UnaryExpr) exprNode()               {}
func (*CallExpr) exprNode()                {}
func (*MemberAccessExpr) exprNode()        {}
func (*SelfExpr) exprNode()                {}
func (*TupleExpr) exprNode()               {}
func (*ConstructorCallExpr) exprNode()     {}
func (*CastExpr) exprNode()                {}
func (*TypeTestExpr) exprNode()            {}
func (*AssignmentExpr) exprNode()          {}
func (*LambdaExpr) exprNode()              {}
func (*ArrayAllocExpr) exprNode()          {}
func (*ArrayIndexExpr) exprNode()          {}
func (*ArrayLiteralExpr) exprNode()        {}
func (*StringInterpolationExpr) exprNode() {}

// ---- Type specs -----------------------------------------------------------

type TypeSpecKind int

const (
	TypeSimple TypeSpecKind = iota
	TypeGeneric
	TypeFunc
	TypeTuple
	TypeVoid
	TypeAny
)

// TypeSpec is the recursive syntax-level type annotation; the type
// analyser resolves it to a types.PlasmType.
type TypeSpec struct {
	Pos
	Kind TypeSpecKind

	Name string // TypeSimple: primitive keyword or class identifier

	GenericName string // TypeGeneric: "array", "tuple", ...
	GenericArgs []*TypeSpec

	FuncParams  []*TypeSpec // TypeFunc
	FuncReturns *TypeSpec

	TupleElems []*TypeSpec // TypeTuple
}

func (*TypeSpec) positioned() {}
