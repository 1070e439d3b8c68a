package lang

// Statement is a node of the parsed Marefile tree.
//
// The set of statements is closed: Block, Assign, Remove, Binary, Unary,
// StringLiteral, Reference and Conditional. Statements are immutable once
// parsed and may be shared between namespaces.
type Statement interface {
	Position() Position
	statement()
}

// node carries the source position shared by all statements.
type node struct {
	Pos Position
}

// Position returns where the statement was parsed.
func (n node) Position() Position { return n.Pos }

func (node) statement() {}

// Block is an ordered list of statements.
type Block struct {
	node

	Statements []Statement
}

// AssignOp selects how an assignment combines with a prior binding.
type AssignOp int

const (
	OpSet    AssignOp = iota // =
	OpAppend                 // +=
	OpRemove                 // -=
)

// String returns the operator as written in a Marefile.
func (op AssignOp) String() string {
	switch op {
	case OpSet:
		return "="
	case OpAppend:
		return "+="
	case OpRemove:
		return "-="
	default:
		return "?"
	}
}

// Assign binds every word of Name to Value. Value is nil for a bare key.
type Assign struct {
	node

	Name  *StringLiteral
	Value Statement
	Op    AssignOp
}

// Remove drops every word of Name from the enclosing namespace.
type Remove struct {
	node

	Name *StringLiteral
}

// BinaryOp is the operator of a Binary statement.
type BinaryOp int

const (
	OpConcat BinaryOp = iota // +
	OpSubtract               // -
	OpOr                     // ||
	OpAnd                    // &&
	OpEqual                  // ==
	OpNotEqual               // !=
	OpLess                   // <
	OpGreater                // >
	OpLessEqual              // <=
	OpGreaterEqual           // >=
)

var binaryOpText = [...]string{
	OpConcat:       "+",
	OpSubtract:     "-",
	OpOr:           "||",
	OpAnd:          "&&",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpGreater:      ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
}

// String returns the operator as written in a Marefile.
func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}

	return "?"
}

// Boolean reports whether the operator yields a truth value rather than a
// set of keys.
func (op BinaryOp) Boolean() bool { return op >= OpOr }

// Binary combines two statements.
type Binary struct {
	node

	Op    BinaryOp
	Left  Statement
	Right Statement
}

// Unary is the logical negation of Operand.
type Unary struct {
	node

	Operand Statement
}

// StringLiteral is literal text that may contain $(...) substitutions.
//
// Unquoted text is split into words after substitution. Quoted text always
// yields exactly one word.
type StringLiteral struct {
	node

	Text   string
	Quoted bool
}

// Reference denotes the binding of another key, looked up by name through
// the enclosing scopes.
type Reference struct {
	node

	Name string
}

// Conditional executes Then if Cond holds, otherwise Else. Else may be nil.
type Conditional struct {
	node

	Cond Statement
	Then Statement
	Else Statement
}

// NewBlock returns a block of the given statements.
func NewBlock(stmts ...Statement) *Block {
	return &Block{Statements: stmts}
}

// NewString returns an unpositioned string literal.
func NewString(text string, quoted bool) *StringLiteral {
	return &StringLiteral{Text: text, Quoted: quoted}
}

// NewReference returns an unpositioned reference to name.
func NewReference(name string) *Reference {
	return &Reference{Name: name}
}

// NewAssign returns an unpositioned assignment of value to the quoted name.
func NewAssign(name string, value Statement, op AssignOp) *Assign {
	return &Assign{Name: NewString(name, true), Value: value, Op: op}
}
