package lang

// Span records the source range of a node's first and last significant
// tokens, for diagnostics.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

// Node is implemented by every AST node kind.
type Node interface {
	span() Span
}

// Program is the parsed form of a whole .tgsk file: a sequence of
// top-level chains with no carried value between them.
type Program struct {
	Chains []*Chain
	Sp     Span
}

func (p *Program) span() Span { return p.Sp }

// Block is a '{' program '}' sequence of statements; its value is its last
// chain's resulting value.
type Block struct {
	Chains []*Chain
	Sp     Span
}

func (b *Block) span() Span { return b.Sp }

// Chain is a sequence of atoms joined by '>', threading a last value left
// to right.
type Chain struct {
	Atoms []Node
	Sp    Span
}

func (c *Chain) span() Span { return c.Sp }

// Flag is one entry of a packet's (flags) list: a bare identifier, or a
// key:value pair.
type Flag struct {
	Key      string
	Value    string
	HasValue bool
}

// Packet is the atomic TagSpeak expression: [op(flags)@arg]{body?}.
type Packet struct {
	Op       string
	Label    string // from the optional ':label' after op
	HasLabel bool
	Flags    []Flag
	FlagsRaw string
	HasFlags bool
	Arg      Expr
	HasArg   bool
	Body     *Block
	Sp       Span
}

func (p *Packet) span() Span { return p.Sp }

// IfChain is the `[if cond]{..} ([or cond]{..})* ([else]{..})?` construct
//, including the legacy [then]{...}-branch form.
type IfChain struct {
	Branches []*IfBranch
	Else     *Block
	Sp       Span
}

func (i *IfChain) span() Span { return i.Sp }

type IfBranch struct {
	Cond Expr
	Body *Block
}

// Expr is implemented by every expression node usable as a packet @arg or
// inside a condition/arithmetic expression.
type Expr interface {
	Node
	exprNode()
}

type NumberLit struct {
	Value float64
	Sp    Span
}

func (n *NumberLit) span() Span { return n.Sp }
func (*NumberLit) exprNode()    {}

type StringLit struct {
	Value string
	Sp    Span
}

func (s *StringLit) span() Span { return s.Sp }
func (*StringLit) exprNode()    {}

type BoolLit struct {
	Value bool
	Sp    Span
}

func (b *BoolLit) span() Span { return b.Sp }
func (*BoolLit) exprNode()    {}

// IdentRef is a bare identifier in expression position: a variable
// reference inside conditions, or a literal symbol depending on the
// consuming packet.
type IdentRef struct {
	Name string
	Sp   Span
}

func (i *IdentRef) span() Span { return i.Sp }
func (*IdentRef) exprNode()    {}

// NestedPacket wraps a bracket expression used in argument position, e.g.
// `@[math@1+1]`.
type NestedPacket struct {
	Packet *Packet
	Sp     Span
}

func (n *NestedPacket) span() Span { return n.Sp }
func (*NestedPacket) exprNode()    {}

// Unary is a prefix operator: "!"/"not".
type Unary struct {
	Op string
	X  Expr
	Sp Span
}

func (u *Unary) span() Span { return u.Sp }
func (*Unary) exprNode()    {}

// Binary covers arithmetic (+ - * / %), comparison (== != < <= > >=), and
// logical (&& ||) operators as one node type, dispatched on Op by
// consumers.
type Binary struct {
	Op   string
	L, R Expr
	Sp   Span
}

func (b *Binary) span() Span { return b.Sp }
func (*Binary) exprNode()    {}

// ParenGroup preserves an explicit parenthesization for re-serialization
// round-tripping even though evaluation treats it as transparent.
type ParenGroup struct {
	X  Expr
	Sp Span
}

func (p *ParenGroup) span() Span { return p.Sp }
func (*ParenGroup) exprNode()    {}
