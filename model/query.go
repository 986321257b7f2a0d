package model

// QueryNode is a node in a built query expression tree. The tree is a
// tagged variant: Comparison leaves and Logical interior nodes. It is built
// top-down by the query builder and rendered bottom-up to CAML.
type QueryNode interface {
	queryNode()
}

// DateToken is a dynamic date literal resolved by the target system at
// query time.
type DateToken string

const (
	TokenNone  DateToken = ""
	TokenToday DateToken = "Today"
	TokenNow   DateToken = "Now"
)

// Literal is a type-tagged comparison value. Either Text or Token is set;
// Type carries the wire value type derived from the referenced field's
// semantic type.
type Literal struct {
	Type  string
	Text  string
	Token DateToken
}

// Comparison is a single field/operator/literal test. Field is the
// resolved internal name of the referenced field.
type Comparison struct {
	Op    CompareOp
	Field string
	Value Literal
}

func (Comparison) queryNode() {}

// LogicalKind selects the boolean combinator of a Logical node.
type LogicalKind string

const (
	LogicalAnd LogicalKind = "And"
	LogicalOr  LogicalKind = "Or"
)

// Logical combines two or more child nodes under one boolean kind. The
// tree keeps the n-ary form; binary nesting is a concern of the renderer.
type Logical struct {
	Kind     LogicalKind
	Children []QueryNode
}

func (Logical) queryNode() {}

// Query is a fully built list query: an optional boolean filter tree plus
// ordering and grouping.
type Query struct {
	Where   QueryNode
	Sorts   []SortKey
	GroupBy *GroupSpec
}

// Empty reports whether the query carries no clauses at all.
func (q Query) Empty() bool {
	return q.Where == nil && len(q.Sorts) == 0 && q.GroupBy == nil
}
