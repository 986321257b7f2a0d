package caml

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/wrenfold/sitewright/model"
)

// RenderQuery renders a built query to its Query element: Where, then
// OrderBy, then GroupBy, each present only when the query carries the
// clause. Returns nil for an empty query.
func RenderQuery(q model.Query) *etree.Element {
	if q.Empty() {
		return nil
	}

	el := etree.NewElement("Query")

	if q.Where != nil {
		where := el.CreateElement("Where")
		where.AddChild(renderNode(q.Where))
	}

	if len(q.Sorts) > 0 {
		orderBy := el.CreateElement("OrderBy")
		for _, s := range q.Sorts {
			ref := orderBy.CreateElement("FieldRef")
			ref.CreateAttr("Name", s.Field)
			ref.CreateAttr("Ascending", boolTag(!s.Descending))
		}
	}

	if q.GroupBy != nil {
		groupBy := el.CreateElement("GroupBy")
		groupBy.CreateAttr("Collapse", boolTag(q.GroupBy.Collapse))
		if q.GroupBy.Limit > 0 {
			groupBy.CreateAttr("GroupLimit", strconv.Itoa(q.GroupBy.Limit))
		}
		ref := groupBy.CreateElement("FieldRef")
		ref.CreateAttr("Name", q.GroupBy.Field)
	}

	return el
}

// Render returns the textual CAML form of the query, empty for an empty
// query.
func Render(q model.Query) string {
	el := RenderQuery(q)
	if el == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(el)
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// renderNode renders one tree node. N-ary logical nodes right-fold into
// nested binary And/Or elements because CAML logical operators take exactly
// two operands: A AND B AND C becomes And(A, And(B, C)).
func renderNode(node model.QueryNode) *etree.Element {
	switch n := node.(type) {
	case model.Comparison:
		el := etree.NewElement(string(n.Op))
		ref := el.CreateElement("FieldRef")
		ref.CreateAttr("Name", n.Field)
		val := el.CreateElement("Value")
		val.CreateAttr("Type", n.Value.Type)
		if n.Value.Token != model.TokenNone {
			val.CreateElement(string(n.Value.Token))
		} else {
			val.SetText(n.Value.Text)
		}
		return el

	case model.Logical:
		return foldBinary(n.Kind, n.Children)
	}
	return nil
}

func foldBinary(kind model.LogicalKind, children []model.QueryNode) *etree.Element {
	if len(children) == 1 {
		return renderNode(children[0])
	}
	el := etree.NewElement(string(kind))
	el.AddChild(renderNode(children[0]))
	el.AddChild(foldBinary(kind, children[1:]))
	return el
}

func boolTag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
