// Package caml compiles declarative filter/sort/group specifications into
// query expression trees and renders them to CAML view queries.
//
// The tree keeps logical combinations in n-ary form; CAML's And/Or elements
// are strictly binary, so the renderer right-folds n-ary nodes into nested
// binary elements.
package caml

import (
	"strings"

	"github.com/wrenfold/sitewright/internal/fieldmap"
	"github.com/wrenfold/sitewright/internal/registry"
	"github.com/wrenfold/sitewright/model"
)

// Builder compiles view filter/sort/group specs against one run's field
// registry.
type Builder struct {
	reg *registry.Registry
}

// NewBuilder creates a Builder over the given registry.
func NewBuilder(reg *registry.Registry) *Builder {
	return &Builder{reg: reg}
}

// Build compiles the given specs into a query for the list. Every field
// reference must resolve against the list; an unresolvable reference fails
// the whole build with an UnresolvedFieldError, it is never dropped
// silently. Sort keys keep their given order.
func (b *Builder) Build(listID string, filter *model.FilterSpec, sorts []model.SortKey, group *model.GroupSpec) (model.Query, error) {
	var q model.Query

	if filter != nil {
		node, err := b.buildGroup(listID, filter)
		if err != nil {
			return model.Query{}, err
		}
		q.Where = node
	}

	for _, s := range sorts {
		f, ok := b.reg.Resolve(listID, s.Field)
		if !ok {
			return model.Query{}, &model.UnresolvedFieldError{List: listID, Ref: s.Field}
		}
		q.Sorts = append(q.Sorts, model.SortKey{Field: f.InternalName, Descending: s.Descending})
	}

	if group != nil {
		f, ok := b.reg.Resolve(listID, group.Field)
		if !ok {
			return model.Query{}, &model.UnresolvedFieldError{List: listID, Ref: group.Field}
		}
		q.GroupBy = &model.GroupSpec{
			Field:    f.InternalName,
			Collapse: group.Collapse,
			Limit:    group.Limit,
		}
	}

	return q, nil
}

// buildGroup compiles one filter group. Zero conditions yield no node, one
// condition yields its node directly, and two or more fold into a single
// n-ary Logical node of the group's kind.
func (b *Builder) buildGroup(listID string, filter *model.FilterSpec) (model.QueryNode, error) {
	var children []model.QueryNode
	for _, c := range filter.Conditions {
		if c.Group != nil {
			node, err := b.buildGroup(listID, c.Group)
			if err != nil {
				return nil, err
			}
			if node != nil {
				children = append(children, node)
			}
			continue
		}
		node, err := b.buildComparison(listID, c)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}

	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	}

	kind := model.LogicalAnd
	if filter.Match == model.MatchAny {
		kind = model.LogicalOr
	}
	return model.Logical{Kind: kind, Children: children}, nil
}

func (b *Builder) buildComparison(listID string, c model.FilterCondition) (model.QueryNode, error) {
	f, ok := b.reg.Resolve(listID, c.Field)
	if !ok {
		return nil, &model.UnresolvedFieldError{List: listID, Ref: c.Field}
	}
	return model.Comparison{
		Op:    c.Op,
		Field: f.InternalName,
		Value: literalFor(f.Type, c.Value),
	}, nil
}

// literalFor tags the raw value with the referenced field's wire value
// type. DateTime values named Today or Now become dynamic tokens; boolean
// values normalize to 0/1.
func literalFor(t model.FieldType, raw string) model.Literal {
	lit := model.Literal{Type: fieldmap.ValueType(t)}

	switch t {
	case model.FieldDateTime:
		switch strings.ToLower(strings.Trim(raw, "[]")) {
		case "today":
			lit.Token = model.TokenToday
			return lit
		case "now":
			lit.Token = model.TokenNow
			return lit
		}
	case model.FieldBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes":
			lit.Text = "1"
		default:
			lit.Text = "0"
		}
		return lit
	}

	lit.Text = raw
	return lit
}

// ParseOp maps the operator spellings tolerated in input to a CompareOp.
func ParseOp(s string) (model.CompareOp, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "equals", "=", "==", "is":
		return model.OpEq, true
	case "neq", "ne", "notequals", "not_equals", "!=", "<>":
		return model.OpNeq, true
	case "lt", "lessthan", "less_than", "<":
		return model.OpLt, true
	case "gt", "greaterthan", "greater_than", ">":
		return model.OpGt, true
	case "leq", "le", "lte", "lessorequal", "less_or_equal", "<=":
		return model.OpLeq, true
	case "geq", "ge", "gte", "greaterorequal", "greater_or_equal", ">=":
		return model.OpGeq, true
	case "contains", "like":
		return model.OpContains, true
	case "beginswith", "begins_with", "startswith", "starts_with":
		return model.OpBeginsWith, true
	}
	return "", false
}
