package caml

import (
	"errors"
	"strings"
	"testing"

	"github.com/wrenfold/sitewright/internal/registry"
	"github.com/wrenfold/sitewright/model"
)

func taskRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	for _, spec := range []model.FieldSpec{
		{InternalName: "Priority", DisplayName: "Priority Level", Type: model.FieldChoice, Choices: []string{"Low", "High"}},
		{InternalName: "DueDate2", DisplayName: "Due Date", Type: model.FieldDateTime},
		{InternalName: "Budget", DisplayName: "Budget", Type: model.FieldCurrency},
		{InternalName: "Done", DisplayName: "Done", Type: model.FieldBoolean},
		{InternalName: "Notes", DisplayName: "Notes", Type: model.FieldNote},
		{InternalName: "AssignedTo2", DisplayName: "Assigned Person", Type: model.FieldPerson},
	} {
		r.Register("tasks", spec)
	}
	return r
}

func TestBuild_andOfTwoComparisons(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	q, err := b.Build("tasks", &model.FilterSpec{
		Match: model.MatchAll,
		Conditions: []model.FilterCondition{
			{Field: "Priority", Op: model.OpEq, Value: "High"},
			{Field: "DueDate2", Op: model.OpLt, Value: "Today"},
		},
	}, nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	and, ok := q.Where.(model.Logical)
	if !ok || and.Kind != model.LogicalAnd {
		t.Fatalf("Where = %#v, want And node", q.Where)
	}
	if len(and.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(and.Children))
	}

	first, ok := and.Children[0].(model.Comparison)
	if !ok {
		t.Fatalf("Children[0] = %#v, want Comparison", and.Children[0])
	}
	if first.Op != model.OpEq || first.Field != "Priority" || first.Value.Text != "High" || first.Value.Type != "Choice" {
		t.Errorf("Children[0] = %+v, want Eq Priority Choice High", first)
	}

	second, ok := and.Children[1].(model.Comparison)
	if !ok {
		t.Fatalf("Children[1] = %#v, want Comparison", and.Children[1])
	}
	if second.Op != model.OpLt || second.Field != "DueDate2" {
		t.Errorf("Children[1] = %+v, want Lt DueDate2", second)
	}
	if second.Value.Token != model.TokenToday {
		t.Errorf("Children[1] literal token = %q, want Today", second.Value.Token)
	}
}

func TestBuild_singleConditionHasNoLogicalWrapper(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	q, err := b.Build("tasks", &model.FilterSpec{
		Match:      model.MatchAll,
		Conditions: []model.FilterCondition{{Field: "Done", Op: model.OpEq, Value: "true"}},
	}, nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cmp, ok := q.Where.(model.Comparison)
	if !ok {
		t.Fatalf("Where = %#v, want bare Comparison", q.Where)
	}
	if cmp.Value.Type != "Boolean" || cmp.Value.Text != "1" {
		t.Errorf("boolean literal = %+v, want Boolean 1", cmp.Value)
	}
}

func TestBuild_threeDisjunctsFoldToOneNaryNode(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	q, err := b.Build("tasks", &model.FilterSpec{
		Match: model.MatchAny,
		Conditions: []model.FilterCondition{
			{Field: "Priority", Op: model.OpEq, Value: "Low"},
			{Field: "Priority", Op: model.OpEq, Value: "High"},
			{Field: "Done", Op: model.OpEq, Value: "0"},
		},
	}, nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	or, ok := q.Where.(model.Logical)
	if !ok || or.Kind != model.LogicalOr {
		t.Fatalf("Where = %#v, want Or node", q.Where)
	}
	if len(or.Children) != 3 {
		t.Errorf("len(Children) = %d, want 3 (single n-ary node)", len(or.Children))
	}
}

func TestBuild_nestedGroup(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	q, err := b.Build("tasks", &model.FilterSpec{
		Match: model.MatchAll,
		Conditions: []model.FilterCondition{
			{Field: "Done", Op: model.OpEq, Value: "0"},
			{Group: &model.FilterSpec{
				Match: model.MatchAny,
				Conditions: []model.FilterCondition{
					{Field: "Priority", Op: model.OpEq, Value: "High"},
					{Field: "DueDate2", Op: model.OpLeq, Value: "Now"},
				},
			}},
		},
	}, nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	and, ok := q.Where.(model.Logical)
	if !ok || and.Kind != model.LogicalAnd || len(and.Children) != 2 {
		t.Fatalf("Where = %#v, want And with 2 children", q.Where)
	}
	inner, ok := and.Children[1].(model.Logical)
	if !ok || inner.Kind != model.LogicalOr {
		t.Fatalf("Children[1] = %#v, want nested Or", and.Children[1])
	}
}

func TestBuild_unresolvedFieldFails(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	_, err := b.Build("tasks", &model.FilterSpec{
		Match:      model.MatchAll,
		Conditions: []model.FilterCondition{{Field: "NoSuchField", Op: model.OpEq, Value: "x"}},
	}, nil, nil)

	var ufe *model.UnresolvedFieldError
	if !errors.As(err, &ufe) {
		t.Fatalf("Build() error = %v, want UnresolvedFieldError", err)
	}
	if ufe.Ref != "NoSuchField" || ufe.List != "tasks" {
		t.Errorf("error names %q in %q, want NoSuchField in tasks", ufe.Ref, ufe.List)
	}
}

func TestBuild_unresolvedSortAndGroupFieldsFail(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	_, err := b.Build("tasks", nil, []model.SortKey{{Field: "Ghost"}}, nil)
	var ufe *model.UnresolvedFieldError
	if !errors.As(err, &ufe) {
		t.Fatalf("sort error = %v, want UnresolvedFieldError", err)
	}

	_, err = b.Build("tasks", nil, nil, &model.GroupSpec{Field: "Ghost"})
	if !errors.As(err, &ufe) {
		t.Fatalf("group error = %v, want UnresolvedFieldError", err)
	}
}

func TestBuild_resolvesByDisplayNameAndKeepsSortOrder(t *testing.T) {
	b := NewBuilder(taskRegistry(t))

	q, err := b.Build("tasks", nil, []model.SortKey{
		{Field: "Due Date", Descending: true},
		{Field: "Priority Level"},
	}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(q.Sorts) != 2 {
		t.Fatalf("len(Sorts) = %d, want 2", len(q.Sorts))
	}
	if q.Sorts[0].Field != "DueDate2" || !q.Sorts[0].Descending {
		t.Errorf("Sorts[0] = %+v, want DueDate2 descending", q.Sorts[0])
	}
	if q.Sorts[1].Field != "Priority" || q.Sorts[1].Descending {
		t.Errorf("Sorts[1] = %+v, want Priority ascending", q.Sorts[1])
	}
}

func TestRender_rightFoldsNaryToBinary(t *testing.T) {
	q := model.Query{Where: model.Logical{
		Kind: model.LogicalAnd,
		Children: []model.QueryNode{
			model.Comparison{Op: model.OpEq, Field: "A", Value: model.Literal{Type: "Text", Text: "1"}},
			model.Comparison{Op: model.OpEq, Field: "B", Value: model.Literal{Type: "Text", Text: "2"}},
			model.Comparison{Op: model.OpEq, Field: "C", Value: model.Literal{Type: "Text", Text: "3"}},
		},
	}}

	got := Render(q)
	want := `<Query><Where><And><Eq><FieldRef Name="A"/><Value Type="Text">1</Value></Eq><And><Eq><FieldRef Name="B"/><Value Type="Text">2</Value></Eq><Eq><FieldRef Name="C"/><Value Type="Text">3</Value></Eq></And></And></Where></Query>`
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_dateTokenAndClauses(t *testing.T) {
	q := model.Query{
		Where: model.Comparison{
			Op:    model.OpLt,
			Field: "DueDate2",
			Value: model.Literal{Type: "DateTime", Token: model.TokenToday},
		},
		Sorts:   []model.SortKey{{Field: "DueDate2", Descending: true}},
		GroupBy: &model.GroupSpec{Field: "Priority", Collapse: true, Limit: 30},
	}

	got := Render(q)
	for _, want := range []string{
		`<Lt><FieldRef Name="DueDate2"/><Value Type="DateTime"><Today/></Value></Lt>`,
		`<OrderBy><FieldRef Name="DueDate2" Ascending="FALSE"/></OrderBy>`,
		`<GroupBy Collapse="TRUE" GroupLimit="30"><FieldRef Name="Priority"/></GroupBy>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %s\ngot %s", want, got)
		}
	}

	// Clause order is Where, OrderBy, GroupBy.
	iw := strings.Index(got, "<Where>")
	io := strings.Index(got, "<OrderBy>")
	ig := strings.Index(got, "<GroupBy")
	if !(iw < io && io < ig) {
		t.Errorf("clause order wrong: Where@%d OrderBy@%d GroupBy@%d", iw, io, ig)
	}
}

func TestRender_emptyQuery(t *testing.T) {
	if got := Render(model.Query{}); got != "" {
		t.Errorf("Render(empty) = %q, want empty", got)
	}
	if el := RenderQuery(model.Query{}); el != nil {
		t.Errorf("RenderQuery(empty) = %v, want nil", el)
	}
}

func TestParseOp(t *testing.T) {
	tests := []struct {
		in   string
		want model.CompareOp
	}{
		{"equals", model.OpEq},
		{"EQ", model.OpEq},
		{"!=", model.OpNeq},
		{"lessThan", model.OpLt},
		{">=", model.OpGeq},
		{"contains", model.OpContains},
		{"startsWith", model.OpBeginsWith},
	}
	for _, tt := range tests {
		got, ok := ParseOp(tt.in)
		if !ok || got != tt.want {
			t.Errorf("ParseOp(%q) = %q, %v, want %q", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := ParseOp("between"); ok {
		t.Error("ParseOp(between) succeeded, want failure")
	}
}
