package fieldmap

import (
	"reflect"
	"testing"

	"github.com/wrenfold/sitewright/model"
)

func resolved(name string, spec model.FieldSpec) model.ResolvedField {
	spec.InternalName = name
	if spec.DisplayName == "" {
		spec.DisplayName = name
	}
	return model.ResolvedField{
		ID:           "{11111111-2222-3333-4444-555555555555}",
		InternalName: name,
		DisplayName:  spec.DisplayName,
		Type:         spec.Type,
		Spec:         spec,
	}
}

func TestMap_commonAttributeOrder(t *testing.T) {
	def := Map(resolved("EventDate", model.FieldSpec{Type: model.FieldDateTime}))

	wantOrder := []string{"Type", "DisplayName", "Required", "EnforceUniqueValues", "Indexed", "ID", "StaticName", "Name"}
	for i, name := range wantOrder {
		if def.Attrs[i].Name != name {
			t.Errorf("Attrs[%d].Name = %q, want %q", i, def.Attrs[i].Name, name)
		}
	}
	if got := def.Attr("Type"); got != "DateTime" {
		t.Errorf("Type = %q, want DateTime", got)
	}
	if got := def.Attr("ID"); got != "{11111111-2222-3333-4444-555555555555}" {
		t.Errorf("ID = %q", got)
	}
}

func TestMap_choiceEnumeratesOptions(t *testing.T) {
	def := Map(resolved("Category", model.FieldSpec{
		Type:    model.FieldChoice,
		Choices: []string{"Low", "Med", "High"},
	}))

	if !reflect.DeepEqual(def.Choices, []string{"Low", "Med", "High"}) {
		t.Errorf("Choices = %v, want [Low Med High]", def.Choices)
	}
	if def.HasDefault {
		t.Errorf("HasDefault = true with no declared default, Default = %q", def.Default)
	}
	if got := def.Attr("Format"); got != "Dropdown" {
		t.Errorf("Format = %q, want Dropdown", got)
	}
	if got := def.Attr("FillInChoice"); got != "FALSE" {
		t.Errorf("FillInChoice = %q, want FALSE", got)
	}
}

func TestMap_choiceDefaultOnlyWhenSpecified(t *testing.T) {
	def := Map(resolved("Category", model.FieldSpec{
		Type:          model.FieldChoice,
		Choices:       []string{"Low", "Med", "High"},
		DefaultChoice: "Med",
	}))

	if !def.HasDefault || def.Default != "Med" {
		t.Errorf("Default = %q (has=%v), want Med", def.Default, def.HasDefault)
	}
}

func TestMap_typeSpecificAttributes(t *testing.T) {
	tests := []struct {
		name string
		spec model.FieldSpec
		attr string
		want string
	}{
		{"text default max length", model.FieldSpec{Type: model.FieldText}, "MaxLength", "255"},
		{"text explicit max length", model.FieldSpec{Type: model.FieldText, MaxLength: 50}, "MaxLength", "50"},
		{"datetime date-only", model.FieldSpec{Type: model.FieldDateTime, DateOnly: true}, "Format", "DateOnly"},
		{"datetime full", model.FieldSpec{Type: model.FieldDateTime}, "Format", "DateTime"},
		{"number automatic decimals", model.FieldSpec{Type: model.FieldNumber, Decimals: -1}, "Decimals", "Automatic"},
		{"number fixed decimals", model.FieldSpec{Type: model.FieldNumber, Decimals: 2}, "Decimals", "2"},
		{"currency default locale", model.FieldSpec{Type: model.FieldCurrency}, "LCID", "1033"},
		{"currency explicit locale", model.FieldSpec{Type: model.FieldCurrency, CurrencyLCID: 2057}, "LCID", "2057"},
		{"person selection mode", model.FieldSpec{Type: model.FieldPerson}, "UserSelectionMode", "PeopleOnly"},
		{"person user list", model.FieldSpec{Type: model.FieldPerson}, "List", "UserInfo"},
		{"note plain text", model.FieldSpec{Type: model.FieldNote}, "RichText", "FALSE"},
		{"note rich text", model.FieldSpec{Type: model.FieldNote, RichText: true}, "RichText", "TRUE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := Map(resolved("F", tt.spec))
			if got := def.Attr(tt.attr); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.attr, got, tt.want)
			}
		})
	}
}

func TestMap_personProvisionsAsUser(t *testing.T) {
	def := Map(resolved("Reviewer", model.FieldSpec{Type: model.FieldPerson}))
	if got := def.Attr("Type"); got != "User" {
		t.Errorf("Type = %q, want User", got)
	}
}

func TestMap_booleanDefaults(t *testing.T) {
	yes, no := true, false

	def := Map(resolved("Active", model.FieldSpec{Type: model.FieldBoolean, BoolDefault: &yes}))
	if !def.HasDefault || def.Default != "1" {
		t.Errorf("true default = %q (has=%v), want 1", def.Default, def.HasDefault)
	}

	def = Map(resolved("Active", model.FieldSpec{Type: model.FieldBoolean, BoolDefault: &no}))
	if !def.HasDefault || def.Default != "0" {
		t.Errorf("false default = %q (has=%v), want 0", def.Default, def.HasDefault)
	}

	def = Map(resolved("Active", model.FieldSpec{Type: model.FieldBoolean}))
	if def.HasDefault {
		t.Error("unset boolean default still emitted")
	}
}

func TestMap_requiredFlag(t *testing.T) {
	def := Map(resolved("Title2", model.FieldSpec{Type: model.FieldText, Required: true}))
	if got := def.Attr("Required"); got != "TRUE" {
		t.Errorf("Required = %q, want TRUE", got)
	}
}

func TestValueType(t *testing.T) {
	tests := []struct {
		in   model.FieldType
		want string
	}{
		{model.FieldText, "Text"},
		{model.FieldChoice, "Choice"},
		{model.FieldDateTime, "DateTime"},
		{model.FieldBoolean, "Boolean"},
		{model.FieldNumber, "Number"},
		{model.FieldCurrency, "Currency"},
		{model.FieldPerson, "User"},
		{model.FieldNote, "Note"},
	}
	for _, tt := range tests {
		if got := ValueType(tt.in); got != tt.want {
			t.Errorf("ValueType(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
