package model

// ResolvedField is a field's permanent identity for one generation run:
// the unique wire-safe internal name assigned by the registry plus the
// GUID used in the emitted definition.
type ResolvedField struct {
	ID           string // braced uppercase GUID, e.g. {1F2A...}
	InternalName string
	DisplayName  string
	Type         FieldType
	Spec         FieldSpec
}

// Attr is one XML attribute. Definitions carry attributes as an ordered
// slice because the output is compared byte-for-byte.
type Attr struct {
	Name  string
	Value string
}

// FieldDefinition is the canonical, schema-ready form of one field as
// produced by the type mapper: the full ordered attribute set plus any
// type-specific children.
type FieldDefinition struct {
	Attrs      []Attr
	Default    string
	HasDefault bool
	Choices    []string
}

// Attr returns the value of the named attribute, or the empty string.
func (d FieldDefinition) Attr(name string) string {
	for _, a := range d.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// ViewDefinition is the assembled, schema-ready form of one view.
type ViewDefinition struct {
	Name     string
	Kind     ViewKind
	Default  bool
	RowLimit int
	Fields   []string // resolved internal names, order preserved, deduplicated
	Query    Query

	// DateField is the resolved DateTime field driving a calendar view.
	// Empty for HTML views.
	DateField string
}
