// Package model defines the typed site structure that the generation
// pipeline operates on, along with the error taxonomy and defect reporting
// types shared by every stage.
//
// A SiteSpec tree is produced once by the normalizer from raw intent JSON
// and is immutable afterwards; downstream components never re-inspect the
// raw input.
package model

// SiteTemplate identifies the base site template kind.
type SiteTemplate string

const (
	TemplateTeam          SiteTemplate = "team"
	TemplateCommunication SiteTemplate = "communication"
	TemplateHub           SiteTemplate = "hub"
)

// BaseTemplateCode returns the provisioning base template identifier for
// the site kind. The codes match the values SharePoint accepts for modern
// team sites, communication sites, and hub-capable sites.
func (t SiteTemplate) BaseTemplateCode() string {
	switch t {
	case TemplateCommunication:
		return "SITEPAGEPUBLISHING#0"
	case TemplateHub:
		return "STS#3"
	default:
		return "GROUP#0"
	}
}

// SiteSpec is the fully-typed description of one site. It is constructed by
// the normalizer and never mutated afterwards.
type SiteSpec struct {
	Title       string
	Description string
	Template    SiteTemplate
	Lists       []ListSpec
	Navigation  []NavigationNode
	Theme       *ThemeSpec
	Features    []string // site-scoped feature GUIDs, activation order kept
}

// NavigationNode is a single structural navigation entry.
type NavigationNode struct {
	Title string
	URL   string
}

// ListKind distinguishes document libraries from generic lists.
type ListKind string

const (
	ListKindLibrary ListKind = "library"
	ListKindGeneric ListKind = "list"
)

// List template type codes used by the provisioning schema.
const (
	TemplateTypeGenericList     = 100
	TemplateTypeDocumentLibrary = 101
	TemplateTypeAnnouncements   = 104
	TemplateTypeContacts        = 105
	TemplateTypeEvents          = 106
	TemplateTypeTasks           = 107
)

// ListSpec describes one list or library. Fields are owned exclusively by
// this list; internal names are unique within it once registered.
type ListSpec struct {
	Title        string
	Description  string
	URL          string
	Kind         ListKind
	TemplateType int
	Versioning   bool
	OnQuickLaunch bool
	Fields       []FieldSpec
	Views        []ViewSpec
}

// FieldType is the semantic type of a field.
type FieldType string

const (
	FieldText     FieldType = "Text"
	FieldChoice   FieldType = "Choice"
	FieldDateTime FieldType = "DateTime"
	FieldBoolean  FieldType = "Boolean"
	FieldNumber   FieldType = "Number"
	FieldCurrency FieldType = "Currency"
	FieldPerson   FieldType = "Person"
	FieldNote     FieldType = "Note"
)

// FieldSpec describes one field as requested by the input structure. The
// internal name here is the requested one; the registry resolves it to a
// unique wire-safe identity.
type FieldSpec struct {
	DisplayName  string
	InternalName string
	Type         FieldType
	Required     bool

	// Type-specific options.
	Choices       []string // Choice: option values in declaration order
	DefaultChoice string   // Choice: default option, empty for none
	MaxLength     int      // Text: maximum length, 0 for the schema default
	DefaultText   string   // Text: default value
	Decimals      int      // Number: decimal places, -1 for automatic
	CurrencyLCID  int      // Currency: locale identifier, 0 for default
	BoolDefault   *bool    // Boolean: default value, nil for none
	DateOnly      bool     // DateTime: date-only display
	RichText      bool     // Note: rich text mode
}

// ViewKind distinguishes ordinary HTML views from calendar views.
type ViewKind string

const (
	ViewHTML     ViewKind = "html"
	ViewCalendar ViewKind = "calendar"
)

// ViewSpec describes one view over its owning list. Field references may
// use either the requested internal name or the display name.
type ViewSpec struct {
	Name     string
	Kind     ViewKind
	Fields   []string
	Filter   *FilterSpec
	Sorts    []SortKey
	Group    *GroupSpec
	RowLimit int
	Default  bool
}

// MatchKind selects the logical combinator for a filter group.
type MatchKind string

const (
	MatchAll MatchKind = "all" // And
	MatchAny MatchKind = "any" // Or
)

// FilterSpec is a declarative filter: a combinator plus an ordered set of
// conditions, each either a comparison or a nested group.
type FilterSpec struct {
	Match      MatchKind
	Conditions []FilterCondition
}

// FilterCondition is one conjunct or disjunct. Exactly one of the
// comparison fields or Group is populated.
type FilterCondition struct {
	Field string
	Op    CompareOp
	Value string
	Group *FilterSpec
}

// CompareOp is a comparison operator. The values are the CAML element
// names used on render.
type CompareOp string

const (
	OpEq         CompareOp = "Eq"
	OpNeq        CompareOp = "Neq"
	OpLt         CompareOp = "Lt"
	OpGt         CompareOp = "Gt"
	OpLeq        CompareOp = "Leq"
	OpGeq        CompareOp = "Geq"
	OpContains   CompareOp = "Contains"
	OpBeginsWith CompareOp = "BeginsWith"
)

// SortKey is one ordering key with direction.
type SortKey struct {
	Field      string
	Descending bool
}

// GroupSpec is a single grouping key with collapse and per-group limit
// settings.
type GroupSpec struct {
	Field    string
	Collapse bool
	Limit    int
}

// ThemeSpec carries the theme intent: an optional seed color and context
// hints used for fallback palette selection.
type ThemeSpec struct {
	Name     string
	SeedHex  string
	Hints    []string
	Inverted bool
}
