package model

import "fmt"

// Defect codes reported by the normalizer, pipeline, and validator.
const (
	DefectUnknownFieldType = "UNKNOWN_FIELD_TYPE"
	DefectUnknownListKind  = "UNKNOWN_LIST_KIND"
	DefectDefaulted        = "DEFAULTED_VALUE"
	DefectDroppedClause    = "DROPPED_CLAUSE"
	DefectMalformedSeed    = "MALFORMED_THEME_SEED"
	DefectSkippedView      = "SKIPPED_VIEW"
	DefectNamespace        = "NAMESPACE"
	DefectOrdering         = "ORDERING"
	DefectMissingAttribute = "MISSING_ATTRIBUTE"
	DefectBadAttribute     = "BAD_ATTRIBUTE"
	DefectFieldType        = "FIELD_TYPE"
	DefectViewShape        = "VIEW_SHAPE"
	DefectXSD              = "XSD"
)

// Defect is a non-fatal finding tied to a node path in the generated
// document. Defects are advisory: the caller decides whether to reject or
// proceed.
type Defect struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d Defect) String() string {
	return fmt.Sprintf("%s: [%s] %s", d.Path, d.Code, d.Message)
}

// SchemaError reports structurally insufficient input: a required key such
// as the site title or the list collection is absent. It is fatal; no
// document is produced.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

// NewSchemaError returns a SchemaError with a formatted reason.
func NewSchemaError(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// UnresolvedFieldError reports a view or query reference to a field that
// the registry cannot resolve against the owning list.
type UnresolvedFieldError struct {
	List string
	Ref  string
}

func (e *UnresolvedFieldError) Error() string {
	return fmt.Sprintf("field %q cannot be resolved in list %q", e.Ref, e.List)
}

// InvalidViewError reports a structural view requirement violation, such
// as a calendar view over a list with no DateTime field.
type InvalidViewError struct {
	List   string
	View   string
	Reason string
}

func (e *InvalidViewError) Error() string {
	return fmt.Sprintf("view %q on list %q: %s", e.View, e.List, e.Reason)
}
