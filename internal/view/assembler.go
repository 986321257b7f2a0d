// Package view combines a view's displayed fields with its built query
// into a schema-ready view definition.
package view

import (
	"github.com/wrenfold/sitewright/internal/caml"
	"github.com/wrenfold/sitewright/internal/registry"
	"github.com/wrenfold/sitewright/model"
)

// Default row limit applied when the spec leaves it unset.
const defaultRowLimit = 30

// Assembler resolves view specs against one run's registry.
type Assembler struct {
	reg     *registry.Registry
	builder *caml.Builder
}

// NewAssembler creates an Assembler sharing the registry with its query
// builder.
func NewAssembler(reg *registry.Registry) *Assembler {
	return &Assembler{reg: reg, builder: caml.NewBuilder(reg)}
}

// Assemble resolves the view's displayed fields (order preserved,
// duplicates removed), builds its query, and, for calendar views, selects
// the DateTime field driving the calendar. Field references that cannot be
// resolved fail with UnresolvedFieldError; a calendar view with no
// resolvable DateTime field fails with InvalidViewError.
func (a *Assembler) Assemble(listID string, spec model.ViewSpec) (model.ViewDefinition, error) {
	def := model.ViewDefinition{
		Name:     spec.Name,
		Kind:     spec.Kind,
		Default:  spec.Default,
		RowLimit: spec.RowLimit,
	}
	if def.Kind == "" {
		def.Kind = model.ViewHTML
	}
	if def.RowLimit <= 0 {
		def.RowLimit = defaultRowLimit
	}

	seen := make(map[string]struct{})
	var displayed []model.ResolvedField
	for _, ref := range spec.Fields {
		f, ok := a.reg.Resolve(listID, ref)
		if !ok {
			return model.ViewDefinition{}, &model.UnresolvedFieldError{List: listID, Ref: ref}
		}
		if _, dup := seen[f.InternalName]; dup {
			continue
		}
		seen[f.InternalName] = struct{}{}
		displayed = append(displayed, f)
		def.Fields = append(def.Fields, f.InternalName)
	}

	q, err := a.builder.Build(listID, spec.Filter, spec.Sorts, spec.Group)
	if err != nil {
		return model.ViewDefinition{}, err
	}
	def.Query = q

	if def.Kind == model.ViewCalendar {
		dateField, ok := a.calendarDateField(listID, def.Query.Sorts, displayed)
		if !ok {
			return model.ViewDefinition{}, &model.InvalidViewError{
				List:   listID,
				View:   spec.Name,
				Reason: "calendar view requires a DateTime field among its ordering or display fields",
			}
		}
		def.DateField = dateField
	}

	return def, nil
}

// calendarDateField picks the field driving a calendar view: the first
// DateTime sort key, then the first displayed DateTime field, then any
// DateTime field the list owns.
func (a *Assembler) calendarDateField(listID string, sorts []model.SortKey, displayed []model.ResolvedField) (string, bool) {
	for _, s := range sorts {
		if f, ok := a.reg.Resolve(listID, s.Field); ok && f.Type == model.FieldDateTime {
			return f.InternalName, true
		}
	}
	for _, f := range displayed {
		if f.Type == model.FieldDateTime {
			return f.InternalName, true
		}
	}
	for _, f := range a.reg.Fields(listID) {
		if f.Type == model.FieldDateTime {
			return f.InternalName, true
		}
	}
	return "", false
}
