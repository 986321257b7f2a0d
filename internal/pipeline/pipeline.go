// Package pipeline runs the forward generation pass: normalize the raw
// intent structure, resolve fields, assemble views and queries, derive the
// theme, compose the document, and validate it.
//
// A view that references an unresolvable field or violates a structural
// requirement is skipped with a recorded warning; the run continues.
// Only structurally insufficient input aborts a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wrenfold/sitewright/internal/document"
	"github.com/wrenfold/sitewright/internal/fieldmap"
	"github.com/wrenfold/sitewright/internal/normalize"
	"github.com/wrenfold/sitewright/internal/observability"
	"github.com/wrenfold/sitewright/internal/registry"
	"github.com/wrenfold/sitewright/internal/schema"
	"github.com/wrenfold/sitewright/internal/theme"
	"github.com/wrenfold/sitewright/internal/view"
	"github.com/wrenfold/sitewright/model"
)

// Generator drives one raw structure through the full pass.
type Generator struct {
	normalizer *normalize.Normalizer
	themes     *theme.Engine
	validator  *schema.Validator
	logger     *zap.Logger
}

// Options configures a Generator. A nil Validator gets the structural-only
// validator; a nil Logger gets a no-op one.
type Options struct {
	Validator *schema.Validator
	Logger    *zap.Logger
}

// New creates a Generator.
func New(opts Options) *Generator {
	v := opts.Validator
	if v == nil {
		v = schema.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		normalizer: normalize.New(),
		themes:     theme.NewEngine(),
		validator:  v,
		logger:     logger,
	}
}

// Result is the outcome of one generation run.
type Result struct {
	Site     model.SiteSpec
	XML      string
	Warnings []model.Defect
	Defects  []model.Defect
}

// Generate runs the full pass over a raw intent structure.
func (g *Generator) Generate(ctx context.Context, raw map[string]any) (*Result, error) {
	logger := observability.LoggerFrom(ctx, g.logger)

	site, warnings, err := g.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("input normalized",
		zap.String("site", site.Title),
		zap.Int("lists", len(site.Lists)),
		zap.Int("warnings", len(warnings)))

	reg := registry.New()
	assembler := view.NewAssembler(reg)

	artifacts := make([]document.ListArtifact, 0, len(site.Lists))
	for i, list := range site.Lists {
		listID := fmt.Sprintf("lists[%d]", i)

		resolved := make([]model.ResolvedField, 0, len(list.Fields))
		for _, fs := range list.Fields {
			resolved = append(resolved, reg.Register(listID, fs))
		}

		defs := make([]model.FieldDefinition, 0, len(resolved))
		for _, rf := range resolved {
			defs = append(defs, fieldmap.Map(rf))
		}

		views := make([]model.ViewDefinition, 0, len(list.Views))
		for j, vs := range list.Views {
			vd, err := assembler.Assemble(listID, vs)
			if err != nil {
				var unresolved *model.UnresolvedFieldError
				var invalid *model.InvalidViewError
				if errors.As(err, &unresolved) || errors.As(err, &invalid) {
					warnings = append(warnings, model.Defect{
						Path:    fmt.Sprintf("%s.views[%d]", listID, j),
						Code:    model.DefectSkippedView,
						Message: fmt.Sprintf("view %q skipped: %v", vs.Name, err),
					})
					logger.Warn("view skipped",
						zap.String("list", list.Title),
						zap.String("view", vs.Name),
						zap.Error(err))
					continue
				}
				return nil, fmt.Errorf("assemble view %q on list %q: %w", vs.Name, list.Title, err)
			}
			views = append(views, vd)
		}

		artifacts = append(artifacts, document.ListArtifact{
			Spec:   list,
			Fields: defs,
			Views:  views,
		})
	}

	var palette *model.Palette
	if site.Theme != nil {
		p, w := g.themes.Derive(*site.Theme)
		warnings = append(warnings, w...)
		palette = &p
	}

	xml, err := document.Render(document.Input{
		Site:    site,
		Palette: palette,
		Lists:   artifacts,
	})
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	defects, err := g.validator.Validate(xml)
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	if len(defects) > 0 {
		logger.Warn("validation found defects", zap.Int("count", len(defects)))
	}

	return &Result{
		Site:     site,
		XML:      xml,
		Warnings: warnings,
		Defects:  defects,
	}, nil
}
