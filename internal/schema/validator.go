// Package schema checks generated documents before they are handed to the
// caller. The structural pass is always on and knows the provisioning
// dialect this generator emits: namespace, mandated element order, required
// attributes, and the per-type field and view shapes. The XSD pass is
// optional and delegates to a compiled schema when one is configured.
package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	pathpkg "path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/jacoelho/xsd"
	"github.com/jacoelho/xsd/xsderrors"

	"github.com/wrenfold/sitewright/internal/document"
	"github.com/wrenfold/sitewright/model"
)

// Validator verifies generated provisioning documents.
type Validator struct {
	schema *xsd.Engine
}

// New returns a validator running structural checks only.
func New() *Validator {
	return &Validator{}
}

// NewStrict additionally compiles the XSD at path inside fsys and runs the
// document through it after the structural pass.
func NewStrict(fsys fs.FS, path string) (*Validator, error) {
	schema, err := compileSchema(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load provisioning schema %s: %w", path, err)
	}
	return &Validator{schema: schema}, nil
}

// compileSchema compiles the XSD at schemaPath, resolving any include or
// import locations relative to the including document inside fsys.
func compileSchema(fsys fs.FS, schemaPath string) (*xsd.Engine, error) {
	data, err := fs.ReadFile(fsys, schemaPath)
	if err != nil {
		return nil, err
	}
	resolver := xsd.ResolverFunc(func(_ context.Context, base, location string) (xsd.SchemaSource, error) {
		ref := pathpkg.Join(pathpkg.Dir(base), location)
		refData, err := fs.ReadFile(fsys, ref)
		if err != nil {
			return xsd.SchemaSource{}, err
		}
		return xsd.Bytes(ref, refData), nil
	})
	return xsd.Compile(context.Background(), xsd.Bytes(schemaPath, data).WithResolver(resolver))
}

var knownFieldTypes = map[string]bool{
	"Text": true, "Note": true, "Choice": true, "DateTime": true,
	"Boolean": true, "Number": true, "Currency": true, "User": true,
}

var knownTemplateTypes = map[string]bool{
	"100": true, "101": true, "104": true, "105": true, "106": true, "107": true,
}

var knownBaseTemplates = map[string]bool{
	"GROUP#0": true, "SITEPAGEPUBLISHING#0": true, "STS#3": true,
}

// templateChildOrder is the mandated order of ProvisioningTemplate
// children. Every emitted child must be a subsequence of this list.
var templateChildOrder = []string{
	"WebSettings", "ComposedLook", "Features", "Lists", "Navigation",
}

var viewChildOrder = []string{"Query", "ViewFields", "RowLimit", "ViewData"}

// Validate parses the document and returns every finding. A document that
// is not well-formed XML is an error; everything else is a defect.
func (v *Validator) Validate(xmlText string) ([]model.Defect, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return nil, fmt.Errorf("document is not well-formed: %w", err)
	}

	var defects []model.Defect
	defects = append(defects, checkRoot(doc)...)

	if v.schema != nil {
		defects = append(defects, v.checkXSD(xmlText)...)
	}
	return defects, nil
}

func (v *Validator) checkXSD(xmlText string) []model.Defect {
	err := v.schema.Validate(context.Background(), strings.NewReader(xmlText))
	if err == nil {
		return nil
	}
	var violations xsderrors.Errors
	if !errors.As(err, &violations) {
		violations = xsderrors.Errors{err}
	}
	defects := make([]model.Defect, 0, len(violations))
	for _, verr := range violations {
		var viol *xsderrors.Error
		if !errors.As(verr, &viol) {
			defects = append(defects, model.Defect{
				Path: "/", Code: model.DefectXSD, Message: verr.Error(),
			})
			continue
		}
		path := viol.Path
		if path == "" {
			path = "/"
		}
		defects = append(defects, model.Defect{
			Path:    path,
			Code:    model.DefectXSD,
			Message: fmt.Sprintf("[%s] %s", viol.Code, viol.Message),
		})
	}
	return defects
}

func checkRoot(doc *etree.Document) []model.Defect {
	var defects []model.Defect

	root := doc.Root()
	if root == nil {
		return []model.Defect{{Path: "/", Code: model.DefectNamespace, Message: "document has no root element"}}
	}

	rootPath := "/" + document.Prefix + ":Provisioning"
	if root.Tag != "Provisioning" || root.Space != document.Prefix {
		defects = append(defects, model.Defect{
			Path: "/", Code: model.DefectNamespace,
			Message: fmt.Sprintf("root element is %s, want %s:Provisioning", root.FullTag(), document.Prefix),
		})
		return defects
	}
	if ns := root.SelectAttrValue("xmlns:"+document.Prefix, ""); ns != document.Namespace {
		defects = append(defects, model.Defect{
			Path: rootPath, Code: model.DefectNamespace,
			Message: fmt.Sprintf("namespace is %q, want %q", ns, document.Namespace),
		})
	}
	for _, name := range []string{"Author", "Generator", "Version", "DisplayName"} {
		if root.SelectAttr(name) == nil {
			defects = append(defects, missingAttr(rootPath, name))
		}
	}

	// The theme must be declared before the templates that reference it.
	tenantIdx, templatesIdx := -1, -1
	for i, ch := range root.ChildElements() {
		switch ch.Tag {
		case "Tenant":
			tenantIdx = i
		case "Templates":
			templatesIdx = i
		}
	}
	if tenantIdx >= 0 && templatesIdx >= 0 && tenantIdx > templatesIdx {
		defects = append(defects, model.Defect{
			Path: rootPath, Code: model.DefectOrdering,
			Message: document.Prefix + ":Tenant must precede " + document.Prefix + ":Templates",
		})
	}

	templates := root.SelectElement("Templates")
	if templates == nil {
		defects = append(defects, model.Defect{
			Path: rootPath, Code: model.DefectOrdering,
			Message: "missing " + document.Prefix + ":Templates",
		})
		return defects
	}
	tpl := templates.SelectElement("ProvisioningTemplate")
	if tpl == nil {
		defects = append(defects, model.Defect{
			Path: rootPath + "/" + document.Prefix + ":Templates", Code: model.DefectOrdering,
			Message: "missing " + document.Prefix + ":ProvisioningTemplate",
		})
		return defects
	}

	tplPath := rootPath + "/" + document.Prefix + ":Templates/" + document.Prefix + ":ProvisioningTemplate"
	if tpl.SelectAttr("ID") == nil {
		defects = append(defects, missingAttr(tplPath, "ID"))
	}
	if base := tpl.SelectAttrValue("BaseSiteTemplate", ""); !knownBaseTemplates[base] {
		defects = append(defects, model.Defect{
			Path: tplPath, Code: model.DefectBadAttribute,
			Message: fmt.Sprintf("BaseSiteTemplate %q is not a supported base template", base),
		})
	}

	defects = append(defects, checkOrder(tplPath, tpl.ChildElements(), templateChildOrder)...)

	if tpl.SelectElement("WebSettings") == nil {
		defects = append(defects, model.Defect{
			Path: tplPath, Code: model.DefectOrdering,
			Message: "missing " + document.Prefix + ":WebSettings",
		})
	}

	// A composed look is a by-name reference to a tenant theme; one
	// without the other is a dangling half of the dialect.
	look := tpl.SelectElement("ComposedLook")
	theme := root.FindElement("./Tenant/Themes/Theme")
	switch {
	case look != nil && theme == nil:
		defects = append(defects, model.Defect{
			Path: tplPath + "/" + document.Prefix + ":ComposedLook", Code: model.DefectOrdering,
			Message: "composed look references a theme but no tenant theme is declared",
		})
	case look == nil && theme != nil:
		defects = append(defects, model.Defect{
			Path: rootPath + "/" + document.Prefix + ":Tenant", Code: model.DefectOrdering,
			Message: "tenant theme is declared but the template carries no composed look",
		})
	case look != nil && theme != nil:
		if look.SelectAttrValue("Name", "") != theme.SelectAttrValue("Name", "") {
			defects = append(defects, model.Defect{
				Path: tplPath + "/" + document.Prefix + ":ComposedLook", Code: model.DefectBadAttribute,
				Message: fmt.Sprintf("composed look %q does not match tenant theme %q",
					look.SelectAttrValue("Name", ""), theme.SelectAttrValue("Name", "")),
			})
		}
	}

	for i, feature := range tpl.FindElements("./Features/SiteFeatures/Feature") {
		if feature.SelectAttrValue("ID", "") == "" {
			path := fmt.Sprintf("%s/%s:Features/%s:SiteFeatures/%s:Feature[%d]",
				tplPath, document.Prefix, document.Prefix, document.Prefix, i)
			defects = append(defects, missingAttr(path, "ID"))
		}
	}

	if lists := tpl.SelectElement("Lists"); lists != nil {
		for _, li := range lists.SelectElements("ListInstance") {
			defects = append(defects, checkListInstance(tplPath, li)...)
		}
	}
	return defects
}

func checkListInstance(tplPath string, li *etree.Element) []model.Defect {
	title := li.SelectAttrValue("Title", "")
	path := fmt.Sprintf("%s/%s:Lists/%s:ListInstance[@Title=%q]",
		tplPath, document.Prefix, document.Prefix, title)

	var defects []model.Defect
	for _, name := range []string{"Title", "Url", "TemplateType"} {
		if li.SelectAttr(name) == nil {
			defects = append(defects, missingAttr(path, name))
		}
	}
	if tt := li.SelectAttrValue("TemplateType", ""); tt != "" && !knownTemplateTypes[tt] {
		defects = append(defects, model.Defect{
			Path: path, Code: model.DefectBadAttribute,
			Message: fmt.Sprintf("TemplateType %q is not a supported template type", tt),
		})
	}

	// Fields must precede views.
	fieldsIdx, viewsIdx := -1, -1
	for i, ch := range li.ChildElements() {
		switch ch.Tag {
		case "Fields":
			fieldsIdx = i
		case "Views":
			viewsIdx = i
		}
	}
	if fieldsIdx >= 0 && viewsIdx >= 0 && viewsIdx < fieldsIdx {
		defects = append(defects, model.Defect{
			Path: path, Code: model.DefectOrdering,
			Message: "views precede field definitions",
		})
	}

	if fields := li.SelectElement("Fields"); fields != nil {
		for _, f := range fields.SelectElements("Field") {
			defects = append(defects, checkField(path, f)...)
		}
	}
	if views := li.SelectElement("Views"); views != nil {
		for _, view := range views.SelectElements("View") {
			defects = append(defects, checkView(path, view)...)
		}
	}
	return defects
}

func checkField(listPath string, f *etree.Element) []model.Defect {
	name := f.SelectAttrValue("Name", "")
	path := fmt.Sprintf("%s/%s:Fields/Field[@Name=%q]", listPath, document.Prefix, name)

	var defects []model.Defect
	for _, attr := range []string{"Type", "DisplayName", "ID", "Name", "StaticName"} {
		if f.SelectAttr(attr) == nil {
			defects = append(defects, missingAttr(path, attr))
		}
	}

	typ := f.SelectAttrValue("Type", "")
	if typ != "" && !knownFieldTypes[typ] {
		defects = append(defects, model.Defect{
			Path: path, Code: model.DefectFieldType,
			Message: fmt.Sprintf("field type %q is not supported", typ),
		})
	}

	switch typ {
	case "Choice":
		if f.SelectElement("CHOICES") == nil {
			defects = append(defects, model.Defect{
				Path: path, Code: model.DefectFieldType,
				Message: "choice field has no CHOICES element",
			})
		}
	case "Boolean":
		if def := f.SelectElement("Default"); def != nil {
			if t := def.Text(); t != "0" && t != "1" {
				defects = append(defects, model.Defect{
					Path: path, Code: model.DefectBadAttribute,
					Message: fmt.Sprintf("boolean default %q, want 0 or 1", t),
				})
			}
		}
	}

	if id := f.SelectAttrValue("ID", ""); id != "" {
		if !strings.HasPrefix(id, "{") || !strings.HasSuffix(id, "}") {
			defects = append(defects, model.Defect{
				Path: path, Code: model.DefectBadAttribute,
				Message: fmt.Sprintf("field ID %q is not a braced GUID", id),
			})
		}
	}
	return defects
}

func checkView(listPath string, view *etree.Element) []model.Defect {
	name := view.SelectAttrValue("Name", "")
	path := fmt.Sprintf("%s/%s:Views/View[@Name=%q]", listPath, document.Prefix, name)

	var defects []model.Defect
	if name == "" {
		defects = append(defects, missingAttr(path, "Name"))
	}

	typ := view.SelectAttrValue("Type", "")
	if typ != "HTML" && typ != "CALENDAR" {
		defects = append(defects, model.Defect{
			Path: path, Code: model.DefectViewShape,
			Message: fmt.Sprintf("view type %q, want HTML or CALENDAR", typ),
		})
	}

	defects = append(defects, checkOrder(path, view.ChildElements(), viewChildOrder)...)

	if rl := view.SelectElement("RowLimit"); rl != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(rl.Text())); err != nil || n <= 0 {
			defects = append(defects, model.Defect{
				Path: path, Code: model.DefectViewShape,
				Message: fmt.Sprintf("row limit %q is not a positive integer", rl.Text()),
			})
		}
	}

	if typ == "CALENDAR" {
		start := view.FindElement("./ViewData/FieldRef[@Type='CalendarStartDate']")
		if start == nil {
			defects = append(defects, model.Defect{
				Path: path, Code: model.DefectViewShape,
				Message: "calendar view has no CalendarStartDate field reference",
			})
		}
	}
	return defects
}

// checkOrder verifies that the observed children named in want appear as a
// subsequence of want, each at most once.
func checkOrder(path string, children []*etree.Element, want []string) []model.Defect {
	rank := make(map[string]int, len(want))
	for i, tag := range want {
		rank[tag] = i
	}

	var defects []model.Defect
	last := -1
	seen := make(map[string]bool)
	for _, ch := range children {
		r, known := rank[ch.Tag]
		if !known {
			continue
		}
		if seen[ch.Tag] {
			defects = append(defects, model.Defect{
				Path: path, Code: model.DefectOrdering,
				Message: fmt.Sprintf("%s appears more than once", ch.Tag),
			})
			continue
		}
		seen[ch.Tag] = true
		if r < last {
			defects = append(defects, model.Defect{
				Path: path, Code: model.DefectOrdering,
				Message: fmt.Sprintf("%s is out of order", ch.Tag),
			})
			continue
		}
		last = r
	}
	return defects
}

func missingAttr(path, name string) model.Defect {
	return model.Defect{
		Path: path, Code: model.DefectMissingAttribute,
		Message: "missing required attribute " + name,
	}
}
