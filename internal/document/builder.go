// Package document composes normalized site, field, view, and theme
// artifacts into one provisioning XML document.
//
// The builder makes no semantic decisions. Its one responsibility beyond
// composition is correctness of the serialized form: namespace
// declarations, mandated element order (site metadata, then the theme
// section, then lists with fields before views), and escaping of every
// display string.
package document

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/wrenfold/sitewright/internal/caml"
	"github.com/wrenfold/sitewright/model"
)

// Namespace is the provisioning schema namespace; Prefix is the attached
// element prefix.
const (
	Namespace = "http://schemas.dev.office.com/PnP/2022/09/ProvisioningSchema"
	Prefix    = "pnp"
)

// Generator identity stamped on the document root.
const (
	authorName    = "Sitewright"
	generatorName = "Sitewright Provisioning Generator"
)

// ListArtifact pairs a list's spec with its resolved field definitions and
// assembled views.
type ListArtifact struct {
	Spec   model.ListSpec
	Fields []model.FieldDefinition
	Views  []model.ViewDefinition
}

// Input is the fully resolved material for one document.
type Input struct {
	Site    model.SiteSpec
	Palette *model.Palette
	Lists   []ListArtifact
}

// Build composes the document tree.
func Build(in Input) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement(Prefix + ":Provisioning")
	root.CreateAttr("xmlns:"+Prefix, Namespace)
	root.CreateAttr("Author", authorName)
	root.CreateAttr("Generator", generatorName)
	root.CreateAttr("Version", "1.0")
	root.CreateAttr("Description", in.Site.Description)
	root.CreateAttr("DisplayName", in.Site.Title)

	if in.Palette != nil {
		buildTenantTheme(root, *in.Palette, in.Site.Theme)
	}

	templates := root.CreateElement(Prefix + ":Templates")
	templates.CreateAttr("ID", "MAIN-TEMPLATES")

	tpl := templates.CreateElement(Prefix + ":ProvisioningTemplate")
	tpl.CreateAttr("ID", "SITE-TEMPLATE")
	tpl.CreateAttr("Version", "1")
	tpl.CreateAttr("BaseSiteTemplate", in.Site.Template.BaseTemplateCode())
	tpl.CreateAttr("Scope", "RootSite")
	tpl.CreateAttr("DisplayName", in.Site.Title)
	tpl.CreateAttr("Description", in.Site.Description)

	buildWebSettings(tpl, in.Site)

	// The theme is defined once at tenant scope; the site carries only a
	// by-name reference.
	if in.Palette != nil {
		look := tpl.CreateElement(Prefix + ":ComposedLook")
		look.CreateAttr("Name", in.Palette.Name)
		look.CreateAttr("Version", "1")
	}

	if len(in.Site.Features) > 0 {
		features := tpl.CreateElement(Prefix + ":Features")
		siteFeatures := features.CreateElement(Prefix + ":SiteFeatures")
		for _, id := range in.Site.Features {
			feature := siteFeatures.CreateElement(Prefix + ":Feature")
			feature.CreateAttr("ID", id)
		}
	}

	if len(in.Lists) > 0 {
		lists := tpl.CreateElement(Prefix + ":Lists")
		for _, la := range in.Lists {
			buildListInstance(lists, la)
		}
	}

	if len(in.Site.Navigation) > 0 {
		buildNavigation(tpl, in.Site.Navigation)
	}

	return doc
}

// Render serializes the document with two-space indentation.
func Render(in Input) (string, error) {
	doc := Build(in)
	doc.Indent(2)
	return doc.WriteToString()
}

func buildTenantTheme(root *etree.Element, p model.Palette, spec *model.ThemeSpec) {
	tenant := root.CreateElement(Prefix + ":Tenant")
	themes := tenant.CreateElement(Prefix + ":Themes")
	theme := themes.CreateElement(Prefix + ":Theme")
	theme.CreateAttr("Name", p.Name)
	inverted := spec != nil && spec.Inverted
	theme.CreateAttr("IsInverted", boolAttr(inverted))
	theme.SetText(paletteJSON(p))
}

// paletteJSON serializes the palette with slots in derivation order so the
// same palette always produces the same bytes.
func paletteJSON(p model.Palette) string {
	var b strings.Builder
	b.WriteString("{")
	for i, slot := range p.Slots {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"`)
		b.WriteString(slot.Name)
		b.WriteString(`":"`)
		b.WriteString(slot.Hex)
		b.WriteString(`"`)
	}
	b.WriteString("}")
	return b.String()
}

func buildWebSettings(tpl *etree.Element, site model.SiteSpec) {
	ws := tpl.CreateElement(Prefix + ":WebSettings")
	ws.CreateAttr("RequestAccessEmail", "")
	ws.CreateAttr("NoCrawl", "false")
	ws.CreateAttr("WelcomePage", "SitePages/Home.aspx")
	ws.CreateAttr("Title", site.Title)
	ws.CreateAttr("Description", site.Description)
	ws.CreateAttr("AlternateCSS", "")
	ws.CreateAttr("CommentsOnSitePagesDisabled", "false")
	ws.CreateAttr("QuickLaunchEnabled", "true")
	ws.CreateAttr("MembersCanShare", "true")
	ws.CreateAttr("ExcludeFromOfflineClient", "false")
	ws.CreateAttr("DisableFlows", "false")
	ws.CreateAttr("DisableAppViews", "false")
}

func buildListInstance(lists *etree.Element, la ListArtifact) {
	spec := la.Spec

	li := lists.CreateElement(Prefix + ":ListInstance")
	li.CreateAttr("Title", spec.Title)
	desc := spec.Description
	if desc == "" {
		desc = "List for managing " + strings.ToLower(spec.Title)
	}
	li.CreateAttr("Description", desc)
	li.CreateAttr("TemplateType", strconv.Itoa(spec.TemplateType))
	li.CreateAttr("Url", spec.URL)

	// Attribute packs verified per template type.
	switch spec.TemplateType {
	case model.TemplateTypeDocumentLibrary:
		li.CreateAttr("EnableVersioning", boolAttr(spec.Versioning))
		if spec.Versioning {
			li.CreateAttr("EnableMinorVersions", "true")
			li.CreateAttr("EnableModeration", "false")
			li.CreateAttr("MinorVersionLimit", "10")
			li.CreateAttr("MaxVersionLimit", "50")
			li.CreateAttr("DraftVersionVisibility", "1")
		}
		li.CreateAttr("EnableAttachments", "false")
		li.CreateAttr("EnableFolderCreation", "true")
	case model.TemplateTypeEvents:
		li.CreateAttr("EnableAttachments", "false")
		li.CreateAttr("EnableFolderCreation", "false")
	case model.TemplateTypeContacts:
		li.CreateAttr("EnableAttachments", "true")
		li.CreateAttr("EnableFolderCreation", "false")
	default:
		li.CreateAttr("EnableAttachments", "true")
		li.CreateAttr("EnableFolderCreation", "false")
	}

	li.CreateAttr("ContentTypesEnabled", "false")
	li.CreateAttr("OnQuickLaunch", boolAttr(spec.OnQuickLaunch))
	li.CreateAttr("Hidden", "false")
	li.CreateAttr("NoCrawl", "false")
	li.CreateAttr("RemoveExistingContentTypes", "false")

	// Fields always precede views.
	if len(la.Fields) > 0 {
		fields := li.CreateElement(Prefix + ":Fields")
		for _, def := range la.Fields {
			buildField(fields, def)
		}
	}
	if len(la.Views) > 0 {
		views := li.CreateElement(Prefix + ":Views")
		for _, v := range la.Views {
			buildView(views, v)
		}
	}
}

// buildField emits a field definition. Field elements inside pnp:Fields
// carry no namespace prefix; that is the documented shape the target
// runtime accepts.
func buildField(fields *etree.Element, def model.FieldDefinition) {
	f := fields.CreateElement("Field")
	for _, a := range def.Attrs {
		f.CreateAttr(a.Name, a.Value)
	}
	if def.HasDefault {
		f.CreateElement("Default").SetText(def.Default)
	}
	if len(def.Choices) > 0 {
		choices := f.CreateElement("CHOICES")
		for _, c := range def.Choices {
			choices.CreateElement("CHOICE").SetText(c)
		}
	}
}

// buildView emits a view. Like fields, View elements are un-prefixed CAML.
// Child order is Query, ViewFields, RowLimit, then calendar ViewData.
func buildView(views *etree.Element, v model.ViewDefinition) {
	view := views.CreateElement("View")
	view.CreateAttr("Name", v.Name)
	if v.Kind == model.ViewCalendar {
		view.CreateAttr("Type", "CALENDAR")
	} else {
		view.CreateAttr("Type", "HTML")
	}
	if v.Default {
		view.CreateAttr("DefaultView", "TRUE")
	}

	if q := caml.RenderQuery(v.Query); q != nil {
		view.AddChild(q)
	}

	if len(v.Fields) > 0 {
		vf := view.CreateElement("ViewFields")
		for _, name := range v.Fields {
			ref := vf.CreateElement("FieldRef")
			ref.CreateAttr("Name", name)
		}
	}

	rl := view.CreateElement("RowLimit")
	rl.CreateAttr("Paged", "TRUE")
	rl.SetText(strconv.Itoa(v.RowLimit))

	if v.Kind == model.ViewCalendar && v.DateField != "" {
		vd := view.CreateElement("ViewData")
		start := vd.CreateElement("FieldRef")
		start.CreateAttr("Name", v.DateField)
		start.CreateAttr("Type", "CalendarStartDate")
		end := vd.CreateElement("FieldRef")
		end.CreateAttr("Name", v.DateField)
		end.CreateAttr("Type", "CalendarEndDate")
	}
}

func buildNavigation(tpl *etree.Element, nodes []model.NavigationNode) {
	nav := tpl.CreateElement(Prefix + ":Navigation")
	nav.CreateAttr("AddNewPagesToNavigation", "true")
	nav.CreateAttr("CreateFriendlyUrlsForNewPages", "true")

	global := nav.CreateElement(Prefix + ":GlobalNavigation")
	global.CreateAttr("NavigationType", "Structural")
	gs := global.CreateElement(Prefix + ":StructuralNavigation")
	gs.CreateAttr("RemoveExistingNodes", "true")

	current := nav.CreateElement(Prefix + ":CurrentNavigation")
	current.CreateAttr("NavigationType", "StructuralLocal")
	cs := current.CreateElement(Prefix + ":StructuralNavigation")
	cs.CreateAttr("RemoveExistingNodes", "true")

	for _, n := range nodes {
		node := cs.CreateElement(Prefix + ":NavigationNode")
		node.CreateAttr("Title", n.Title)
		node.CreateAttr("Url", n.URL)
	}
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
