// Package normalize is the strict boundary between the loosely structured
// intent JSON and the typed site model. It validates and coerces the raw
// structure exactly once; no downstream component re-inspects raw input.
//
// Keys are matched case-insensitively with underscores and dashes ignored,
// unknown keys are skipped, and every optional value is defaulted. Unknown
// field types degrade to Text with a recorded warning. Only a missing site
// title or an empty list collection is fatal.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wrenfold/sitewright/internal/caml"
	"github.com/wrenfold/sitewright/model"
)

// Normalizer coerces raw intent structures into SiteSpec trees.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize validates the raw structure and produces a fully-typed,
// fully-defaulted SiteSpec plus non-fatal coercion warnings. It returns a
// SchemaError when the site title or the list collection is missing.
func (n *Normalizer) Normalize(raw map[string]any) (model.SiteSpec, []model.Defect, error) {
	var warnings []model.Defect

	doc := object(raw)

	site := model.SiteSpec{
		Title:       doc.str("sitetitle", "title"),
		Description: doc.str("description", "sitedescription"),
		Template:    parseTemplate(doc.str("sitetype", "template", "templatekind")),
	}
	if strings.TrimSpace(site.Title) == "" {
		return model.SiteSpec{}, nil, model.NewSchemaError("site title is required")
	}

	siteFields, w := n.parseFields(doc.list("sitefields", "fields"), "site_fields")
	warnings = append(warnings, w...)

	rawLists := doc.list("lists", "libraries")
	if len(rawLists) == 0 {
		return model.SiteSpec{}, nil, model.NewSchemaError("at least one list is required")
	}

	for i, rl := range rawLists {
		lm, ok := rl.(map[string]any)
		if !ok {
			warnings = append(warnings, defect(fmt.Sprintf("lists[%d]", i), model.DefectDroppedClause,
				"list entry is not an object; dropped"))
			continue
		}
		list, w := n.parseList(object(lm), i, siteFields)
		warnings = append(warnings, w...)
		site.Lists = append(site.Lists, list)
	}
	if len(site.Lists) == 0 {
		return model.SiteSpec{}, nil, model.NewSchemaError("at least one list is required")
	}

	for _, rn := range doc.list("navigation", "nav") {
		nm, ok := rn.(map[string]any)
		if !ok {
			continue
		}
		node := object(nm)
		title := node.str("title", "label")
		if title == "" {
			continue
		}
		site.Navigation = append(site.Navigation, model.NavigationNode{
			Title: title,
			URL:   sanitizeNavURL(node.str("url", "route", "link")),
		})
	}

	for i, rf := range doc.list("features", "sitefeatures") {
		id := featureID(rf)
		if id == "" {
			warnings = append(warnings, defect(fmt.Sprintf("features[%d]", i), model.DefectDroppedClause,
				"feature entry has no id; dropped"))
			continue
		}
		site.Features = append(site.Features, id)
	}

	site.Theme = n.parseTheme(doc, site.Title, site.Description)

	return site, warnings, nil
}

// featureID accepts both bare GUID strings and {"id": ...} objects.
func featureID(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		return strings.TrimSpace(object(v).str("id", "featureid"))
	default:
		return ""
	}
}

func (n *Normalizer) parseList(lm object, idx int, siteFields []model.FieldSpec) (model.ListSpec, []model.Defect) {
	var warnings []model.Defect
	path := fmt.Sprintf("lists[%d]", idx)

	list := model.ListSpec{
		Title:         lm.str("title", "name"),
		Description:   lm.str("description"),
		OnQuickLaunch: true,
	}
	if list.Title == "" {
		list.Title = fmt.Sprintf("List %d", idx+1)
		warnings = append(warnings, defect(path+".title", model.DefectDefaulted,
			fmt.Sprintf("list has no title; defaulted to %q", list.Title)))
	}
	if qs, ok := lm.boolOK("onquicklaunch", "quicklaunch"); ok {
		list.OnQuickLaunch = qs
	}

	list.Kind, list.TemplateType, warnings = n.parseListKind(lm, path, warnings)

	list.Versioning = list.Kind == model.ListKindLibrary
	if v, ok := lm.boolOK("enableversioning", "versioning"); ok {
		list.Versioning = v
	}

	list.URL = lm.str("url")
	if list.URL == "" {
		compact := strings.ReplaceAll(list.Title, " ", "")
		if list.Kind == model.ListKindLibrary {
			list.URL = compact
		} else {
			list.URL = "Lists/" + compact
		}
	}

	fields, w := n.parseListFields(lm.list("fields", "columns"), path, siteFields)
	warnings = append(warnings, w...)
	if len(fields) == 0 {
		// Lists that declare no fields of their own inherit every site
		// field, mirroring how upstream structures share site columns.
		fields = append(fields, siteFields...)
	}
	list.Fields = fields

	for i, rv := range lm.list("views") {
		vm, ok := rv.(map[string]any)
		if !ok {
			warnings = append(warnings, defect(fmt.Sprintf("%s.views[%d]", path, i), model.DefectDroppedClause,
				"view entry is not an object; dropped"))
			continue
		}
		v, w := n.parseView(object(vm), fmt.Sprintf("%s.views[%d]", path, i))
		warnings = append(warnings, w...)
		list.Views = append(list.Views, v)
	}

	return list, warnings
}

func (n *Normalizer) parseListKind(lm object, path string, warnings []model.Defect) (model.ListKind, int, []model.Defect) {
	if tt, ok := lm.intOK("templatetype"); ok {
		switch tt {
		case model.TemplateTypeDocumentLibrary:
			return model.ListKindLibrary, tt, warnings
		case model.TemplateTypeGenericList, model.TemplateTypeAnnouncements,
			model.TemplateTypeContacts, model.TemplateTypeEvents, model.TemplateTypeTasks:
			return model.ListKindGeneric, tt, warnings
		default:
			warnings = append(warnings, defect(path+".template_type", model.DefectUnknownListKind,
				fmt.Sprintf("unknown template type %d; treated as a generic list", tt)))
			return model.ListKindGeneric, model.TemplateTypeGenericList, warnings
		}
	}

	kind := strings.ToLower(lm.str("kind", "type", "listtype"))
	switch kind {
	case "library", "documentlibrary", "document library", "doclib", "documents":
		return model.ListKindLibrary, model.TemplateTypeDocumentLibrary, warnings
	case "", "list", "generic", "genericlist", "generic list", "custom", "customlist":
		return model.ListKindGeneric, model.TemplateTypeGenericList, warnings
	case "events", "calendar":
		return model.ListKindGeneric, model.TemplateTypeEvents, warnings
	case "contacts":
		return model.ListKindGeneric, model.TemplateTypeContacts, warnings
	case "announcements":
		return model.ListKindGeneric, model.TemplateTypeAnnouncements, warnings
	case "tasks":
		return model.ListKindGeneric, model.TemplateTypeTasks, warnings
	default:
		warnings = append(warnings, defect(path+".kind", model.DefectUnknownListKind,
			fmt.Sprintf("unknown list kind %q; treated as a generic list", kind)))
		return model.ListKindGeneric, model.TemplateTypeGenericList, warnings
	}
}

// parseListFields handles the two field spellings lists use: inline field
// objects, and string references into the shared site field collection.
func (n *Normalizer) parseListFields(raw []any, path string, siteFields []model.FieldSpec) ([]model.FieldSpec, []model.Defect) {
	var fields []model.FieldSpec
	var warnings []model.Defect

	for i, rf := range raw {
		fpath := fmt.Sprintf("%s.fields[%d]", path, i)
		switch v := rf.(type) {
		case string:
			found := false
			for _, sf := range siteFields {
				if strings.EqualFold(sf.InternalName, v) || strings.EqualFold(sf.DisplayName, v) {
					fields = append(fields, sf)
					found = true
					break
				}
			}
			if !found {
				warnings = append(warnings, defect(fpath, model.DefectDroppedClause,
					fmt.Sprintf("field reference %q matches no site field; dropped", v)))
			}
		case map[string]any:
			f, ok, w := n.parseField(object(v), fpath)
			warnings = append(warnings, w...)
			if ok {
				fields = append(fields, f)
			}
		default:
			warnings = append(warnings, defect(fpath, model.DefectDroppedClause,
				"field entry is neither an object nor a name reference; dropped"))
		}
	}
	return fields, warnings
}

func (n *Normalizer) parseFields(raw []any, path string) ([]model.FieldSpec, []model.Defect) {
	var fields []model.FieldSpec
	var warnings []model.Defect
	for i, rf := range raw {
		fm, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		f, ok, w := n.parseField(object(fm), fmt.Sprintf("%s[%d]", path, i))
		warnings = append(warnings, w...)
		if ok {
			fields = append(fields, f)
		}
	}
	return fields, warnings
}

func (n *Normalizer) parseField(fm object, path string) (model.FieldSpec, bool, []model.Defect) {
	var warnings []model.Defect

	f := model.FieldSpec{
		InternalName: fm.str("name", "internalname"),
		DisplayName:  fm.str("displayname", "label", "title"),
		Required:     fm.boolDefault("required", false),
		Decimals:     -1,
	}
	if f.DisplayName == "" {
		f.DisplayName = f.InternalName
	}
	if f.InternalName == "" && f.DisplayName == "" {
		warnings = append(warnings, defect(path, model.DefectDroppedClause,
			"field has neither a name nor a display name; dropped"))
		return model.FieldSpec{}, false, warnings
	}

	typeName := fm.str("type", "fieldtype", "semantictype")
	var known bool
	f.Type, known = parseFieldType(typeName)
	if !known {
		warnings = append(warnings, defect(path+".type", model.DefectUnknownFieldType,
			fmt.Sprintf("unknown field type %q; treated as Text", typeName)))
	}

	switch f.Type {
	case model.FieldText:
		f.MaxLength = fm.intDefault(0, "maxlength")
		f.DefaultText = fm.str("default", "defaultvalue")
	case model.FieldChoice:
		for _, c := range fm.list("choices", "options", "values") {
			f.Choices = append(f.Choices, asString(c))
		}
		f.DefaultChoice = fm.str("default", "defaultvalue", "defaultchoice")
	case model.FieldNumber:
		if d, ok := fm.intOK("decimals", "decimalplaces", "precision"); ok {
			f.Decimals = d
		}
	case model.FieldCurrency:
		f.CurrencyLCID = fm.intDefault(0, "lcid", "locale", "currencylocale")
	case model.FieldBoolean:
		if b, ok := fm.boolOK("default", "defaultvalue"); ok {
			f.BoolDefault = &b
		}
	case model.FieldDateTime:
		f.DateOnly = fm.boolDefault("dateonly", false)
	case model.FieldNote:
		f.RichText = fm.boolDefault("richtext", false)
	}

	return f, true, warnings
}

func (n *Normalizer) parseView(vm object, path string) (model.ViewSpec, []model.Defect) {
	var warnings []model.Defect

	v := model.ViewSpec{
		Name:     vm.str("name", "title"),
		RowLimit: vm.intDefault(0, "rowlimit", "limit"),
		Default:  vm.boolDefault("default", false),
	}
	if v.Name == "" {
		v.Name = "All Items"
		warnings = append(warnings, defect(path+".name", model.DefectDefaulted,
			`view has no name; defaulted to "All Items"`))
	}

	switch strings.ToLower(vm.str("kind", "type", "viewtype")) {
	case "calendar":
		v.Kind = model.ViewCalendar
	default:
		v.Kind = model.ViewHTML
	}

	for _, rf := range vm.list("fields", "columns", "viewfields") {
		if s := asString(rf); s != "" {
			v.Fields = append(v.Fields, s)
		}
	}

	filter, w := n.parseFilter(vm.val("filter", "filters", "where"), path+".filter")
	warnings = append(warnings, w...)
	v.Filter = filter

	for i, rs := range vm.list("sort", "sorts", "orderby", "sortby") {
		spath := fmt.Sprintf("%s.sort[%d]", path, i)
		switch s := rs.(type) {
		case string:
			v.Sorts = append(v.Sorts, model.SortKey{Field: s})
		case map[string]any:
			sm := object(s)
			field := sm.str("field", "name")
			if field == "" {
				warnings = append(warnings, defect(spath, model.DefectDroppedClause,
					"sort key has no field; dropped"))
				continue
			}
			desc := sm.boolDefault("descending", false) ||
				strings.EqualFold(sm.str("direction", "dir", "order"), "desc") ||
				strings.EqualFold(sm.str("direction", "dir", "order"), "descending")
			v.Sorts = append(v.Sorts, model.SortKey{Field: field, Descending: desc})
		}
	}

	if g, ok := vm.val("group", "groupby").(map[string]any); ok {
		gm := object(g)
		if field := gm.str("field", "name"); field != "" {
			v.Group = &model.GroupSpec{
				Field:    field,
				Collapse: gm.boolDefault("collapse", false),
				Limit:    gm.intDefault(0, "limit", "grouplimit"),
			}
		}
	} else if s := asString(vm.val("group", "groupby")); s != "" {
		v.Group = &model.GroupSpec{Field: s}
	}

	return v, warnings
}

// parseFilter accepts a filter object ({match, conditions}) or a bare
// condition array, which combines with And.
func (n *Normalizer) parseFilter(raw any, path string) (*model.FilterSpec, []model.Defect) {
	var warnings []model.Defect

	var match model.MatchKind = model.MatchAll
	var rawConds []any

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		rawConds = v
	case map[string]any:
		fm := object(v)
		switch strings.ToLower(fm.str("match", "combine", "operator", "logic")) {
		case "any", "or":
			match = model.MatchAny
		}
		rawConds = fm.list("conditions", "clauses", "filters")
	default:
		warnings = append(warnings, defect(path, model.DefectDroppedClause,
			"filter is neither an object nor an array; dropped"))
		return nil, warnings
	}

	spec := &model.FilterSpec{Match: match}
	for i, rc := range rawConds {
		cpath := fmt.Sprintf("%s.conditions[%d]", path, i)
		cm, ok := rc.(map[string]any)
		if !ok {
			warnings = append(warnings, defect(cpath, model.DefectDroppedClause,
				"condition is not an object; dropped"))
			continue
		}
		c := object(cm)

		// A nested combinator makes this condition a sub-group.
		if nested := c.val("conditions", "clauses", "filters"); nested != nil {
			g, w := n.parseFilter(cm, cpath)
			warnings = append(warnings, w...)
			if g != nil {
				spec.Conditions = append(spec.Conditions, model.FilterCondition{Group: g})
			}
			continue
		}

		field := c.str("field", "name", "column")
		if field == "" {
			warnings = append(warnings, defect(cpath, model.DefectDroppedClause,
				"condition has no field; dropped"))
			continue
		}
		opName := c.str("op", "operator", "comparison")
		if opName == "" {
			opName = "equals"
		}
		op, ok := caml.ParseOp(opName)
		if !ok {
			warnings = append(warnings, defect(cpath+".op", model.DefectDroppedClause,
				fmt.Sprintf("unknown comparison operator %q; condition dropped", opName)))
			continue
		}
		spec.Conditions = append(spec.Conditions, model.FilterCondition{
			Field: field,
			Op:    op,
			Value: asString(c.val("value", "val", "literal")),
		})
	}

	if len(spec.Conditions) == 0 {
		return nil, warnings
	}
	return spec, warnings
}

func (n *Normalizer) parseTheme(doc object, title, description string) *model.ThemeSpec {
	raw := doc.val("theme", "themehint", "branding")
	if raw == nil {
		return nil
	}

	spec := &model.ThemeSpec{}
	switch v := raw.(type) {
	case string:
		spec.SeedHex = v
	case map[string]any:
		tm := object(v)
		spec.Name = tm.str("name")
		spec.SeedHex = tm.str("seed", "seedcolor", "color", "primarycolor")
		for _, h := range tm.list("hints", "keywords", "context") {
			if s := asString(h); s != "" {
				spec.Hints = append(spec.Hints, s)
			}
		}
		spec.Inverted = tm.boolDefault("inverted", false)
	default:
		return nil
	}

	// The site's own words count as context hints for fallback selection.
	spec.Hints = append(spec.Hints, title, description)
	return spec
}

func parseTemplate(s string) model.SiteTemplate {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "communication", "communicationsite", "sitepagepublishing#0":
		return model.TemplateCommunication
	case "hub", "hubsite", "sts#3":
		return model.TemplateHub
	default:
		return model.TemplateTeam
	}
}

func parseFieldType(s string) (model.FieldType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string", "singleline":
		// A missing type is an ordinary default, not an unknown type.
		return model.FieldText, true
	case "choice", "select", "dropdown", "enum":
		return model.FieldChoice, true
	case "datetime", "date", "time":
		return model.FieldDateTime, true
	case "boolean", "bool", "yesno", "yes/no":
		return model.FieldBoolean, true
	case "number", "numeric", "integer", "int", "float", "decimal":
		return model.FieldNumber, true
	case "currency", "money":
		return model.FieldCurrency, true
	case "person", "user", "people", "persona":
		return model.FieldPerson, true
	case "note", "multiline", "multilinetext", "richtext", "memo":
		return model.FieldNote, true
	default:
		return model.FieldText, false
	}
}

// sanitizeNavURL rewrites placeholder or space-carrying URLs that the
// target schema rejects. The {site} token is preserved for the applier.
func sanitizeNavURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" || url == "external URL" {
		return "https://example.com"
	}
	if strings.Contains(url, " ") && !strings.HasPrefix(url, "{site}") {
		return "https://example.com"
	}
	return url
}

func defect(path, code, msg string) model.Defect {
	return model.Defect{Path: path, Code: code, Message: msg}
}

// object wraps a raw map with key lookups that ignore case, underscores,
// and dashes.
type object map[string]any

func canon(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, " ", "")
	return key
}

// val returns the first present key's value, trying keys in order. Lookup
// keys must already be in canonical form.
func (o object) val(keys ...string) any {
	for _, want := range keys {
		for k, v := range o {
			if canon(k) == want {
				return v
			}
		}
	}
	return nil
}

func (o object) str(keys ...string) string {
	return strings.TrimSpace(asString(o.val(keys...)))
}

func (o object) list(keys ...string) []any {
	if l, ok := o.val(keys...).([]any); ok {
		return l
	}
	return nil
}

func (o object) boolOK(keys ...string) (bool, bool) {
	switch v := o.val(keys...).(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

func (o object) boolDefault(key string, def bool) bool {
	if b, ok := o.boolOK(key); ok {
		return b
	}
	return def
}

func (o object) intOK(keys ...string) (int, bool) {
	switch v := o.val(keys...).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func (o object) intDefault(def int, keys ...string) int {
	if i, ok := o.intOK(keys...); ok {
		return i
	}
	return def
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprintf("%v", s)
	}
}
