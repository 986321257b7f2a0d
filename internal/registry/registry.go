// Package registry assigns every field a unique wire-safe internal name
// within its list and lets later stages resolve fields by either the
// requested internal name or the display name.
//
// A Registry belongs to exactly one generation run. It only grows; there is
// no removal. Concurrent runs must each construct their own.
package registry

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/wrenfold/sitewright/model"
)

// Names reserved by the target platform. Requesting one of these yields a
// "Custom"-prefixed internal name so provisioning does not collide with a
// built-in column.
var builtinNames = map[string]struct{}{
	"location": {}, "title": {}, "description": {}, "author": {}, "editor": {},
	"created": {}, "modified": {}, "id": {}, "version": {}, "name": {},
	"url": {}, "path": {}, "type": {}, "size": {}, "status": {},
	"category": {}, "comments": {}, "tags": {}, "keywords": {}, "subject": {},
	"company": {}, "manager": {}, "department": {}, "priority": {},
	"assignedto": {}, "duedate": {}, "startdate": {}, "percentcomplete": {},
	"outcome": {}, "contenttype": {}, "attachments": {}, "linkfilename": {},
	"docicon": {}, "edit": {}, "folder": {}, "order": {}, "guid": {},
	"fileleafref": {}, "fileref": {}, "filepath": {}, "filesizebytes": {},
	"checkedoutto": {}, "owner": {}, "workflow": {}, "importance": {},
	"sensitivity": {},
}

type listSpace struct {
	byResolved map[string]model.ResolvedField
	lookup     map[string]string // casefolded requested/display/resolved name -> resolved name
	order      []string
}

// Registry tracks field identity per list for one generation run.
type Registry struct {
	lists map[string]*listSpace
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{lists: make(map[string]*listSpace)}
}

func (r *Registry) space(listID string) *listSpace {
	ls, ok := r.lists[listID]
	if !ok {
		ls = &listSpace{
			byResolved: make(map[string]model.ResolvedField),
			lookup:     make(map[string]string),
		}
		r.lists[listID] = ls
	}
	return ls
}

// Register assigns the field a unique internal name within the list and
// records reverse lookups for both the requested internal name and the
// display name. The returned field carries its permanent identity for this
// run.
func (r *Registry) Register(listID string, spec model.FieldSpec) model.ResolvedField {
	ls := r.space(listID)

	requested := spec.InternalName
	if requested == "" {
		requested = spec.DisplayName
	}
	base := Sanitize(requested)
	if _, reserved := builtinNames[strings.ToLower(base)]; reserved {
		base = "Custom" + base
	}

	resolved := base
	for n := 2; ; n++ {
		if _, taken := ls.byResolved[resolved]; !taken {
			break
		}
		resolved = base + "_" + strconv.Itoa(n)
	}

	f := model.ResolvedField{
		ID:           "{" + strings.ToUpper(uuid.NewString()) + "}",
		InternalName: resolved,
		DisplayName:  spec.DisplayName,
		Type:         spec.Type,
		Spec:         spec,
	}

	ls.byResolved[resolved] = f
	ls.order = append(ls.order, resolved)
	ls.lookup[fold(resolved)] = resolved
	if requested != "" {
		if _, taken := ls.lookup[fold(requested)]; !taken {
			ls.lookup[fold(requested)] = resolved
		}
	}
	if spec.DisplayName != "" {
		if _, taken := ls.lookup[fold(spec.DisplayName)]; !taken {
			ls.lookup[fold(spec.DisplayName)] = resolved
		}
	}

	return f
}

// Resolve looks a field up by any of its known names: the resolved internal
// name, the originally requested internal name, or the display name.
func (r *Registry) Resolve(listID, ref string) (model.ResolvedField, bool) {
	ls, ok := r.lists[listID]
	if !ok {
		return model.ResolvedField{}, false
	}
	resolved, ok := ls.lookup[fold(ref)]
	if !ok {
		return model.ResolvedField{}, false
	}
	f, ok := ls.byResolved[resolved]
	return f, ok
}

// Fields returns the list's resolved fields in registration order.
func (r *Registry) Fields(listID string) []model.ResolvedField {
	ls, ok := r.lists[listID]
	if !ok {
		return nil
	}
	out := make([]model.ResolvedField, 0, len(ls.order))
	for _, name := range ls.order {
		out = append(out, ls.byResolved[name])
	}
	return out
}

// Sanitize maps a requested name onto the wire-safe character set: runs of
// whitespace collapse to a single underscore, characters outside
// [A-Za-z0-9_] are dropped, and a leading digit gets an "F" prefix. An
// empty result becomes "Field".
func Sanitize(name string) string {
	var b strings.Builder
	pendingJoin := false
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if b.Len() > 0 {
				pendingJoin = true
			}
		case r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9'):
			if pendingJoin {
				b.WriteByte('_')
				pendingJoin = false
			}
			b.WriteRune(r)
		default:
			// Reserved or non-ASCII characters are dropped entirely.
		}
	}
	s := b.String()
	if s == "" {
		return "Field"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "F" + s
	}
	return s
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
