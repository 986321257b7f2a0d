// Package fieldmap converts resolved field specs into canonical field
// definitions.
//
// Each supported type is emitted through a fixed attribute pattern that
// matches the vendor's known-working configuration. The target runtime
// rejects fields with deviating attribute combinations at apply time even
// when the XML itself validates, so the tables below are a correctness
// contract: change them only against a verified working template.
package fieldmap

import (
	"strconv"

	"github.com/wrenfold/sitewright/model"
)

// Schema defaults applied when the spec leaves an option unset.
const (
	defaultTextMaxLength = 255
	defaultCurrencyLCID  = 1033 // en-US
	defaultNoteNumLines  = 6
)

// WireType returns the field-type tag for a semantic type. Person fields
// provision as User columns; everything else carries its own name.
func WireType(t model.FieldType) string {
	if t == model.FieldPerson {
		return "User"
	}
	return string(t)
}

// Map produces the canonical definition for one resolved field: the common
// identity attributes in fixed order, then the type-specific attributes and
// children.
func Map(f model.ResolvedField) model.FieldDefinition {
	def := model.FieldDefinition{
		Attrs: []model.Attr{
			{Name: "Type", Value: WireType(f.Type)},
			{Name: "DisplayName", Value: f.DisplayName},
			{Name: "Required", Value: boolTag(f.Spec.Required)},
			{Name: "EnforceUniqueValues", Value: "FALSE"},
			{Name: "Indexed", Value: "FALSE"},
			{Name: "ID", Value: f.ID},
			{Name: "StaticName", Value: f.InternalName},
			{Name: "Name", Value: f.InternalName},
		},
	}

	switch f.Type {
	case model.FieldText:
		maxLen := f.Spec.MaxLength
		if maxLen <= 0 {
			maxLen = defaultTextMaxLength
		}
		def.Attrs = append(def.Attrs, model.Attr{Name: "MaxLength", Value: strconv.Itoa(maxLen)})
		if f.Spec.DefaultText != "" {
			def.Default = f.Spec.DefaultText
			def.HasDefault = true
		}

	case model.FieldChoice:
		def.Attrs = append(def.Attrs,
			model.Attr{Name: "Format", Value: "Dropdown"},
			model.Attr{Name: "FillInChoice", Value: "FALSE"},
		)
		def.Choices = f.Spec.Choices
		if f.Spec.DefaultChoice != "" {
			def.Default = f.Spec.DefaultChoice
			def.HasDefault = true
		}

	case model.FieldDateTime:
		format := "DateTime"
		if f.Spec.DateOnly {
			format = "DateOnly"
		}
		def.Attrs = append(def.Attrs,
			model.Attr{Name: "Format", Value: format},
			model.Attr{Name: "FriendlyDisplayFormat", Value: "Disabled"},
		)

	case model.FieldBoolean:
		if f.Spec.BoolDefault != nil {
			if *f.Spec.BoolDefault {
				def.Default = "1"
			} else {
				def.Default = "0"
			}
			def.HasDefault = true
		}

	case model.FieldNumber:
		decimals := "Automatic"
		if f.Spec.Decimals >= 0 {
			decimals = strconv.Itoa(f.Spec.Decimals)
		}
		def.Attrs = append(def.Attrs, model.Attr{Name: "Decimals", Value: decimals})

	case model.FieldCurrency:
		lcid := f.Spec.CurrencyLCID
		if lcid == 0 {
			lcid = defaultCurrencyLCID
		}
		def.Attrs = append(def.Attrs,
			model.Attr{Name: "LCID", Value: strconv.Itoa(lcid)},
			model.Attr{Name: "Decimals", Value: "2"},
		)

	case model.FieldPerson:
		def.Attrs = append(def.Attrs,
			model.Attr{Name: "List", Value: "UserInfo"},
			model.Attr{Name: "UserSelectionMode", Value: "PeopleOnly"},
			model.Attr{Name: "UserSelectionScope", Value: "0"},
		)

	case model.FieldNote:
		def.Attrs = append(def.Attrs,
			model.Attr{Name: "NumLines", Value: strconv.Itoa(defaultNoteNumLines)},
			model.Attr{Name: "RichText", Value: boolTag(f.Spec.RichText)},
			model.Attr{Name: "Sortable", Value: "FALSE"},
		)
	}

	return def
}

// ValueType returns the CAML value type tag for comparison literals against
// a field of the given semantic type.
func ValueType(t model.FieldType) string {
	switch t {
	case model.FieldPerson:
		return "User"
	case model.FieldNote:
		return "Note"
	default:
		return string(t)
	}
}

func boolTag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
