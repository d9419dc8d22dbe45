package validation

import (
	"reflect"
	"strings"
)

// patchSchema mirrors a create payload type with every field optional.
type patchSchema struct {
	fields map[string]patchField
}

type patchField struct {
	goType   reflect.Type // leaf type with pointers removed
	tag      string       // derived validator tag applied when the field is present
	optional bool         // null is accepted and clears the field
	nested   *patchSchema
}

// derivePatchSchema builds the patch schema for a create payload type. Each
// leaf keeps its own constraints; presence requirements are dropped, since a
// patch never has to carry a field. A present string field that was required
// on create must still be non-empty.
func derivePatchSchema(t reflect.Type) *patchSchema {
	schema := &patchSchema{fields: make(map[string]patchField, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}

		base := sf.Type
		for base.Kind() == reflect.Ptr {
			base = base.Elem()
		}
		constraints, optional := splitTag(sf.Tag.Get("validate"))

		field := patchField{goType: base, optional: optional}
		if base.Kind() == reflect.Struct {
			field.nested = derivePatchSchema(base)
		} else {
			field.tag = patchTag(constraints, optional, base.Kind())
		}
		schema.fields[name] = field
	}
	return schema
}

// splitTag separates value constraints from presence rules in a create tag.
func splitTag(tag string) (constraints []string, optional bool) {
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case part == "omitempty":
			optional = true
		case part == "required",
			strings.HasPrefix(part, "required_"),
			strings.HasPrefix(part, "excluded_"):
		default:
			constraints = append(constraints, part)
		}
	}
	return constraints, optional
}

func patchTag(constraints []string, optional bool, kind reflect.Kind) string {
	var parts []string
	switch {
	case optional:
		parts = append(parts, "omitempty")
	case kind == reflect.String:
		parts = append(parts, "required")
	}
	parts = append(parts, constraints...)
	return strings.Join(parts, ",")
}
