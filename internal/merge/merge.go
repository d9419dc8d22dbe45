package merge

import (
	"encoding/json"
	"fmt"
)

// Document is the generic JSON-object form of an entity or patch.
type Document = map[string]interface{}

// Relation describes a relationship field that can be given either as an
// embedded object (Field) or as a reference id (RefKey).
type Relation struct {
	Field    string
	RefKey   string
	Children []Relation // relations inside the embedded object
}

// ProductRelations are the relationship fields of a product document.
var ProductRelations = []Relation{
	{
		Field:    "manufacturer",
		RefKey:   "manufacturerId",
		Children: ManufacturerRelations,
	},
}

// ManufacturerRelations are the relationship fields of a manufacturer document.
var ManufacturerRelations = []Relation{
	{Field: "contact", RefKey: "contactId"},
}

// Apply deep-merges patch onto existing and returns the result. Objects
// present on both sides merge recursively; any other patch value, arrays
// included, replaces the existing value. Keys absent from patch are kept.
// Neither input is modified.
func Apply(existing, patch Document) Document {
	return ApplyWithRelations(existing, patch, nil)
}

// ApplyWithRelations is Apply with relationship rewiring: when patch carries
// a relation's RefKey, the result takes that id and drops the embedded
// object instead of merging into it.
func ApplyWithRelations(existing, patch Document, relations []Relation) Document {
	out := cloneDocument(existing)
	if out == nil {
		out = Document{}
	}

	handled := make(map[string]bool, len(relations)*2)
	for _, rel := range relations {
		ref, rewired := patch[rel.RefKey]
		if rewired {
			out[rel.RefKey] = cloneValue(ref)
			delete(out, rel.Field)
			handled[rel.RefKey] = true
			handled[rel.Field] = true
			continue
		}
		pv, ok := patch[rel.Field]
		if !ok {
			continue
		}
		handled[rel.Field] = true
		pobj, pIsObj := pv.(map[string]interface{})
		eobj, eIsObj := out[rel.Field].(map[string]interface{})
		if pIsObj && eIsObj {
			out[rel.Field] = ApplyWithRelations(eobj, pobj, rel.Children)
		} else {
			out[rel.Field] = cloneValue(pv)
		}
	}

	for key, pv := range patch {
		if handled[key] {
			continue
		}
		pobj, pIsObj := pv.(map[string]interface{})
		eobj, eIsObj := out[key].(map[string]interface{})
		if pIsObj && eIsObj {
			out[key] = ApplyWithRelations(eobj, pobj, nil)
			continue
		}
		out[key] = cloneValue(pv)
	}
	return out
}

// NormalizeRefs rewrites the shorthand where a relation field holds a plain
// id string into the RefKey form. The input is not modified.
func NormalizeRefs(patch Document, relations []Relation) Document {
	out := cloneDocument(patch)
	for _, rel := range relations {
		switch v := out[rel.Field].(type) {
		case string:
			if _, hasRef := out[rel.RefKey]; !hasRef {
				out[rel.RefKey] = v
			}
			delete(out, rel.Field)
		case map[string]interface{}:
			out[rel.Field] = NormalizeRefs(v, rel.Children)
		}
	}
	return out
}

// ToDocument converts a JSON-encodable value into a Document.
func ToDocument(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Decode converts doc into out, which must be a pointer.
func Decode(doc Document, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func cloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneDocument(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
