package merge_test

import (
	"testing"

	"inventory/internal/merge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productDoc() merge.Document {
	return merge.Document{
		"name":           "Widget",
		"sku":            "W-1",
		"price":          10.0,
		"amountInStock":  5.0,
		"tags":           []interface{}{"a", "b"},
		"manufacturerId": "m-1",
		"manufacturer": map[string]interface{}{
			"name":      "Acme",
			"country":   "Sweden",
			"contactId": "c-1",
			"contact": map[string]interface{}{
				"name":  "Jo",
				"email": "jo@acme.test",
			},
		},
	}
}

func TestApply_ScalarReplaceKeepsOthers(t *testing.T) {
	existing := productDoc()

	got := merge.Apply(existing, merge.Document{"price": 12.5})

	want := productDoc()
	want["price"] = 12.5
	assert.Equal(t, want, got)
}

func TestApply_DeepMergesObjects(t *testing.T) {
	got := merge.Apply(productDoc(), merge.Document{
		"manufacturer": map[string]interface{}{
			"contact": map[string]interface{}{"email": "new@acme.test"},
		},
	})

	m := got["manufacturer"].(map[string]interface{})
	c := m["contact"].(map[string]interface{})
	assert.Equal(t, "Acme", m["name"])
	assert.Equal(t, "Jo", c["name"])
	assert.Equal(t, "new@acme.test", c["email"])
}

func TestApply_ArraysReplacedWholesale(t *testing.T) {
	got := merge.Apply(productDoc(), merge.Document{"tags": []interface{}{"z"}})
	assert.Equal(t, []interface{}{"z"}, got["tags"])
}

func TestApply_DoesNotMutateInputs(t *testing.T) {
	existing := productDoc()
	patch := merge.Document{"manufacturer": map[string]interface{}{"name": "Other"}}

	got := merge.Apply(existing, patch)
	got["manufacturer"].(map[string]interface{})["country"] = "Norway"

	assert.Equal(t, productDoc(), existing)
	assert.Equal(t, merge.Document{"manufacturer": map[string]interface{}{"name": "Other"}}, patch)
}

func TestApply_StrictSubsetUpdate(t *testing.T) {
	existing := productDoc()
	patch := merge.Document{"name": "Gadget", "amountInStock": 7.0}

	got := merge.Apply(existing, patch)

	for key, val := range existing {
		if _, touched := patch[key]; touched {
			continue
		}
		assert.Equal(t, val, got[key], key)
	}
	assert.Equal(t, "Gadget", got["name"])
	assert.Equal(t, 7.0, got["amountInStock"])
	assert.Len(t, got, len(existing))
}

func TestApply_DisjointPatchesCompose(t *testing.T) {
	e := productDoc()
	p1 := merge.Document{"price": 11.0, "manufacturer": map[string]interface{}{"name": "Acme AB"}}
	p2 := merge.Document{"sku": "W-2", "manufacturer": map[string]interface{}{"country": "Norway"}}

	sequential := merge.Apply(merge.Apply(e, p1), p2)
	combined := merge.Apply(e, merge.Apply(p1, p2))

	assert.Equal(t, sequential, combined)
}

func TestApplyWithRelations_ReferenceWinsOverEmbedded(t *testing.T) {
	got := merge.ApplyWithRelations(productDoc(), merge.Document{
		"manufacturerId": "m-2",
		"manufacturer":   map[string]interface{}{"name": "Ignored"},
	}, merge.ProductRelations)

	assert.Equal(t, "m-2", got["manufacturerId"])
	_, embedded := got["manufacturer"]
	assert.False(t, embedded)
	assert.Equal(t, "Widget", got["name"])
}

func TestApplyWithRelations_NestedContactRewire(t *testing.T) {
	got := merge.ApplyWithRelations(productDoc(), merge.Document{
		"manufacturer": map[string]interface{}{"contactId": "c-9"},
	}, merge.ProductRelations)

	assert.Equal(t, "m-1", got["manufacturerId"])
	m := got["manufacturer"].(map[string]interface{})
	assert.Equal(t, "c-9", m["contactId"])
	assert.Equal(t, "Acme", m["name"])
	_, embedded := m["contact"]
	assert.False(t, embedded)
}

func TestNormalizeRefs(t *testing.T) {
	patch := merge.Document{
		"manufacturer": "m-7",
		"price":        3.0,
	}
	got := merge.NormalizeRefs(patch, merge.ProductRelations)
	assert.Equal(t, merge.Document{"manufacturerId": "m-7", "price": 3.0}, got)
	assert.Equal(t, "m-7", patch["manufacturer"])

	nested := merge.NormalizeRefs(merge.Document{
		"manufacturer": map[string]interface{}{"contact": "c-3"},
	}, merge.ProductRelations)
	assert.Equal(t, merge.Document{
		"manufacturer": map[string]interface{}{"contactId": "c-3"},
	}, nested)
}

func TestToDocumentAndDecode(t *testing.T) {
	type item struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Stock int     `json:"stock"`
	}

	doc, err := merge.ToDocument(item{Name: "Widget", Price: 10, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, doc["stock"])

	var back item
	require.NoError(t, merge.Decode(merge.Apply(doc, merge.Document{"stock": 6.0}), &back))
	assert.Equal(t, item{Name: "Widget", Price: 10, Stock: 6}, back)
}
