package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchRule_DerivedFromCreateSchema(t *testing.T) {
	v := New()

	cases := map[string]string{
		"name":                       "required,min=1,max=255",
		"price":                      "gte=0",
		"description":                "omitempty,max=1000",
		"manufacturerId":             "required",
		"manufacturer.website":       "omitempty,website",
		"manufacturer.contact.email": "required,email",
		"manufacturer.contact.phone": "required,phone",
	}
	for path, want := range cases {
		got, ok := v.patchRule(KindProduct, path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := v.patchRule(KindProduct, "manufacturer.contact.fax")
	assert.False(t, ok)
	_, ok = v.patchRule(KindProduct, "name.first")
	assert.False(t, ok)
}
