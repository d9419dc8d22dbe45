package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"inventory/internal/apperr"
	"inventory/internal/models"

	"github.com/go-playground/validator/v10"
)

// Kind names an entity schema.
type Kind string

const (
	KindContact      Kind = "contact"
	KindManufacturer Kind = "manufacturer"
	KindProduct      Kind = "product"
)

var (
	phonePattern   = regexp.MustCompile(`^[\d\s()+-]{7,20}$`)
	websitePattern = regexp.MustCompile(`^(https?://)?([\w.-]+)+(:\d+)?(/([\w/_-]+))*/?$`)
)

// Validator checks create payloads against their struct-tag schema and patch
// payloads against rules derived from that same schema.
type Validator struct {
	validate *validator.Validate
	schemas  map[Kind]reflect.Type
	patches  map[Kind]*patchSchema
}

// New creates a Validator for the contact, manufacturer and product schemas.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("website", func(fl validator.FieldLevel) bool {
		return websitePattern.MatchString(fl.Field().String())
	})

	schemas := map[Kind]reflect.Type{
		KindContact:      reflect.TypeOf(models.ContactInput{}),
		KindManufacturer: reflect.TypeOf(models.ManufacturerInput{}),
		KindProduct:      reflect.TypeOf(models.ProductInput{}),
	}
	patches := make(map[Kind]*patchSchema, len(schemas))
	for kind, t := range schemas {
		patches[kind] = derivePatchSchema(t)
	}
	return &Validator{validate: v, schemas: schemas, patches: patches}
}

// ValidateCreate checks that payload satisfies the full schema of kind. It
// returns an apperr ValidationFailed error listing every violation. It
// panics if kind is unknown or payload is not of the kind's payload type.
func (v *Validator) ValidateCreate(kind Kind, payload interface{}) error {
	schema := v.schema(kind)
	val := reflect.ValueOf(payload)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Type() != schema {
		panic(fmt.Sprintf("validation: %s payload must be %s, got %T", kind, schema, payload))
	}

	err := v.validate.Struct(val.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(fmt.Sprintf("validation: %v", err))
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Path:    trimRoot(fe.Namespace()),
			Message: message(fe.Tag(), fe.Param(), fe.Kind()),
		})
	}
	return apperr.Validation(fields)
}

// ValidatePatch checks every field present in patch against the patch rule
// derived for it. Absent fields are not checked.
func (v *Validator) ValidatePatch(kind Kind, patch map[string]interface{}) error {
	v.schema(kind)
	var fields []apperr.FieldError
	v.walkPatch(v.patches[kind], patch, "", &fields)
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// patchRule returns the derived validator tag for a dotted field path, and
// whether the path exists in the schema.
func (v *Validator) patchRule(kind Kind, path string) (string, bool) {
	v.schema(kind)
	schema := v.patches[kind]
	parts := strings.Split(path, ".")
	for i, part := range parts {
		field, ok := schema.fields[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			return field.tag, true
		}
		if field.nested == nil {
			return "", false
		}
		schema = field.nested
	}
	return "", false
}

func (v *Validator) schema(kind Kind) reflect.Type {
	t, ok := v.schemas[kind]
	if !ok {
		panic(fmt.Sprintf("validation: unknown entity kind %q", kind))
	}
	return t
}

func (v *Validator) walkPatch(schema *patchSchema, patch map[string]interface{}, prefix string, out *[]apperr.FieldError) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := patch[key]
		path := prefix + key
		field, ok := schema.fields[key]
		if !ok {
			*out = append(*out, apperr.FieldError{Path: path, Message: "is not a known field"})
			continue
		}

		if value == nil {
			if !field.optional {
				*out = append(*out, apperr.FieldError{Path: path, Message: "cannot be null"})
			}
			continue
		}

		if field.nested != nil {
			obj, ok := value.(map[string]interface{})
			if !ok {
				*out = append(*out, apperr.FieldError{Path: path, Message: "must be an object"})
				continue
			}
			v.walkPatch(field.nested, obj, path+".", out)
			continue
		}

		decoded, err := decodeAs(value, field.goType)
		if err != nil {
			*out = append(*out, apperr.FieldError{Path: path, Message: "has an invalid type"})
			continue
		}
		if field.tag == "" {
			continue
		}
		if err := v.validate.Var(decoded, field.tag); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					*out = append(*out, apperr.FieldError{Path: path, Message: message(fe.Tag(), fe.Param(), fe.Kind())})
				}
				continue
			}
			*out = append(*out, apperr.FieldError{Path: path, Message: err.Error()})
		}
	}
}

// decodeAs converts a generic JSON value into t, rejecting values of the wrong shape.
func decodeAs(value interface{}, t reflect.Type) (interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// trimRoot drops the struct type name validator puts in front of every namespace.
func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(tag, param string, kind reflect.Kind) string {
	isString := kind == reflect.String
	switch tag {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is not provided", param)
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return fmt.Sprintf("must be at most %s", param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "website":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on the '%s' rule", tag)
	}
}
