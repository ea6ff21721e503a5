package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/wirekit/errors"
)

// tagValidator is shared process-wide; the underlying validator caches
// struct metadata, so one instance serves every config type.
var tagValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldKey)
	return v
})

// fieldKey names a struct field the way config files do: the
// mapstructure tag wins, then the json tag, then the snake_cased Go
// name.
func fieldKey(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return snakeCase(fld.Name)
}

// Validate runs tag-driven checks (validate:"required,oneof=...")
// against a struct and folds the findings into a VALIDATION_FAILED
// error. Nested structs are walked, so one call covers an embedded
// KitConfig tree.
func Validate(s any) error {
	err := tagValidator().Struct(s)
	if err == nil {
		return nil
	}

	tagErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: s is not a struct or is a nil pointer.
		return errors.Validation("validation failed")
	}

	findings := make([]FieldError, 0, len(tagErrs))
	parts := make([]string, 0, len(tagErrs))
	for _, fe := range tagErrs {
		f := FieldError{Field: fe.Field(), Message: tagMessage(fe)}
		findings = append(findings, f)
		parts = append(parts, f.Field+": "+f.Message)
	}

	verr := errors.Validation(strings.Join(parts, "; "))
	verr.Details = map[string]any{"fields": findings}
	return verr
}

// tagMessage renders a finding for the tags the kit's config structs
// use. min and max describe lengths for strings and plain bounds for
// numeric fields.
func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}

// snakeCase converts a Go field name to its config key form.
func snakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
