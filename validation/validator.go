package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/wirekit/errors"
)

// Validator accumulates field findings across a chain of checks. The
// zero value is ready to use; New exists for fluent call sites.
type Validator struct {
	findings []FieldError
}

// FieldError is a single finding: the offending field and what is wrong
// with it. Field names follow config file keys, so a finding against
// ContainerConfig reads container.promotion_threshold rather than the
// Go field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New returns an empty Validator.
func New() *Validator { return &Validator{} }

func (v *Validator) fail(field, message string) *Validator {
	v.findings = append(v.findings, FieldError{Field: field, Message: message})
	return v
}

// HasErrors reports whether any check has failed so far.
func (v *Validator) HasErrors() bool { return len(v.findings) > 0 }

// Errors returns the accumulated findings in check order.
func (v *Validator) Errors() []FieldError { return v.findings }

// Validate folds the findings into a single VALIDATION_FAILED error, or
// nil when every check passed. The per-field breakdown rides in Details
// so callers can render findings individually.
func (v *Validator) Validate() *errors.Error {
	if len(v.findings) == 0 {
		return nil
	}

	parts := make([]string, len(v.findings))
	for i, f := range v.findings {
		parts[i] = f.Field + ": " + f.Message
	}

	err := errors.Validation(strings.Join(parts, "; "))
	err.Details = map[string]any{"fields": v.findings}
	return err
}

// Required fails when value is empty or whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.fail(field, "is required")
	}
	return v
}

// OneOf fails when a non-empty value is outside the allowed set. Empty
// values pass; combine with Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	return v.fail(field, "must be one of: "+strings.Join(allowed, ", "))
}

// Min fails when value is below minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		return v.fail(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// Max fails when value is above maxVal.
func (v *Validator) Max(field string, value, maxVal int) *Validator {
	if value > maxVal {
		return v.fail(field, fmt.Sprintf("must be %d or less", maxVal))
	}
	return v
}

// Range fails when value is outside [minVal, maxVal].
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		return v.fail(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// DurationRange fails when value is outside [minVal, maxVal]. Tuning
// knobs such as the optimizer sweep interval carry hard bounds; this
// renders them in duration notation rather than raw nanoseconds.
func (v *Validator) DurationRange(field string, value, minVal, maxVal time.Duration) *Validator {
	if value < minVal || value > maxVal {
		return v.fail(field, fmt.Sprintf("must be between %s and %s", minVal, maxVal))
	}
	return v
}

// Pattern fails when a non-empty value does not match the regular
// expression. An invalid pattern counts as a mismatch.
func (v *Validator) Pattern(field, value, pattern string) *Validator {
	if value == "" {
		return v
	}
	re, err := regexp.Compile(pattern)
	if err != nil || !re.MatchString(value) {
		return v.fail(field, "does not match required format")
	}
	return v
}

// Custom records message against field when ok is false. It is the
// escape hatch for cross-field rules the named checks cannot express.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		return v.fail(field, message)
	}
	return v
}

// RequiredUUID fails unless value parses as a non-zero UUID. Session
// and screen scope identifiers are UUIDs, so this is the check for
// externally supplied scope IDs.
func (v *Validator) RequiredUUID(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.fail(field, "is required")
	}
	id, err := uuid.Parse(value)
	switch {
	case err != nil:
		return v.fail(field, "must be a valid UUID")
	case id == uuid.Nil:
		return v.fail(field, "must not be the zero UUID")
	}
	return v
}

// OptionalUUID fails when a non-empty value is not a valid UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := uuid.Parse(value); err != nil {
		return v.fail(field, "must be a valid UUID")
	}
	return v
}

// Required is the one-shot form of Validator.Required.
func Required(field, value string) error {
	if err := New().Required(field, value).Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateUUID parses value, reporting a VALIDATION_FAILED error when
// it is empty or malformed. Use it to turn an externally supplied
// session or screen identifier into a uuid.UUID.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, errors.Validation(field + " is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.Validation(field + " must be a valid UUID")
	}
	return id, nil
}
