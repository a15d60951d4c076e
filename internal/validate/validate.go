// Package validate wraps go-playground/validator with English translations,
// JSON field names and the custom tags StudentHub payloads use.
//
// Custom tags:
//
//	password   at least 8 characters, one uppercase letter and one digit
//	datestr    a date string timex.ParseDate understands
//	clock      HH:MM, 24h
//	looseemail something@something.tld
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dmitrijs2005/studenthub/internal/timex"
)

var (
	passwordTag  = "password"
	passwordText = "{0} must be at least 8 characters with an uppercase letter and a digit"

	dateTag  = "datestr"
	dateText = "{0} must be a date like 2024-01-31"

	clockTag  = "clock"
	clockText = "{0} must be a time like 14:30"

	emailTag   = "looseemail"
	emailText  = "{0} must be a valid email address"
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	requiredTag  = "required"
	requiredText = "{0} is required"
)

// ValidationError maps field names (JSON spelling) to human readable messages.
// It is returned before any network call is made.
type ValidationError struct {
	Fields map[string]string
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator bundles a validator instance with its translator.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New creates a fully configured Validator.
func New() *Validator {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(passwordTag, passwordValidation)
	_ = v.RegisterValidation(dateTag, dateValidation)
	_ = v.RegisterValidation(clockTag, clockValidation)
	_ = v.RegisterValidation(emailTag, emailValidation)

	registerTranslation(v, trans, passwordTag, passwordText)
	registerTranslation(v, trans, dateTag, dateText)
	registerTranslation(v, trans, clockTag, clockText)
	registerTranslation(v, trans, emailTag, emailText)
	registerTranslation(v, trans, requiredTag, requiredText, true)

	return &Validator{v: v, trans: trans}
}

var (
	std     *Validator
	stdOnce sync.Once
)

// Default returns the process-wide Validator.
func Default() *Validator {
	stdOnce.Do(func() { std = New() })
	return std
}

// Struct validates s and returns a *ValidationError on rule violations.
func Struct(s any) error { return Default().Struct(s) }

// Var validates a single value under the given field name.
func Var(field string, value any, tag string) error { return Default().Var(field, value, tag) }

func (v *Validator) Struct(s any) error {
	return v.translate("", v.v.Struct(s))
}

func (v *Validator) Var(field string, value any, tag string) error {
	return v.translate(field, v.v.Var(value, tag))
}

func (v *Validator) translate(field string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		name := fe.Field()
		msg := fe.Translate(v.trans)
		if field != "" {
			name = field
			msg = strings.TrimSpace(field + " " + strings.TrimSpace(msg))
		}
		if _, seen := out.Fields[name]; !seen {
			out.Fields[name] = msg
		}
	}
	return out
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func passwordValidation(fl validator.FieldLevel) bool {
	return PasswordStrong(fl.Field().String())
}

// PasswordStrong reports whether pw satisfies the password policy.
func PasswordStrong(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}

func dateValidation(fl validator.FieldLevel) bool {
	_, ok := timex.ParseDate(fl.Field().String())
	return ok
}

func clockValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func emailValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}
