package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Short identifiers (institute and course codes) are single tokens of
// letters, digits and underscores. Codes are cleaned and lower-cased
// before validation, so the pattern need not account for surrounding
// whitespace.
var (
	codeTag     = "alphanum_"
	codeText    = "only alphanumeric characters and underscores are allowed"
	codePattern = regexp.MustCompile(`^\w+$`)

	requiredText = "this field is required"
)

// InitValidators wires the shared validator instance: English defaults,
// JSON field names in error output, and the global custom tags. Domain
// packages register their own tags on top (see user.InitValidators).
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report the JSON name of a field, not its Go name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(codeTag, func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})
	RegisterCustomTranslation(validate, translator, codeTag, codeText)

	for _, tag := range []string{"required", "required_with"} {
		RegisterCustomTranslation(validate, translator, tag, requiredText, true)
	}
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
