package formspec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator/v10"

	fv "github.com/dmitrymomot/formguard/pkg/validator"
)

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

// validate returns the shared struct validator with the definition tags
// registered and field names taken from the yaml tags.
func validate() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		must(v.RegisterValidation("selector", func(fl validator.FieldLevel) bool {
			_, err := cascadia.Compile(fl.Field().String())
			return err == nil
		}))
		must(v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
			_, err := fv.ParseMode(fl.Field().String())
			return err == nil
		}))
		must(v.RegisterValidation("comparator", func(fl validator.FieldLevel) bool {
			_, err := fv.ParseComparator(fl.Field().String())
			return err == nil
		}))
		engine = v
	})
	return engine
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// convertErrors maps validator field errors onto ValidationErrors keyed by
// the yaml path, e.g. "fields[0].rules[1].lookup".
func convertErrors(err error) error {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var out fv.ValidationErrors
	for _, fe := range ves {
		path := fe.Namespace()
		if _, rest, found := strings.Cut(path, "."); found {
			path = rest
		}
		out.Add(fv.ValidationError{
			Field:   path,
			Name:    fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return fmt.Sprintf("is required when %s", strings.Replace(fe.Param(), " ", " is ", 1))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "selector":
		return fmt.Sprintf("%q is not a valid selector", fe.Value())
	case "mode":
		return fmt.Sprintf("%q is not a valid mode", fe.Value())
	case "comparator":
		return fmt.Sprintf("%q is not a valid comparator", fe.Value())
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}
