package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violation describes a single failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Messages maps "field.tag" (or just "field") to a human message.
// The more specific key wins.
type Messages map[string]string

func (m Messages) lookup(field, tag string) (string, bool) {
	if msg, ok := m[field+"."+tag]; ok {
		return msg, true
	}
	msg, ok := m[field]
	return msg, ok
}

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

// Engine returns the shared validator configured for payload schemas.
// - Uses JSON tag names in errors.
// - Registers custom tags http_prefix and rating_range.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("http_prefix", httpPrefix)
		_ = v.RegisterValidation("rating_range", ratingRange)
		engine = v
	})
	return engine
}

// http_prefix: value begins with http:// or https://
func httpPrefix(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// rating_range: numeric string in [1,5]; any float syntax ParseFloat accepts
func ratingRange(fl validator.FieldLevel) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f >= 1 && f <= 5
}

// Struct validates v and returns violations in schema field order, one per field.
// A nil result means v is valid.
func Struct(v any, msgs Messages) []Violation {
	err := Engine().Struct(v)
	if err == nil {
		return nil
	}
	return ToViolations(err, msgs)
}

// ToViolations converts binding/validation errors into ordered violations.
func ToViolations(err error, msgs Messages) []Violation {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []Violation{{Field: "payload", Message: "invalid json"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]Violation, 0, len(verrs))
		seen := make(map[string]struct{}, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			if _, dup := seen[field]; dup {
				continue
			}
			seen[field] = struct{}{}
			msg, ok := msgs.lookup(field, fe.Tag())
			if !ok {
				msg = field + " " + formatFieldError(fe)
			}
			out = append(out, Violation{Field: field, Message: msg})
		}
		return out
	}

	return []Violation{{Field: "payload", Message: "invalid payload"}}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "numeric":
		return "must be numeric"
	case "url":
		return "must be a valid URL"
	case "http_prefix":
		return "must start with http:// or https://"
	case "rating_range":
		return "must be a number between 1 and 5"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("validation failed for '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
