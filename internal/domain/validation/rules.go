package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
)

var validate = validator.New()

var (
	nameRule  = fmt.Sprintf("min=%d,max=%d", entity.NameMinLength, entity.NameMaxLength)
	ageRule   = fmt.Sprintf("min=%d,max=%d", entity.AgeMin, entity.AgeMax)
	emailRule = "required,email"
	scoreRule = fmt.Sprintf("gte=%g,lte=%g", entity.ScoreMin, entity.ScoreMax)
)

// check runs rule against value and returns the reason for the first
// failed constraint, or "" when the value is acceptable.
func check(value any, rule string) string {
	err := validate.Var(value, rule)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return describe(fieldErrs[0])
	}
	return err.Error()
}

func describe(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isText {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if isText {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be less than or equal to " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "email", "required":
		return ReasonInvalidEmail
	}
	return fmt.Sprintf("failed %q constraint", fe.Tag())
}

// decodeField converts a decoded JSON value into the typed field on f and
// applies its constraint. It returns the violation reason, or "".
type decodeField func(v any, f *entity.UserFields) string

var fieldDecoders = map[string]decodeField{
	entity.FieldName:   decodeName,
	entity.FieldAge:    decodeAge,
	entity.FieldEmail:  decodeEmail,
	entity.FieldActive: decodeActive,
	entity.FieldScore:  decodeScore,
}

func decodeName(v any, f *entity.UserFields) string {
	s, ok := v.(string)
	if !ok {
		return ReasonNotString
	}
	if reason := check(s, nameRule); reason != "" {
		return reason
	}
	f.Name = entity.Some(s)
	return ""
}

func decodeAge(v any, f *entity.UserFields) string {
	n, ok := asNumber(v)
	if !ok {
		return ReasonNotInteger
	}
	if i, err := n.Int64(); err == nil {
		if reason := check(i, ageRule); reason != "" {
			return reason
		}
		f.Age = entity.Some(int(i))
		return ""
	}
	// 30.0 is an integer; 30.5 is not.
	x, err := n.Float64()
	if err != nil || x != math.Trunc(x) {
		return ReasonNotInteger
	}
	if reason := check(x, ageRule); reason != "" {
		return reason
	}
	f.Age = entity.Some(int(x))
	return ""
}

func decodeEmail(v any, f *entity.UserFields) string {
	s, ok := v.(string)
	if !ok {
		return ReasonNotString
	}
	if reason := check(s, emailRule); reason != "" {
		return reason
	}
	f.Email = entity.Some(s)
	return ""
}

func decodeActive(v any, f *entity.UserFields) string {
	b, ok := v.(bool)
	if !ok {
		return ReasonNotBoolean
	}
	f.Active = entity.Some(b)
	return ""
}

func decodeScore(v any, f *entity.UserFields) string {
	n, ok := asNumber(v)
	if !ok {
		return ReasonNotNumber
	}
	x, err := n.Float64()
	if err != nil {
		return ReasonNotNumber
	}
	if reason := check(x, scoreRule); reason != "" {
		return reason
	}
	f.Score = entity.Some(x)
	return ""
}
