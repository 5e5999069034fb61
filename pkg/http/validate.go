package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	return v
}

// wireName reports a field by the name the client used for it.
func wireName(f reflect.StructField) string {
	for _, tag := range [...]string{"json", "query", "param"} {
		switch name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name {
		case "-":
			return ""
		case "":
		default:
			return name
		}
	}
	return f.Name
}

// ReadAndValidateRequest binds the request into req, fills `default` tags left
// at their zero value and runs the validator. A non-nil result is meant for
// BadRequestResponse.
func ReadAndValidateRequest(c echo.Context, req interface{}) []*AppError {
	if err := c.Bind(req); err != nil {
		return malformed(err)
	}
	if err := defaults.Set(req); err != nil {
		return malformed(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return malformed(err)
		}
		out := make([]*AppError, 0, len(fes))
		for _, fe := range fes {
			out = append(out, fieldError(fe))
		}
		return out
	}
	return nil
}

func malformed(err error) []*AppError {
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []*AppError{BadRequestCodeError("ERR_MALFORMED_REQUEST", "", msg)}
}

// ruleMessages renders a failed rule; the first verb is the field, the second the rule parameter.
var ruleMessages = map[string]string{
	"required": "%s is required",
	"oneof":    "%s must be one of: %s",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"lt":       "%s must be less than %s",
	"lte":      "%s must be less than or equal to %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
}

func fieldError(fe validator.FieldError) *AppError {
	// "PredictRequest.history[3].date" -> "history[3].date"
	_, field, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		field = fe.Namespace()
	}

	param := fe.Param()
	if fe.Tag() == "oneof" {
		param = strings.ReplaceAll(param, " ", ", ")
	}
	msg := fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	if tmpl, ok := ruleMessages[fe.Tag()]; ok {
		if strings.Count(tmpl, "%s") == 1 {
			msg = fmt.Sprintf(tmpl, fe.Field())
		} else {
			msg = fmt.Sprintf(tmpl, fe.Field(), param)
		}
		if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
			msg += " characters"
		}
	}

	ae := BadRequestCodeError("ERR_"+strings.ToUpper(fe.Tag()), field, msg)
	switch fe.Tag() {
	case "min", "gte":
		ae.WithParam("min", fe.Param())
	case "max", "lte":
		ae.WithParam("max", fe.Param())
	case "gt", "lt":
		ae.WithParam("value", fe.Param())
	case "oneof":
		ae.WithParam("options", strings.Fields(fe.Param()))
	}
	return ae
}
