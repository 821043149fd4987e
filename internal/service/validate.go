package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/civicreport/civicreport/internal/model"
)

// enumRules binds custom validator tags to the model's closed value sets.
var enumRules = map[string]func(string) bool{
	"user_role":      func(v string) bool { return model.Role(v).IsValid() },
	"issue_type":     func(v string) bool { return model.IssueType(v).IsValid() },
	"issue_priority": func(v string) bool { return model.IssuePriority(v).IsValid() },
}

// inputValidator wraps go-playground/validator and turns the first failing
// rule into a client-facing message.
type inputValidator struct {
	v        *validator.Validate
	messages map[string]string
}

// newInputValidator builds a validator whose field names follow json tags.
// messages is keyed by "<json field>.<tag>".
func newInputValidator(messages map[string]string) *inputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, valid := range enumRules {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
	return &inputValidator{v: v, messages: messages}
}

func (iv *inputValidator) check(input any) error {
	err := iv.v.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	if msg, ok := iv.messages[fe.Field()+"."+fe.Tag()]; ok {
		return newValidationError(msg)
	}
	return newValidationError("Invalid value for " + fe.Field())
}
