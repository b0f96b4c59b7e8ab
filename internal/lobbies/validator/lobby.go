package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"huddle/pkg/codes"
	"huddle/pkg/logger"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field to message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type LobbyValidator struct {
	validate       *validator.Validate
	userCodeLength int
}

func NewLobbyValidator(log *logger.Logger, userCodeLength int) *LobbyValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	lv := &LobbyValidator{validate: v, userCodeLength: userCodeLength}

	if err := v.RegisterValidation("user_code", lv.validateUserCode); err != nil {
		log.Fatal("Failed to register 'user_code' validator", "error", err)
	}

	log.Debug("Lobby validator initialized successfully")

	return lv
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func (v *LobbyValidator) validateUserCode(fl validator.FieldLevel) bool {
	return codes.Valid(codes.Normalize(fl.Field().String()), v.userCodeLength)
}

// Validate checks a request struct against its validate tags.
func (v *LobbyValidator) Validate(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a UUID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "hexcolor":
			message = fmt.Sprintf("%s must be a hex color such as #3b82f6", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone", err.Field())
		case "user_code":
			message = fmt.Sprintf("%s is not a valid user code", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
