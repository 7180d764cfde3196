package validator

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/survey-reachability/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate - валидация структуры. Ошибки полей превращаются в ErrInvalidRequest
// с деталями "поле: правило".
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrInvalidRequest
	}

	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Namespace()] = fe.Tag()
	}
	return errors.ErrInvalidRequest.WithDetails(details)
}
