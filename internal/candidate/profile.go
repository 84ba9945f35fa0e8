package candidate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const minPhoneDigits = 9

// Profile carries the editable identity fields of a candidate.
type Profile struct {
	Name  string `json:"name" validate:"omitempty,max=120"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phone", validPhone); err != nil {
		panic(fmt.Sprintf("registering phone validation: %v", err))
	}
	return v
}

// validPhone accepts digits with common separators and at least nine digits.
func validPhone(fl validator.FieldLevel) bool {
	digits := 0
	for i, r := range fl.Field().String() {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case strings.ContainsRune(" -().", r):
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

// Validate reports ErrInvalidProfile describing every rejected field.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, ", "))
}

func (p Profile) trimmed() Profile {
	return Profile{
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
		Phone: strings.TrimSpace(p.Phone),
	}
}

func validateField(name, value string) error {
	switch name {
	case FieldName:
		return Profile{Name: value}.Validate()
	case FieldEmail:
		return Profile{Email: value}.Validate()
	case FieldPhone:
		return Profile{Phone: value}.Validate()
	default:
		return fmt.Errorf("unknown field %q", name)
	}
}
