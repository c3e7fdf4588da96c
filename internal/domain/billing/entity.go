// Package billing holds the shipping/billing details captured at checkout.
package billing

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Details is stored verbatim on the order as billingDetails.
// Every field is required, landmark included.
type Details struct {
	FullName    string `json:"fullName" firestore:"fullName" validate:"required,fullname"`
	PhoneNumber string `json:"phoneNumber" firestore:"phoneNumber" validate:"required,len=10,digits"`
	Email       string `json:"email" firestore:"email" validate:"required,email"`
	Address     string `json:"address" firestore:"address" validate:"required"`
	Landmark    string `json:"landmark" firestore:"landmark" validate:"required"`
	PostalCode  string `json:"postalCode" firestore:"postalCode" validate:"required,len=6,digits"`
}

var (
	fullNameRe = regexp.MustCompile(`^[A-Za-z .'-]+$`)
	digitsRe   = regexp.MustCompile(`^[0-9]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names ("phoneNumber") instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return fullNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(fl.Field().String())
	})
	return v
}

// Normalize trims surrounding whitespace on every field.
func (d Details) Normalize() Details {
	return Details{
		FullName:    strings.TrimSpace(d.FullName),
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Email:       strings.TrimSpace(d.Email),
		Address:     strings.TrimSpace(d.Address),
		Landmark:    strings.TrimSpace(d.Landmark),
		PostalCode:  strings.TrimSpace(d.PostalCode),
	}
}

// Validate checks the normalized details and collects every violation.
// It returns nil or a *ValidationError.
func (d Details) Validate() error {
	n := d.Normalize()
	err := validate.Struct(n)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "fullname":
		return "may only contain letters, spaces, dots, apostrophes and hyphens"
	case "len":
		return "must be exactly " + fe.Param() + " digits"
	case "digits":
		return "must contain digits only"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
