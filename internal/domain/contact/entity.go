// Package contact models messages sent through the storefront contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidSubmission = errors.New("contact: invalid submission")
	ErrNotFound          = errors.New("contact: submission not found")
)

// Submission is one contact form message. The sender's email is the
// document id, so a later message from the same address replaces the
// earlier one.
type Submission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Message     string    `json:"message" validate:"required,max=5000"`
	SubmittedAt time.Time `json:"timestamp"`
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// New trims the input, validates it and keys it by the lower-cased email.
func New(name, email, phone, message string, now time.Time) (Submission, error) {
	s := Submission{
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
		Message:     strings.TrimSpace(message),
		SubmittedAt: now.UTC(),
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Submission{}, err
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return Submission{}, fmt.Errorf("%w: check %s", ErrInvalidSubmission, strings.Join(fields, ", "))
	}
	s.ID = strings.ToLower(s.Email)
	return s, nil
}

// Repository stores submissions in the contactFormSubmissions collection.
type Repository interface {
	// Put creates or replaces the submission under s.ID.
	Put(ctx context.Context, s Submission) error
	// List returns every submission, newest first.
	List(ctx context.Context) ([]Submission, error)
	// Delete returns ErrNotFound when id is absent.
	Delete(ctx context.Context, id string) error
}
