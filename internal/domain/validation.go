package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Normalize trims the prompt and options.
func (in QuestionInput) Normalize() QuestionInput {
	out := QuestionInput{Prompt: strings.TrimSpace(in.Prompt), CorrectAnswer: in.CorrectAnswer}
	if in.Options != nil {
		out.Options = make([]string, len(in.Options))
		for i, opt := range in.Options {
			out.Options[i] = strings.TrimSpace(opt)
		}
	}
	return out
}

// Validate checks prompt length, option count and the answer index.
func (in QuestionInput) Validate() error {
	return toValidationError(validate.Struct(in))
}

// Normalize trims the student name.
func (in ScoreInput) Normalize() ScoreInput {
	in.StudentName = strings.TrimSpace(in.StudentName)
	return in
}

// Validate checks field ranges and that the score is reachable for the question count.
func (in ScoreInput) Validate() error {
	if err := toValidationError(validate.Struct(in)); err != nil {
		return err
	}
	if in.Score > in.TotalQuestions*PointsPerQuestion {
		return &ValidationError{Fields: []FieldError{{
			Field:   "score",
			Message: fmt.Sprintf("must not exceed %d for %d questions", in.TotalQuestions*PointsPerQuestion, in.TotalQuestions),
		}}}
	}
	return nil
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return out
}

// fieldPath drops the struct name prefix, "QuestionInput.options[2]" -> "options[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must have exactly " + fe.Param() + " items"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
