package validator

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
)

type sample struct {
	Name  string `json:"name" validate:"required,notblank"`
	Marks int    `json:"marks" validate:"min=1"`
}

func TestTranslateErrors_UsesJSONNamesAndCustomRule(t *testing.T) {
	v := govalidator.New()
	register(v)

	err := v.Struct(sample{Name: "   ", Marks: 0})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	fields := TranslateErrors(err)

	if got := fields["name"]; got != "name must not be blank" {
		t.Fatalf("name message = %q", got)
	}
	if _, ok := fields["marks"]; !ok {
		t.Fatalf("expected a marks error, got %v", fields)
	}
}

func TestTranslateErrors_NonValidationError(t *testing.T) {
	fields := TranslateErrors(errString("unexpected EOF"))
	if fields["detail"] != "unexpected EOF" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
