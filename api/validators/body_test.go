package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
)

type contactPayload struct {
	Name  string  `json:"name" validate:"required,min=2"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var payload contactPayload
	return DecodeJSONBody(req, &payload)
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	if err := decode(t, `{"name":"Ana","email":"ana@example.com","phone":"+51987654321"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeJSONBodyPhoneOptional(t *testing.T) {
	if err := decode(t, `{"name":"Ana","email":"ana@example.com"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeJSONBodyRejectsBadPhone(t *testing.T) {
	err := decode(t, `{"name":"Ana","email":"ana@example.com","phone":"call me"}`)
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["phone"] != "must be a valid phone number" {
		t.Fatalf("unexpected phone message: %q", details["phone"])
	}
}

func TestDecodeJSONBodyRejectsUnknownField(t *testing.T) {
	if err := decode(t, `{"name":"Ana","email":"ana@example.com","role":"admin"}`); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecodeJSONBodyUsesJSONFieldNames(t *testing.T) {
	err := decode(t, `{"name":"Ana","email":"not-an-email"}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if _, present := details["email"]; !present {
		t.Fatalf("expected email key in details, got %v", details)
	}
}

func TestPhonePattern(t *testing.T) {
	valid := []string{"+51987654321", "987654321", "+12025550123"}
	for _, number := range valid {
		if !phoneRe.MatchString(number) {
			t.Fatalf("expected %q to match", number)
		}
	}
	invalid := []string{"", "12345678", "+51 987 654 321", "abc123456789"}
	for _, number := range invalid {
		if phoneRe.MatchString(number) {
			t.Fatalf("expected %q to be rejected", number)
		}
	}
}
