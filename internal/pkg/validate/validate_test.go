package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

func TestStruct_Valid(t *testing.T) {
	v := New()
	if err := v.Struct(domain.Credentials{Email: "a@b.co", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Struct(domain.ReserveInput{UserID: 1, VehicleNumber: strings.Repeat("X", 21)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", ve.Fields)
	}
	if !strings.HasPrefix(ve.Fields[0], "lot_id ") {
		t.Fatalf("expected lot_id first, got %q", ve.Fields[0])
	}
	if ve.Fields[1] != "vehicle_number must be at most 20 characters" {
		t.Fatalf("unexpected message %q", ve.Fields[1])
	}
}

func TestStruct_Email(t *testing.T) {
	type contact struct {
		Email string `json:"email" validate:"required,email"`
	}
	err := New().Struct(contact{Email: "nope"})
	if err == nil || !strings.Contains(err.Error(), "email must be a valid email") {
		t.Fatalf("unexpected error: %v", err)
	}
}
