package apperr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"coopsite/internal/apperr"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"validation", apperr.Validation("date", "required"), apperr.KindValidation},
		{"not found", apperr.NotFound("products.get"), apperr.KindNotFound},
		{"conflict", apperr.Conflict("bookings.insert", "slot taken"), apperr.KindConflict},
		{"transport", apperr.Transport("orders.insert", sql.ErrConnDone), apperr.KindTransport},
		{"foreign error", errors.New("boom"), apperr.KindTransport},
		{"wrapped", fmt.Errorf("submit: %w", apperr.Validation("slot", "required")), apperr.KindValidation},
	}
	for _, tc := range cases {
		if got := apperr.KindOf(tc.err); got != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestTransportKeepsInnerKindAndUnwraps(t *testing.T) {
	if apperr.Transport("x", nil) != nil {
		t.Fatal("nil error must stay nil")
	}
	inner := apperr.NotFound("projects.get")
	if got := apperr.KindOf(apperr.Transport("projects.get", inner)); got != apperr.KindNotFound {
		t.Fatalf("want not_found preserved, got %s", got)
	}
	err := apperr.Transport("orders.insert", sql.ErrConnDone)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatal("transport error should unwrap to its cause")
	}
}

func TestFieldOf(t *testing.T) {
	if f := apperr.FieldOf(apperr.Validation("email", "invalid")); f != "email" {
		t.Fatalf("want email, got %q", f)
	}
	if f := apperr.FieldOf(errors.New("x")); f != "" {
		t.Fatalf("want empty field, got %q", f)
	}
}
