package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"coopsite/internal/validate"
)

func TestDate(t *testing.T) {
	if d, ok := validate.Date("2025-06-10"); !ok || d.Day() != 10 {
		t.Fatalf("valid date rejected: %v %v", d, ok)
	}
	for _, bad := range []string{"", "10/06/2025", "2025-6-10", "2025-02-30", "tomorrow", "2025-06-10T10:00:00Z"} {
		if _, ok := validate.Date(bad); ok {
			t.Fatalf("malformed date %q accepted", bad)
		}
	}
}

func TestEmailAndPhone(t *testing.T) {
	if _, ok := validate.Email("anna@coop.example"); !ok {
		t.Fatal("valid email rejected")
	}
	if _, ok := validate.Email("anna@"); ok {
		t.Fatal("invalid email accepted")
	}
	if _, ok := validate.Phone("+39 333 123 4567"); !ok {
		t.Fatal("valid phone rejected")
	}
	if _, ok := validate.Phone("call me"); ok {
		t.Fatal("invalid phone accepted")
	}
}

func TestUsernameAndPassword(t *testing.T) {
	if u, ok := validate.Username("  Admin "); !ok || u != "admin" {
		t.Fatalf("username should normalise, got %q %v", u, ok)
	}
	if _, ok := validate.Username("a b"); ok {
		t.Fatal("username with space accepted")
	}
	if !validate.Password("Passw0rd!") {
		t.Fatal("strong password rejected")
	}
	if validate.Password("password") {
		t.Fatal("weak password accepted")
	}
}

func TestImageURL(t *testing.T) {
	for _, ok := range []string{"", "/media/p1.jpg", "https://cdn.example.com/a.png"} {
		if _, good := validate.ImageURL(ok); !good {
			t.Fatalf("%q rejected", ok)
		}
	}
	for _, bad := range []string{"javascript:alert(1)", "//evil.example/x.png", "/media/../etc/passwd", "ftp://x/y"} {
		if _, good := validate.ImageURL(bad); good {
			t.Fatalf("%q accepted", bad)
		}
	}
}

func TestPriceAndQuantity(t *testing.T) {
	if validate.Price(decimal.RequireFromString("-0.01")) {
		t.Fatal("negative price accepted")
	}
	if !validate.Price(decimal.Zero) {
		t.Fatal("zero price rejected")
	}
	if validate.Quantity(0) != 0 || validate.Quantity(3) != 3 {
		t.Fatal("quantities within range should pass through")
	}
	if n := validate.Quantity(500); n != validate.MaxQuantity {
		t.Fatalf("want clamp to %d, got %d", validate.MaxQuantity, n)
	}
}
