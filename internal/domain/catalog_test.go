package domain

import "testing"

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name string
		m    Money
		want string
	}{
		{"mug price", Money{"USD", 8, 990000000}, "USD $8.99"},
		{"whole dollars", Money{"USD", 109, 0}, "USD $109.00"},
		{"single cent digit pads", Money{"USD", 5, 90000000}, "USD $5.09"},
		{"truncates, never rounds", Money{"USD", 8, 999999999}, "USD $8.99"},
		{"other currency", Money{"EUR", 18, 490000000}, "EUR $18.49"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Format(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  John.Doe@Example.COM "); got != "john.doe@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestSubscriberFullName(t *testing.T) {
	s := Subscriber{FirstName: "Jane", LastName: "Roe"}
	if got := s.FullName(); got != "Jane Roe" {
		t.Errorf("FullName() = %q", got)
	}
	s = Subscriber{FirstName: "Cher"}
	if got := s.FullName(); got != "Cher" {
		t.Errorf("FullName() with no last name = %q", got)
	}
}
