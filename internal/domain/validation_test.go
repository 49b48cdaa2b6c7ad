package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateRoutingNumber(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr bool
	}{
		{"valid nine digits", "021000021", false},
		{"too short", "12345678", true},
		{"too long", "1234567890", true},
		{"non-numeric", "02100002a", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoutingNumber(tt.number)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoutingNumber(%q): expected error=%v, got %v", tt.number, tt.wantErr, err)
			}
		})
	}
}

func TestValidateAccountNumber(t *testing.T) {
	if err := ValidateAccountNumber("123456789012"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAccountNumber("123"); err == nil {
		t.Error("expected error for short account number")
	}
	if err := ValidateAccountNumber("12ab5678"); err == nil {
		t.Error("expected error for non-numeric account number")
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"valid amount", "100.00", nil},
		{"minimum amount", "0.01", nil},
		{"zero rejected", "0", ErrInvalidAmount},
		{"negative rejected", "-5", ErrInvalidAmount},
		{"below minimum", "0.001", ErrAmountTooSmall},
		{"above maximum", "1000000001", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults (50, 0), got (%d, %d)", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", limit)
	}
}
