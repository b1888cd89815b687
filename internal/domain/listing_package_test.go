package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestListingPackageValidate(t *testing.T) {
	tests := []struct {
		name    string
		pkg     ListingPackage
		wantErr bool
	}{
		{"valid", ListingPackage{Name: "1 Week", DurationDays: 7, Price: decimal.NewFromInt(7)}, false},
		{"free package", ListingPackage{Name: "Trial", DurationDays: 1, Price: decimal.Zero}, false},
		{"blank name", ListingPackage{Name: "  ", DurationDays: 7, Price: decimal.NewFromInt(7)}, true},
		{"long name", ListingPackage{Name: strings.Repeat("x", 101), DurationDays: 7, Price: decimal.NewFromInt(7)}, true},
		{"zero duration", ListingPackage{Name: "Zero", DurationDays: 0, Price: decimal.NewFromInt(7)}, true},
		{"negative price", ListingPackage{Name: "Neg", DurationDays: 1, Price: decimal.NewFromInt(-1)}, true},
		{"sub-cent price", ListingPackage{Name: "Tiny", DurationDays: 1, Price: decimal.RequireFromString("0.125")}, true},
		{"trailing zeros", ListingPackage{Name: "Even", DurationDays: 1, Price: decimal.RequireFromString("1.500")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pkg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Validate() = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestListingPackageUpdateApply(t *testing.T) {
	p := &ListingPackage{Name: "Old", Description: "keep", DurationDays: 7, Price: decimal.NewFromInt(7), IsActive: true}

	name := "New"
	price := decimal.RequireFromString("6.50")
	inactive := false
	ListingPackageUpdate{Name: &name, Price: &price, IsActive: &inactive}.Apply(p)

	if p.Name != "New" || p.Description != "keep" || p.DurationDays != 7 {
		t.Errorf("unexpected package after apply: %+v", p)
	}
	if !p.Price.Equal(price) {
		t.Errorf("Price = %s, want %s", p.Price, price)
	}
	if p.IsActive {
		t.Errorf("IsActive = true, want false")
	}
}
