package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCalculateListingEndDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		currentEnd *time.Time
		days       int
		want       time.Time
	}{
		{
			name:       "nil currentEnd - starts from now",
			currentEnd: nil,
			days:       7,
			want:       now.AddDate(0, 0, 7),
		},
		{
			name:       "past currentEnd - starts from now",
			currentEnd: timePtr(now.AddDate(0, 0, -3)),
			days:       14,
			want:       now.AddDate(0, 0, 14),
		},
		{
			name:       "future currentEnd - stacks from currentEnd",
			currentEnd: timePtr(now.AddDate(0, 0, 5)),
			days:       30,
			want:       now.AddDate(0, 0, 35),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateListingEndDate(tt.currentEnd, tt.days, now)
			if !got.Equal(tt.want) {
				t.Errorf("CalculateListingEndDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventIsListed(t *testing.T) {
	now := time.Now().UTC()

	active := &Event{ListingStatus: ListingStatusActive, ListingExpiresAt: timePtr(now.Add(time.Hour))}
	if !active.IsListed(now) {
		t.Errorf("active listing with future expiry should be listed")
	}

	lapsed := &Event{ListingStatus: ListingStatusActive, ListingExpiresAt: timePtr(now.Add(-time.Hour))}
	if lapsed.IsListed(now) {
		t.Errorf("listing past its expiry should not be listed")
	}

	pending := &Event{ListingStatus: ListingStatusPendingPayment}
	if pending.IsListed(now) {
		t.Errorf("pending listing should not be listed")
	}
}

func TestEventValidate(t *testing.T) {
	valid := Event{Title: "Jazz Night", Location: "Harare", Category: "music", Days: 3}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	noTitle := valid
	noTitle.Title = ""
	if err := noTitle.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing title: got %v", err)
	}

	noDays := valid
	noDays.Days = 0
	if err := noDays.Validate(); !errors.Is(err, ErrInvalidDays) {
		t.Errorf("zero days: got %v", err)
	}

	longest := valid
	longest.Days = MaxListingDays
	if err := longest.Validate(); err != nil {
		t.Errorf("max days: got %v", err)
	}
	longest.Days = MaxListingDays + 1
	if err := longest.Validate(); !errors.Is(err, ErrInvalidDays) {
		t.Errorf("over max days: got %v", err)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
