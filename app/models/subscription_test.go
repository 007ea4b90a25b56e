package models

import (
	"testing"
	"time"
)

func TestNextDeliveryOnDay(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		day  int
		want time.Time
	}{
		{
			name: "later this month",
			now:  time.Date(2025, time.March, 5, 12, 0, 0, 0, loc),
			day:  10,
			want: time.Date(2025, time.March, 10, 0, 0, 0, 0, loc),
		},
		{
			name: "already passed rolls to next month",
			now:  time.Date(2025, time.March, 15, 0, 0, 0, 0, loc),
			day:  10,
			want: time.Date(2025, time.April, 10, 0, 0, 0, 0, loc),
		},
		{
			name: "same day rolls forward",
			now:  time.Date(2025, time.March, 10, 0, 0, 0, 0, loc),
			day:  10,
			want: time.Date(2025, time.April, 10, 0, 0, 0, 0, loc),
		},
		{
			name: "day 31 clamps in april",
			now:  time.Date(2025, time.April, 1, 0, 0, 0, 0, loc),
			day:  31,
			want: time.Date(2025, time.April, 30, 0, 0, 0, 0, loc),
		},
		{
			name: "day 30 clamps in february",
			now:  time.Date(2025, time.February, 10, 0, 0, 0, 0, loc),
			day:  30,
			want: time.Date(2025, time.February, 28, 0, 0, 0, 0, loc),
		},
		{
			name: "leap year february",
			now:  time.Date(2024, time.February, 10, 0, 0, 0, 0, loc),
			day:  30,
			want: time.Date(2024, time.February, 29, 0, 0, 0, 0, loc),
		},
		{
			name: "rollover across year boundary",
			now:  time.Date(2025, time.December, 20, 0, 0, 0, 0, loc),
			day:  5,
			want: time.Date(2026, time.January, 5, 0, 0, 0, 0, loc),
		},
		{
			name: "out of range day defaults low",
			now:  time.Date(2025, time.March, 5, 0, 0, 0, 0, loc),
			day:  0,
			want: time.Date(2025, time.April, 1, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDeliveryOnDay(tt.now, tt.day)
			if !got.Equal(tt.want) {
				t.Fatalf("NextDeliveryOnDay(%v, %d) = %v, want %v", tt.now, tt.day, got, tt.want)
			}
		})
	}
}

func TestShippingAddressIsEmpty(t *testing.T) {
	full := ShippingAddress{Name: "Asha", Line1: "12 MG Road", City: "Bengaluru", PostalCode: "560001"}
	if full.IsEmpty() {
		t.Fatalf("complete address reported empty")
	}
	if !(ShippingAddress{}).IsEmpty() {
		t.Fatalf("zero address reported non-empty")
	}
	if !(ShippingAddress{Name: "Asha", City: "Bengaluru"}).IsEmpty() {
		t.Fatalf("address without line1 and postal code must count as empty")
	}
	if !(ShippingAddress{Line1: "12 MG Road"}).IsEmpty() {
		t.Fatalf("address without postal code must count as empty")
	}
}
