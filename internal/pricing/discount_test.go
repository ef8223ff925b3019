package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClampDiscountPercent(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-10, 0},
		{0, 0},
		{45, 45},
		{90, 90},
		{91, 90},
		{500, 90},
	}
	for _, tc := range cases {
		if got := ClampDiscountPercent(tc.in); got != tc.want {
			t.Errorf("ClampDiscountPercent(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDiscountDropsExpiryWhenZero(t *testing.T) {
	until := time.Now().Add(time.Hour)

	percent, got := NormalizeDiscount(0, &until)
	if percent != 0 || got != nil {
		t.Fatalf("expected zero discount with nil expiry, got %d %v", percent, got)
	}

	percent, got = NormalizeDiscount(-5, &until)
	if percent != 0 || got != nil {
		t.Fatalf("negative percent should normalize to zero with nil expiry, got %d %v", percent, got)
	}

	percent, got = NormalizeDiscount(30, &until)
	if percent != 30 || got == nil || !got.Equal(until) {
		t.Fatalf("active discount should keep its expiry, got %d %v", percent, got)
	}
}

func TestIsDiscountActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	if IsDiscountActive(0, nil, now) {
		t.Fatal("zero percent must never be active")
	}
	if !IsDiscountActive(20, nil, now) {
		t.Fatal("nil expiry means an unbounded window")
	}
	if !IsDiscountActive(20, &future, now) {
		t.Fatal("future expiry should be active")
	}
	if IsDiscountActive(20, &past, now) {
		t.Fatal("past expiry should be inactive")
	}
	if IsDiscountActive(20, &now, now) {
		t.Fatal("expiry equal to now is already expired")
	}
}

func TestFinalPriceAppliesAndRounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := FinalPrice(decimal.RequireFromString("10.00"), 25, nil, now)
	if !got.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("expected 7.50 got %s", got)
	}

	// 9.99 at 33% off = 6.6933 -> 6.69
	got = FinalPrice(decimal.RequireFromString("9.99"), 33, nil, now)
	if !got.Equal(decimal.RequireFromString("6.69")) {
		t.Fatalf("expected 6.69 got %s", got)
	}

	past := now.Add(-time.Second)
	got = FinalPrice(decimal.RequireFromString("10.00"), 25, &past, now)
	if !got.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expired discount must not apply, got %s", got)
	}
}

func TestFinalPriceClampsInputs(t *testing.T) {
	now := time.Now()

	got := FinalPrice(decimal.RequireFromString("-5.00"), 0, nil, now)
	if !got.Equal(decimal.Zero) {
		t.Fatalf("negative base price should coerce to zero, got %s", got)
	}

	// 200% clamps to 90%: 100 -> 10.00
	got = FinalPrice(decimal.RequireFromString("100.00"), 200, nil, now)
	if !got.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected clamp to 90%% leaving 10.00, got %s", got)
	}
}
