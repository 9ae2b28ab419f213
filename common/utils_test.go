package common

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestEnumerateDates(t *testing.T) {
	dates := EnumerateDates("2025-02-26", "2025-03-02")
	assert.Equal(t, dates, []string{"2025-02-26", "2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"})

	single := EnumerateDates("2025-01-01", "2025-01-01")
	assert.Equal(t, single, []string{"2025-01-01"})

	inverted := EnumerateDates("2025-01-02", "2025-01-01")
	if len(inverted) != 0 {
		t.Errorf("inverted range should be empty, got %d dates", len(inverted))
	}
}

func TestNextDate(t *testing.T) {
	assert.Equal(t, NextDate("2024-12-31"), "2025-01-01")
	assert.Equal(t, NextDate("2025-02-28"), "2025-03-01")
}

func TestFormatWithUnits(t *testing.T) {
	assert.Equal(t, FormatWithUnits(1_234_567), "1.23 M")
	assert.Equal(t, FormatWithUnits(45_600), "45.60 K")
	assert.Equal(t, FormatWithUnits(987.654), "987.65")
	assert.Equal(t, FormatWithUnits(-2_500_000_000), "-2.50 B")
}

func TestFormatPercentWithSign(t *testing.T) {
	assert.Equal(t, FormatPercentWithSign(3.456), "+3.46%")
	assert.Equal(t, FormatPercentWithSign(-1.2), "-1.20%")
	assert.Equal(t, FormatPercentWithSign(0), "0.00%")
}
