package calc

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name            string
		page, perPage   int
		wantPage, wantN int
	}{
		{"defaults", 0, 0, 1, DefaultPerPage},
		{"negative page", -3, 20, 1, 20},
		{"capped", 2, 1000, 2, MaxPerPage},
		{"exact cap", 1, 500, 1, 500},
		{"huge page", math.MaxInt, 12, MaxPage, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, n := NormalizePage(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestLastPage(t *testing.T) {
	assert.Equal(t, 1, LastPage(0, 12))
	assert.Equal(t, 1, LastPage(12, 12))
	assert.Equal(t, 2, LastPage(13, 12))
	assert.Equal(t, 3, LastPage(1001, 500))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 12))
	assert.Equal(t, 24, Offset(3, 12))

	page, perPage := NormalizePage(math.MaxInt, 1000)
	assert.Positive(t, Offset(page, perPage))
	assert.LessOrEqual(t, Offset(page, perPage), math.MaxInt32)
}

func TestLineTotalAndSum(t *testing.T) {
	line := LineTotal(decimal.RequireFromString("119.99"), 3)
	assert.Equal(t, "359.97", line.StringFixed(2))

	total := Sum(line, decimal.RequireFromString("0.035"))
	assert.Equal(t, "360.01", total.StringFixed(2))
}
