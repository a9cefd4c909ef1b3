package calc

import "math"

const (
	DefaultPerPage = 12
	MaxPerPage     = 500
	// MaxPage keeps Offset inside an int32 for any per page value.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// NormalizePage clamps page to [1, MaxPage] and perPage to [1, MaxPerPage],
// substituting DefaultPerPage for a missing value.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

// LastPage never returns less than 1, even for an empty result.
func LastPage(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
