package service

import "math"

// Default and maximum page sizes for paginated listings.
const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// MaxPageNumber keeps Offset within int32 for every page size.
const MaxPageNumber = math.MaxInt32/MaxPageSize + 1

// Page selects one page of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page into valid bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
