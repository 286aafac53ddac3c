package domain

// DefaultPageSize is the number of rows returned per page.
const DefaultPageSize = 20

// Page selects a slice of a list. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// PageFromNumber normalizes a 1-based page number with the default size.
func PageFromNumber(n int) Page {
	if n < 1 {
		n = 1
	}
	return Page{Number: n, Size: DefaultPageSize}
}

// Limit returns the row limit, falling back to DefaultPageSize.
func (p Page) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

// DeliveryFilter narrows a delivery listing. Zero values disable a criterion;
// nil tri-state pointers mean "either".
type DeliveryFilter struct {
	Query           string // case-insensitive substring of product
	DeliverymanID   int64
	RecipientID     int64
	Retrieved       *bool
	Delivered       *bool
	Cancelled       *bool
	OnlyWithProblem bool
}

// PeopleFilter narrows deliveryman and recipient listings by name.
type PeopleFilter struct {
	Query string
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
