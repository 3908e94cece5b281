package dto

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type MovementFilters struct {
	ProductID    int64
	MovementType string
	Page         int
	PageSize     int
}

// Normalize clamps paging to sane bounds.
func (f *MovementFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}
