package pagination

const (
	DefaultLimit = 1000
	MaxLimit     = 100000
)

// Keyset-based Pagination
// KeysetRequest walks a table ordered by a strictly increasing int64 key.
type KeysetRequest struct {
	After   int64 `json:"after"`
	Limit   int   `json:"limit,omitempty"`
	HasMore bool  `json:"has_more"`
}

// NewKeysetRequest creates a keyset request positioned before the first row.
func NewKeysetRequest(limit int) *KeysetRequest {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return &KeysetRequest{
		After:   0,
		Limit:   limit,
		HasMore: true,
	}
}

// GetLimit returns validated limit
func (r *KeysetRequest) GetLimit() int {
	if r.Limit <= 0 || r.Limit > MaxLimit {
		return DefaultLimit
	}
	return r.Limit
}

// Advance records a fetched page of n rows whose last key is lastKey.
// A short page ends the walk.
func (r *KeysetRequest) Advance(lastKey int64, n int) {
	if n > 0 {
		r.After = lastKey
	}
	r.HasMore = n >= r.GetLimit()
}

// Offset-based Pagination
// OffsetRequest represents offset-based pagination request
type OffsetRequest struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// NewOffsetRequest creates a new offset request with defaults
func NewOffsetRequest(page, pageSize int) *OffsetRequest {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > MaxLimit {
		pageSize = DefaultLimit
	}
	return &OffsetRequest{
		Page:     page,
		PageSize: pageSize,
	}
}

// GetPage returns validated page
func (r *OffsetRequest) GetPage() int {
	if r.Page <= 0 {
		return 1
	}
	return r.Page
}

// GetPageSize returns validated page size
func (r *OffsetRequest) GetPageSize() int {
	if r.PageSize <= 0 || r.PageSize > MaxLimit {
		return DefaultLimit
	}
	return r.PageSize
}

// Next returns the request for the following page.
func (r *OffsetRequest) Next() *OffsetRequest {
	return &OffsetRequest{Page: r.GetPage() + 1, PageSize: r.GetPageSize()}
}

// IsLast reports whether a page holding n items was the final one.
func (r *OffsetRequest) IsLast(n int) bool {
	return n < r.GetPageSize()
}
