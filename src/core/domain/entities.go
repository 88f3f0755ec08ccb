package domain

// Profile is a single user_data row keyed by email.
// Columns are returned verbatim; this service never mutates them.
type Profile map[string]any

// Email returns the email column when present.
func (p Profile) Email() string {
	if v, ok := p["email"].(string); ok {
		return v
	}
	return ""
}

// PoolStats is a point-in-time snapshot of the connection pool.
type PoolStats struct {
	Capacity        int32 `json:"capacity"`
	Acquired        int32 `json:"acquired"`
	Idle            int32 `json:"idle"`
	Total           int32 `json:"total"`
	Constructing    int32 `json:"constructing"`
	Waiting         int32 `json:"waiting"`
	AcquireCount    int64 `json:"acquire_count"`
	CanceledAcquire int64 `json:"canceled_acquire_count"`
}
