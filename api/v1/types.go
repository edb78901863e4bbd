// Package v1 holds the wire types of the public search API.
package v1

// SearchRequest defines model for SearchRequest.
type SearchRequest struct {
	Query                 string       `json:"query" validate:"required,search_query"`
	RequestingPrincipalId *string      `json:"requestingPrincipalId,omitempty" validate:"omitempty,principal_id"`
	Consistency           *Consistency `json:"consistency,omitempty"`
}

// Consistency defines model for Consistency.
type Consistency struct {
	ItemId    string `json:"itemId" validate:"required,item_id"`
	Sequence  int64  `json:"sequence" validate:"required,gt=0"`
	TimeoutMs int64  `json:"timeoutMs,omitempty" validate:"gte=0"`
}

// SearchResponse defines model for SearchResponse.
type SearchResponse struct {
	Entries []Entry `json:"entries"`
}

// Entry defines model for Entry.
type Entry struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	IsFile bool   `json:"isFile"`
}

// IndexStatus defines model for IndexStatus.
type IndexStatus struct {
	Visible   bool  `json:"visible"`
	Watermark int64 `json:"watermark"`
}

// Error defines model for Error.
type Error struct {
	// Message Error message
	Message string `json:"message"`
}

// Health defines model for Health.
type Health struct {
	Status string `json:"status"`
}
