package domain

// Domain contains the sample models served by internal/services.

// Post mirrors the JSONPlaceholder-style post resource.
type Post struct {
	ID     int    `json:"id,omitempty"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
