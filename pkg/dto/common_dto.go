package dto

type AuthorResponse struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Country   string  `json:"country,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// ReactionsResponse carries per-type counts plus the requesting user's
// current reaction (nil when not reacted or not authenticated).
type ReactionsResponse struct {
	Counts      map[string]int64 `json:"counts"`
	UserReacted *string          `json:"user_reacted"`
}
