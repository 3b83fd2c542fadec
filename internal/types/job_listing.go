package types

// JobListing is the candidate-facing projection of a posting. HasApplied is scoped to the
// user the listing was requested for.
type JobListing struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	HasApplied  bool    `json:"has_applied"`
	OwnerUserID *string `json:"user_id,omitempty"`
}

// OwnedBy reports whether the listing was posted by userID.
func (l JobListing) OwnedBy(userID string) bool {
	return l.OwnerUserID != nil && userID != "" && *l.OwnerUserID == userID
}

// ApplyResult is the body returned by a successful apply.
type ApplyResult struct {
	Message  string `json:"message,omitempty"`
	JobID    string `json:"job_id,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
}
