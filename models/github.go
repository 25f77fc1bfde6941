package models

// GitHubUser is the subset of the GitHub /user payload the UI shows
type GitHubUser struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	AvatarURL string  `json:"avatar_url"`
	Name      *string `json:"name"`
}
