package domain

import "time"

// Post is a short message attributed to a user. UserID is a plain reference;
// the referenced user is not required to exist.
type Post struct {
	ID        string    `json:"postId"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostFilter narrows a post listing. The zero value matches every post.
type PostFilter struct {
	UserID string
}
