package models

import "time"

// CommunityPost is a question or discussion thread on the board.
type CommunityPost struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	Branch      string    `db:"branch" json:"branch"`
	AuthorAlias string    `db:"author_alias" json:"authorAlias"`
	ReplyCount  int       `db:"reply_count" json:"replyCount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CommunityReply is an append-only answer attached to a post.
type CommunityReply struct {
	ID          string    `db:"id" json:"id"`
	PostID      string    `db:"post_id" json:"postId"`
	ReplyText   string    `db:"reply_text" json:"replyText"`
	AuthorAlias string    `db:"author_alias" json:"authorAlias"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// PostFilter selects posts created at or after Since, optionally in one branch.
type PostFilter struct {
	Since  time.Time
	Branch string
	Limit  int
}
