package dto

// CreatePostRequest opens a new board thread.
type CreatePostRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Body        string `json:"body" validate:"required,max=5000"`
	Branch      string `json:"branch" validate:"required"`
	AuthorAlias string `json:"authorAlias" validate:"max=60"`
}

// CreateReplyRequest appends a reply to a thread.
type CreateReplyRequest struct {
	ReplyText   string `json:"replyText" validate:"required,max=2000"`
	AuthorAlias string `json:"authorAlias" validate:"max=60"`
}

// PostListQuery filters the board by branch.
type PostListQuery struct {
	Branch string `form:"branch"`
}
