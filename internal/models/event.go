package models

// Live view topics.
const (
	TopicResourcePending  = "resource.pending"
	TopicResourceApproved = "resource.approved"
	TopicResourceDeleted  = "resource.deleted"
	TopicPostCreated      = "post.created"
	TopicReplyCreated     = "reply.created"
)

// ResourceEvent is published on resource topics.
type ResourceEvent struct {
	ID       string         `json:"id"`
	FileName string         `json:"fileName"`
	Subject  string         `json:"subject"`
	Location string         `json:"location"`
	Status   ResourceStatus `json:"status"`
}
