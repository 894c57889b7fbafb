package dto

import "github.com/bitconnect/vault-api/internal/models"

// UploadResourceRequest is the multipart form accompanying an upload.
// Either Semester or Stream and Cycle locate the record.
type UploadResourceRequest struct {
	Branch        string `form:"branch"`
	Semester      *int   `form:"semester"`
	Stream        string `form:"stream"`
	Cycle         string `form:"cycle"`
	Category      string `form:"category" validate:"required"`
	Subject       string `form:"subject" validate:"required"`
	UploaderAlias string `form:"uploaderAlias" validate:"max=60"`
}

// BrowseQuery captures catalog browse parameters.
type BrowseQuery struct {
	Branch   string `form:"branch" validate:"required"`
	Semester *int   `form:"semester"`
	Stream   string `form:"stream"`
	Cycle    string `form:"cycle"`
	Category string `form:"category"`
}

// ResourceView decorates a resource with display labels.
type ResourceView struct {
	models.Resource
	BranchLabel   string `json:"branchLabel"`
	BranchName    string `json:"branchName"`
	CategoryLabel string `json:"categoryLabel"`
	LocationLabel string `json:"locationLabel"`
}

// VoteRequest is the body of a vote press. Displayed is the counter value the
// client currently shows.
type VoteRequest struct {
	Direction models.VoteDirection `json:"direction" validate:"required,oneof=up down"`
	Displayed int                  `json:"displayed"`
}

// VoteStateResponse reports the caller's current vote.
type VoteStateResponse struct {
	ResourceID string           `json:"resourceId"`
	State      models.VoteState `json:"state"`
}
