package models

import "time"

// ResourceStatus is the moderation state of an uploaded file.
type ResourceStatus string

const (
	ResourceStatusPending  ResourceStatus = "pending"
	ResourceStatusApproved ResourceStatus = "approved"
)

// Valid reports whether the status is one of the two moderation states.
func (s ResourceStatus) Valid() bool {
	return s == ResourceStatusPending || s == ResourceStatusApproved
}

// DefaultAlias is used when an uploader or author leaves the alias blank.
const DefaultAlias = "Anonymous"

// Resource is the metadata record of an uploaded study file.
type Resource struct {
	ID            string         `db:"id" json:"id"`
	FileName      string         `db:"file_name" json:"fileName"`
	FileURL       string         `db:"file_url" json:"fileUrl"`
	FilePath      string         `db:"file_path" json:"filePath"`
	Branch        string         `db:"branch" json:"branch"`
	Semester      *int           `db:"semester" json:"semester,omitempty"`
	Stream        *string        `db:"stream" json:"stream,omitempty"`
	Cycle         *string        `db:"cycle" json:"cycle,omitempty"`
	Category      string         `db:"category" json:"category"`
	Subject       string         `db:"subject" json:"subject"`
	UploaderAlias string         `db:"uploader_alias" json:"uploaderAlias"`
	Status        ResourceStatus `db:"status" json:"status"`
	Upvotes       int            `db:"upvotes" json:"upvotes"`
	MimeType      string         `db:"mime_type" json:"mimeType"`
	SizeBytes     int64          `db:"size_bytes" json:"sizeBytes"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// ResourceFilter narrows listing queries. Zero values are ignored.
type ResourceFilter struct {
	Status   ResourceStatus
	Branch   string
	Semester *int
	Stream   string
	Cycle    string
	Category string
	Limit    int
}
