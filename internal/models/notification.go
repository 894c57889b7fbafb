package models

// UploadNotice is the payload forwarded to the moderator webhook.
type UploadNotice struct {
	FileName      string `json:"fileName"`
	Subject       string `json:"subject"`
	Branch        string `json:"branch"`
	UploaderAlias string `json:"uploaderAlias"`
}

// NotifyResult mirrors the flat body of the notify endpoint.
type NotifyResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}
