package models

// VoteState is one voter's standing on one resource.
type VoteState string

const (
	VoteNone VoteState = "none"
	VoteUp   VoteState = "up"
	VoteDown VoteState = "down"
)

// VoteDirection is the button a voter pressed.
type VoteDirection string

const (
	DirectionUp   VoteDirection = "up"
	DirectionDown VoteDirection = "down"
)

// VoteOutcome reports the result of a vote, including the rollback case.
type VoteOutcome struct {
	ResourceID string    `json:"resourceId"`
	State      VoteState `json:"state"`
	Delta      int       `json:"delta"`
	Displayed  int       `json:"displayed"`
	Persisted  bool      `json:"persisted"`
}
