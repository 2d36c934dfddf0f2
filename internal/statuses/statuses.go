package statuses

const (
	StatusWaitOpponent = "wait_opponent"
	StatusInProgress   = "in_progress"
	StatusArchived     = "archived"
)
