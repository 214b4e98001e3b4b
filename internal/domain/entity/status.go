package entity

// Status represents a claim's position in the approval lifecycle
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusVerified: true,
	StatusApproved: true,
	StatusRejected: true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// IsTerminal returns true if no further transitions are permitted from the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
