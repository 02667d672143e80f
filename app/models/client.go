package models

// Status marks clients and categories as usable or retired.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }

type Client struct {
	ID     string `json:"id"     csv:"id"`
	Name   string `json:"name"   csv:"name"`
	Email  string `json:"email"  csv:"email"`
	Phone  string `json:"phone"  csv:"phone"`
	City   string `json:"city"   csv:"city"`
	Status Status `json:"status" csv:"status"`
}
