package models

import (
	"time"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// Valid reports whether s is one of the recognized status values.
func (s IssueStatus) Valid() bool {
	switch s {
	case Pending, InProgress, Resolved:
		return true
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	Low    IssuePriority = "Low"
	Medium IssuePriority = "Medium"
	High   IssuePriority = "High"
)

// Valid reports whether p is one of the recognized priority values.
func (p IssuePriority) Valid() bool {
	switch p {
	case Low, Medium, High:
		return true
	}
	return false
}

// Location is an optional geo reference attached to an issue.
type Location struct {
	Lat     *float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng     *float64 `bson:"lng,omitempty" json:"lng,omitempty"`
	Address string   `bson:"address,omitempty" json:"address,omitempty"`
}

// Issue represents a civic issue reported by a villager.
// IssueID is assigned once at creation and never changes; status is the
// only field mutated afterwards, and every mutation refreshes UpdatedAt.
type Issue struct {
	IssueID     string        `bson:"issueId" json:"issueId"`
	Name        string        `bson:"name" json:"name"`
	Village     string        `bson:"village" json:"village"`
	Category    string        `bson:"category" json:"category"`
	Description string        `bson:"description" json:"description"`
	Location    *Location     `bson:"location,omitempty" json:"location,omitempty"`
	PhotoURL    *string       `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Status      IssueStatus   `bson:"status" json:"status"`
	Priority    IssuePriority `bson:"priority" json:"priority"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// StatusUpdate is the payload pushed to dashboard clients when an issue
// changes status. Listeners reconcile by id against their local view, so
// the full record is not sent.
type StatusUpdate struct {
	IssueID string      `json:"issueId"`
	Status  IssueStatus `json:"status"`
}
