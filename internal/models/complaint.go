package models

import (
	"fmt"
	"time"
)

// ComplaintStatus is the closed set of complaint states.
type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "Open"
	ComplaintInProgress ComplaintStatus = "InProgress"
	ComplaintResolved   ComplaintStatus = "Resolved"
	ComplaintClosed     ComplaintStatus = "Closed"
)

// ParseComplaintStatus validates a raw complaint status string.
func ParseComplaintStatus(s string) (ComplaintStatus, error) {
	switch ComplaintStatus(s) {
	case ComplaintOpen, ComplaintInProgress, ComplaintResolved, ComplaintClosed:
		return ComplaintStatus(s), nil
	}
	return "", fmt.Errorf("unknown complaint status %q", s)
}

// Priority ranks a complaint for the admin queue.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority validates a raw priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Complaint is a student-filed issue tracked through the admin console.
type Complaint struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"studentId"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Status      ComplaintStatus `json:"status"`
	Priority    Priority        `json:"priority"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
