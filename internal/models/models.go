// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema in internal/database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an employee's role string as stored and sent on the wire.
type Role string

const (
	RoleEmployee   Role = "Employee"
	RoleSuperAdmin Role = "Super Admin"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleSuperAdmin
}

// ReportStatus is the three-value report status.
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusApproved ReportStatus = "approved"
	StatusRejected ReportStatus = "rejected"
)

// Valid reports whether s belongs to the closed status set.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Location is the district / block / locality hierarchy.
type Location struct {
	District string `json:"district" validate:"required"`
	Block    string `json:"block" validate:"required"`
	Locality string `json:"locality" validate:"required"`
}

// LedgerEntry is one row of a citizen's submission history. The same list
// feeds the daily submission limit.
type LedgerEntry struct {
	ReportID    uuid.UUID `json:"reportId" db:"report_id"`
	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
}

// Citizen is an end-user account.
type Citizen struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Email        string        `json:"email" db:"email"`
	Name         string        `json:"name" db:"name"`
	PasswordHash string        `json:"-" db:"password_hash"`
	Verified     bool          `json:"isVerified" db:"is_verified"`
	OTPHash      *string       `json:"-" db:"otp_hash"`
	OTPExpiresAt *time.Time    `json:"-" db:"otp_expires_at"`
	Reports      []LedgerEntry `json:"reports"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// SubmissionsSince counts ledger entries submitted at or after since.
func (c *Citizen) SubmissionsSince(since time.Time) int {
	n := 0
	for _, e := range c.Reports {
		if !e.SubmittedAt.Before(since) {
			n++
		}
	}
	return n
}

// Employee is a municipal staff account. District is empty for Super Admins.
type Employee struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	District     string    `json:"district,omitempty" db:"district"`
	Active       bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Report is a citizen's photo report of a civic issue.
type Report struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	SubmittedBy uuid.UUID    `json:"submittedBy" db:"submitted_by"`
	Title       string       `json:"title" db:"title"`
	Content     string       `json:"content" db:"content"`
	PhotoURL    string       `json:"photoUrl" db:"photo_url"`
	Location    Location     `json:"location"`
	Status      ReportStatus `json:"status" db:"status"`
	Upvotes     []uuid.UUID  `json:"upvotes" db:"upvotes"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// HasUpvote reports whether citizenID is in the upvote set.
func (r *Report) HasUpvote(citizenID uuid.UUID) bool {
	for _, id := range r.Upvotes {
		if id == citizenID {
			return true
		}
	}
	return false
}

// Submitter is the public projection of a report's author.
type Submitter struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// ReportView is a report enriched with its submitter.
type ReportView struct {
	Report
	Submitter   Submitter `json:"submitter"`
	UpvoteCount int       `json:"upvoteCount"`
}

// Authority is a contact for a specific location triple.
type Authority struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Location      Location  `json:"location"`
	Email         string    `json:"email" db:"email"`
	AuthorityName string    `json:"authorityName,omitempty" db:"authority_name"`
	ContactNumber string    `json:"contactNumber,omitempty" db:"contact_number"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// ActivityLog records an employee action for accountability tracking.
type ActivityLog struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	ReportID          *uuid.UUID `json:"reportId,omitempty" db:"report_id"`
	EmployeeID        uuid.UUID  `json:"employeeId" db:"employee_id"`
	ActivityType      string     `json:"activityType" db:"activity_type"`
	ActionDescription string     `json:"actionDescription" db:"action_description"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}

// Activity types written to the log.
const (
	ActivityStatusUpdate     = "status_update"
	ActivityEmployeeCreated  = "employee_created"
	ActivityEmployeeStatus   = "employee_status"
	ActivityAuthorityCreated = "authority_created"
	ActivityAuthorityDeleted = "authority_deleted"
)

// AreaCount is one analytics bucket.
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

// ReportFilter is an equality predicate over reports. Zero fields match
// everything; Limit <= 0 means unbounded.
type ReportFilter struct {
	District    string
	SubmittedBy uuid.UUID
	Limit       int
}
