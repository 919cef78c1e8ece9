package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStage is the lifecycle position of a supply request
type RequestStage string

const (
	StageDraft      RequestStage = "DRAFT"
	StageSubmitted  RequestStage = "SUBMITTED"
	StageApproved   RequestStage = "APPROVED"
	StageManaged    RequestStage = "MANAGED"
	StageDispatched RequestStage = "DISPATCHED"
)

// StageRejected only appears in transition records; rejected requests are deleted.
const StageRejected RequestStage = "REJECTED"

var AllStages = []RequestStage{StageDraft, StageSubmitted, StageApproved, StageManaged, StageDispatched}

var nextStage = map[RequestStage]RequestStage{
	StageDraft:     StageSubmitted,
	StageSubmitted: StageApproved,
	StageApproved:  StageManaged,
	StageManaged:   StageDispatched,
}

func (s RequestStage) Valid() bool {
	for _, st := range AllStages {
		if st == s {
			return true
		}
	}
	return false
}

// Next returns the stage reached by the forward transition, if any
func (s RequestStage) Next() (RequestStage, bool) {
	n, ok := nextStage[s]
	return n, ok
}

// SupplyRequest is a single record that moves through the stages in place
type SupplyRequest struct {
	BaseModel
	RequestNumber  string       `gorm:"type:varchar(30);uniqueIndex;not null" json:"request_number"`
	Date           time.Time    `gorm:"not null;index" json:"date"`
	DepartmentID   uint         `gorm:"not null;index" json:"department_id"`
	Department     string       `gorm:"type:varchar(150)" json:"department"`
	Stage          RequestStage `gorm:"type:varchar(20);not null;index" json:"stage"`
	RequestedItems LineItems    `gorm:"type:text" json:"requested_items"`
	LineItems      LineItems    `gorm:"type:text;not null" json:"line_items"`
	Note           string       `gorm:"type:text" json:"note"`

	SubmittedByID *uuid.UUID `gorm:"type:char(36)" json:"submitted_by_id,omitempty"`
	SubmittedBy   string     `gorm:"type:varchar(255)" json:"submitted_by,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`

	AuthorizedByID *uuid.UUID `gorm:"type:char(36)" json:"authorized_by_id,omitempty"`
	AuthorizedBy   string     `gorm:"type:varchar(255)" json:"authorized_by,omitempty"`
	AuthorizedAt   *time.Time `json:"authorized_at,omitempty"`

	ManagedByID *uuid.UUID `gorm:"type:char(36)" json:"managed_by_id,omitempty"`
	ManagedBy   string     `gorm:"type:varchar(255)" json:"managed_by,omitempty"`
	ManagedAt   *time.Time `json:"managed_at,omitempty"`

	DispatchedByUserID *uuid.UUID `gorm:"type:char(36)" json:"dispatched_by_user_id,omitempty"`
	DispatchedBy       string     `gorm:"type:varchar(255)" json:"dispatched_by,omitempty"`
	DispatchedAt       *time.Time `json:"dispatched_at,omitempty"`
}

// Submitted is true once the request has left DRAFT
func (r *SupplyRequest) Submitted() bool {
	return r.Stage != StageDraft
}

// RequestTransition is an append-only audit row for each lifecycle move
type RequestTransition struct {
	ID            uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	RequestID     uuid.UUID    `gorm:"type:char(36);not null;index" json:"request_id"`
	RequestNumber string       `gorm:"type:varchar(30);not null" json:"request_number"`
	FromStage     RequestStage `gorm:"type:varchar(20);not null" json:"from_stage"`
	ToStage       RequestStage `gorm:"type:varchar(20);not null" json:"to_stage"`
	ActorUserID   *uuid.UUID   `gorm:"type:char(36)" json:"actor_user_id,omitempty"`
	Actor         string       `gorm:"type:varchar(255)" json:"actor"`
	Note          string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
}

func (t *RequestTransition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
