package domain

import (
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionStatus is the lifecycle status of a proxy action.
type ActionStatus string

const (
	StatusPending   ActionStatus = "pending"
	StatusApproved  ActionStatus = "approved"
	StatusRejected  ActionStatus = "rejected"
	StatusExecuted  ActionStatus = "executed"
	StatusCancelled ActionStatus = "cancelled"
	StatusExpired   ActionStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusExecuted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type ActionType string

const (
	ActionPayment            ActionType = "payment"
	ActionMemberRegistration ActionType = "member_registration"
	ActionLoanApproval       ActionType = "loan_approval"
	ActionMeetingScheduling  ActionType = "meeting_scheduling"
	ActionTransactionRecord  ActionType = "transaction_record"
	ActionUserManagement     ActionType = "user_management"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionPayment, ActionMemberRegistration, ActionLoanApproval,
		ActionMeetingScheduling, ActionTransactionRecord, ActionUserManagement:
		return true
	}
	return false
}

type ActionPriority string

const (
	PriorityLow    ActionPriority = "low"
	PriorityNormal ActionPriority = "normal"
	PriorityHigh   ActionPriority = "high"
	PriorityUrgent ActionPriority = "urgent"
)

func (p ActionPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

type DependencyKind string

const (
	DependencyPrerequisite DependencyKind = "prerequisite"
	DependencyBlocker      DependencyKind = "blocker"
	DependencyRelated      DependencyKind = "related"
)

func (k DependencyKind) Valid() bool {
	switch k {
	case DependencyPrerequisite, DependencyBlocker, DependencyRelated:
		return true
	}
	return false
}

// Approval is one vote in the approval ledger. The ledger is append-only;
// the current approval count is always derived from its length.
type Approval struct {
	Approver   primitive.ObjectID `bson:"approver"`
	Timestamp  time.Time          `bson:"timestamp"`
	Comment    string             `bson:"comment,omitempty"`
	Conditions string             `bson:"conditions,omitempty"`
}

type WorkflowStep struct {
	Name        string              `bson:"name"`
	Status      StepStatus          `bson:"status"`
	CompletedBy *primitive.ObjectID `bson:"completedBy,omitempty"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty"`
	Notes       string              `bson:"notes,omitempty"`
}

type AuditEntry struct {
	Action      string              `bson:"action"`
	PerformedBy *primitive.ObjectID `bson:"performedBy,omitempty"`
	Timestamp   time.Time           `bson:"timestamp"`
	Details     string              `bson:"details,omitempty"`
	OldValue    string              `bson:"oldValue,omitempty"`
	NewValue    string              `bson:"newValue,omitempty"`
}

type Dependency struct {
	ActionID primitive.ObjectID `bson:"actionId"`
	Kind     DependencyKind     `bson:"kind"`
}

type TemplateData struct {
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
	Category    string `bson:"category,omitempty"`
	UsageCount  int    `bson:"usageCount"`
}

type ExecutionDetails struct {
	Notes                 string                 `bson:"notes,omitempty"`
	Result                map[string]interface{} `bson:"result,omitempty"`
	ActualDurationMinutes int                    `bson:"actualDurationMinutes"`
}

// ProxyAction is a delegated action performed on behalf of a member,
// gated by a quorum of approvals. Mutations go through the engine only.
type ProxyAction struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty"`
	ActionType        ActionType          `bson:"actionType"`
	RequestedBy       primitive.ObjectID  `bson:"requestedBy"`
	TargetUser        *primitive.ObjectID `bson:"targetUser,omitempty"`
	Priority          ActionPriority      `bson:"priority"`
	Status            ActionStatus        `bson:"status"`
	Payload           map[string]interface{} `bson:"payload"`
	RequiredApprovals int                 `bson:"requiredApprovals"`
	Approvals         []Approval          `bson:"approvals"`
	ApprovedBy        *primitive.ObjectID `bson:"approvedBy,omitempty"`
	ApprovedAt        *time.Time          `bson:"approvedAt,omitempty"`
	RejectedBy        *primitive.ObjectID `bson:"rejectedBy,omitempty"`
	RejectedAt        *time.Time          `bson:"rejectedAt,omitempty"`
	RejectionReason   string              `bson:"rejectionReason,omitempty"`
	ExecutedBy        *primitive.ObjectID `bson:"executedBy,omitempty"`
	ExecutedAt        *time.Time          `bson:"executedAt,omitempty"`
	ExecutionDetails  *ExecutionDetails   `bson:"executionDetails,omitempty"`
	CancelledBy       *primitive.ObjectID `bson:"cancelledBy,omitempty"`
	CancelledAt       *time.Time          `bson:"cancelledAt,omitempty"`
	CancelReason      string              `bson:"cancelReason,omitempty"`
	ExpiresAt         *time.Time          `bson:"expiresAt,omitempty"`
	WorkflowSteps     []WorkflowStep      `bson:"workflowSteps,omitempty"`
	AuditTrail        []AuditEntry        `bson:"auditTrail"`
	ParentAction      *primitive.ObjectID `bson:"parentAction,omitempty"`
	ChildActions      []primitive.ObjectID `bson:"childActions,omitempty"`
	Dependencies      []Dependency        `bson:"dependencies,omitempty"`
	IsTemplate        bool                `bson:"isTemplate"`
	TemplateData      *TemplateData       `bson:"templateData,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt"`
	Version           int64               `bson:"version"`
}

// CurrentApprovals is derived from the ledger, never stored independently.
func (a *ProxyAction) CurrentApprovals() int {
	return len(a.Approvals)
}

func (a *ProxyAction) HasApproved(member primitive.ObjectID) bool {
	for _, v := range a.Approvals {
		if v.Approver == member {
			return true
		}
	}
	return false
}

// IsExpired is only meaningful while the action is pending; the expiry
// sweep is what turns it into the expired status.
func (a *ProxyAction) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

func (a *ProxyAction) IsUrgent() bool {
	return a.Priority == PriorityHigh || a.Priority == PriorityUrgent
}

// TimeRemainingDays returns the whole days until expiry, rounded up and
// clamped to zero, or nil when the action has no expiry.
func (a *ProxyAction) TimeRemainingDays(now time.Time) *int {
	if a.ExpiresAt == nil {
		return nil
	}
	remaining := a.ExpiresAt.Sub(now)
	days := 0
	if remaining > 0 {
		days = int(math.Ceil(remaining.Hours() / 24))
	}
	return &days
}

// WorkflowProgress returns the percentage of completed steps, 0 when the
// action has no steps. Recomputed on every read, never persisted.
func (a *ProxyAction) WorkflowProgress() float64 {
	if len(a.WorkflowSteps) == 0 {
		return 0
	}
	completed := 0
	for _, s := range a.WorkflowSteps {
		if s.Status == StepCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(a.WorkflowSteps)) * 100
}

// Validate checks the creation-time invariants of the record.
func (a *ProxyAction) Validate() error {
	if !a.ActionType.Valid() {
		return errors.New("unknown action type: " + string(a.ActionType))
	}
	if !a.Priority.Valid() {
		return errors.New("unknown priority: " + string(a.Priority))
	}
	if a.RequestedBy.IsZero() {
		return errors.New("requestedBy is required")
	}
	if a.Payload == nil {
		return errors.New("payload is required")
	}
	if a.RequiredApprovals < 1 || a.RequiredApprovals > 5 {
		return errors.New("requiredApprovals must be between 1 and 5")
	}
	for _, d := range a.Dependencies {
		if !d.Kind.Valid() {
			return errors.New("unknown dependency kind: " + string(d.Kind))
		}
	}
	if a.IsTemplate && (a.TemplateData == nil || a.TemplateData.Name == "") {
		return errors.New("templates require templateData with a name")
	}
	return nil
}
