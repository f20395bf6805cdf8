package models

import "time"

// SearchActionsRequest filters the proxy action listing.
type SearchActionsRequest struct {
	Status      string `json:"status,omitempty"`
	ActionType  string `json:"actionType,omitempty"`
	RequestedBy string `json:"requestedBy,omitempty"`
	IsTemplate  *bool  `json:"isTemplate,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

type CreateActionRequest struct {
	ActionType        string                 `json:"actionType"`
	TargetUser        string                 `json:"targetUser,omitempty"`
	Priority          string                 `json:"priority,omitempty"`
	Payload           map[string]interface{} `json:"payload"`
	RequiredApprovals int                    `json:"requiredApprovals"`
	ExpiresAt         *time.Time             `json:"expiresAt,omitempty"`
	WorkflowSteps     []string               `json:"workflowSteps,omitempty"`
	ParentAction      string                 `json:"parentAction,omitempty"`
	Dependencies      []ActionDependency     `json:"dependencies,omitempty"`
	IsTemplate        bool                   `json:"isTemplate,omitempty"`
	TemplateName      string                 `json:"templateName,omitempty"`
	TemplateDesc      string                 `json:"templateDescription,omitempty"`
	TemplateCategory  string                 `json:"templateCategory,omitempty"`
}

type ActionDependency struct {
	ActionID string `json:"actionId"`
	Kind     string `json:"kind"`
}

type VoteRequest struct {
	Comment    string `json:"comment,omitempty"`
	Conditions string `json:"conditions,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type ExecuteRequest struct {
	Notes  string                 `json:"notes,omitempty"`
	Result map[string]interface{} `json:"result,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type ExtendExpiryRequest struct {
	Days int `json:"days"`
}

type InstantiateTemplateRequest struct {
	Overrides map[string]interface{} `json:"overrides,omitempty"`
}

// ApiApproval is one ledger entry as exposed to clients.
type ApiApproval struct {
	Approver   string    `json:"approver"`
	Timestamp  time.Time `json:"timestamp"`
	Comment    string    `json:"comment,omitempty"`
	Conditions string    `json:"conditions,omitempty"`
}

type ApiWorkflowStep struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CompletedBy string     `json:"completedBy,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type ApiAuditEntry struct {
	Action      string     `json:"action"`
	PerformedBy string     `json:"performedBy,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Details     string     `json:"details,omitempty"`
	OldValue    string     `json:"oldValue,omitempty"`
	NewValue    string     `json:"newValue,omitempty"`
}

type ApiTemplateData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	UsageCount  int    `json:"usageCount"`
}

// ApiProxyAction is the client-facing representation of a proxy action.
// Derived fields are computed at serialization time; the internal
// version token is never exposed.
type ApiProxyAction struct {
	ID                string                 `json:"id"`
	ActionType        string                 `json:"actionType"`
	RequestedBy       string                 `json:"requestedBy"`
	TargetUser        string                 `json:"targetUser,omitempty"`
	Priority          string                 `json:"priority"`
	Status            string                 `json:"status"`
	Payload           map[string]interface{} `json:"payload"`
	RequiredApprovals int                    `json:"requiredApprovals"`
	CurrentApprovals  int                    `json:"currentApprovals"`
	Approvals         []ApiApproval          `json:"approvals"`
	ApprovedBy        string                 `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time             `json:"approvedAt,omitempty"`
	RejectedBy        string                 `json:"rejectedBy,omitempty"`
	RejectedAt        *time.Time             `json:"rejectedAt,omitempty"`
	RejectionReason   string                 `json:"rejectionReason,omitempty"`
	ExecutedBy        string                 `json:"executedBy,omitempty"`
	ExecutedAt        *time.Time             `json:"executedAt,omitempty"`
	ExecutionNotes    string                 `json:"executionNotes,omitempty"`
	ExecutionResult   map[string]interface{} `json:"executionResult,omitempty"`
	ActualDuration    int                    `json:"actualDurationMinutes,omitempty"`
	CancelledBy       string                 `json:"cancelledBy,omitempty"`
	CancelledAt       *time.Time             `json:"cancelledAt,omitempty"`
	CancelReason      string                 `json:"cancelReason,omitempty"`
	ExpiresAt         *time.Time             `json:"expiresAt,omitempty"`
	WorkflowSteps     []ApiWorkflowStep      `json:"workflowSteps,omitempty"`
	AuditTrail        []ApiAuditEntry        `json:"auditTrail"`
	ParentAction      string                 `json:"parentAction,omitempty"`
	ChildActions      []string               `json:"childActions,omitempty"`
	Dependencies      []ActionDependency     `json:"dependencies,omitempty"`
	IsTemplate        bool                   `json:"isTemplate"`
	TemplateData      *ApiTemplateData       `json:"templateData,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
	IsExpired         bool                   `json:"isExpired"`
	IsUrgent          bool                   `json:"isUrgent"`
	TimeRemainingDays *int                   `json:"timeRemainingDays"`
	WorkflowProgress  float64                `json:"workflowProgress"`
}
