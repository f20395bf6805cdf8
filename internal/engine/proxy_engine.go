package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/config"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

// ProxyEngine holds every state transition of the proxy action workflow.
// It is stateless between calls: each operation loads the current record,
// applies its guard and mutation, and writes back conditioned on the
// version read. Callers retry on ErrConcurrentModification.
type ProxyEngine struct {
	actions        ActionRepo
	events         TransitionPublisher
	clock          core.Clock
	expiryDays     int
	maxDepth       int
	sweepBatchSize int
	wakeup         chan struct{}
}

func NewProxyEngine(actions ActionRepo, events TransitionPublisher, clock core.Clock) *ProxyEngine {
	expiryDays := config.GetSystemSettingInteger(config.ENGINE_EXPIRY_DAYS)
	if expiryDays <= 0 {
		expiryDays = 7
	}
	maxDepth := config.GetSystemSettingInteger(config.ENGINE_MAX_DEPENDENCY_DEPTH)
	if maxDepth <= 0 {
		maxDepth = 64
	}
	batch := config.GetSystemSettingInteger(config.ENGINE_SWEEP_BATCH_SIZE)
	if batch <= 0 {
		batch = 100
	}
	return &ProxyEngine{
		actions:        actions,
		events:         events,
		clock:          clock,
		expiryDays:     expiryDays,
		maxDepth:       maxDepth,
		sweepBatchSize: batch,
		wakeup:         make(chan struct{}, 1),
	}
}

// Submit validates and persists a new proxy action (or template).
func (pe *ProxyEngine) Submit(ctx context.Context, a *domain.ProxyAction) (primitive.ObjectID, error) {
	now := pe.clock.Now()
	if a.Priority == "" {
		a.Priority = domain.PriorityNormal
	}
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	if a.Status != domain.StatusPending {
		return primitive.NilObjectID, fmt.Errorf("%w: new actions must start pending, got %s", domain.ErrValidation, a.Status)
	}
	if err := a.Validate(); err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Approvals = []domain.Approval{}
	a.AuditTrail = []domain.AuditEntry{}
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Version = 1
	if !a.IsTemplate && a.ExpiresAt == nil {
		exp := now.Add(time.Duration(pe.expiryDays) * 24 * time.Hour)
		a.ExpiresAt = &exp
	}
	if err := pe.checkDependencyCycles(ctx, a); err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := pe.actions.Insert(ctx, a); err != nil {
		return primitive.NilObjectID, err
	}
	if pe.events != nil {
		pe.events.PublishTransition(a, "submitted", &a.RequestedBy)
	}
	return a.ID, nil
}

// Get loads a single action by id.
func (pe *ProxyEngine) Get(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error) {
	return pe.actions.FindByID(ctx, id)
}

// RecordApproval appends one quorum vote. When the vote crosses the
// required threshold the action transitions to approved in the same
// conditioned write, and the voter who crossed the threshold becomes
// the approver of record.
func (pe *ProxyEngine) RecordApproval(ctx context.Context, id, approver primitive.ObjectID, comment, conditions string) (*domain.ProxyAction, error) {
	a, err := pe.actions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := pe.clock.Now()
	if a.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot vote on action in status %s", domain.ErrInvalidTransition, a.Status)
	}
	if a.IsExpired(now) {
		return nil, fmt.Errorf("%w: action %s has expired", domain.ErrInvalidTransition, a.ID.Hex())
	}
	if a.HasApproved(approver) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateApproval, approver.Hex())
	}
	prev := snapshotAction(a)
	readVersion := a.Version

	a.Approvals = append(a.Approvals, domain.Approval{
		Approver:   approver,
		Timestamp:  now,
		Comment:    comment,
		Conditions: conditions,
	})
	appendAudit(a, "Approval added", &approver, comment, now)

	transition := "approval_recorded"
	if len(a.Approvals) >= a.RequiredApprovals {
		last := a.Approvals[len(a.Approvals)-1]
		a.Status = domain.StatusApproved
		a.ApprovedBy = &last.Approver
		a.ApprovedAt = &now
		transition = "approved"
	}
	if err := pe.saveTransition(ctx, a, prev, readVersion, transition, &approver); err != nil {
		return nil, err
	}
	return a, nil
}

// Approve transitions a pending action directly to approved,
// bypassing the quorum count.
func (pe *ProxyEngine) Approve(ctx context.Context, id, approver primitive.ObjectID, comment, conditions string) (*domain.ProxyAction, error) {
	a, err := pe.actions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := pe.clock.Now()
	if a.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot approve action in status %s", domain.ErrInvalidTransition, a.Status)
	}
	if a.IsExpired(now) {
		return nil, fmt.Errorf("%w: action %s has expired", domain.ErrInvalidTransition, a.ID.Hex())
	}
	prev := snapshotAction(a)
	readVersion := a.Version

	a.Approvals = append(a.Approvals, domain.Approval{
		Approver:   approver,
		Timestamp:  now,
		Comment:    comment,
		Conditions: conditions,
	})
	a.Status = domain.StatusApproved
	a.ApprovedBy = &approver
	a.ApprovedAt = &now
	appendAudit(a, "Action approved", &approver, comment, now)

	if err := pe.saveTransition(ctx, a, prev, readVersion, "approved", &approver); err != nil {
		return nil, err
	}
	return a, nil
}

// Reject transitions a pending action to rejected.
func (pe *ProxyEngine) Reject(ctx context.Context, id, actor primitive.ObjectID, reason string) (*domain.ProxyAction, error) {
	a, err := pe.actions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := pe.clock.Now()
	if a.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot reject action in status %s", domain.ErrInvalidTransition, a.Status)
	}
	prev := snapshotAction(a)
	readVersion := a.Version

	a.Status = domain.StatusRejected
	a.RejectedBy = &actor
	a.RejectedAt = &now
	a.RejectionReason = reason
	appendAudit(a, "Action rejected", &actor, reason, now)

	if err := pe.saveTransition(ctx, a, prev, readVersion, "rejected", &actor); err != nil {
		return nil, err
	}
	return a, nil
}

// Execute marks an approved action as carried out and records how long
// the request took from creation to execution.
func (pe *ProxyEngine) Execute(ctx context.Context, id, actor primitive.ObjectID, notes string, result map[string]interface{}) (*domain.ProxyAction, error) {
	a, err := pe.actions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := pe.clock.Now()
	if a.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: cannot execute action in status %s", domain.ErrInvalidTransition, a.Status)
	}
	prev := snapshotAction(a)
	readVersion := a.Version

	a.Status = domain.StatusExecuted
	a.ExecutedBy = &actor
	a.ExecutedAt = &now
	a.ExecutionDetails = &domain.ExecutionDetails{
		Notes:                 notes,
		Result:                result,
		ActualDurationMinutes: int(now.Sub(a.CreatedAt).Minutes()),
	}
	appendAudit(a, "Action executed", &actor, notes, now)

	if err := pe.saveTransition(ctx, a, prev, readVersion, "executed", &actor); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel withdraws a pending or approved action.
func (pe *ProxyEngine) Cancel(ctx context.Context, id, actor primitive.ObjectID, reason string) (*domain.ProxyAction, error) {
	a, err := pe.actions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := pe.clock.Now()
	if a.Status != domain.StatusPending && a.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: cannot cancel action in status %s", domain.ErrInvalidTransition, a.Status)
	}
	prev := snapshotAction(a)
	readVersion := a.Version

	a.Status = domain.StatusCancelled
	a.CancelledBy = &actor
	a.CancelledAt = &now
	a.CancelReason = reason
	appendAudit(a, "Action cancelled", &actor, reason, now)

	if err := pe.saveTransition(ctx, a, prev, readVersion, "cancelled", &actor); err != nil {
		return nil, err
	}
	return a, nil
}

// ExtendExpiry pushes a pending action's expiry out by the given days.
func (pe *ProxyEngine) ExtendExpiry(ctx context.Context, id, actor primitive.ObjectID, days int) (*domain.ProxyAction, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: extension days must be positive, got %d", domain.ErrValidation, days)
	}
	a, err := pe.actions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := pe.clock.Now()
	if a.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot extend action in status %s", domain.ErrInvalidTransition, a.Status)
	}
	prev := snapshotAction(a)
	readVersion := a.Version

	base := now
	if a.ExpiresAt != nil {
		base = *a.ExpiresAt
	}
	extended := base.Add(time.Duration(days) * 24 * time.Hour)
	oldVal := ""
	if a.ExpiresAt != nil {
		oldVal = a.ExpiresAt.UTC().Format(time.RFC3339)
	}
	a.ExpiresAt = &extended
	a.AuditTrail = append(a.AuditTrail, domain.AuditEntry{
		Action:      "Expiry extended",
		PerformedBy: &actor,
		Timestamp:   now,
		Details:     fmt.Sprintf("extended by %d days", days),
		OldValue:    oldVal,
		NewValue:    extended.UTC().Format(time.RFC3339),
	})

	if err := pe.saveTransition(ctx, a, prev, readVersion, "expiry_extended", &actor); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateFromTemplate clones a template into a fresh pending action.
// Override keys win over the template payload. The template usage
// counter is bumped best-effort after the new action is persisted; a
// failure there is logged and never rolls back the created action.
func (pe *ProxyEngine) CreateFromTemplate(ctx context.Context, templateID, requestedBy primitive.ObjectID, overrides map[string]interface{}) (*domain.ProxyAction, error) {
	tpl, err := pe.actions.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, templateID.Hex())
		}
		return nil, err
	}
	if !tpl.IsTemplate {
		return nil, fmt.Errorf("%w: action %s is not a template", domain.ErrTemplateNotFound, templateID.Hex())
	}
	now := pe.clock.Now()

	payload := make(map[string]interface{}, len(tpl.Payload)+len(overrides))
	for k, v := range tpl.Payload {
		payload[k] = v
	}
	for k, v := range overrides {
		payload[k] = v
	}
	deps := make([]domain.Dependency, len(tpl.Dependencies))
	copy(deps, tpl.Dependencies)
	exp := now.Add(time.Duration(pe.expiryDays) * 24 * time.Hour)
	parent := templateID

	child := &domain.ProxyAction{
		ID:                primitive.NewObjectID(),
		ActionType:        tpl.ActionType,
		RequestedBy:       requestedBy,
		TargetUser:        tpl.TargetUser,
		Priority:          tpl.Priority,
		Status:            domain.StatusPending,
		Payload:           payload,
		RequiredApprovals: tpl.RequiredApprovals,
		Approvals:         []domain.Approval{},
		AuditTrail:        []domain.AuditEntry{},
		ExpiresAt:         &exp,
		ParentAction:      &parent,
		Dependencies:      deps,
		CreatedAt:         now,
		UpdatedAt:         now,
		Version:           1,
	}
	if err := pe.checkDependencyCycles(ctx, child); err != nil {
		return nil, err
	}
	if _, err := pe.actions.Insert(ctx, child); err != nil {
		return nil, err
	}
	if err := pe.actions.RecordTemplateUse(ctx, templateID, child.ID); err != nil {
		slog.Warn("Failed to record template use, usage count is stale",
			"template_id", templateID.Hex(), "action_id", child.ID.Hex(), "error", err)
	}
	if pe.events != nil {
		pe.events.PublishTransition(child, "created_from_template", &requestedBy)
	}
	return child, nil
}

// Search lists actions matching the request filters.
func (pe *ProxyEngine) Search(ctx context.Context, req models.SearchActionsRequest) ([]domain.ProxyAction, error) {
	return pe.actions.Search(ctx, req)
}

// SweepExpired transitions every past-due pending action to expired.
// Idempotent: already-expired records no longer match the pending
// filter and a second run is a no-op. A version conflict on one record
// means another writer advanced it; the record is skipped, not failed.
func (pe *ProxyEngine) SweepExpired(ctx context.Context) (int, error) {
	now := pe.clock.Now()
	batch, err := pe.actions.FindPendingExpired(ctx, now, pe.sweepBatchSize)
	if err != nil {
		return 0, err
	}
	count := 0
	var errs *multierror.Error
	for i := range batch {
		a := &batch[i]
		if a.Status != domain.StatusPending || !a.IsExpired(now) {
			continue
		}
		prev := snapshotAction(a)
		readVersion := a.Version

		a.Status = domain.StatusExpired
		// no actor on automatic expiry
		appendAudit(a, "Action expired", nil, "", now)

		if err := pe.saveTransition(ctx, a, prev, readVersion, "expired", nil); err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) {
				slog.Debug("Sweep lost race on action, skipping", "action_id", a.ID.Hex())
				continue
			}
			errs = multierror.Append(errs, err)
			continue
		}
		count++
	}
	return count, errs.ErrorOrNil()
}

// saveTransition appends the consolidated changed-fields audit entry,
// touches the updated timestamp and writes the record back under the
// version read at load time.
func (pe *ProxyEngine) saveTransition(ctx context.Context, a *domain.ProxyAction, prev transitionSnapshot, readVersion int64, transition string, actor *primitive.ObjectID) error {
	now := pe.clock.Now()
	appendChangedFieldsAudit(a, prev, now)
	a.UpdatedAt = now

	ok, err := pe.actions.ConditionalSave(ctx, a, readVersion)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: action %s changed since read", domain.ErrConcurrentModification, a.ID.Hex())
	}
	if pe.events != nil {
		pe.events.PublishTransition(a, transition, actor)
	}
	return nil
}

// checkDependencyCycles walks parent and dependency references of the
// record being persisted and rejects the write when the record would be
// reachable from itself, or when the chain exceeds the depth bound.
func (pe *ProxyEngine) checkDependencyCycles(ctx context.Context, a *domain.ProxyAction) error {
	if len(a.Dependencies) == 0 && a.ParentAction == nil {
		return nil
	}
	visited := make(map[primitive.ObjectID]bool)
	var walk func(id primitive.ObjectID, depth int) error
	walk = func(id primitive.ObjectID, depth int) error {
		if id == a.ID {
			return fmt.Errorf("%w: action %s is reachable from itself", domain.ErrCyclicDependency, a.ID.Hex())
		}
		if depth > pe.maxDepth {
			return fmt.Errorf("%w: chain exceeds %d references", domain.ErrDependencyTooDeep, pe.maxDepth)
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		ref, err := pe.actions.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// dangling reference, nothing further to walk
				return nil
			}
			return err
		}
		if ref.ParentAction != nil {
			if err := walk(*ref.ParentAction, depth+1); err != nil {
				return err
			}
		}
		for _, d := range ref.Dependencies {
			if err := walk(d.ActionID, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if a.ParentAction != nil {
		if err := walk(*a.ParentAction, 1); err != nil {
			return err
		}
	}
	for _, d := range a.Dependencies {
		if err := walk(d.ActionID, 1); err != nil {
			return err
		}
	}
	return nil
}

func (pe *ProxyEngine) Wakeup() {
	select {
	case pe.wakeup <- struct{}{}:
	default:
	}
}

func appendAudit(a *domain.ProxyAction, action string, performedBy *primitive.ObjectID, details string, now time.Time) {
	a.AuditTrail = append(a.AuditTrail, domain.AuditEntry{
		Action:      action,
		PerformedBy: performedBy,
		Timestamp:   now,
		Details:     details,
	})
}

// transitionSnapshot captures the fields watched by the generic audit
// rule as they were when the record was loaded.
type transitionSnapshot struct {
	status    domain.ActionStatus
	priority  domain.ActionPriority
	approvals int
	execution string
}

func snapshotAction(a *domain.ProxyAction) transitionSnapshot {
	return transitionSnapshot{
		status:    a.Status,
		priority:  a.Priority,
		approvals: len(a.Approvals),
		execution: executionSummary(a),
	}
}

func executionSummary(a *domain.ProxyAction) string {
	if a.ExecutionDetails == nil {
		return ""
	}
	return fmt.Sprintf("notes=%s duration=%dm", a.ExecutionDetails.Notes, a.ExecutionDetails.ActualDurationMinutes)
}

func appendChangedFieldsAudit(a *domain.ProxyAction, prev transitionSnapshot, now time.Time) {
	cur := snapshotAction(a)
	var changed, oldVals, newVals []string
	if cur.status != prev.status {
		changed = append(changed, "status")
		oldVals = append(oldVals, "status="+string(prev.status))
		newVals = append(newVals, "status="+string(cur.status))
	}
	if cur.priority != prev.priority {
		changed = append(changed, "priority")
		oldVals = append(oldVals, "priority="+string(prev.priority))
		newVals = append(newVals, "priority="+string(cur.priority))
	}
	if cur.approvals != prev.approvals {
		changed = append(changed, "approvals")
		oldVals = append(oldVals, fmt.Sprintf("approvals=%d", prev.approvals))
		newVals = append(newVals, fmt.Sprintf("approvals=%d", cur.approvals))
	}
	if cur.execution != prev.execution {
		changed = append(changed, "executionDetails")
		oldVals = append(oldVals, "executionDetails="+prev.execution)
		newVals = append(newVals, "executionDetails="+cur.execution)
	}
	if len(changed) == 0 {
		return
	}
	a.AuditTrail = append(a.AuditTrail, domain.AuditEntry{
		Action:    "Fields updated",
		Timestamp: now,
		Details:   "changed: " + strings.Join(changed, ", "),
		OldValue:  strings.Join(oldVals, " "),
		NewValue:  strings.Join(newVals, " "),
	})
}
