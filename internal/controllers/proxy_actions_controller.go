package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/engine"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/util"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

// ProxyActionsController holds dependencies for the proxy action HTTP
// endpoints. It is a thin layer: all transition logic lives in the
// engine.
type ProxyActionsController struct {
	AuthController
	Engine   *engine.ProxyEngine
	LoanRepo engine.LoanRepo
}

func NewProxyActionsController(pe *engine.ProxyEngine, memberRepo engine.MemberRepo, loanRepo engine.LoanRepo, clock core.Clock) *ProxyActionsController {
	return &ProxyActionsController{
		Engine:   pe,
		LoanRepo: loanRepo,
		AuthController: AuthController{
			MemberRepo: memberRepo,
			Clock:      clock,
		},
	}
}

func (c *ProxyActionsController) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateActionRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	action := &domain.ProxyAction{
		ActionType:        domain.ActionType(req.ActionType),
		RequestedBy:       actor,
		Priority:          domain.ActionPriority(req.Priority),
		Payload:           req.Payload,
		RequiredApprovals: req.RequiredApprovals,
		ExpiresAt:         req.ExpiresAt,
		IsTemplate:        req.IsTemplate,
	}
	if req.TargetUser != "" {
		id, err := primitive.ObjectIDFromHex(req.TargetUser)
		if err != nil {
			http.Error(w, "targetUser is not a valid id", http.StatusBadRequest)
			return
		}
		action.TargetUser = &id
	}
	if req.ParentAction != "" {
		id, err := primitive.ObjectIDFromHex(req.ParentAction)
		if err != nil {
			http.Error(w, "parentAction is not a valid id", http.StatusBadRequest)
			return
		}
		action.ParentAction = &id
	}
	for _, d := range req.Dependencies {
		id, err := primitive.ObjectIDFromHex(d.ActionID)
		if err != nil {
			http.Error(w, "dependency actionId is not a valid id", http.StatusBadRequest)
			return
		}
		action.Dependencies = append(action.Dependencies, domain.Dependency{
			ActionID: id,
			Kind:     domain.DependencyKind(d.Kind),
		})
	}
	for _, name := range req.WorkflowSteps {
		action.WorkflowSteps = append(action.WorkflowSteps, domain.WorkflowStep{
			Name:   name,
			Status: domain.StepPending,
		})
	}
	if req.IsTemplate {
		action.TemplateData = &domain.TemplateData{
			Name:        req.TemplateName,
			Description: req.TemplateDesc,
			Category:    req.TemplateCategory,
		}
	}

	id, err := c.Engine.Submit(r.Context(), action)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

func (c *ProxyActionsController) handleGetAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	action, err := c.Engine.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleSearchActions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.SearchActionsRequest{
		Status:      q.Get("status"),
		ActionType:  q.Get("actionType"),
		RequestedBy: q.Get("requestedBy"),
	}
	if v := q.Get("isTemplate"); v != "" {
		b := v == "true"
		req.IsTemplate = &b
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	actions, err := c.Engine.Search(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	result := make([]models.ApiProxyAction, 0, len(actions))
	for i := range actions {
		result = append(result, c.mapActionToApi(&actions[i]))
	}
	util.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *ProxyActionsController) handleRecordApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.VoteRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.RecordApproval(r.Context(), id, actor, req.Comment, req.Conditions)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.VoteRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.Approve(r.Context(), id, actor, req.Comment, req.Conditions)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.RejectRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.Reject(r.Context(), id, actor, req.Reason)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleExecute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.ExecuteRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.Execute(r.Context(), id, actor, req.Notes, req.Result)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	c.applyExecutionSideEffects(r.Context(), action)
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

// applyExecutionSideEffects reflects an executed action onto the thin
// records it acts on. Loan approvals flip the referenced loan's status;
// a failure here is logged, the execution itself already committed.
func (c *ProxyActionsController) applyExecutionSideEffects(ctx context.Context, a *domain.ProxyAction) {
	if c.LoanRepo == nil || a.ActionType != domain.ActionLoanApproval {
		return
	}
	raw, ok := a.Payload["loanId"].(string)
	if !ok {
		return
	}
	loanID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		slog.Warn("Executed loan approval carries an invalid loanId", "action_id", a.ID.Hex(), "loan_id", raw)
		return
	}
	if err := c.LoanRepo.UpdateStatus(ctx, loanID, domain.LoanApproved, c.Clock.Now()); err != nil {
		slog.Error("Failed to update loan after execution", "action_id", a.ID.Hex(), "loan_id", raw, "error", err)
	}
}

func (c *ProxyActionsController) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.CancelRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.Cancel(r.Context(), id, actor, req.Reason)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleExtendExpiry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.ExtendExpiryRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.ExtendExpiry(r.Context(), id, actor, req.Days)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleInstantiateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := MemberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	req, err := util.DecodeJSONBody[models.InstantiateTemplateRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	action, err := c.Engine.CreateFromTemplate(r.Context(), id, actor, req.Overrides)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, c.mapActionToApi(action))
}

func (c *ProxyActionsController) handleSweep(w http.ResponseWriter, r *http.Request) {
	count, err := c.Engine.SweepExpired(r.Context())
	if err != nil {
		slog.Error("Manual sweep failed", "expired", count, "error", err)
		http.Error(w, "sweep failed", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, map[string]int{"expired": count})
}

func pathObjectID(w http.ResponseWriter, r *http.Request, key string) (primitive.ObjectID, bool) {
	raw := r.PathValue(key)
	if raw == "" {
		http.Error(w, key+" is required", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		http.Error(w, key+" is not a valid id", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrTemplateNotFound), errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateApproval),
		errors.Is(err, domain.ErrCyclicDependency),
		errors.Is(err, domain.ErrDependencyTooDeep),
		errors.Is(err, domain.ErrConcurrentModification):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("Proxy action operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// mapActionToApi builds the client-facing representation: derived
// fields computed against the clock, the version token left out.
func (c *ProxyActionsController) mapActionToApi(a *domain.ProxyAction) models.ApiProxyAction {
	now := c.Clock.Now()

	api := models.ApiProxyAction{
		ID:                a.ID.Hex(),
		ActionType:        string(a.ActionType),
		RequestedBy:       a.RequestedBy.Hex(),
		Priority:          string(a.Priority),
		Status:            string(a.Status),
		Payload:           a.Payload,
		RequiredApprovals: a.RequiredApprovals,
		CurrentApprovals:  a.CurrentApprovals(),
		Approvals:         make([]models.ApiApproval, 0, len(a.Approvals)),
		ApprovedAt:        a.ApprovedAt,
		RejectedAt:        a.RejectedAt,
		RejectionReason:   a.RejectionReason,
		ExecutedAt:        a.ExecutedAt,
		CancelledAt:       a.CancelledAt,
		CancelReason:      a.CancelReason,
		ExpiresAt:         a.ExpiresAt,
		AuditTrail:        make([]models.ApiAuditEntry, 0, len(a.AuditTrail)),
		IsTemplate:        a.IsTemplate,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		IsExpired:         a.IsExpired(now),
		IsUrgent:          a.IsUrgent(),
		TimeRemainingDays: a.TimeRemainingDays(now),
		WorkflowProgress:  a.WorkflowProgress(),
	}
	if a.TargetUser != nil {
		api.TargetUser = a.TargetUser.Hex()
	}
	if a.ApprovedBy != nil {
		api.ApprovedBy = a.ApprovedBy.Hex()
	}
	if a.RejectedBy != nil {
		api.RejectedBy = a.RejectedBy.Hex()
	}
	if a.ExecutedBy != nil {
		api.ExecutedBy = a.ExecutedBy.Hex()
	}
	if a.CancelledBy != nil {
		api.CancelledBy = a.CancelledBy.Hex()
	}
	if a.ParentAction != nil {
		api.ParentAction = a.ParentAction.Hex()
	}
	if a.ExecutionDetails != nil {
		api.ExecutionNotes = a.ExecutionDetails.Notes
		api.ExecutionResult = a.ExecutionDetails.Result
		api.ActualDuration = a.ExecutionDetails.ActualDurationMinutes
	}
	for _, v := range a.Approvals {
		api.Approvals = append(api.Approvals, models.ApiApproval{
			Approver:   v.Approver.Hex(),
			Timestamp:  v.Timestamp,
			Comment:    v.Comment,
			Conditions: v.Conditions,
		})
	}
	for _, s := range a.WorkflowSteps {
		step := models.ApiWorkflowStep{
			Name:        s.Name,
			Status:      string(s.Status),
			CompletedAt: s.CompletedAt,
			Notes:       s.Notes,
		}
		if s.CompletedBy != nil {
			step.CompletedBy = s.CompletedBy.Hex()
		}
		api.WorkflowSteps = append(api.WorkflowSteps, step)
	}
	for _, e := range a.AuditTrail {
		entry := models.ApiAuditEntry{
			Action:    e.Action,
			Timestamp: e.Timestamp,
			Details:   e.Details,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
		}
		if e.PerformedBy != nil {
			entry.PerformedBy = e.PerformedBy.Hex()
		}
		api.AuditTrail = append(api.AuditTrail, entry)
	}
	for _, child := range a.ChildActions {
		api.ChildActions = append(api.ChildActions, child.Hex())
	}
	for _, d := range a.Dependencies {
		api.Dependencies = append(api.Dependencies, models.ActionDependency{
			ActionID: d.ActionID.Hex(),
			Kind:     string(d.Kind),
		})
	}
	if a.TemplateData != nil {
		api.TemplateData = &models.ApiTemplateData{
			Name:        a.TemplateData.Name,
			Description: a.TemplateData.Description,
			Category:    a.TemplateData.Category,
			UsageCount:  a.TemplateData.UsageCount,
		}
	}
	return api
}
