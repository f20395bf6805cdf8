package controllers

import (
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/engine"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/util"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

type ContributionsController struct {
	AuthController
	ContributionRepo engine.ContributionRepo
}

func NewContributionsController(contributionRepo engine.ContributionRepo, memberRepo engine.MemberRepo, clock core.Clock) *ContributionsController {
	return &ContributionsController{
		ContributionRepo: contributionRepo,
		AuthController:   AuthController{MemberRepo: memberRepo, Clock: clock},
	}
}

func (c *ContributionsController) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateContributionRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		http.Error(w, "memberId is not a valid id", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}
	if req.Month == "" {
		http.Error(w, "month is required", http.StatusBadRequest)
		return
	}

	contribution := &domain.Contribution{
		MemberID:   memberID,
		Amount:     req.Amount,
		Month:      req.Month,
		Note:       req.Note,
		RecordedAt: c.Clock.Now(),
	}
	id, err := c.ContributionRepo.Save(r.Context(), contribution)
	if err != nil {
		slog.Error("Failed to save contribution", "error", err)
		http.Error(w, "failed to record contribution", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

func (c *ContributionsController) handleListContributions(w http.ResponseWriter, r *http.Request) {
	memberHex := r.URL.Query().Get("memberId")
	if memberHex == "" {
		http.Error(w, "memberId is required", http.StatusBadRequest)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(memberHex)
	if err != nil {
		http.Error(w, "memberId is not a valid id", http.StatusBadRequest)
		return
	}
	contributions, err := c.ContributionRepo.FindByMember(r.Context(), memberID)
	if err != nil {
		slog.Error("Failed to list contributions", "member_id", memberHex, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	result := make([]models.ApiContribution, 0, len(contributions))
	for _, contribution := range contributions {
		result = append(result, models.ApiContribution{
			ID:         contribution.ID.Hex(),
			MemberID:   contribution.MemberID.Hex(),
			Amount:     contribution.Amount,
			Month:      contribution.Month,
			Note:       contribution.Note,
			RecordedAt: contribution.RecordedAt,
		})
	}
	util.WriteJSONResponse(w, http.StatusOK, result)
}
