package controllers

import (
	"log/slog"
	"net/http"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/engine"
	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/util"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
)

type ReportsController struct {
	AuthController
	ContributionRepo engine.ContributionRepo
}

func NewReportsController(contributionRepo engine.ContributionRepo, memberRepo engine.MemberRepo, clock core.Clock) *ReportsController {
	return &ReportsController{
		ContributionRepo: contributionRepo,
		AuthController:   AuthController{MemberRepo: memberRepo, Clock: clock},
	}
}

func (c *ReportsController) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := c.ContributionRepo.MemberBalances(r.Context())
	if err != nil {
		slog.Error("Failed to aggregate balances", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	result := make([]models.ApiBalanceRow, 0, len(balances))
	for _, b := range balances {
		result = append(result, models.ApiBalanceRow{
			MemberID: b.MemberID.Hex(),
			Total:    b.Total,
			Count:    b.Count,
		})
	}
	util.WriteJSONResponse(w, http.StatusOK, result)
}
