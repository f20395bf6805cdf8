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

type LoansController struct {
	AuthController
	LoanRepo engine.LoanRepo
}

func NewLoansController(loanRepo engine.LoanRepo, memberRepo engine.MemberRepo, clock core.Clock) *LoansController {
	return &LoansController{
		LoanRepo:       loanRepo,
		AuthController: AuthController{MemberRepo: memberRepo, Clock: clock},
	}
}

func (c *LoansController) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateLoanRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		http.Error(w, "memberId is not a valid id", http.StatusBadRequest)
		return
	}
	if req.Principal <= 0 {
		http.Error(w, "principal must be positive", http.StatusBadRequest)
		return
	}

	now := c.Clock.Now()
	loan := &domain.Loan{
		MemberID:    memberID,
		Principal:   req.Principal,
		Purpose:     req.Purpose,
		Status:      domain.LoanRequested,
		RequestedAt: now,
		UpdatedAt:   now,
	}
	id, err := c.LoanRepo.Save(r.Context(), loan)
	if err != nil {
		slog.Error("Failed to save loan", "error", err)
		http.Error(w, "failed to record loan", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

func (c *LoansController) handleListLoans(w http.ResponseWriter, r *http.Request) {
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
	loans, err := c.LoanRepo.FindByMember(r.Context(), memberID)
	if err != nil {
		slog.Error("Failed to list loans", "member_id", memberHex, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	result := make([]models.ApiLoan, 0, len(loans))
	for _, loan := range loans {
		result = append(result, models.ApiLoan{
			ID:          loan.ID.Hex(),
			MemberID:    loan.MemberID.Hex(),
			Principal:   loan.Principal,
			Purpose:     loan.Purpose,
			Status:      string(loan.Status),
			RequestedAt: loan.RequestedAt,
			UpdatedAt:   loan.UpdatedAt,
		})
	}
	util.WriteJSONResponse(w, http.StatusOK, result)
}
