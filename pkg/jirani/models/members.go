package models

import "time"

type RegisterMemberRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ApiMember struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateContributionRequest struct {
	MemberID string  `json:"memberId"`
	Amount   float64 `json:"amount"`
	Month    string  `json:"month"`
	Note     string  `json:"note,omitempty"`
}

type CreateLoanRequest struct {
	MemberID  string  `json:"memberId"`
	Principal float64 `json:"principal"`
	Purpose   string  `json:"purpose,omitempty"`
}

type ApiContribution struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"memberId"`
	Amount     float64   `json:"amount"`
	Month      string    `json:"month"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

type ApiLoan struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"memberId"`
	Principal   float64   `json:"principal"`
	Purpose     string    `json:"purpose,omitempty"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ApiBalanceRow struct {
	MemberID string  `json:"memberId"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}
