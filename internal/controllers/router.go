package controllers

import "net/http"

// RegisterRoutes wires the HTTP routes for this controller.
func (c *ProxyActionsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/proxy-actions", c.RequireAuth(c.handleSubmitAction))
	mux.HandleFunc("GET /api/proxy-actions", c.RequireAuth(c.handleSearchActions))
	mux.HandleFunc("GET /api/proxy-actions/{id}", c.RequireAuth(c.handleGetAction))
	mux.HandleFunc("POST /api/proxy-actions/{id}/approvals", c.RequireAuth(c.handleRecordApproval))
	mux.HandleFunc("POST /api/proxy-actions/{id}/approve", c.RequireAuth(c.handleApprove))
	mux.HandleFunc("POST /api/proxy-actions/{id}/reject", c.RequireAuth(c.handleReject))
	mux.HandleFunc("POST /api/proxy-actions/{id}/execute", c.RequireAuth(c.handleExecute))
	mux.HandleFunc("POST /api/proxy-actions/{id}/cancel", c.RequireAuth(c.handleCancel))
	mux.HandleFunc("POST /api/proxy-actions/{id}/extend", c.RequireAuth(c.handleExtendExpiry))
	mux.HandleFunc("POST /api/proxy-actions/templates/{id}/instantiate", c.RequireAuth(c.handleInstantiateTemplate))
	mux.HandleFunc("POST /api/proxy-actions/sweep", c.RequireAuth(c.handleSweep))
}

func (c *MembersController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/members", c.handleRegister)
	mux.HandleFunc("POST /login", c.handleLogin)
	mux.HandleFunc("GET /api/members", c.RequireAuth(c.handleListMembers))
}

func (c *ContributionsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/contributions", c.RequireAuth(c.handleCreateContribution))
	mux.HandleFunc("GET /api/contributions", c.RequireAuth(c.handleListContributions))
}

func (c *LoansController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/loans", c.RequireAuth(c.handleCreateLoan))
	mux.HandleFunc("GET /api/loans", c.RequireAuth(c.handleListLoans))
}

func (c *ReportsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reports/balances", c.RequireAuth(c.handleBalances))
}
