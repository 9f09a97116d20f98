package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
	"github.com/crediagil/crediagil_backend/internal/middleware"
)

// loanHandler handles HTTP requests related to loans.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{loanService: ls}
}

// registerLoanRoutes registers routes related to loans.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("", h.listLoans)
		loans.GET("/:id", h.getLoan)
		loans.POST("/:id/settle", h.settleLoan)
		loans.POST("/sync-statuses", h.syncStatuses)
	}
}

// listLoansParams carries the loan list filters.
type listLoansParams struct {
	Status  string `form:"status"`
	GroupID string `form:"groupID"`
	Limit   int    `form:"limit,default=20"`
	Offset  int    `form:"offset,default=0"`
}

// createLoan godoc
// @Summary Grant a loan to a group
// @Description Creates a loan for an approved group: validates shareholder funding and member allocations, generates the installment schedules, opens the current accounts and freezes the group, all atomically.
// @Tags loans
// @Accept json
// @Produce json
// @Param loan body dto.CreateLoanRequest true "Loan details"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse "Validation error (amount, contributions, allocations)"
// @Failure 404 {object} ErrorResponse "Group or shareholder not found"
// @Failure 409 {object} ErrorResponse "Group not approved or already has an active loan"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans [post]
func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", req.GroupID))
	logger.Info("Received request to create loan", slog.String("amount", req.Amount.String()))

	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict creating loan", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating loan", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create loan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create loan"})
		}
		return
	}

	logger.Info("Loan created", slog.String("loan_id", loan.LoanID))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(*loan))
}

// listLoans godoc
// @Summary List loans
// @Tags loans
// @Produce json
// @Param status query string false "Filter by status (ACTIVE, PAID, DEFAULT)"
// @Param groupID query string false "Filter by group"
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListLoansResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params listLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	loans, err := h.loanService.ListLoans(c.Request.Context(), domain.LoanStatus(params.Status), params.GroupID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list loans", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list loans"})
		return
	}

	responses := make([]dto.LoanResponse, len(loans))
	for i, l := range loans {
		responses[i] = dto.ToLoanResponse(l)
	}
	c.JSON(http.StatusOK, dto.ListLoansResponse{Loans: responses})
}

// getLoan godoc
// @Summary Get a loan by ID
// @Description Retrieves a loan with its contributions, member allocations and schedule snapshot.
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Loan not found"})
		} else {
			logger.Error("Failed to get loan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve loan"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(*loan))
}

// settleLoan godoc
// @Summary Settle a loan if fully repaid
// @Description Marks the loan PAID when every installment is settled, closes its accounts and returns the group to APPROVED. Safe to retry.
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Settlement cascade incomplete; retry"
// @Security BearerAuth
// @Router /loans/{id}/settle [post]
func (h *loanHandler) settleLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	settled, err := h.loanService.SettleLoanIfComplete(c.Request.Context(), loanID, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Loan not found"})
		} else if errors.Is(err, apperrors.ErrCascadeIncomplete) {
			logger.Error("Settlement cascade incomplete", slog.String("loan_id", loanID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Loan settled but cleanup incomplete, retry to finish"})
		} else {
			logger.Error("Failed to settle loan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to settle loan"})
		}
		return
	}

	logger.Info("Loan settlement evaluated", slog.String("loan_id", loanID), slog.Bool("settled", settled))
	c.JSON(http.StatusOK, gin.H{"settled": settled})
}

// syncStatuses godoc
// @Summary Settle every fully repaid loan
// @Description Runs the settlement check over every ACTIVE loan and reports how many were settled.
// @Tags loans
// @Produce json
// @Success 200 {object} dto.SyncLoanStatusesResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/sync-statuses [post]
func (h *loanHandler) syncStatuses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	settled, err := h.loanService.SyncLoanStatuses(c.Request.Context(), updaterUserID)
	if err != nil {
		logger.Error("Failed to sync loan statuses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sync loan statuses"})
		return
	}

	logger.Info("Loan statuses synced", slog.Int("settled", settled))
	c.JSON(http.StatusOK, dto.SyncLoanStatusesResponse{LoansSettled: settled})
}
