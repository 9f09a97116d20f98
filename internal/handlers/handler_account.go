package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
	"github.com/crediagil/crediagil_backend/internal/middleware"
)

// accountHandler handles HTTP requests related to current accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to current accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.POST("", h.createAccount)
		accounts.GET("/collections", h.getCollections)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id/status", h.updateStatus)
		accounts.PUT("/:id/installments/:number", h.applyPayment)
	}
	rg.GET("/persons/:id/account", h.getPersonAccount)
	rg.GET("/groups/:id/account", h.getGroupAccount)
}

// listAccountsParams carries the account list filters.
type listAccountsParams struct {
	Status string `form:"status"`
	Type   string `form:"type"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

// listAccounts godoc
// @Summary List current accounts
// @Tags accounts
// @Produce json
// @Param status query string false "Filter by status (ACTIVE, CLOSED, SUSPENDED)"
// @Param type query string false "Filter by type (PERSON, GROUP)"
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params listAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(),
		domain.AccountStatus(params.Status), domain.AccountType(params.Type), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list accounts"})
		return
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = dto.ToAccountResponse(a)
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: responses})
}

// createAccount godoc
// @Summary Create an account manually
// @Description Opens an account outside the loan flow, for migrated or corrected ledgers. Exactly one of personID/groupID must be set.
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account to create"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create account"})
		}
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, account)
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves an account with its installments. GROUP accounts are returned with the schedule derived from member payments.
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
		} else {
			logger.Error("Failed to get account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve account"})
		}
		return
	}
	c.JSON(http.StatusOK, account)
}

// getPersonAccount godoc
// @Summary Get a person's active account
// @Tags accounts
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons/{id}/account [get]
func (h *accountHandler) getPersonAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	personID := c.Param("id")

	account, err := h.accountService.GetAccountByPersonID(c.Request.Context(), personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No active account for person"})
		} else {
			logger.Error("Failed to get person account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve account"})
		}
		return
	}
	c.JSON(http.StatusOK, account)
}

// getGroupAccount godoc
// @Summary Get a group's active account
// @Description Retrieves the group account with the schedule derived by pouring the members' settled payments over the group installments in order.
// @Tags accounts
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /groups/{id}/account [get]
func (h *accountHandler) getGroupAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("id")

	account, err := h.accountService.GetAccountByGroupID(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No active account for group"})
		} else {
			logger.Error("Failed to get group account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve account"})
		}
		return
	}
	c.JSON(http.StatusOK, account)
}

// applyPayment godoc
// @Summary Record a payment on an installment
// @Description Updates one installment of a PERSON account: cumulative amount paid, optional manual status override, paid date, due date reschedule and observation. Completing the last installment settles the loan.
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param number path int true "Installment number"
// @Param payment body dto.ApplyPaymentRequest true "Payment details"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Negative or excessive amount"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Account closed or group ledger is read-only"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id}/installments/{number} [put]
func (h *accountHandler) applyPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid installment number"})
		return
	}

	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.Int("installment", number))
	logger.Info("Received request to apply payment")

	account, err := h.accountService.ApplyPayment(c.Request.Context(), accountID, number, req, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict applying payment", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error applying payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrCascadeIncomplete) {
			logger.Error("Payment recorded but settlement cascade incomplete", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Payment recorded but loan settlement incomplete, retry settlement"})
		} else {
			logger.Error("Failed to apply payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to apply payment"})
		}
		return
	}

	logger.Info("Payment applied")
	c.JSON(http.StatusOK, account)
}

// updateStatus godoc
// @Summary Update an account's status
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param status body dto.UpdateAccountStatusRequest true "New status"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id}/status [put]
func (h *accountHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.accountService.UpdateAccountStatus(c.Request.Context(), accountID, req.Status, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to update account status", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update account status"})
		}
		return
	}

	logger.Info("Account status updated", slog.String("account_id", accountID), slog.String("status", string(req.Status)))
	c.Status(http.StatusNoContent)
}

// getCollections godoc
// @Summary Report collected installments
// @Description Lists the installments collected inside a date window with the total collected, cursor-paginated.
// @Tags accounts
// @Produce json
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end, inclusive (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Cursor from a previous page"
// @Success 200 {object} dto.CollectionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/collections [get]
func (h *accountHandler) getCollections(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.CollectionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.accountService.GetCollections(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to build collections report", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build collections report"})
		}
		return
	}
	c.JSON(http.StatusOK, report)
}
