package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
	"github.com/crediagil/crediagil_backend/internal/middleware"
)

// shareholderHandler handles HTTP requests related to shareholders.
type shareholderHandler struct {
	shareholderService portssvc.ShareholderSvcFacade
}

func newShareholderHandler(ss portssvc.ShareholderSvcFacade) *shareholderHandler {
	return &shareholderHandler{shareholderService: ss}
}

// registerShareholderRoutes registers routes related to shareholders.
func registerShareholderRoutes(rg *gin.RouterGroup, shareholderService portssvc.ShareholderSvcFacade) {
	h := newShareholderHandler(shareholderService)

	shareholders := rg.Group("/shareholders")
	{
		shareholders.POST("", h.createShareholder)
		shareholders.GET("", h.listShareholders)
		shareholders.GET("/profits", h.getProfitDistribution)
		shareholders.GET("/:id", h.getShareholder)
		shareholders.PUT("/:id", h.updateShareholder)
		shareholders.DELETE("/:id", h.deleteShareholder)
		shareholders.GET("/:id/account", h.getShareholderAccount)
	}
}

// createShareholder godoc
// @Summary Register a new shareholder
// @Tags shareholders
// @Accept json
// @Produce json
// @Param shareholder body dto.CreateShareholderRequest true "Shareholder details"
// @Success 201 {object} dto.ShareholderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "National ID already registered"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders [post]
func (h *shareholderHandler) createShareholder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateShareholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	shareholder, err := h.shareholderService.CreateShareholder(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "National ID already registered"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create shareholder", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create shareholder"})
		}
		return
	}

	logger.Info("Shareholder created", slog.String("shareholder_id", shareholder.ShareholderID))
	c.JSON(http.StatusCreated, shareholder)
}

// listShareholders godoc
// @Summary List shareholders
// @Description Lists shareholders enriched with active capital and projected profit.
// @Tags shareholders
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListShareholdersResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders [get]
func (h *shareholderHandler) listShareholders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	shareholders, err := h.shareholderService.ListShareholders(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list shareholders", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list shareholders"})
		return
	}
	c.JSON(http.StatusOK, dto.ListShareholdersResponse{Shareholders: shareholders})
}

// getShareholder godoc
// @Summary Get a shareholder by ID
// @Description Retrieves a shareholder enriched with the capital deployed in active loans and its projected yield.
// @Tags shareholders
// @Produce json
// @Param id path string true "Shareholder ID"
// @Success 200 {object} dto.ShareholderResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders/{id} [get]
func (h *shareholderHandler) getShareholder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shareholderID := c.Param("id")

	shareholder, err := h.shareholderService.GetShareholderByID(c.Request.Context(), shareholderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Shareholder not found"})
		} else {
			logger.Error("Failed to get shareholder", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve shareholder"})
		}
		return
	}
	c.JSON(http.StatusOK, shareholder)
}

// updateShareholder godoc
// @Summary Update a shareholder
// @Tags shareholders
// @Accept json
// @Produce json
// @Param id path string true "Shareholder ID"
// @Param shareholder body dto.UpdateShareholderRequest true "Fields to update"
// @Success 200 {object} dto.ShareholderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders/{id} [put]
func (h *shareholderHandler) updateShareholder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shareholderID := c.Param("id")

	var req dto.UpdateShareholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	shareholder, err := h.shareholderService.UpdateShareholder(c.Request.Context(), shareholderID, req, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Shareholder not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to update shareholder", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update shareholder"})
		}
		return
	}
	c.JSON(http.StatusOK, shareholder)
}

// deleteShareholder godoc
// @Summary Delete a shareholder
// @Description Removes a shareholder with no stake in any loan.
// @Tags shareholders
// @Produce json
// @Param id path string true "Shareholder ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Shareholder has loan contributions"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders/{id} [delete]
func (h *shareholderHandler) deleteShareholder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shareholderID := c.Param("id")

	err := h.shareholderService.DeleteShareholder(c.Request.Context(), shareholderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Shareholder not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Cannot delete shareholder with stake", slog.String("shareholder_id", shareholderID))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to delete shareholder", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete shareholder"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// getShareholderAccount godoc
// @Summary Get a shareholder's loan positions
// @Description Summarizes each loan the shareholder funded with their contribution and share fraction.
// @Tags shareholders
// @Produce json
// @Param id path string true "Shareholder ID"
// @Success 200 {object} dto.ShareholderAccountResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders/{id}/account [get]
func (h *shareholderHandler) getShareholderAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shareholderID := c.Param("id")

	account, err := h.shareholderService.GetShareholderAccount(c.Request.Context(), shareholderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Shareholder not found"})
		} else {
			logger.Error("Failed to get shareholder account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve shareholder account"})
		}
		return
	}
	c.JSON(http.StatusOK, account)
}

// getProfitDistribution godoc
// @Summary Compute the profit distribution for a window
// @Description Splits the interest earned (realized) or falling due (projected) inside a date window pro-rata across shareholders.
// @Tags shareholders
// @Produce json
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end, inclusive (YYYY-MM-DD)"
// @Param type query string false "realized or projected" default(realized)
// @Success 200 {object} dto.ProfitDistributionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /shareholders/profits [get]
func (h *shareholderHandler) getProfitDistribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ProfitParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	distribution, err := h.shareholderService.GetProfitDistribution(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to compute profit distribution", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute profit distribution"})
		}
		return
	}
	c.JSON(http.StatusOK, distribution)
}
