package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crediagil/crediagil_backend/internal/apperrors"
	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
	"github.com/crediagil/crediagil_backend/internal/dto"
	"github.com/crediagil/crediagil_backend/internal/middleware"
)

// personHandler handles HTTP requests related to persons.
type personHandler struct {
	personService portssvc.PersonSvcFacade
}

func newPersonHandler(ps portssvc.PersonSvcFacade) *personHandler {
	return &personHandler{personService: ps}
}

// registerPersonRoutes registers routes related to persons.
func registerPersonRoutes(rg *gin.RouterGroup, personService portssvc.PersonSvcFacade) {
	h := newPersonHandler(personService)

	persons := rg.Group("/persons")
	{
		persons.POST("", h.createPerson)
		persons.GET("", h.listPersons)
		persons.GET("/:id", h.getPerson)
		persons.PUT("/:id", h.updatePerson)
		persons.POST("/:id/archive", h.archivePerson)
		persons.POST("/:id/restore", h.restorePerson)
	}
}

// listPersonsParams carries the person list filters.
type listPersonsParams struct {
	Status          string `form:"status"`
	GroupID         string `form:"groupID"`
	Unassigned      bool   `form:"unassigned"`
	IncludeArchived bool   `form:"includeArchived"`
	Limit           int    `form:"limit,default=20"`
	Offset          int    `form:"offset,default=0"`
}

// createPerson godoc
// @Summary Register a new person
// @Description Registers a person as a credit candidate in PENDING status
// @Tags persons
// @Accept json
// @Produce json
// @Param person body dto.CreatePersonRequest true "Person details"
// @Success 201 {object} dto.PersonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "National ID already registered or group frozen"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons [post]
func (h *personHandler) createPerson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePerson", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	person, err := h.personService.CreatePerson(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) || errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict creating person", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create person", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create person"})
		}
		return
	}

	logger.Info("Person created", slog.String("person_id", person.PersonID))
	c.JSON(http.StatusCreated, dto.ToPersonResponse(*person, person.Status))
}

// listPersons godoc
// @Summary List persons
// @Description Lists persons with the delinquency overlay applied. Filterable by status, group and assignment.
// @Tags persons
// @Produce json
// @Param status query string false "Filter by status (PENDING, APPROVED, REJECTED, MOROSO)"
// @Param groupID query string false "Filter by group"
// @Param unassigned query bool false "Only persons without a group"
// @Param includeArchived query bool false "Include archived persons"
// @Param limit query int false "Limit number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListPersonsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons [get]
func (h *personHandler) listPersons(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params listPersonsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	filter := portsrepo.ListPersonsFilter{
		Status:          domain.PersonStatus(params.Status),
		GroupID:         params.GroupID,
		Unassigned:      params.Unassigned,
		IncludeArchived: params.IncludeArchived,
		Limit:           params.Limit,
		Offset:          params.Offset,
	}

	persons, err := h.personService.ListPersons(c.Request.Context(), filter)
	if err != nil {
		logger.Error("Failed to list persons", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list persons"})
		return
	}

	responses := make([]dto.PersonResponse, len(persons))
	for i, p := range persons {
		responses[i] = dto.ToPersonResponse(p, p.Status)
	}
	c.JSON(http.StatusOK, dto.ListPersonsResponse{Persons: responses})
}

// getPerson godoc
// @Summary Get a person by ID
// @Description Retrieves a person. The status carries the delinquency overlay.
// @Tags persons
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} dto.PersonResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons/{id} [get]
func (h *personHandler) getPerson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	personID := c.Param("id")

	person, err := h.personService.GetPersonByID(c.Request.Context(), personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Person not found"})
		} else {
			logger.Error("Failed to get person", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve person"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToPersonResponse(*person, person.Status))
}

// updatePerson godoc
// @Summary Update a person
// @Description Applies a partial update. Checks and rejections merge field by field; the status is rederived and affected group statuses refreshed.
// @Tags persons
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param person body dto.UpdatePersonRequest true "Fields to update"
// @Success 200 {object} dto.PersonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Target group frozen by an active loan"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons/{id} [put]
func (h *personHandler) updatePerson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	personID := c.Param("id")

	var req dto.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	person, err := h.personService.UpdatePerson(c.Request.Context(), personID, req, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Person not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict updating person", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to update person", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update person"})
		}
		return
	}

	logger.Info("Person updated", slog.String("person_id", personID))
	c.JSON(http.StatusOK, dto.ToPersonResponse(*person, person.Status))
}

// archivePerson godoc
// @Summary Archive a person
// @Description Detaches the person from their group and excludes them from status derivations. Blocked while the person has an open account.
// @Tags persons
// @Produce json
// @Param id path string true "Person ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Person has an open loan account"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons/{id}/archive [post]
func (h *personHandler) archivePerson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	personID := c.Param("id")

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.personService.ArchivePerson(c.Request.Context(), personID, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Person not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Cannot archive person", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to archive person", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to archive person"})
		}
		return
	}

	logger.Info("Person archived", slog.String("person_id", personID))
	c.Status(http.StatusNoContent)
}

// restorePerson godoc
// @Summary Restore an archived person
// @Description Reverses an archival, reattaching the remembered group when it still exists.
// @Tags persons
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} dto.PersonResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /persons/{id}/restore [post]
func (h *personHandler) restorePerson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	personID := c.Param("id")

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	person, err := h.personService.RestorePerson(c.Request.Context(), personID, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Person not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to restore person", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to restore person"})
		}
		return
	}

	logger.Info("Person restored", slog.String("person_id", personID))
	c.JSON(http.StatusOK, dto.ToPersonResponse(*person, person.Status))
}
