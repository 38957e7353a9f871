package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ProjectsHandler struct {
	projectSvs ProjectServicer
}

func NewProjectsHandler(projectSvs ProjectServicer) *ProjectsHandler {
	return &ProjectsHandler{
		projectSvs: projectSvs,
	}
}

type ProjectCreateParams struct {
	Title string          `binding:"required,min=3,max=200" json:"title"`
	Price decimal.Decimal `binding:"required"               json:"price"`
}

type ProjectResponse struct {
	ID         int64                    `json:"id"`
	Title      string                   `json:"title"`
	Price      decimal.Decimal          `json:"price"`
	Status     domain.ProjectStatusType `json:"status"`
	SalesCount int64                    `json:"sales_count"`
	CreatedAt  time.Time                `json:"created_at"`
}

// Create POST RouteGroup + ProjectsRoute.
func (h *ProjectsHandler) Create(c *gin.Context) {
	var params ProjectCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	if params.Price.LessThanOrEqual(decimal.Zero) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "price must be positive"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	project, err := h.projectSvs.Create(ctx, getUserIDFromContext(c), params.Title, params.Price)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.JSON(http.StatusCreated, newProjectResponse(project))
}

// Index GET RouteGroup + ProjectsRoute. Lists approved projects only.
func (h *ProjectsHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	projects, err := h.projectSvs.ListApproved(ctx, getPageFromQuery(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = newProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, response)
}

type ProjectModerateParams struct {
	Approve bool `json:"approve"`
}

// Moderate POST RouteGroup + AdminProjectModerateRoute.
func (h *ProjectsHandler) Moderate(c *gin.Context) {
	projectID, ok := getIDParam(c, "id")
	if !ok {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params ProjectModerateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	project, err := h.projectSvs.Moderate(ctx, projectID, getUserIDFromContext(c), params.Approve)
	if err != nil {
		var stateErr *domain.InvalidStateError
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.As(err, &stateErr):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

func newProjectResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:         project.ID,
		Title:      project.Title,
		Price:      project.Price,
		Status:     project.Status,
		SalesCount: project.SalesCount,
		CreatedAt:  project.CreatedAt,
	}
}
