package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetrack-api/internal/dto"
	apierrors "github.com/yukikurage/timetrack-api/internal/errors"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/services"
	"github.com/yukikurage/timetrack-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// projectRequest is the write shape of a project. members_ids is write-only.
type projectRequest struct {
	Name        *string               `json:"name"`
	Description dto.Nullable[string]  `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
	MembersIDs  []uint64              `json:"members_ids"`
}

// ListProjects returns all active projects, optionally filtered by status and owner
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	ownerID, ok := parseUintQuery(c, "owner")
	if !ok {
		return
	}

	input := services.ListProjectsInput{
		OwnerID:    ownerID,
		Pagination: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.ProjectStatus(status)
		input.Status = &s
	}

	projects, total, err := h.projectService.ListProjects(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	utils.RespondList(c, http.StatusOK, dto.ToProjectDTOs(projects), input.Pagination, total)
}

// GetProject returns a single active project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireFields(c, requiredField{"name", req.Name != nil}) {
		return
	}

	input := services.CreateProjectInput{
		Name:        *req.Name,
		Description: req.Description.Ptr(),
		OwnerID:     userID,
		MemberIDs:   req.MembersIDs,
	}
	if req.Status != nil {
		input.Status = *req.Status
	}

	project, err := h.projectService.CreateProject(input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject replaces the writable fields of a project (PUT)
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	h.update(c, false)
}

// PatchProject changes only the supplied fields of a project (PATCH)
func (h *ProjectHandler) PatchProject(c *gin.Context) {
	h.update(c, true)
}

func (h *ProjectHandler) update(c *gin.Context, partial bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateProjectInput{
		ActorID:          userID,
		Name:             req.Name,
		Description:      req.Description.Ptr(),
		ClearDescription: req.Description.Cleared(),
		Status:           req.Status,
		MemberIDs:        req.MembersIDs,
	}
	if !partial {
		if !requireFields(c, requiredField{"name", req.Name != nil}) {
			return
		}
		// a full update replaces every optional field too
		input.ClearDescription = !req.Description.Valid
		if input.MemberIDs == nil {
			input.MemberIDs = []uint64{}
		}
	}

	project, err := h.projectService.UpdateProject(projectID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject soft-deletes a project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ChangeStatus switches the project status. Unknown values leave it unchanged.
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status *string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !requireFields(c, requiredField{"status", req.Status != nil}) {
		return
	}

	project, err := h.projectService.ChangeStatus(projectID, userID, models.ProjectStatus(*req.Status))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// SuggestTasks proposes tasks for the project from free text using AI
func (h *ProjectHandler) SuggestTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !requireFields(c, requiredField{"text", strings.TrimSpace(req.Text) != ""}) {
		return
	}

	tasks, err := h.projectService.SuggestTasks(c.Request.Context(), services.SuggestTasksInput{
		ProjectID: projectID,
		ActorID:   userID,
		Text:      req.Text,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToSuggestedTaskDTOs(tasks),
	})
}

func respondProjectError(c *gin.Context, err error) {
	if respondInputError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotProjectOwner),
		errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.RespondWithError(c, http.StatusUnprocessableEntity, apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, err.Error()))
	default:
		log.Printf("project request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
