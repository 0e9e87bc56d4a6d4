package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/timetrack-api/internal/dto"
	apierrors "github.com/yukikurage/timetrack-api/internal/errors"
	"github.com/yukikurage/timetrack-api/internal/services"
	"github.com/yukikurage/timetrack-api/internal/utils"
)

type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
	}
}

// timesheetRequest is the write shape of a timesheet. The owner always comes
// from the session, so a supplied user field is ignored.
type timesheetRequest struct {
	Project *uint64              `json:"project"`
	Date    *dto.Date            `json:"date"`
	Hours   *decimal.Decimal     `json:"hours"`
	Notes   dto.Nullable[string] `json:"notes"`
}

func (r timesheetRequest) date() *time.Time {
	if r.Date == nil {
		return nil
	}
	return &r.Date.Time
}

// ListTimesheets returns the caller's active timesheets
func (h *TimesheetHandler) ListTimesheets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseUintQuery(c, "project")
	if !ok {
		return
	}
	dateFrom, ok := parseDateQuery(c, "date_from")
	if !ok {
		return
	}
	dateTo, ok := parseDateQuery(c, "date_to")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	timesheets, total, err := h.timesheetService.ListTimesheets(services.ListTimesheetsInput{
		UserID:     userID,
		ProjectID:  projectID,
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Pagination: params,
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch timesheets")
		return
	}

	utils.RespondList(c, http.StatusOK, dto.ToTimesheetDTOs(timesheets), params, total)
}

// GetTimesheet returns one of the caller's timesheets
func (h *TimesheetHandler) GetTimesheet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	timesheet, err := h.timesheetService.GetTimesheet(timesheetID, userID)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*timesheet))
}

// CreateTimesheet records hours for the caller
func (h *TimesheetHandler) CreateTimesheet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req timesheetRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireFields(c,
		requiredField{"project", req.Project != nil},
		requiredField{"date", req.Date != nil},
		requiredField{"hours", req.Hours != nil},
	) {
		return
	}

	timesheet, err := h.timesheetService.CreateTimesheet(services.CreateTimesheetInput{
		UserID:    userID,
		ProjectID: *req.Project,
		Date:      req.Date.Time,
		Hours:     *req.Hours,
		Notes:     req.Notes.Ptr(),
	})
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetDTO(*timesheet))
}

// UpdateTimesheet replaces the writable fields of a timesheet (PUT)
func (h *TimesheetHandler) UpdateTimesheet(c *gin.Context) {
	h.update(c, false)
}

// PatchTimesheet changes only the supplied fields of a timesheet (PATCH)
func (h *TimesheetHandler) PatchTimesheet(c *gin.Context) {
	h.update(c, true)
}

func (h *TimesheetHandler) update(c *gin.Context, partial bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req timesheetRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTimesheetInput{
		ProjectID:  req.Project,
		Date:       req.date(),
		Hours:      req.Hours,
		Notes:      req.Notes.Ptr(),
		ClearNotes: req.Notes.Cleared(),
	}
	if !partial {
		if !requireFields(c,
			requiredField{"project", req.Project != nil},
			requiredField{"date", req.Date != nil},
			requiredField{"hours", req.Hours != nil},
		) {
			return
		}
		input.ClearNotes = !req.Notes.Valid
	}

	timesheet, err := h.timesheetService.UpdateTimesheet(timesheetID, userID, input)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*timesheet))
}

// DeleteTimesheet soft-deletes one of the caller's timesheets
func (h *TimesheetHandler) DeleteTimesheet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	timesheetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.timesheetService.DeleteTimesheet(timesheetID, userID); err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Timesheet deleted successfully",
	})
}

func respondTimesheetError(c *gin.Context, err error) {
	if respondInputError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrTimesheetNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTimesheetExists):
		apierrors.Conflict(c, err.Error())
	default:
		log.Printf("timesheet request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
