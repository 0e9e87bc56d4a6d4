package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetrack-api/internal/constants"
	"github.com/yukikurage/timetrack-api/internal/dto"
	apierrors "github.com/yukikurage/timetrack-api/internal/errors"
	"github.com/yukikurage/timetrack-api/internal/middleware"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/services"
)

const msgFieldRequired = "this field is required"

// currentUserID returns the authenticated caller or answers 401.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

// parseIDParam reads a numeric path parameter. Anything else cannot name a record.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.NotFound(c, "")
		return 0, false
	}
	return id, true
}

func parseUintQuery(c *gin.Context, key string) (*uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.FieldError(c, key, "a valid integer is required")
		return nil, false
	}
	return &v, true
}

func parseBoolQuery(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		apierrors.FieldError(c, key, "must be true or false")
		return nil, false
	}
	return &v, true
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := time.Parse(constants.DateLayout, raw)
	if err != nil {
		apierrors.FieldError(c, key, dto.ErrInvalidDate.Error())
		return nil, false
	}
	return &v, true
}

// bindJSON decodes the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		apierrors.FieldError(c, typeErr.Field, "incorrect type, expected "+typeErr.Type.String())
	case errors.Is(err, dto.ErrInvalidDate):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.BadRequest(c, "Invalid request body")
	}
	return false
}

// requireFields answers 400 for the first missing field.
func requireFields(c *gin.Context, fields ...requiredField) bool {
	for _, f := range fields {
		if !f.present {
			apierrors.FieldError(c, f.name, msgFieldRequired)
			return false
		}
	}
	return true
}

type requiredField struct {
	name    string
	present bool
}

// respondInputError handles the validation failures shared by all resources.
func respondInputError(c *gin.Context, err error) bool {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		apierrors.FieldError(c, validationErr.Field, validationErr.Message)
		return true
	}

	var refErr *services.ReferenceNotFoundError
	if errors.As(err, &refErr) {
		apierrors.ReferenceNotFound(c, refErr.Field, refErr.Error())
		return true
	}

	return false
}
