package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/acquisitions/api/web/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// parseUserId validates that the :id path parameter is an integer-shaped
// string and parses it. On failure it writes the 400 response and reports
// false; callers must stop.
func parseUserId(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	if !digitsOnly(raw) {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:   "Validation failed",
			Details: []entity.FieldError{{Field: "id", Message: "Invalid user id"}},
		})
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:   "Validation failed",
			Details: []entity.FieldError{{Field: "id", Message: "Invalid user id"}},
		})
		return 0, false
	}
	return id, true
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// respondBindingError maps a ShouldBindJSON failure to the 400 envelope
// with per-field details.
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, entity.ErrorResponse{
		Error:   "Validation failed",
		Details: formatValidationError(err),
	})
}

func formatValidationError(err error) []entity.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []entity.FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	details := make([]entity.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, entity.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// respondInternal hides internal failure detail behind a generic 500.
func respondInternal(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
		Error: "Internal server error",
	})
}
