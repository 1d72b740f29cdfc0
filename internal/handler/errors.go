package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/internal/domain"
	"github.com/prohmpiriya/event-storefront/internal/service"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/response"
	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	code    string
	message string
}

var errorMappings = []errorMapping{
	{client.ErrEventNotFound, response.ErrCodeNotFound, "Event not found"},
	{domain.ErrUnknownItem, response.ErrCodeUnknownItem, "Item is not offered by this event"},
	{domain.ErrItemUnavailable, response.ErrCodeItemUnavailable, "Item is no longer available"},
	{domain.ErrAddOnLocked, response.ErrCodeAddOnLocked, "Select a ticket before adding extras"},
	{domain.ErrEmptyCart, response.ErrCodeEmptyCart, "Cart is empty"},
	{domain.ErrBlockNotFound, response.ErrCodeBlockNotFound, "Schedule block not found"},
	{domain.ErrUnknownSection, response.ErrCodeNotFound, "Section not found"},
	{domain.ErrBlockIndex, response.ErrCodeBadRequest, "Block index out of range"},
	{domain.ErrInvalidTimeOfDay, response.ErrCodeBadRequest, "Time must be HH:MM"},
	{domain.ErrInvalidTimeField, response.ErrCodeBadRequest, "Unknown time field"},
	{domain.ErrNoDrag, response.ErrCodeConflict, "No drag in progress"},
	{service.ErrNotEventOwner, response.ErrCodeForbidden, "Event belongs to another organizer"},
	{service.ErrScheduleSaveFailed, response.ErrCodeScheduleSaveFailed, "Failed to save schedule, please try again"},
}

// writeBindError reports binding tag failures per field and anything else,
// such as malformed JSON, as a plain bad request
func writeBindError(c *gin.Context, err error, message string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, response.ValidationFailed(details))
		return
	}
	c.JSON(http.StatusBadRequest, response.BadRequest(message))
}

// writeError maps service and domain errors to the response envelope
func writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(response.GetHTTPStatus(m.code), response.Error(m.code, m.message))
			return
		}
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		logger.Get().WarnContext(c.Request.Context(), "event api request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, response.BadGateway("Event service unavailable"))
		return
	}

	logger.Get().ErrorContext(c.Request.Context(), "request failed",
		zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, response.InternalError(""))
}
