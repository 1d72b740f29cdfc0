package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-storefront/internal/dto"
	"github.com/prohmpiriya/event-storefront/internal/service"
	"github.com/prohmpiriya/event-storefront/pkg/middleware"
	"github.com/prohmpiriya/event-storefront/pkg/response"
)

// StorefrontHandler handles the public cart, promo and checkout requests
type StorefrontHandler struct {
	checkoutService service.CheckoutService
	signInURL       string
}

// NewStorefrontHandler creates a new StorefrontHandler. signInURL is where
// anonymous buyers are sent to authenticate before checkout.
func NewStorefrontHandler(checkoutService service.CheckoutService, signInURL string) *StorefrontHandler {
	return &StorefrontHandler{
		checkoutService: checkoutService,
		signInURL:       signInURL,
	}
}

// RegisterRoutes mounts the storefront routes. promoLimit guards the promo
// endpoint and may be nil.
func (h *StorefrontHandler) RegisterRoutes(rg *gin.RouterGroup, promoLimit gin.HandlerFunc) {
	events := rg.Group("/events/:id")
	events.POST("/session", h.Open)
	events.GET("/cart", h.Get)
	events.PUT("/cart/items/:key", h.SetQuantity)
	if promoLimit != nil {
		events.POST("/promo", promoLimit, h.ApplyPromo)
	} else {
		events.POST("/promo", h.ApplyPromo)
	}
	events.DELETE("/promo", h.RemovePromo)
	events.POST("/checkout", h.Checkout)
}

// Open handles POST /events/:id/session - starts a page visit
func (h *StorefrontHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err, "Invalid promo parameter")
		return
	}

	resp, err := h.checkoutService.Open(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// Get handles GET /events/:id/cart - returns the checkout state
func (h *StorefrontHandler) Get(c *gin.Context) {
	resp, err := h.checkoutService.Get(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// SetQuantity handles PUT /events/:id/cart/items/:key
func (h *StorefrontHandler) SetQuantity(c *gin.Context) {
	var req dto.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	resp, err := h.checkoutService.SetQuantity(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"), c.Param("key"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// ApplyPromo handles POST /events/:id/promo. Rejected codes are reported in
// the promo section of a 200 response.
func (h *StorefrontHandler) ApplyPromo(c *gin.Context) {
	var req dto.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	resp, err := h.checkoutService.ApplyPromo(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// RemovePromo handles DELETE /events/:id/promo
func (h *StorefrontHandler) RemovePromo(c *gin.Context) {
	resp, err := h.checkoutService.RemovePromo(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// Checkout handles POST /events/:id/checkout - hands the cart to the
// purchase flow, or parks it and asks an anonymous buyer to sign in
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	eventID := c.Param("id")
	userID, _ := middleware.GetUserID(c)

	resp, err := h.checkoutService.Checkout(c.Request.Context(), middleware.GetSessionID(c), eventID, userID != "")
	if err != nil {
		if errors.Is(err, service.ErrAuthRequired) {
			c.JSON(http.StatusUnauthorized, response.AuthRequired(h.signInRedirect(eventID)))
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(resp))
}

// signInRedirect builds the sign-in URL returning to the event page
func (h *StorefrontHandler) signInRedirect(eventID string) string {
	returnTo := "/events/" + url.PathEscape(eventID)
	u, err := url.Parse(h.signInURL)
	if err != nil || h.signInURL == "" {
		return "/sign-in?redirect=" + url.QueryEscape(returnTo)
	}
	q := u.Query()
	q.Set("redirect", returnTo)
	u.RawQuery = q.Encode()
	return u.String()
}
