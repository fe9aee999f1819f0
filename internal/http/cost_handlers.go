package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/service"
)

func (h *Handler) saveSettings(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	var req settingsRequest
	if !h.bind(c, &req, false) {
		return
	}

	settings, breakdown, err := h.svc.Costs.SaveSettings(c.Request.Context(), principal, id, service.SettingsInput{
		EnabledComponents: req.EnabledComponents,
		Rates:             req.Rates,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(settingsResponse{Settings: settings, Breakdown: newBreakdownResponse(breakdown)}))
}

func (h *Handler) getSettings(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	settings, err := h.svc.Costs.LatestSettings(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(settings))
}

func (h *Handler) listSettingsVersions(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	versions, err := h.svc.Costs.SettingsVersions(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(versions))
}

func (h *Handler) cloneSettings(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	var req cloneSettingsRequest
	if !h.bind(c, &req, false) {
		return
	}
	if req.TargetRouteID == uuid.Nil {
		c.JSON(http.StatusBadRequest, errorResponse("target_route_id is required"))
		return
	}

	settings, breakdown, err := h.svc.Costs.CloneSettings(c.Request.Context(), principal, id, req.TargetRouteID, req.Modifications)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(settingsResponse{Settings: settings, Breakdown: newBreakdownResponse(breakdown)}))
}

func (h *Handler) recalculate(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	settings, breakdown, err := h.svc.Costs.Recalculate(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(settingsResponse{Settings: settings, Breakdown: newBreakdownResponse(breakdown)}))
}

func (h *Handler) getBreakdown(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	breakdown, err := h.svc.Costs.LatestBreakdown(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newBreakdownResponse(breakdown)))
}

func (h *Handler) resolveTollRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	q := pricing.TollQuery{
		CountryCode: strings.TrimSpace(c.Query("country_code")),
		TollClass:   strings.TrimSpace(c.Query("toll_class")),
		EuroClass:   strings.ToUpper(strings.TrimSpace(c.Query("euro_class"))),
		RouteType:   strings.TrimSpace(c.Query("route_type")),
	}
	if businessStr := strings.TrimSpace(c.Query("business_entity_id")); businessStr != "" {
		id, err := uuid.Parse(businessStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid business_entity_id"))
			return
		}
		q.BusinessEntityID = id
	}

	rate, err := h.svc.Costs.ResolveTollRate(principal, q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rate))
}

func (h *Handler) validateRates(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req validateRatesRequest
	if !h.bind(c, &req, false) {
		return
	}
	if err := h.svc.Costs.ValidateRates(c.Request.Context(), principal, req.BusinessEntityID, req.Rates); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"valid": true}))
}

func (h *Handler) driverCost(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	var req driverCostRequest
	if !h.bind(c, &req, false) {
		return
	}
	cost, err := h.svc.Costs.DriverCost(req.DurationHours, req.Driver)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newDriverCostResponse(cost)))
}
