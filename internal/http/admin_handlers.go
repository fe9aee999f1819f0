package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freight-pricing-service/internal/model"
)

func (h *Handler) createBusiness(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req model.BusinessEntity
	if !h.bind(c, &req, false) {
		return
	}
	business, err := h.svc.Catalog.CreateBusiness(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(business))
}

func (h *Handler) getBusiness(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "business entity")
	if !ok {
		return
	}
	business, err := h.svc.Catalog.GetBusiness(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(business))
}

func (h *Handler) deactivateBusiness(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "business entity")
	if !ok {
		return
	}
	if err := h.svc.Catalog.DeactivateBusiness(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createTransport(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req model.Transport
	if !h.bind(c, &req, false) {
		return
	}
	transport, err := h.svc.Catalog.CreateTransport(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(transport))
}

func (h *Handler) getTransport(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "transport")
	if !ok {
		return
	}
	transport, err := h.svc.Catalog.GetTransport(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(transport))
}

func (h *Handler) listRules(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	c.JSON(http.StatusOK, successResponse(h.svc.Rates.Rules()))
}

func (h *Handler) replaceRules(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req replaceRulesRequest
	if !h.bind(c, &req, false) {
		return
	}
	rules, err := h.svc.Rates.ReplaceRules(c.Request.Context(), principal, req.Rules)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rules))
}

func (h *Handler) listOverrides(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "business entity")
	if !ok {
		return
	}
	overrides, err := h.svc.Rates.Overrides(principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if overrides == nil {
		overrides = []model.TollRateOverride{}
	}
	c.JSON(http.StatusOK, successResponse(overrides))
}

func (h *Handler) replaceOverrides(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "business entity")
	if !ok {
		return
	}
	var req replaceOverridesRequest
	if !h.bind(c, &req, false) {
		return
	}
	overrides, err := h.svc.Rates.ReplaceOverrides(c.Request.Context(), principal, id, req.Overrides)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if overrides == nil {
		overrides = []model.TollRateOverride{}
	}
	c.JSON(http.StatusOK, successResponse(overrides))
}
