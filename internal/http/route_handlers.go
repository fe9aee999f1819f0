package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func (h *Handler) createRoute(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createRouteRequest
	if !h.bind(c, &req, false) {
		return
	}

	rt, err := h.svc.Routes.Create(c.Request.Context(), principal, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(rt))
}

func (h *Handler) listRoutes(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	filter := repository.RouteFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  defaultPageSize,
	}
	if businessStr := strings.TrimSpace(c.Query("business_entity_id")); businessStr != "" {
		id, err := uuid.Parse(businessStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid business_entity_id"))
			return
		}
		filter.BusinessEntityID = &id
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = min(limit, maxPageSize)
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	routes, err := h.svc.Routes.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(routes))
}

func (h *Handler) getRoute(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	rt, err := h.svc.Routes.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rt))
}

func (h *Handler) deleteRoute(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	if err := h.svc.Routes.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) validateFeasibility(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	result, err := h.svc.Routes.ValidateFeasibility(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) updateRouteStatus(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	var req statusRequest
	if !h.bind(c, &req, false) {
		return
	}
	status := model.RouteStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	rt, err := h.svc.Routes.UpdateStatus(c.Request.Context(), principal, id, status, req.Comment)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rt))
}

func (h *Handler) routeHistory(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "route")
	if !ok {
		return
	}
	history, err := h.svc.Routes.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(history))
}
