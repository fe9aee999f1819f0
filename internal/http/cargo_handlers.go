package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"freight-pricing-service/internal/model"
)

func (h *Handler) createCargo(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createCargoRequest
	if !h.bind(c, &req, false) {
		return
	}
	cargo, err := h.svc.Cargos.Create(c.Request.Context(), principal, req.toModel())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(cargo))
}

func (h *Handler) getCargo(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "cargo")
	if !ok {
		return
	}
	cargo, err := h.svc.Cargos.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(cargo))
}

func (h *Handler) deleteCargo(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "cargo")
	if !ok {
		return
	}
	if err := h.svc.Cargos.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateCargoStatus(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "cargo")
	if !ok {
		return
	}
	var req statusRequest
	if !h.bind(c, &req, false) {
		return
	}
	status := model.CargoStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	cargo, err := h.svc.Cargos.UpdateStatus(c.Request.Context(), principal, id, status, req.Comment)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(cargo))
}

func (h *Handler) cargoHistory(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "cargo")
	if !ok {
		return
	}
	history, err := h.svc.Cargos.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(history))
}
