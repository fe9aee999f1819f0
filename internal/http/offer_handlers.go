package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createOffer(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createOfferRequest
	if !h.bind(c, &req, false) {
		return
	}
	offer, err := h.svc.Offers.Create(c.Request.Context(), principal, req.RouteID, req.MarginPercentage)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(newOfferResponse(offer)))
}

func (h *Handler) getOffer(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "offer")
	if !ok {
		return
	}
	offer, err := h.svc.Offers.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newOfferResponse(offer)))
}

func (h *Handler) getOfferBreakdown(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "offer")
	if !ok {
		return
	}
	breakdown, err := h.svc.Offers.Breakdown(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newBreakdownResponse(breakdown)))
}

func (h *Handler) finalizeOffer(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "offer")
	if !ok {
		return
	}
	var req finalizeOfferRequest
	if !h.bind(c, &req, true) {
		return
	}
	offer, err := h.svc.Offers.Finalize(c.Request.Context(), principal, id, req.Comment)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newOfferResponse(offer)))
}
