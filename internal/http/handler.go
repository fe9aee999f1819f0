package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-pricing-service/internal/http/middleware"
	"freight-pricing-service/internal/lifecycle"
	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/service"
)

type Services struct {
	Catalog *service.CatalogService
	Routes  *service.RouteService
	Costs   *service.CostService
	Cargos  *service.CargoService
	Offers  *service.OfferService
	Rates   *service.RateService
}

type Handler struct {
	svc Services
	log zerolog.Logger
}

func NewHandler(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)

	protected.POST("/businesses", h.createBusiness)
	protected.GET("/businesses/:id", h.getBusiness)
	protected.DELETE("/businesses/:id", h.deactivateBusiness)
	protected.GET("/businesses/:id/toll-overrides", h.listOverrides)
	protected.PUT("/businesses/:id/toll-overrides", h.replaceOverrides)
	protected.POST("/transports", h.createTransport)
	protected.GET("/transports/:id", h.getTransport)

	protected.POST("/routes", h.createRoute)
	protected.GET("/routes", h.listRoutes)
	protected.GET("/routes/:id", h.getRoute)
	protected.DELETE("/routes/:id", h.deleteRoute)
	protected.POST("/routes/:id/feasibility", h.validateFeasibility)
	protected.PATCH("/routes/:id/status", h.updateRouteStatus)
	protected.GET("/routes/:id/history", h.routeHistory)

	protected.PUT("/routes/:id/cost-settings", h.saveSettings)
	protected.GET("/routes/:id/cost-settings", h.getSettings)
	protected.GET("/routes/:id/cost-settings/versions", h.listSettingsVersions)
	protected.POST("/routes/:id/cost-settings/clone", h.cloneSettings)
	protected.POST("/routes/:id/recalculate", h.recalculate)
	protected.GET("/routes/:id/cost-breakdown", h.getBreakdown)

	protected.GET("/toll-rates/resolve", h.resolveTollRate)
	protected.POST("/rates/validate", h.validateRates)
	protected.POST("/driver-cost", h.driverCost)
	protected.GET("/rate-rules", h.listRules)
	protected.PUT("/rate-rules", h.replaceRules)

	protected.POST("/cargos", h.createCargo)
	protected.GET("/cargos/:id", h.getCargo)
	protected.DELETE("/cargos/:id", h.deleteCargo)
	protected.PATCH("/cargos/:id/status", h.updateCargoStatus)
	protected.GET("/cargos/:id/history", h.cargoHistory)

	protected.POST("/offers", h.createOffer)
	protected.GET("/offers/:id", h.getOffer)
	protected.GET("/offers/:id/cost-breakdown", h.getOfferBreakdown)
	protected.POST("/offers/:id/finalize", h.finalizeOffer)
}

// principalAndID resolves the caller and the :id path parameter, writing the
// error response itself when either is missing.
func (h *Handler) principalAndID(c *gin.Context, what string) (model.Principal, uuid.UUID, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return model.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+what+" id"))
		return model.Principal{}, uuid.Nil, false
	}
	return principal, id, true
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
	}
	return principal, ok
}

// bind decodes the JSON body; an empty body is accepted when allowEmpty is set.
func (h *Handler) bind(c *gin.Context, dst any, allowEmpty bool) bool {
	if allowEmpty && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		invalidRate   *pricing.InvalidRateError
		missingCert   *pricing.MissingCertificationError
		incomplete    *pricing.IncompleteSettingsError
		unknownRate   *pricing.UnknownRateTypeError
		unknownComp   *pricing.UnknownComponentError
		transition    *lifecycle.InvalidStatusTransitionError
		validationErr *service.ValidationError
	)

	switch {
	case errors.As(err, &invalidRate):
		c.JSON(http.StatusUnprocessableEntity, detailedError(err, gin.H{
			"rate_type": invalidRate.RateType,
			"key":       invalidRate.Key,
			"value":     invalidRate.Value,
			"min":       invalidRate.Min,
			"max":       invalidRate.Max,
		}))
	case errors.As(err, &missingCert):
		c.JSON(http.StatusUnprocessableEntity, detailedError(err, gin.H{
			"rate_type":     missingCert.RateType,
			"certification": missingCert.Certification,
		}))
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, detailedError(err, gin.H{"missing_keys": incomplete.MissingKeys}))
	case errors.As(err, &unknownRate):
		c.JSON(http.StatusUnprocessableEntity, detailedError(err, gin.H{"key": unknownRate.Key}))
	case errors.As(err, &unknownComp):
		c.JSON(http.StatusUnprocessableEntity, detailedError(err, gin.H{"component": unknownComp.Component}))
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, detailedError(err, gin.H{
			"entity":    transition.Kind,
			"current":   transition.Current,
			"requested": transition.Requested,
			"allowed":   transition.Allowed,
		}))
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, detailedError(err, gin.H{"field": validationErr.Field}))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}

func detailedError(err error, details gin.H) gin.H {
	return gin.H{"error": err.Error(), "details": details}
}
