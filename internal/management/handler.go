package management

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flagpost/internal/logger"
	"flagpost/pkg/errors"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

func (h *BaseHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithMessage("malformed request body")))
}

type Handler struct {
	BaseHandler
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		alerts := v1.Group("/alerts")
		{
			alerts.GET("", h.ListAlerts)
			alerts.POST("", h.CreateAlert)
			alerts.GET("/:id", h.GetAlert)
			alerts.PUT("/:id", h.UpdateAlert)
			alerts.DELETE("/:id", h.DeleteAlert)
		}

		features := v1.Group("/features")
		{
			features.GET("", h.ListFeatures)
			features.POST("", h.CreateFeature)
			features.GET("/:id", h.GetFeature)
			features.PUT("/:id", h.UpdateFeature)
			features.DELETE("/:id", h.DeleteFeature)
		}

		audit := v1.Group("/audit")
		{
			audit.GET("/logs", h.GetAuditLogs)
		}
	}
}

// ListAlerts godoc
// @Summary      List alerts
// @Description  Get every alert, newest first
// @Tags         alerts
// @Produce      json
// @Success      200  {array}   Alert
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /alerts [get]
func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.Service.ListAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// CreateAlert godoc
// @Summary      Create an alert
// @Description  Create an alert with optional targeting segments
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        alert  body      CreateAlertRequest  true  "Alert data"
// @Success      201    {object}  Alert
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /alerts [post]
func (h *Handler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	alert, err := h.Service.CreateAlert(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// GetAlert godoc
// @Summary      Get an alert by ID
// @Tags         alerts
// @Produce      json
// @Param        id   path      string  true  "Alert ID"
// @Success      200  {object}  Alert
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /alerts/{id} [get]
func (h *Handler) GetAlert(c *gin.Context) {
	alert, err := h.Service.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// UpdateAlert godoc
// @Summary      Update an alert
// @Description  Partially update an alert. Sending targetingEnabled or targetSegments replaces the segments.
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Alert ID"
// @Param        alert  body      UpdateAlertRequest  true  "Fields to change"
// @Success      200    {object}  Alert
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      404    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /alerts/{id} [put]
func (h *Handler) UpdateAlert(c *gin.Context) {
	var req UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	alert, err := h.Service.UpdateAlert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert godoc
// @Summary      Delete an alert
// @Tags         alerts
// @Param        id   path      string  true  "Alert ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /alerts/{id} [delete]
func (h *Handler) DeleteAlert(c *gin.Context) {
	if err := h.Service.DeleteAlert(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFeatures godoc
// @Summary      List feature toggles
// @Description  Get every feature toggle, newest first
// @Tags         features
// @Produce      json
// @Success      200  {array}   Feature
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /features [get]
func (h *Handler) ListFeatures(c *gin.Context) {
	features, err := h.Service.ListFeatures(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, features)
}

// CreateFeature godoc
// @Summary      Create a feature toggle
// @Tags         features
// @Accept       json
// @Produce      json
// @Param        feature  body      CreateFeatureRequest  true  "Feature data"
// @Success      201      {object}  Feature
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      409      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /features [post]
func (h *Handler) CreateFeature(c *gin.Context) {
	var req CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	feature, err := h.Service.CreateFeature(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feature)
}

// GetFeature godoc
// @Summary      Get a feature toggle by ID
// @Tags         features
// @Produce      json
// @Param        id   path      string  true  "Feature ID"
// @Success      200  {object}  Feature
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /features/{id} [get]
func (h *Handler) GetFeature(c *gin.Context) {
	feature, err := h.Service.GetFeature(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, feature)
}

// UpdateFeature godoc
// @Summary      Update a feature toggle
// @Description  Partially update a feature toggle. Sending targetingEnabled or targetSegments replaces the segments.
// @Tags         features
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Feature ID"
// @Param        feature  body      UpdateFeatureRequest  true  "Fields to change"
// @Success      200      {object}  Feature
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Failure      409      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /features/{id} [put]
func (h *Handler) UpdateFeature(c *gin.Context) {
	var req UpdateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	feature, err := h.Service.UpdateFeature(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, feature)
}

// DeleteFeature godoc
// @Summary      Delete a feature toggle
// @Tags         features
// @Param        id   path      string  true  "Feature ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /features/{id} [delete]
func (h *Handler) DeleteFeature(c *gin.Context) {
	if err := h.Service.DeleteFeature(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAuditLogs godoc
// @Summary      List audit logs
// @Description  Get catalog audit logs, newest first
// @Tags         audit
// @Produce      json
// @Param        entity_type  query     string  false  "alert or feature"
// @Param        entity_id    query     string  false  "Entity ID"
// @Param        limit        query     int     false  "Maximum number of entries"
// @Success      200          {array}   AuditLog
// @Failure      400          {object}  errors.ErrorResponse
// @Failure      500          {object}  errors.ErrorResponse
// @Router       /audit/logs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	filter := AuditLogFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithMessage("limit must be an integer")))
			return
		}
		filter.Limit = limit
	}

	logs, err := h.Service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
