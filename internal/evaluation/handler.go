package evaluation

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flagpost/internal/logger"
	"flagpost/internal/targeting"
	"flagpost/pkg/errors"
)

type CheckFeaturesRequest struct {
	Features       []string               `json:"features" binding:"required"`
	UserAttributes *targeting.UserContext `json:"userAttributes"`
}

// WidgetRequest accepts the attributes either nested under userAttributes or
// flat at the top level. The nested form wins when both are present.
type WidgetRequest struct {
	UserAttributes *targeting.UserContext `json:"userAttributes"`
	targeting.UserContext
}

type StatusResponse struct {
	Status         string    `json:"status"`
	ActiveFeatures int       `json:"activeFeatures"`
	Timestamp      time.Time `json:"timestamp"`
}

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/features/check", h.CheckFeatures)
		v1.GET("/features/check", h.Status)
		v1.GET("/alerts/widget", h.WidgetAlertsQuery)
		v1.POST("/alerts/widget", h.WidgetAlerts)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.WarnwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) CheckFeatures(c *gin.Context) {
	var req CheckFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.ErrValidation.WithCause(err).WithMessage("features must be an array of names"))
		return
	}

	result := h.service.CheckFeatures(c.Request.Context(), req.Features, req.UserAttributes)
	c.JSON(http.StatusOK, result.Features)
}

func (h *Handler) Status(c *gin.Context) {
	count, err := h.service.ActiveFeatures(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status:         "ok",
		ActiveFeatures: count,
		Timestamp:      h.service.Now().UTC(),
	})
}

func (h *Handler) WidgetAlerts(c *gin.Context) {
	var req WidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		h.handleError(c, errors.ErrValidation.WithCause(err).WithMessage("malformed widget request"))
		return
	}

	attrs := req.UserContext
	if req.UserAttributes != nil {
		attrs = *req.UserAttributes
	}
	c.JSON(http.StatusOK, h.service.WidgetAlerts(c.Request.Context(), widgetUser(attrs)))
}

func (h *Handler) WidgetAlertsQuery(c *gin.Context) {
	var attrs targeting.UserContext
	if err := c.ShouldBindQuery(&attrs); err != nil {
		h.handleError(c, errors.ErrValidation.WithCause(err))
		return
	}
	c.JSON(http.StatusOK, h.service.WidgetAlerts(c.Request.Context(), widgetUser(attrs)))
}

// widgetUser returns nil when no segment attribute is set, so anonymous
// visitors only see untargeted alerts.
func widgetUser(attrs targeting.UserContext) *targeting.UserContext {
	if !attrs.HasSegmentAttributes() {
		return nil
	}
	return &attrs
}
