package profile

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"flagpost/internal/logger"
	"flagpost/pkg/errors"
)

type Handler struct {
	repo   Repository
	now    func() time.Time
	logger logger.Logger
}

func NewHandler(repo Repository, log logger.Logger) *Handler {
	return &Handler{repo: repo, now: time.Now, logger: log}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/api/v1/users")
	{
		users.POST("/profile", h.UpsertProfile)
		users.GET("/profile", h.GetProfile)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// UpsertProfile godoc
// @Summary      Store user attributes
// @Description  Create or replace the segment attributes of a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        profile  body      UpsertProfileRequest  true  "User attributes"
// @Success      200      {object}  Profile
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /users/profile [post]
func (h *Handler) UpsertProfile(c *gin.Context) {
	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "malformed request body"
		if _, ok := err.(validator.ValidationErrors); ok {
			msg = "userId is required"
		}
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithMessage(msg)))
		return
	}

	p, err := h.repo.Upsert(c.Request.Context(), req, h.now().UTC())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetProfile godoc
// @Summary      Get user attributes
// @Tags         users
// @Produce      json
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  Profile
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /users/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithMessage("userId is required")))
		return
	}

	p, err := h.repo.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
