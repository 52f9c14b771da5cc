package handler

import (
	"strings"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/auth/processor"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "User-ID"
	isAdminKey = "Is-Admin"
)

type Handler struct {
	authProcessor processor.AuthProcessor
	logger        *observability.Logger
}

func New(authProcessor processor.AuthProcessor, logger *observability.Logger) Handler {
	return Handler{authProcessor: authProcessor, logger: logger}
}

// HandleJWTMiddleware validates the bearer token and sets User-ID for the
// handlers behind it.
func (h *Handler) HandleJWTMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	tokenHeader := c.GetHeader("Authorization")

	if tokenHeader == "" || !strings.HasPrefix(tokenHeader, "Bearer ") {
		apierrors.RespondWithError(c, apierrors.Unauthorized("Authorization token is missing or invalid"))
		c.Abort()
		return
	}

	tokenString := strings.TrimPrefix(tokenHeader, "Bearer ")

	identity, err := h.authProcessor.ValidateJWTToken(ctx, tokenString)
	if err != nil {
		apierrors.RespondWithError(c, apierrors.Unauthorized(err.Error()))
		c.Abort()
		return
	}

	c.Set(userIDKey, identity.UserID.String())
	c.Set(isAdminKey, identity.IsAdmin)
	c.Request = c.Request.WithContext(observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: identity.UserID.String()},
	))
	c.Next()
}

// HandleRequireAdmin rejects callers without the admin role. It must run
// after HandleJWTMiddleware.
func (h *Handler) HandleRequireAdmin(c *gin.Context) {
	if !c.GetBool(isAdminKey) {
		h.logger.Warn(c.Request.Context(), "non-admin caller on admin route")
		apierrors.RespondWithError(c, apierrors.Forbidden("Admin access required"))
		c.Abort()
		return
	}
	c.Next()
}
