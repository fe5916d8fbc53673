package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/suara-kampus/band-manager/pkg/model"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/internal/handler"
	"github.com/gin-gonic/gin"
)

func NewAuthorization(logger *slog.Logger, userService userService) AuthorizationMiddleware {
	return AuthorizationMiddleware{
		logger:      logger,
		userService: userService,
	}
}

type AuthorizationMiddleware struct {
	logger      *slog.Logger
	userService userService
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

// RequireManager allows only COMMISSIONER and PENGURUS members through. The
// organization level is re-read from storage so a stale token can't keep a
// demoted member on manager endpoints.
func (m AuthorizationMiddleware) RequireManager(c *gin.Context) {
	u, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.AbortWithError(http.StatusUnauthorized, err)
		return
	}

	current, err := m.userService.FindById(c.Request.Context(), u.ID)
	if err != nil {
		if errdef.IsNotFound(err) {
			_ = c.AbortWithError(http.StatusUnauthorized, err)
		} else {
			_ = c.Error(err)
		}
		return
	}

	if !current.IsManager() {
		m.logger.ErrorContext(c.Request.Context(), "User tried to access manager restricted endpoint", "user", u.ID)
		_ = c.AbortWithError(http.StatusForbidden, errors.New("manager access denied"))
		return
	}

	// Extra precaution to ensure that no errors has occurred, and it's safe to call c.Next()
	if len(c.Errors.Errors()) > 0 {
		c.Abort()
		return
	} else {
		c.Next()
	}
}
