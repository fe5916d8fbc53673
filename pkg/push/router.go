package push

import (
	"github.com/suara-kampus/band-manager/internal/middleware"
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.RouterGroup, authenticationMiddleware middleware.AuthenticationMiddleware, authorizationMiddleware middleware.AuthorizationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.POST("/push/subscriptions", handler.Subscribe)
	tokenAuthenticationRouter.GET("/push/subscriptions", handler.List)
	tokenAuthenticationRouter.DELETE("/push/subscriptions/:id", handler.Unsubscribe)

	managerRouter := tokenAuthenticationRouter.Group("")
	managerRouter.Use(authorizationMiddleware.RequireManager)
	managerRouter.POST("/push/cleanup", handler.Cleanup)
}
