package user

import (
	"github.com/suara-kampus/band-manager/internal/middleware"
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.RouterGroup, authenticationMiddleware middleware.AuthenticationMiddleware, authorizationMiddleware middleware.AuthorizationMiddleware, handler Handler) {
	r.POST("/users", handler.SignUp)
	r.GET("/users/validate/:token", handler.ValidateEmail)
	r.POST("/refresh", handler.RefreshToken)
	r.POST("/users/request-reset", handler.RequestPasswordReset)
	r.POST("/users/reset-password", handler.ResetPassword)

	basicAuthenticationRouter := r.Group("")
	basicAuthenticationRouter.Use(authenticationMiddleware.BasicAuthentication)
	basicAuthenticationRouter.POST("/tokens", handler.SignIn)

	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.GET("/me", handler.Me)
	tokenAuthenticationRouter.DELETE("/users", handler.SignOut)
	tokenAuthenticationRouter.GET("/users/:id", handler.FindById)

	managerRouter := tokenAuthenticationRouter.Group("")
	managerRouter.Use(authorizationMiddleware.RequireManager)
	managerRouter.GET("/users", handler.FindAll)
	managerRouter.PUT("/users/:id", handler.Update)
	managerRouter.DELETE("/users/:id", handler.Delete)
}
