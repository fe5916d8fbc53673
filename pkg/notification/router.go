package notification

import (
	"github.com/suara-kampus/band-manager/internal/middleware"
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.RouterGroup, authenticationMiddleware middleware.AuthenticationMiddleware, authorizationMiddleware middleware.AuthorizationMiddleware, cronAuthentication gin.HandlerFunc, handler Handler) {
	cronRouter := r.Group("")
	cronRouter.Use(cronAuthentication)
	cronRouter.POST("/notifications/schedule-reminders", handler.ScheduleReminders)

	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.GET("/notifications", handler.List)
	tokenAuthenticationRouter.GET("/notifications/subscribe", handler.Subscribe)
	tokenAuthenticationRouter.PUT("/notifications/read-all", handler.MarkAllRead)
	tokenAuthenticationRouter.PUT("/notifications/:id/read", handler.MarkRead)

	managerRouter := tokenAuthenticationRouter.Group("")
	managerRouter.Use(authorizationMiddleware.RequireManager)
	managerRouter.GET("/notifications/schedule-reminders", handler.TriggerReminders)
}
