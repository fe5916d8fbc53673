package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/suara-kampus/band-manager/internal/middleware"
	"github.com/suara-kampus/band-manager/pkg/event"
	"github.com/suara-kampus/band-manager/pkg/health"
	"github.com/suara-kampus/band-manager/pkg/notification"
	"github.com/suara-kampus/band-manager/pkg/push"
	"github.com/suara-kampus/band-manager/pkg/user"
)

type Handlers struct {
	User         user.Handler
	Event        event.Handler
	Notification notification.Handler
	Push         push.Handler
}

func GetEngine(logger *slog.Logger, basePath, cronSecret string, authentication middleware.AuthenticationMiddleware, authorization middleware.AuthorizationMiddleware, handlers Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sloggin.New(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("authorization")
	r.Use(cors.New(corsConfig))

	r.Use(middleware.ErrorHandler())

	router := r.Group(basePath)

	router.GET("/health", health.Health)

	user.Routes(router, authentication, authorization, handlers.User)
	event.Routes(router, authentication, authorization, handlers.Event)
	notification.Routes(router, authentication, authorization, middleware.CronAuthentication(cronSecret), handlers.Notification)
	push.Routes(router, authentication, authorization, handlers.Push)

	return r
}
