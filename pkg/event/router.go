package event

import (
	"github.com/suara-kampus/band-manager/internal/middleware"
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.RouterGroup, authenticationMiddleware middleware.AuthenticationMiddleware, authorizationMiddleware middleware.AuthorizationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)

	tokenAuthenticationRouter.POST("/events", handler.Create)
	tokenAuthenticationRouter.GET("/events", handler.FindAll)
	tokenAuthenticationRouter.GET("/events/:id", handler.FindById)
	tokenAuthenticationRouter.PUT("/events/:id", handler.Update)
	tokenAuthenticationRouter.PUT("/events/:id/submit", handler.Submit)

	tokenAuthenticationRouter.POST("/events/:id/personnel/:personnelId/register", handler.Register)
	tokenAuthenticationRouter.DELETE("/events/:id/personnel/:personnelId/registration", handler.CancelRegistration)

	tokenAuthenticationRouter.POST("/events/:id/songs", handler.AddSong)
	tokenAuthenticationRouter.PUT("/events/:id/songs/order", handler.ReorderSongs)
	tokenAuthenticationRouter.PUT("/events/:id/songs/:songId", handler.UpdateSong)
	tokenAuthenticationRouter.DELETE("/events/:id/songs/:songId", handler.DeleteSong)

	managerRouter := tokenAuthenticationRouter.Group("")
	managerRouter.Use(authorizationMiddleware.RequireManager)
	managerRouter.DELETE("/events/:id", handler.Delete)
	managerRouter.PUT("/events/:id/publish", handler.Publish)
	managerRouter.PUT("/events/:id/reject", handler.Reject)
	managerRouter.PUT("/events/:id/finish", handler.Finish)
	managerRouter.POST("/events/:id/personnel", handler.AddSlot)
	managerRouter.PUT("/events/:id/personnel/:personnelId/approve", handler.ApproveRegistration)
	managerRouter.PUT("/events/:id/personnel/:personnelId/reject", handler.RejectRegistration)
}
