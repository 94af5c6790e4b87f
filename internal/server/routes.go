package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, sessionHandler *SessionHandler, catalogHandler *CatalogHandler) {
	api := router.Group("/api")

	api.GET("/tables", catalogHandler.ListTables)

	api.POST("/sessions", sessionHandler.CreateSession)
	sessions := api.Group("/sessions/:id")
	{
		sessions.GET("", sessionHandler.GetSession)
		sessions.DELETE("", sessionHandler.DeleteSession)

		sessions.POST("/tables/:table", sessionHandler.ToggleTable)
		sessions.POST("/tables/:table/fields", sessionHandler.ToggleField)
		sessions.PUT("/tables/:table/relationship", sessionHandler.SetRelationship)
		sessions.GET("/tables/:table/preview", sessionHandler.Preview)

		sessions.PUT("/quotes", sessionHandler.SetQuotes)
		sessions.GET("/query", sessionHandler.GetQuery)
		sessions.PUT("/query", sessionHandler.EditQuery)
		sessions.POST("/assistant", sessionHandler.Reengage)
		sessions.GET("/diagnostics", sessionHandler.Diagnostics)
		sessions.POST("/submit", sessionHandler.Submit)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
