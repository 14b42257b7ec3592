package router

import (
	"github.com/gin-gonic/gin"

	"arbradar/server/handler"
)

func registerRadarRoutes(rg *gin.RouterGroup, h *handler.RadarHandler) {
	rg.GET("/opportunities", h.GetOpportunities)
	rg.GET("/symbols", h.GetSymbols)
	rg.POST("/cache/refresh", h.RefreshCache)
	rg.GET("/history", h.GetHistory)
	rg.GET("/history/counts", h.GetHistoryCounts)
	rg.GET("/stream", h.Stream)
}
