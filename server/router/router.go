package router

import (
	"github.com/gin-gonic/gin"

	"arbradar/server/handler"
)

type Config struct {
	RadarHandler *handler.RadarHandler
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	router.GET("/health", cfg.RadarHandler.Health)

	api := router.Group("/v1/")
	registerRadarRoutes(api, cfg.RadarHandler)

	return router
}
