package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"arbradar/server/service"
)

type RadarHandler struct {
	radarService *service.RadarService
	logger       *slog.Logger
	upgrader     websocket.Upgrader
}

func NewRadarHandler(radarService *service.RadarService, logger *slog.Logger) *RadarHandler {
	return &RadarHandler{
		radarService: radarService,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is served from a different origin in dev.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetOpportunities returns the latest published table. No side effects.
func (h *RadarHandler) GetOpportunities(c *gin.Context) {
	c.JSON(http.StatusOK, h.radarService.Snapshot())
}

// GetSymbols returns the current symbol universe.
func (h *RadarHandler) GetSymbols(c *gin.Context) {
	symbols, err := h.radarService.Symbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols, "count": len(symbols)})
}

// RefreshCache forces a symbol universe refresh, bypassing the TTL.
func (h *RadarHandler) RefreshCache(c *gin.Context) {
	if err := h.radarService.RefreshSymbols(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// GetHistory returns persisted opportunity rows, optionally per symbol.
func (h *RadarHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	opps, err := h.radarService.History(c.Query("symbol"), limit)
	if err != nil {
		if errors.Is(err, service.ErrHistoryDisabled) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, opps)
}

// GetHistoryCounts returns row counts grouped by symbol.
func (h *RadarHandler) GetHistoryCounts(c *gin.Context) {
	counts, err := h.radarService.HistoryCounts()
	if err != nil {
		if errors.Is(err, service.ErrHistoryDisabled) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Stream upgrades to a websocket and pushes the current snapshot followed
// by every newly published one until the client disconnects.
func (h *RadarHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.radarService.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(h.radarService.Snapshot()); err != nil {
		return
	}

	// Reader goroutine: its only job is to detect the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case snapshot := <-snapshots:
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}
}

// Health is a liveness probe.
func (h *RadarHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
