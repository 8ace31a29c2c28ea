package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

type StatisticsController struct {
	StatsSvc *services.StatisticsService
	Sync     *services.Synchronizer
}

func NewStatisticsController(stats *services.StatisticsService, sync *services.Synchronizer) *StatisticsController {
	return &StatisticsController{StatsSvc: stats, Sync: sync}
}

// GET /api/statistics
func (sc *StatisticsController) GetStatistics(c *gin.Context) {
	stats, err := sc.StatsSvc.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}

// POST /api/sync runs a sweep now, ignoring the debounce window.
func (sc *StatisticsController) RunSync(c *gin.Context) {
	report, err := sc.Sync.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, report)
}
