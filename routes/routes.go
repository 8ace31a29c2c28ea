package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-ops/controllers"
	"hotel-ops/middleware"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Rooms        *controllers.RoomController
	Reservations *controllers.ReservationController
	Guests       *controllers.GuestController
	Statistics   *controllers.StatisticsController
}

type Options struct {
	CORSOrigins    string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *zap.Logger
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controllers onto a gin engine.
func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	origins := parseCorsOrigins(opts.CORSOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Writes share one per-client limiter.
	writes := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware()

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", ctl.Rooms.ListRooms)
			rooms.POST("", writes, ctl.Rooms.CreateRoom)
			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.PUT("/:id", writes, ctl.Rooms.UpdateRoom)
			rooms.PATCH("/:id", writes, ctl.Rooms.UpdateRoom)
			rooms.DELETE("/:id", writes, ctl.Rooms.DeleteRoom)
			rooms.GET("/:id/availability", ctl.Rooms.GetAvailability)
			rooms.GET("/:id/active-reservation", ctl.Rooms.GetActiveReservation)
		}

		reservations := api.Group("/reservations")
		{
			// must stay ahead of /:id
			reservations.GET("/future", ctl.Reservations.ListFuture)
			reservations.POST("", writes, ctl.Reservations.CreateReservation)
			reservations.GET("/:id", ctl.Reservations.GetReservation)
			reservations.GET("/:id/total", ctl.Reservations.GetTotal)
			reservations.POST("/:id/cancel", writes, ctl.Reservations.Cancel)
			reservations.POST("/:id/check-in", writes, ctl.Reservations.CheckIn)
			reservations.POST("/:id/check-out", writes, ctl.Reservations.CheckOut)
		}

		guests := api.Group("/guests")
		{
			guests.POST("/:id/expenses", writes, ctl.Guests.AddExpense)
			guests.GET("/:id/expenses", ctl.Guests.ListExpenses)
			guests.GET("/:id/stay-history", ctl.Guests.StayHistory)
		}
		api.GET("/stay-history", ctl.Guests.AllStayHistory)

		api.GET("/statistics", ctl.Statistics.GetStatistics)
		api.POST("/sync", writes, ctl.Statistics.RunSync)
	}

	return r
}
