package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotel-frontdesk/controllers"
	"hotel-frontdesk/middleware"
)

// Controllers groups every handler the router serves.
type Controllers struct {
	Rooms        *controllers.RoomController
	RoomTypes    *controllers.RoomTypeController
	Stays        *controllers.StayController
	Reservations *controllers.ReservationController
	SalesReport  *controllers.SalesReportController
	Settings     *controllers.SettingsController
}

func SetupRouter(ctl Controllers, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	if len(origins) == 0 {
		origins = []string{"*"}
	}
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
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", ctl.Rooms.GetRooms)
			// static paths before /:id
			rooms.GET("/stats", ctl.Rooms.GetRoomStats)
			rooms.POST("/due-out", ctl.Rooms.MarkDueOut)

			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.POST("", ctl.Rooms.CreateRoom)
			rooms.PATCH("/:id/status", ctl.Rooms.UpdateRoomStatus)
			rooms.POST("/:id/checkout", ctl.Rooms.CheckoutRoom)
			rooms.PATCH("/:id/clean", ctl.Rooms.CleanRoom)
			rooms.GET("/:id/availability", ctl.Rooms.CheckAvailability)
		}

		roomTypes := api.Group("/room-types")
		{
			roomTypes.GET("", ctl.RoomTypes.GetRoomTypes)
			roomTypes.POST("", ctl.RoomTypes.CreateRoomType)
		}

		stays := api.Group("/stays")
		{
			stays.GET("", ctl.Stays.GetStays)
			stays.POST("", ctl.Stays.CheckIn)
			stays.GET("/:id", ctl.Stays.GetStay)
			stays.GET("/:id/payments", ctl.Stays.GetStayPayments)
			stays.POST("/:id/payments", ctl.Stays.RecordPayment)
			stays.PATCH("/:id/stayover", ctl.Stays.Stayover)
		}

		reservations := api.Group("/reservations")
		{
			reservations.GET("", ctl.Reservations.GetReservations)
			reservations.POST("", ctl.Reservations.CreateReservation)
			reservations.GET("/:id", ctl.Reservations.GetReservation)
			reservations.DELETE("/:id", ctl.Reservations.CancelReservation)
		}

		sales := api.Group("/sales-report")
		{
			sales.GET("", ctl.SalesReport.GetSalesReport)
			sales.GET("/export", ctl.SalesReport.ExportSalesReport)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/hotel", ctl.Settings.GetHotelSettings)
			settings.PUT("/hotel", ctl.Settings.UpdateHotelSettings)
		}
	}

	return r
}
