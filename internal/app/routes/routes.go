package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/controllers"
	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/middleware"
	"github.com/eduhealth/schoolhealth/internal/pkg/websocket"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth          *controllers.AuthController
	Parents       *controllers.AccountController
	Staff         *controllers.AccountController
	Classes       *controllers.ClassController
	Students      *controllers.StudentController
	HealthRecords *controllers.HealthRecordController
	Treatments    *controllers.TreatmentController
	Medicines     *controllers.MedicineController
	Deliveries    *controllers.DeliveryController
	Examinations  *controllers.CampaignController
	Vaccinations  *controllers.CampaignController
	Notifications *controllers.NotificationController
	Feedbacks     *controllers.FeedbackController
	WebSocket     *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(http.StatusOK, "", gin.H{"status": "ok"}))
	})

	// --- Public Auth routes ---
	v1.POST("/auth/login", c.Auth.Login)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Parents reach the routes below their own data; services and the
	// parentId check in the controllers keep them inside it.
	staffOnly := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleStaff)
	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	authenticated.GET("/auth/me", c.Auth.Me)

	parents := authenticated.Group("/parents", staffOnly)
	{
		parents.POST("", c.Parents.Create)
		parents.GET("", c.Parents.GetAll)
		parents.GET("/:id", c.Parents.GetByID)
		parents.PUT("/:id", c.Parents.Update)
		parents.DELETE("/:id", c.Parents.Delete)
		parents.GET("/:id/students", c.Parents.Children)
	}

	staff := authenticated.Group("/staff", adminOnly)
	{
		staff.POST("", c.Staff.Create)
		staff.GET("", c.Staff.GetAll)
		staff.GET("/:id", c.Staff.GetByID)
		staff.PUT("/:id", c.Staff.Update)
		staff.DELETE("/:id", c.Staff.Delete)
	}

	classes := authenticated.Group("/classes", staffOnly)
	{
		classes.POST("", c.Classes.CreateClass)
		classes.GET("", c.Classes.GetAllClasses)
		classes.GET("/:id", c.Classes.GetClassByID)
		classes.PUT("/:id", c.Classes.UpdateClass)
		classes.DELETE("/:id", c.Classes.DeleteClass)
		classes.GET("/:id/students", c.Classes.GetClassStudents)
	}

	students := authenticated.Group("/students")
	{
		students.GET("/:id", c.Students.GetStudentByID)
		students.GET("/parent/:parentId", c.Students.GetStudentsByParent)

		students.POST("", staffOnly, c.Students.CreateStudent)
		students.GET("", staffOnly, c.Students.GetStudents)
		students.GET("/class/:classId", staffOnly, c.Students.GetStudentsByClass)
		students.PUT("/:id", staffOnly, c.Students.UpdateStudent)
		students.DELETE("/:id", staffOnly, c.Students.DeleteStudent)
	}

	records := authenticated.Group("/health-records", staffOnly)
	{
		records.POST("", c.HealthRecords.Create)
		records.GET("", c.HealthRecords.GetAll)
		records.GET("/:id", c.HealthRecords.GetByID)
		records.GET("/student/:studentId", c.HealthRecords.GetByStudent)
		records.PUT("/:id", c.HealthRecords.Update)
		records.DELETE("/:id", c.HealthRecords.Delete)
	}

	treatments := authenticated.Group("/treatment-histories", staffOnly)
	{
		treatments.POST("", c.Treatments.Create)
		treatments.GET("", c.Treatments.GetAll)
		treatments.GET("/:id", c.Treatments.GetByID)
		treatments.GET("/student/:studentId", c.Treatments.GetByStudent)
		treatments.DELETE("/:id", c.Treatments.Delete)
	}

	medicines := authenticated.Group("/medicine-storages", staffOnly)
	{
		medicines.POST("", c.Medicines.Create)
		medicines.GET("", c.Medicines.GetAll)
		medicines.GET("/:id", c.Medicines.GetByID)
		medicines.PUT("/:id", c.Medicines.Update)
		medicines.DELETE("/:id", c.Medicines.Delete)
	}

	deliveries := authenticated.Group("/medicine-deliveries")
	{
		deliveries.POST("", c.Deliveries.Create)
		deliveries.GET("/:id", c.Deliveries.GetByID)
		deliveries.GET("/parent/:parentId", c.Deliveries.GetByParent)
		deliveries.PUT("/:id", c.Deliveries.Update)
		deliveries.PATCH("/:id/status", c.Deliveries.UpdateStatus)
		deliveries.DELETE("/:id", c.Deliveries.Delete)

		deliveries.GET("", staffOnly, c.Deliveries.GetAll)
		deliveries.GET("/student/:studentId", staffOnly, c.Deliveries.GetByStudent)
	}

	mountCampaign(authenticated.Group("/health-examinations"), c.Examinations, staffOnly)
	mountCampaign(authenticated.Group("/vaccination-schedules"), c.Vaccinations, staffOnly)

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("/ws", c.WebSocket.HandleConnection)
		notifications.GET("/:id", c.Notifications.GetByID)
		notifications.GET("/parent/:parentId", c.Notifications.GetByParent)
		notifications.GET("/parent/:parentId/unread-count", c.Notifications.CountUnread)
		notifications.PATCH("/parent/:parentId/read-all", c.Notifications.MarkAllAsRead)
		notifications.PATCH("/:id/read", c.Notifications.MarkAsRead)
		notifications.DELETE("/:id", c.Notifications.Delete)

		notifications.POST("", staffOnly, c.Notifications.Create)
		notifications.GET("", staffOnly, c.Notifications.GetAll)
		notifications.GET("/student/:studentId", staffOnly, c.Notifications.GetByStudent)
	}

	feedbacks := authenticated.Group("/feedbacks")
	{
		feedbacks.POST("", c.Feedbacks.Create)
		feedbacks.GET("/:id", c.Feedbacks.GetByID)
		feedbacks.GET("/parent/:parentId", c.Feedbacks.GetByParent)
		feedbacks.PUT("/:id", c.Feedbacks.Update)
		feedbacks.DELETE("/:id", c.Feedbacks.Delete)

		feedbacks.GET("", staffOnly, c.Feedbacks.GetAll)
		feedbacks.PATCH("/:id/respond", staffOnly, c.Feedbacks.Respond)
	}
}

// mountCampaign registers the shared campaign workflow under one kind's prefix
func mountCampaign(group *gin.RouterGroup, c *controllers.CampaignController, staffOnly gin.HandlerFunc) {
	// Parent-facing
	group.GET("/:id", c.GetByID)
	group.GET("/parent/:parentId", c.GetByParent)
	group.PATCH("/:id/status", c.UpdateStatus)

	// Staff
	group.POST("", staffOnly, c.Create)
	group.GET("", staffOnly, c.List)
	group.GET("/events", staffOnly, c.ListEvents)
	group.GET("/events/:eventId", staffOnly, c.GetEventDetail)
	group.GET("/events/:eventId/classes/:classId", staffOnly, c.GetClassDetail)
	group.DELETE("/events/:eventId", staffOnly, c.DeleteEvent)
	group.GET("/student/:studentId", staffOnly, c.GetByStudent)
	group.PATCH("/:id/result", staffOnly, c.UpdateResult)
	group.DELETE("/:id", staffOnly, c.Delete)
}
