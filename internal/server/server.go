package server

import (
	"log"
	"strings"
	"time"

	"anoa.com/akademia/internal/config"
	"anoa.com/akademia/internal/middleware"
	"anoa.com/akademia/pkg/authz"
	"anoa.com/akademia/pkg/cache"
	"anoa.com/akademia/pkg/storage"

	assignmentHttp "anoa.com/akademia/internal/modules/assignment/delivery/http"
	assignmentRepo "anoa.com/akademia/internal/modules/assignment/repository"
	assignmentService "anoa.com/akademia/internal/modules/assignment/service"

	attendanceHttp "anoa.com/akademia/internal/modules/attendance/delivery/http"
	attendanceRepo "anoa.com/akademia/internal/modules/attendance/repository"
	attendanceService "anoa.com/akademia/internal/modules/attendance/service"

	classHttp "anoa.com/akademia/internal/modules/class/delivery/http"
	classRepo "anoa.com/akademia/internal/modules/class/repository"
	classService "anoa.com/akademia/internal/modules/class/service"

	enrollmentHttp "anoa.com/akademia/internal/modules/enrollment/delivery/http"
	enrollmentRepo "anoa.com/akademia/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/akademia/internal/modules/enrollment/service"

	gradeHttp "anoa.com/akademia/internal/modules/grade/delivery/http"
	gradeRepo "anoa.com/akademia/internal/modules/grade/repository"
	gradeService "anoa.com/akademia/internal/modules/grade/service"

	notiHttp "anoa.com/akademia/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/akademia/internal/modules/notification/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"

	orgHttp "anoa.com/akademia/internal/modules/organization/delivery/http"
	orgRepo "anoa.com/akademia/internal/modules/organization/repository"
	orgService "anoa.com/akademia/internal/modules/organization/service"

	parentHttp "anoa.com/akademia/internal/modules/parent/delivery/http"
	parentRepo "anoa.com/akademia/internal/modules/parent/repository"
	parentService "anoa.com/akademia/internal/modules/parent/service"

	userHttp "anoa.com/akademia/internal/modules/user/delivery/http"
	userRepo "anoa.com/akademia/internal/modules/user/repository"
	userService "anoa.com/akademia/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		// Avatars are the only storage consumer, so the server still runs
		// without Cloudinary credentials.
		log.Printf("cloudinary storage disabled: %v", err)
		imageStorage = nil
	}

	queryCache := cache.New(redisClient, cfg.CacheTTL)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	authSvc := userService.NewAuthService(users)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := userService.NewProfileService(users, imageStorage)
	profileHandler := userHttp.NewProfileHandler(profileSvc)

	organizationRepository := orgRepo.NewOrganizationRepository(db)
	organizationSvc := orgService.NewOrganizationService(organizationRepository, queryCache, notificationSvc)
	organizationHandler := orgHttp.NewOrganizationHandler(organizationSvc)

	classRepository := classRepo.NewClassRepository(db)
	classSvc := classService.NewClassService(classRepository, queryCache, notificationSvc)
	classHandler := classHttp.NewClassHandler(classSvc)

	enrollmentRepository := enrollmentRepo.NewEnrollmentRepository(db)
	enrollmentSvc := enrollmentService.NewEnrollmentService(enrollmentRepository, classRepository, users, queryCache, notificationSvc)
	enrollmentHandler := enrollmentHttp.NewEnrollmentHandler(enrollmentSvc)

	assignmentRepository := assignmentRepo.NewAssignmentRepository(db)
	assignmentSvc := assignmentService.NewAssignmentService(assignmentRepository, classRepository, queryCache, notificationSvc)
	assignmentHandler := assignmentHttp.NewAssignmentHandler(assignmentSvc)

	gradeRepository := gradeRepo.NewGradeRepository(db)
	gradeSvc := gradeService.NewGradeService(gradeRepository, assignmentRepository, classRepository, queryCache, notificationSvc)
	gradeHandler := gradeHttp.NewGradeHandler(gradeSvc)

	attendanceRepository := attendanceRepo.NewAttendanceRepository(db)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepository, classRepository, queryCache, notificationSvc)
	attendanceHandler := attendanceHttp.NewAttendanceHandler(attendanceSvc)

	parentRepository := parentRepo.NewParentRepository(db)
	parentSvc := parentService.NewParentService(parentRepository, users, enrollmentSvc, gradeSvc, attendanceSvc)
	parentHandler := parentHttp.NewParentHandler(parentSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Organizations are readable by any signed-in user
		protected.GET("/organizations", organizationHandler.ListOrganizations)
		protected.GET("/organizations/:org_id", organizationHandler.GetOrganization)

		// Admin routes: user provisioning, role grants, parent links
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRoles(authz.RoleSystemOwner, authz.RoleOrgAdmin))
		{
			adminGroup.POST("/users", authHandler.Register)
			adminGroup.POST("/roles", authHandler.AssignRole)
			adminGroup.DELETE("/roles/:id", authHandler.RevokeRole)
			adminGroup.POST("/links", parentHandler.CreateLink)
			adminGroup.DELETE("/links/:link_id", parentHandler.DeleteLink)
		}

		// Organization management is reserved for the system owner
		ownerGroup := protected.Group("/organizations")
		ownerGroup.Use(authMiddleware.RequireRoles(authz.RoleSystemOwner))
		{
			ownerGroup.POST("", organizationHandler.CreateOrganization)
			ownerGroup.PUT("/:org_id", organizationHandler.UpdateOrganization)
			ownerGroup.DELETE("/:org_id", organizationHandler.DeleteOrganization)
		}

		// Teacher routes: classes and everything scoped under them
		teacherGroup := protected.Group("")
		teacherGroup.Use(authMiddleware.RequireRoles(authz.TeacherRoles...))
		{
			teacherGroup.GET("/classes", classHandler.ListClasses)
			teacherGroup.POST("/classes", classHandler.CreateClass)
			teacherGroup.GET("/classes/:class_id", classHandler.GetClass)
			teacherGroup.PUT("/classes/:class_id", classHandler.UpdateClass)
			teacherGroup.DELETE("/classes/:class_id", classHandler.DeleteClass)

			teacherGroup.GET("/classes/:class_id/enrollments", enrollmentHandler.ListEnrollments)
			teacherGroup.POST("/classes/:class_id/enrollments", enrollmentHandler.EnrollStudent)
			teacherGroup.GET("/classes/:class_id/available-students", enrollmentHandler.AvailableStudents)
			teacherGroup.POST("/classes/:class_id/roster-import", enrollmentHandler.ImportRoster)
			teacherGroup.DELETE("/enrollments/:enrollment_id", enrollmentHandler.UnenrollStudent)

			teacherGroup.GET("/classes/:class_id/assignments", assignmentHandler.ListAssignments)
			teacherGroup.POST("/classes/:class_id/assignments", assignmentHandler.CreateAssignment)
			teacherGroup.DELETE("/assignments/:assignment_id", assignmentHandler.DeleteAssignment)

			teacherGroup.GET("/assignments/:assignment_id/grades", gradeHandler.ListByAssignment)
			teacherGroup.POST("/assignments/:assignment_id/grades", gradeHandler.UpsertGrade)

			teacherGroup.GET("/classes/:class_id/attendance", attendanceHandler.ListByClass)
			teacherGroup.POST("/classes/:class_id/attendance", attendanceHandler.RecordAttendance)
			teacherGroup.GET("/classes/:class_id/attendance/export", attendanceHandler.ExportSheet)
		}

		// Student routes: read-only views of the student's own records
		studentGroup := protected.Group("/me")
		studentGroup.Use(authMiddleware.RequireRoles(authz.RoleStudent))
		{
			studentGroup.GET("/enrollments", enrollmentHandler.MyEnrollments)
			studentGroup.GET("/grades", gradeHandler.MyGrades)
			studentGroup.GET("/attendance", attendanceHandler.MyAttendance)
		}

		// Parent routes: reads gated on a parent-student link
		parentGroup := protected.Group("/parent")
		parentGroup.Use(authMiddleware.RequireRoles(authz.RoleParent))
		{
			parentGroup.GET("/children", parentHandler.MyChildren)
			parentGroup.GET("/children/:student_id/enrollments", parentHandler.ChildEnrollments)
			parentGroup.GET("/children/:student_id/grades", parentHandler.ChildGrades)
			parentGroup.GET("/children/:student_id/attendance", parentHandler.ChildAttendance)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
