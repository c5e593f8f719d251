package router

import (
	"classroom-messenger/controller"
	"classroom-messenger/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App) {
	api := app.Group("/v1", logger.New())

	// Messenger
	messenger := api.Group("/messenger")
	messenger.Get("/file/:id", controller.MessengerFile)
	messenger.Get("/conversations", middleware.JWT(), middleware.OTP(), controller.MessengerRecentConversations)
	messenger.Get("/conversations/:id/messages", middleware.JWT(), middleware.OTP(), controller.MessengerConversationMessages)
	messenger.Post("/upload", middleware.JWT(), middleware.OTP(), controller.MessengerUpload)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", controller.AuthSignup)
	auth.Post("/signin", controller.AuthSignin)
	auth.Post("/federated", controller.AuthFederated)
	auth.Post("/token/renew", controller.AuthTokenRenew)
	auth.Post("/2fa/secret", middleware.JWT(), middleware.OTP(), controller.AuthOtpSecret)
	auth.Post("/2fa/verify", middleware.JWT(), middleware.OTP(), controller.AuthOtpVerify)
	auth.Post("/2fa/validate", middleware.JWT(), controller.AuthOtpValidate)
	auth.Post("/2fa/disable", middleware.JWT(), middleware.OTP(), controller.AuthOtpDisable)

	// User
	user := api.Group("/user", middleware.JWT(), middleware.OTP())
	user.Get("/profile", controller.UserProfile)

	// Courses
	courses := api.Group("/courses", middleware.JWT(), middleware.OTP())
	courses.Get("/", controller.CourseList)
	courses.Get("/:id/students", controller.CourseClassList)

	// DevOps
	devops := api.Group("/devops", middleware.JWT(), middleware.OTP(), middleware.RBAC())
	devops.Get("/seed", controller.DevOpsSeedAndStatus)
	devops.Get("/enroll", controller.DevOpsEnrollAll)

	// Static uploads from the local storage backend
	app.Static("/uploads", "./uploads")
}
