package controller

import (
	"fmt"
	"strconv"

	"classroom-messenger/database"
	"classroom-messenger/model"

	"github.com/gofiber/fiber/v2"
)

// CourseList returns the courses the caller is enrolled in.
func CourseList(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized",
			"data":    nil,
		})
	}

	var enrollments []model.Enrollment
	if err := database.Postgres.
		Where(&model.Enrollment{UserID: userID}).
		Preload("Course").
		Preload("Course.Instructor").
		Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	courses := []fiber.Map{}
	for _, enrollment := range enrollments {
		courses = append(courses, fiber.Map{
			"id":         enrollment.Course.ID,
			"name":       enrollment.Course.Name,
			"instructor": enrollment.Course.Instructor.DisplayName,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    courses,
	})
}

// CourseClassList returns a course's enrolled students, minus the caller so
// the class list only shows possible message targets.
func CourseClassList(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized",
			"data":    nil,
		})
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	course := new(model.Course)
	if err := database.Postgres.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Course not found",
			"data":    nil,
		})
	}

	var enrollments []model.Enrollment
	if err := database.Postgres.
		Where("course_id = ? AND user_id <> ?", courseID, userID).
		Preload("User").
		Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	students := []fiber.Map{}
	for _, enrollment := range enrollments {
		students = append(students, fiber.Map{
			"id":        enrollment.User.ID,
			"name":      enrollment.User.DisplayName,
			"user_type": enrollment.User.UserType,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"id":       course.ID,
			"name":     course.Name,
			"students": students,
		},
	})
}

// DevOpsSeedAndStatus seeds empty tables and reports row counts.
func DevOpsSeedAndStatus(c *fiber.Ctx) error {
	database.Seed(database.Postgres)

	var courses, users, enrollments int64
	database.Postgres.Model(&model.Course{}).Count(&courses)
	database.Postgres.Model(&model.User{}).Count(&users)
	database.Postgres.Model(&model.Enrollment{}).Count(&enrollments)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"courses":     courses,
			"users":       users,
			"enrollments": enrollments,
		},
	})
}

// DevOpsEnrollAll enrolls the caller in every course they are not in yet.
func DevOpsEnrollAll(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized",
			"data":    nil,
		})
	}

	var courses []model.Course
	if err := database.Postgres.Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	added := 0
	for _, course := range courses {
		var existing int64
		database.Postgres.
			Model(&model.Enrollment{}).
			Where(&model.Enrollment{UserID: userID, CourseID: course.ID}).
			Count(&existing)
		if existing > 0 {
			continue
		}
		if err := database.Postgres.Create(&model.Enrollment{UserID: userID, CourseID: course.ID}).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
				"data":    nil,
			})
		}
		added++
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("enrolled in %d course(s)", added),
		"data":    nil,
	})
}
