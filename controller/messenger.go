package controller

import (
	"encoding/base64"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"classroom-messenger/database"
	"classroom-messenger/messenger"
	"classroom-messenger/model"
	"classroom-messenger/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Wired from main before the routers are mounted.
var (
	Messenger *messenger.Service
	Files     storage.Storage
)

// Upload policy, enforced here so invalid attachments never reach the
// message store.
const maxAttachmentSize = 25 << 20

var allowedAttachmentExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// currentUserID resolves the caller once from the JWT claims. Every
// messenger operation takes it explicitly from here.
func currentUserID(c *fiber.Ctx) (uint, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return 0, messenger.ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, messenger.ErrUnauthenticated
	}
	idStr, ok := claims["id"].(string)
	if !ok {
		return 0, messenger.ErrUnauthenticated
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, messenger.ErrUnauthenticated
	}
	return uint(id), nil
}

// MessengerRecentConversations returns the caller's recent-conversations
// list; ?exclude=<id> skips the conversation already on screen.
func MessengerRecentConversations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized",
			"data":    nil,
		})
	}

	exclude, _ := strconv.ParseUint(c.Query("exclude"), 10, 64)

	summaries, err := Messenger.RecentConversations(c.Context(), userID, uint(exclude))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    summaries,
	})
}

// MessengerConversationMessages returns a conversation's history in creation
// order and moves the caller's read watermark to now.
func MessengerConversationMessages(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized",
			"data":    nil,
		})
	}

	conversationID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	member, err := Messenger.IsParticipant(c.Context(), uint(conversationID), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}
	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Not a participant",
			"data":    nil,
		})
	}

	messages, err := Messenger.ConversationMessages(c.Context(), uint(conversationID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	if err := Messenger.MarkRead(c.Context(), uint(conversationID), userID, time.Now()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    messages,
	})
}

// MessengerUpload validates and stores an attachment, returning the locator
// the client passes back on message_send.
func MessengerUpload(c *fiber.Ctx) error {
	if _, err := currentUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized",
			"data":    nil,
		})
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	if err := checkAttachment(header.Filename, header.Size); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "File type or size not allowed",
			"data":    nil,
		})
	}

	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}
	defer file.Close()

	locator, err := Files.Upload(c.Context(), file, header.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"url": locator,
		},
	})
}

func checkAttachment(filename string, size int64) error {
	if size > maxAttachmentSize {
		return messenger.ErrAttachmentRejected
	}
	if !allowedAttachmentExts[strings.ToLower(filepath.Ext(filename))] {
		return messenger.ErrAttachmentRejected
	}
	return nil
}

// MessengerFile serves an attachment stored through the database backend.
func MessengerFile(c *fiber.Ctx) error {
	file := new(model.MessengerFile)
	if err := database.Postgres.First(&file, c.AllParams()["id"]).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Not found",
			"data":    nil,
		})
	}

	data, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set("Content-Type", contentType)
	return c.Send(data)
}
