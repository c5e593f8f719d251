package controller

import (
	"context"
	"fmt"
	"strconv"

	"classroom-messenger/database"
	"classroom-messenger/identity"
	"classroom-messenger/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthFederatedInput struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AuthFederated signs in a user through a federated identity provider. The
// gateway in front of this service has already verified the provider's
// assertion; here the external identity is bound (idempotently) to a local
// user and our own token pair is issued.
func AuthFederated(c *fiber.Ctx) error {
	input := new(AuthFederatedInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	resolver := identity.NewResolver(database.Postgres)
	user, err := resolver.ResolveOrProvision(context.Background(), input.ExternalID, input.Email, input.DisplayName)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	database.Casbin().AddGroupingPolicy(fmt.Sprint(user.ID), user.Role)

	idStr := strconv.FormatUint(uint64(user.ID), 10)

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(idStr, user.Otp_enabled)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Internal server error",
			"data":    nil,
		})
	}

	if err := database.Redis[0].Set(context.Background(), idStr, tokens.Refresh, 0).Err(); err != nil {
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
			"access":  tokens.Access,
			"refresh": tokens.Refresh,
			"2fa":     user.Otp_enabled,
		},
	})
}
