package middleware

import (
	"errors"

	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const claimsKey = "claims"

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		SigningMethod:  "HS256",
		ErrorHandler:   jwtError,
		SuccessHandler: storeClaims,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func storeClaims(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, errors.New("invalid token"))
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, errors.New("invalid claims"))
	}
	claims, err := utils.ClaimsFromMap(mc)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(claimsKey, claims)
	return c.Next()
}

// SetClaims is used by the websocket upgrade path and tests, where the token
// is not read from the Authorization header.
func SetClaims(c *fiber.Ctx, claims *utils.Claims) {
	c.Locals(claimsKey, claims)
}

func CurrentClaims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*utils.Claims)
	return claims, ok && claims != nil
}

func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	claims, ok := CurrentClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func CurrentRole(c *fiber.Ctx) string {
	claims, ok := CurrentClaims(c)
	if !ok {
		return ""
	}
	return claims.Role
}

// RoleRequired rejects callers whose token role is not one of roles.
func RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: insufficient role for this resource",
		})
	}
}

func AdminRequired() fiber.Handler {
	return RoleRequired("admin")
}

func MentorRequired() fiber.Handler {
	return RoleRequired("mentor")
}

func MenteeRequired() fiber.Handler {
	return RoleRequired("mentee", "parent")
}
