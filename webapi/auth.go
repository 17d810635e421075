package webapi

import (
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/weekendly/planner/pkg/config"
)

// LoginInput is the login request body.
type LoginInput struct {
	Password string `json:"password" validate:"required"`
}

// AuthRoutes registers the login endpoint.
func AuthRoutes(app *fiber.App, cfg config.Server) {
	app.Post("/api/auth/login", Login(cfg))
}

// Login authenticates the admin and returns a JWT token.
// @Summary Admin login
// @Description Authenticate with the admin password and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} Response
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /api/auth/login [post]
func Login(cfg config.Server) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		if cfg.AdminPasswordHash == "" {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Admin login disabled", nil)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(input.Password)); err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Invalid password", nil)
		}

		token := jwt.New(jwt.SigningMethodHS256)
		claims := token.Claims.(jwt.MapClaims)
		claims["role"] = "admin"
		claims["exp"] = time.Now().Add(cfg.JwtExpiry).Unix()
		signed, err := token.SignedString([]byte(cfg.JwtSecret))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Success login", Data: fiber.Map{"token": signed}})
	}
}

// AdminProtected returns the JWT middleware guarding the admin group.
func AdminProtected(cfg config.Server) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JwtSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Missing or malformed JWT", err.Error())
		},
	})
}
