package server

import (
	"time"

	"projecthub/internal/middleware"
	"projecthub/internal/service"
	"projecthub/models"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/userSignup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if _, err := s.authService.Signup(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": service.MsgUserCreated})
}

// Signin handles POST /api/userSignin. The session token is returned only
// as an HTTP-only cookie without an expiry.
func (s *Server) Signin(c *fiber.Ctx) error {
	var req service.SigninInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	token, _, err := s.authService.Signin(c.UserContext(), req)
	if err != nil {
		// An unknown user is reported as 403 here, not 404.
		if models.IsCode(err, models.CodeNotFound) {
			return respondErrorStatus(c, fiber.StatusForbidden, err)
		}
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": service.MsgSigninSuccessful})
}

// Logout handles POST /api/userLogout. Tokens stay valid; only the cookie is
// cleared.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "logged out"})
}

// UsernameCheck handles GET /api/usernameCheck?username= and POST
// /api/usernameCheck with a JSON body carrying "username".
func (s *Server) UsernameCheck(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" && len(c.Body()) > 0 {
		var body struct {
			Username string `json:"username"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}
		username = body.Username
	}

	ok, err := s.userService.UsernameAvailable(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewConflictError(service.MsgExists))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": service.MsgAvailable})
}

// UpdatePassword handles PUT /api/updatePassword
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	var req service.UpdatePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	req.UserID = userID

	if err := s.authService.UpdatePassword(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": service.MsgPasswordUpdated})
}

// GetFeatureFlags returns configured feature flags and their state for the
// current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID.String()),
	})
}
