package server

import (
	"projecthub/internal/middleware"
	"projecthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// DashboardProfile handles GET /api/dashboardProfile
func (s *Server) DashboardProfile(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	profile, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT /api/updateProfile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	req.UserID = userID

	profile, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "profile updated",
		"user":    profile,
	})
}

// DashboardProjects handles GET /api/dashboardProjects
func (s *Server) DashboardProjects(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	summary, err := s.dashboardService.Projects(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// DashboardCommits handles GET /api/dashboardCommits
func (s *Server) DashboardCommits(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	summary, err := s.dashboardService.Commits(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
