package server

import (
	"projecthub/internal/access"
	"projecthub/internal/middleware"
	"projecthub/internal/service"
	"projecthub/models"

	"github.com/gofiber/fiber/v2"
)

func callerOf(c *fiber.Ctx) access.Caller {
	if id, ok := middleware.UserID(c); ok {
		return access.User(id)
	}
	return access.Anonymous()
}

// CreateProject handles POST /api/createProject
func (s *Server) CreateProject(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	var req service.CreateProjectInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	req.OwnerID = userID

	project, err := s.projectService.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// ProjectCheck handles GET /api/projectCheck?name= and POST /api/projectCheck
// with a JSON body carrying "name".
func (s *Server) ProjectCheck(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	name := c.Query("name")
	if name == "" && len(c.Body()) > 0 {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}
		name = body.Name
	}

	ok, err := s.projectService.CheckAvailableFor(c.UserContext(), userID, name)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewConflictError(service.MsgExists))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": service.MsgAvailable})
}

// GetProject handles GET /api/project/:owner/:name and GET /api/project/:name.
// The short form names one of the caller's own projects.
func (s *Server) GetProject(c *fiber.Ctx) error {
	caller := callerOf(c)
	name := c.Params("name")

	var (
		project *models.Project
		err     error
	)
	if owner := c.Params("owner"); owner != "" {
		project, err = s.projectService.Get(c.UserContext(), caller, owner, name)
	} else {
		project, err = s.projectService.GetOwn(c.UserContext(), caller, name)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/project/:name
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	if err := s.projectService.SoftDelete(c.UserContext(), callerOf(c), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": service.MsgProjectDeleted})
}
