package server

import (
	"errors"

	"projecthub/internal/middleware"
	"projecthub/models"

	"github.com/gofiber/fiber/v2"
)

const msgInvalidBody = "Invalid request body"

// statusFor maps an AppError code to the HTTP status clients expect. Every
// client-caused failure except a missing resource is reported as 403.
func statusFor(err error) int {
	appErr, ok := models.AsAppError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation, models.CodeConflict, models.CodeUnauthorized, models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Unexpected errors are
// logged and replaced with a generic internal error.
func respondError(c *fiber.Ctx, err error) error {
	return respondErrorStatus(c, statusFor(err), err)
}

func respondErrorStatus(c *fiber.Ctx, status int, err error) error {
	if _, ok := models.AsAppError(err); !ok {
		err = models.NewInternalError(err)
	}
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(),
			"error", err.Error(),
		)
	}
	return models.RespondWithError(c, status, err)
}

func badBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusForbidden, models.NewValidationError(msgInvalidBody))
}

// ErrorHandler renders errors that escape handlers, including fiber's own
// routing errors, in the standard error shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = models.CodeNotFound
		case fe.Code < fiber.StatusInternalServerError:
			code = models.CodeValidation
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: code, Message: fe.Message})
	}
	return respondErrorStatus(c, fiber.StatusInternalServerError, err)
}
