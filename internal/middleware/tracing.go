package middleware

import (
	"errors"
	"fmt"
	"strings"

	"projecthub/internal/observability"
	"projecthub/models"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request. Once the route is
// resolved the span is renamed to its template and tagged with the project
// named in the path, the session state and a denied outcome, if any.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
				attribute.Bool("session.cookie", c.Cookies(TokenCookie) != ""),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		if r := c.Route(); r != nil && r.Path != "/" {
			span.SetName(c.Method() + " " + r.Path)
			span.SetAttributes(attribute.String("http.route", r.Path))
		}
		span.SetAttributes(projectAttributes(c)...)
		if userID, ok := UserID(c); ok {
			span.SetAttributes(attribute.String("user.id", userID.String()))
		}

		status := c.Response().StatusCode()
		if err != nil {
			span.RecordError(err)
			// The error handler has not written the response yet.
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		switch {
		case status == fiber.StatusUnauthorized:
			span.SetAttributes(attribute.String("access.outcome", "unauthenticated"))
		case status == fiber.StatusForbidden:
			span.SetAttributes(attribute.String("access.outcome", "denied"))
		case status >= fiber.StatusInternalServerError:
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}

		return err
	}
}

// projectAttributes reads the project route params. Values are copied because
// fiber reuses the request buffers.
func projectAttributes(c *fiber.Ctx) []attribute.KeyValue {
	name := strings.Clone(c.Params("name"))
	if name == "" {
		return nil
	}
	attrs := []attribute.KeyValue{attribute.String("project.name", name)}
	if owner := strings.Clone(c.Params("owner")); owner != "" {
		attrs = append(attrs,
			attribute.String("project.owner", owner),
			attribute.String("project.identifier", models.ProjectIdentifier(owner, name)),
		)
	}
	return attrs
}
