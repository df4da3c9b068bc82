// Package http exposes the game processor over the JSON endpoints the
// client talks to.
package http

import (
	"fmt"
	"strings"
	"time"

	"chessai/internal/core"
	"chessai/internal/server/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HealthFunc reports the storage status shown on /health.
type HealthFunc func() string

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc   *processor.Processor
	health HealthFunc
}

func NewHTTPHandler(proc *processor.Processor, health HealthFunc) *HTTPHandler {
	return &HTTPHandler{proc: proc, health: health}
}

func NewFiberApp(proc *processor.Processor, health HealthFunc, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, health)

	// Engine searches at depth 5 can take a while
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	app.Use(contentTypeValidator)
	app.Use(validationMiddleware)

	app.Get("/state", h.State)
	app.Post("/move", h.Move)
	app.Post("/set_color", h.SetColor)
	app.Post("/set_difficulty", h.SetDifficulty)
	app.Post("/reset", h.Reset)
	app.Post("/takeback", h.Takeback)

	return app
}

// contentTypeValidator ensures POST requests carry application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps a processor error code to the HTTP status. Engine and
// internal failures are server errors, everything else is the caller's.
func statusFor(e *core.ErrorResponse) int {
	switch e.Code {
	case core.ErrEngineError, core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func (h *HTTPHandler) respond(c *fiber.Ctx, cmd processor.Command) error {
	resp := h.proc.Execute(c.UserContext(), cmd)
	if !resp.Success {
		return c.Status(statusFor(resp.Error)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// validatedBody returns the request parsed by validationMiddleware.
func validatedBody[T any](c *fiber.Ctx) (T, error) {
	var zero T
	if validated, ok := c.Locals("validated").(bool); !ok || !validated {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation bypass detected")
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return *body, nil
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	resp := core.HealthResponse{
		Status: "healthy",
		Time:   time.Now().Unix(),
	}
	if h.health != nil {
		resp.Storage = h.health()
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) State(c *fiber.Ctx) error {
	return h.respond(c, processor.NewStateCommand())
}

// Move plays the player's move and answers with the AI reply
func (h *HTTPHandler) Move(c *fiber.Ctx) error {
	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}
	return h.respond(c, processor.NewMoveCommand(req))
}

// SetColor switches sides and restarts the game
func (h *HTTPHandler) SetColor(c *fiber.Ctx) error {
	req, err := validatedBody[core.ColorRequest](c)
	if err != nil {
		return err
	}
	return h.respond(c, processor.NewSetColorCommand(req))
}

func (h *HTTPHandler) SetDifficulty(c *fiber.Ctx) error {
	req, err := validatedBody[core.DifficultyRequest](c)
	if err != nil {
		return err
	}
	return h.respond(c, processor.NewSetDifficultyCommand(req))
}

func (h *HTTPHandler) Reset(c *fiber.Ctx) error {
	return h.respond(c, processor.NewResetCommand())
}

// Takeback removes the last player move and the AI reply
func (h *HTTPHandler) Takeback(c *fiber.Ctx) error {
	return h.respond(c, processor.NewTakebackCommand())
}
