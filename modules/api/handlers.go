package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/realtime-chat-engine/domain/chat"
	"github.com/example/realtime-chat-engine/modules/chat"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 1000
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	if m.ws != nil {
		m.ws.Mount(app, "/ws")
	}

	api := app.Group("/api")
	api.Get("/rooms", m.listRooms)
	api.Post("/rooms", m.createRoom)
	api.Get("/messages/:room", m.getMessages)
	api.Get("/users/:room", m.getUsers)
	api.Get("/search", m.search)
	api.Get("/stats", m.getStats)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.clientCount(),
		},
	})
}

// listRooms handles GET /api/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.chat.ListRooms(c.UserContext())
	if err != nil {
		return m.failed(c, err, "list_failed", "Failed to list rooms")
	}
	return c.JSON(rooms)
}

// createRoom handles POST /api/rooms.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	room, err := m.chat.CreateRoom(c.UserContext(), req.Name)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(CreateRoomResponse{Room: room})
	case errors.Is(err, domain.ErrRoomAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: chat.ReasonRoomAlreadyExists,
		})
	case errors.Is(err, chat.ErrRoomNameInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room name must be 1-100 characters of valid UTF-8",
		})
	default:
		return m.failed(c, err, "create_failed", "Failed to create room")
	}
}

// getMessages handles GET /api/messages/:room.
func (m *APIModule) getMessages(c *fiber.Ctx) error {
	page := c.QueryInt("page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	result, err := m.chat.GetMessages(c.UserContext(), c.Params("room"), page, limit)
	if err != nil {
		return m.failed(c, err, "messages_failed", "Failed to get messages")
	}
	return c.JSON(result)
}

// getUsers handles GET /api/users/:room.
func (m *APIModule) getUsers(c *fiber.Ctx) error {
	members, err := m.chat.GetMembers(c.UserContext(), c.Params("room"))
	if err != nil {
		return m.failed(c, err, "users_failed", "Failed to get users")
	}
	return c.JSON(members)
}

// search handles GET /api/search.
func (m *APIModule) search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Query parameter required",
		})
	}

	matches, err := m.chat.Search(c.UserContext(), query, c.Query("room"))
	if err != nil {
		return m.failed(c, err, "search_failed", "Failed to search messages")
	}
	return c.JSON(matches)
}

// getStats handles GET /api/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	summary, err := m.stats.GetSummary(c.UserContext())
	if err != nil {
		return m.failed(c, err, "stats_failed", "Failed to get stats")
	}
	return c.JSON(summary)
}

// failed maps a port error to a response. Unknown rooms are 404; anything
// else is logged and reported as 500.
func (m *APIModule) failed(c *fiber.Ctx, err error, code, message string) error {
	if errors.Is(err, domain.ErrRoomNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: chat.ReasonRoomNotFound,
		})
	}
	m.logger.Error("Request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   code,
		Message: message,
	})
}
