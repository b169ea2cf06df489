package wsserver

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Mount registers the WebSocket endpoint on router at path. Plain HTTP
// requests to the endpoint get 426 Upgrade Required.
func (h *Handlers) Mount(router fiber.Router, path string) {
	router.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get(path, websocket.New(h.HandleWebSocket))
}
