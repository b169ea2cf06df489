package api

// CreateRoomRequest is the body of POST /api/rooms.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoomResponse is returned when a room is created.
type CreateRoomResponse struct {
	Room string `json:"room"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
