package chat

import "errors"

// Domain errors. RoomNotFound and RoomAlreadyExists are reported to the
// initiating connection; UnboundSession and MessageNotFound are dropped silently.
var (
	ErrRoomNotFound      = errors.New("room does not exist")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrUnboundSession    = errors.New("connection has no bound user")
	ErrMessageNotFound   = errors.New("message not found")
)
