package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// Service names registered in the chat service container.
const (
	ServiceListRooms   = "list-rooms"
	ServiceGetMessages = "get-messages"
	ServiceGetMembers  = "get-members"
	ServiceSearch      = "search-messages"
	ServiceCreateRoom  = "create-room"
)

// RegisterServices registers the read-only query services and create-room.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceListRooms,
		json.Unmarshal,
		json.Marshal,
		m.handleListRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetMessages,
		json.Unmarshal,
		json.Marshal,
		m.handleGetMessages,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetMessages, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetMembers,
		json.Unmarshal,
		json.Marshal,
		m.handleGetMembers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetMembers, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceSearch,
		json.Unmarshal,
		json.Marshal,
		m.handleSearch,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSearch, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceCreateRoom,
		json.Unmarshal,
		json.Marshal,
		m.handleCreateRoom,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateRoom, err)
	}

	m.logger.Info("Registered chat services",
		"services", []string{ServiceListRooms, ServiceGetMessages, ServiceGetMembers, ServiceSearch, ServiceCreateRoom})
	return nil
}

func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.coord.Rooms()}, nil
}

func (m *Module) handleGetMessages(_ context.Context, req GetMessagesRequest, _ *mono.Msg) (GetMessagesResponse, error) {
	page, err := m.coord.Messages(req.Room, req.Page, req.Limit)
	if err != nil {
		return GetMessagesResponse{Error: errorCode(err)}, nil
	}
	return GetMessagesResponse{Page: page}, nil
}

func (m *Module) handleGetMembers(_ context.Context, req GetMembersRequest, _ *mono.Msg) (GetMembersResponse, error) {
	members, err := m.coord.Members(req.Room)
	if err != nil {
		return GetMembersResponse{Error: errorCode(err)}, nil
	}
	return GetMembersResponse{Members: members}, nil
}

func (m *Module) handleSearch(_ context.Context, req SearchRequest, _ *mono.Msg) (SearchResponse, error) {
	return SearchResponse{Messages: m.coord.Search(req.Query, req.Room)}, nil
}

func (m *Module) handleCreateRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := m.coord.CreateRoom("", name); err != nil {
		return CreateRoomResponse{Error: errorCode(err)}, nil
	}
	return CreateRoomResponse{Room: name}, nil
}

// errorCode maps a domain error onto the code carried in service responses.
// Domain failures travel in the response body so the caller can tell them
// apart from transport failures.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return codeRoomNotFound
	case errors.Is(err, domain.ErrRoomAlreadyExists):
		return codeRoomAlreadyExists
	default:
		return codeInvalidRoomName
	}
}

// codeError is the inverse of errorCode.
func codeError(code string) error {
	switch code {
	case "":
		return nil
	case codeRoomNotFound:
		return domain.ErrRoomNotFound
	case codeRoomAlreadyExists:
		return domain.ErrRoomAlreadyExists
	default:
		return ErrRoomNameInvalid
	}
}
