package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// ChatPort is the read-side and room-creation surface other modules use.
type ChatPort interface {
	ListRooms(ctx context.Context) ([]string, error)
	GetMessages(ctx context.Context, room string, page, limit int) (domain.Page, error)
	GetMembers(ctx context.Context, room string) ([]domain.User, error)
	Search(ctx context.Context, query, room string) ([]domain.Message, error)
	CreateRoom(ctx context.Context, name string) (string, error)
}

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// ListRooms returns room names in creation order.
func (a *ChatAdapter) ListRooms(ctx context.Context) ([]string, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// GetMessages returns one page of a room's log.
func (a *ChatAdapter) GetMessages(ctx context.Context, room string, page, limit int) (domain.Page, error) {
	req := GetMessagesRequest{Room: room, Page: page, Limit: limit}
	var resp GetMessagesResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetMessages,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Page{}, fmt.Errorf("failed to get messages: %w", err)
	}
	if err := codeError(resp.Error); err != nil {
		return domain.Page{}, err
	}
	return resp.Page, nil
}

// GetMembers returns the users in a room.
func (a *ChatAdapter) GetMembers(ctx context.Context, room string) ([]domain.User, error) {
	req := GetMembersRequest{Room: room}
	var resp GetMembersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetMembers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	if err := codeError(resp.Error); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// Search returns messages containing query, in every room when room is empty.
func (a *ChatAdapter) Search(ctx context.Context, query, room string) ([]domain.Message, error) {
	req := SearchRequest{Query: query, Room: room}
	var resp SearchResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSearch,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return resp.Messages, nil
}

// CreateRoom creates a room and returns its name.
func (a *ChatAdapter) CreateRoom(ctx context.Context, name string) (string, error) {
	req := CreateRoomRequest{Name: name}
	var resp CreateRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	if err := codeError(resp.Error); err != nil {
		return "", err
	}
	return resp.Room, nil
}
