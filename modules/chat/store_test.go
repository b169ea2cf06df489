package chat

import (
	"errors"
	"slices"
	"testing"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

func TestRoomStore_Create(t *testing.T) {
	store := NewRoomStore(10)

	if err := store.Create("general"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create("design"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create("general"); !errors.Is(err, domain.ErrRoomAlreadyExists) {
		t.Errorf("Create() duplicate error = %v, want %v", err, domain.ErrRoomAlreadyExists)
	}

	if got := store.Rooms(); !slices.Equal(got, []string{"general", "design"}) {
		t.Errorf("Rooms() = %v, want [general design]", got)
	}
	if !store.Exists("design") || store.Exists("missing") {
		t.Error("Exists() disagrees with Create()")
	}
}

func TestRoomStore_Membership(t *testing.T) {
	store := NewRoomStore(10)
	store.Create("general")
	store.Create("random")

	if !store.AddMember("general", "b") || !store.AddMember("general", "a") {
		t.Fatal("AddMember() reported no change for new members")
	}
	if store.AddMember("general", "a") {
		t.Error("AddMember() reported change for existing member")
	}
	if store.AddMember("missing", "a") {
		t.Error("AddMember() succeeded for unknown room")
	}
	store.AddMember("random", "a")

	if got := store.MemberIDs("general"); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("MemberIDs() = %v, want join order [b a]", got)
	}
	if got := store.RoomsOf("a"); !slices.Equal(got, []string{"general", "random"}) {
		t.Errorf("RoomsOf() = %v, want [general random]", got)
	}

	if !store.RemoveMember("general", "a") {
		t.Error("RemoveMember() reported no change")
	}
	if store.RemoveMember("general", "a") {
		t.Error("RemoveMember() of absent member reported change")
	}
	if store.IsMember("general", "a") {
		t.Error("IsMember() true after RemoveMember()")
	}
}

func TestRoomStore_AppendUnknownRoom(t *testing.T) {
	store := NewRoomStore(10)
	if _, err := store.Append(domain.Message{Room: "missing", Text: "x"}); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("Append() error = %v, want %v", err, domain.ErrRoomNotFound)
	}
}

func TestRoomStore_ReactionAcrossRooms(t *testing.T) {
	store := NewRoomStore(10)
	store.Create("general")
	store.Create("random")

	store.Append(domain.Message{Room: "general", Text: "one"})
	msg, err := store.Append(domain.Message{Room: "random", Text: "two"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	room, count, err := store.ApplyReaction(msg.ID, "👍")
	if err != nil {
		t.Fatalf("ApplyReaction() error = %v", err)
	}
	if room != "random" || count != 1 {
		t.Errorf("ApplyReaction() = (%q, %d), want (random, 1)", room, count)
	}

	if _, _, err := store.ApplyReaction("missing", "👍"); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Errorf("ApplyReaction() error = %v, want %v", err, domain.ErrMessageNotFound)
	}
}

func TestRoomStore_IndexFollowsEviction(t *testing.T) {
	store := NewRoomStore(2)
	store.Create("general")

	first, _ := store.Append(domain.Message{Room: "general", Text: "1"})
	store.Append(domain.Message{Room: "general", Text: "2"})
	store.Append(domain.Message{Room: "general", Text: "3"})

	if _, ok := store.Locate(first.ID); ok {
		t.Error("Locate() still finds evicted message")
	}
	if _, _, err := store.ApplyReaction(first.ID, "👍"); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Errorf("ApplyReaction() on evicted message error = %v, want %v", err, domain.ErrMessageNotFound)
	}
}

func TestRoomStore_MarkRead(t *testing.T) {
	store := NewRoomStore(10)
	store.Create("general")
	store.Create("random")

	a, _ := store.Append(domain.Message{Room: "general", Text: "a"})
	b, _ := store.Append(domain.Message{Room: "random", Text: "b"})

	if got := store.MarkRead([]string{a.ID, b.ID, "missing"}); got != 2 {
		t.Errorf("MarkRead() = %d, want 2", got)
	}

	for _, room := range []string{"general", "random"} {
		log, _ := store.Log(room)
		if !log.Snapshot()[0].Read {
			t.Errorf("message in %s not marked read", room)
		}
	}
}
