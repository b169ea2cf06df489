package chat

import (
	"fmt"
	"math"
	"testing"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

func appendN(log *MessageLog, n int) []domain.Message {
	var out []domain.Message
	for i := range n {
		msg, _ := log.Append(domain.Message{Text: fmt.Sprintf("m%d", i), Room: "general"})
		out = append(out, msg)
	}
	return out
}

func TestMessageLog_AppendAssignsUniqueIDs(t *testing.T) {
	log := NewMessageLog(10)
	msgs := appendN(log, 5)

	seen := make(map[string]bool)
	for _, msg := range msgs {
		if msg.ID == "" {
			t.Fatal("Append() returned message without id")
		}
		if seen[msg.ID] {
			t.Fatalf("Append() reused id %q", msg.ID)
		}
		seen[msg.ID] = true
	}

	kept, _ := log.Append(domain.Message{ID: "fixed", Text: "x"})
	if kept.ID != "fixed" {
		t.Errorf("Append() id = %q, want preset id kept", kept.ID)
	}
}

func TestMessageLog_EvictsOldest(t *testing.T) {
	log := NewMessageLog(DefaultHistorySize)
	msgs := appendN(log, DefaultHistorySize)

	if log.Len() != DefaultHistorySize {
		t.Fatalf("Len() = %d, want %d", log.Len(), DefaultHistorySize)
	}

	_, evicted := log.Append(domain.Message{Text: "overflow"})
	if evicted != msgs[0].ID {
		t.Errorf("Append() evicted %q, want oldest %q", evicted, msgs[0].ID)
	}
	if log.Len() != DefaultHistorySize {
		t.Errorf("Len() = %d after overflow, want %d", log.Len(), DefaultHistorySize)
	}
	if _, ok := log.Find(msgs[0].ID); ok {
		t.Error("Find() still returns evicted message")
	}

	snap := log.Snapshot()
	if snap[0].ID != msgs[1].ID || snap[len(snap)-1].Text != "overflow" {
		t.Errorf("Snapshot() order = [%s .. %s], want [m1 .. overflow]", snap[0].Text, snap[len(snap)-1].Text)
	}
}

func TestMessageLog_ApplyReaction(t *testing.T) {
	log := NewMessageLog(10)
	msg := appendN(log, 1)[0]

	for want := 1; want <= 3; want++ {
		got, ok := log.ApplyReaction(msg.ID, "👍")
		if !ok || got != want {
			t.Fatalf("ApplyReaction() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if _, ok := log.ApplyReaction("missing", "👍"); ok {
		t.Error("ApplyReaction() on unknown id reported success")
	}

	found, _ := log.Find(msg.ID)
	if found.Reactions["👍"] != 3 {
		t.Errorf("Reactions[👍] = %d, want 3", found.Reactions["👍"])
	}
}

func TestMessageLog_ReturnsCopies(t *testing.T) {
	log := NewMessageLog(10)
	msg := appendN(log, 1)[0]
	log.ApplyReaction(msg.ID, "🎉")

	snap := log.Snapshot()
	snap[0].Reactions["🎉"] = 100
	snap[0].Read = true

	found, _ := log.Find(msg.ID)
	if found.Reactions["🎉"] != 1 || found.Read {
		t.Errorf("Snapshot() exposed internal state: %+v", found)
	}
}

func TestMessageLog_MarkRead(t *testing.T) {
	log := NewMessageLog(10)
	msgs := appendN(log, 3)

	if got := log.MarkRead(msgs[0].ID, "missing", msgs[2].ID); got != 2 {
		t.Errorf("MarkRead() = %d, want 2", got)
	}

	snap := log.Snapshot()
	want := []bool{true, false, true}
	for i, msg := range snap {
		if msg.Read != want[i] {
			t.Errorf("message %d Read = %v, want %v", i, msg.Read, want[i])
		}
	}
}

func TestMessageLog_Page(t *testing.T) {
	log := NewMessageLog(200)
	appendN(log, 120)

	tests := []struct {
		name       string
		page, size int
		wantFirst  string
		wantLen    int
		wantPage   int
		wantPages  int
	}{
		{name: "first page", page: 1, size: 50, wantFirst: "m0", wantLen: 50, wantPage: 1, wantPages: 3},
		{name: "last partial page", page: 3, size: 50, wantFirst: "m100", wantLen: 20, wantPage: 3, wantPages: 3},
		{name: "past the end", page: 9, size: 50, wantLen: 0, wantPage: 9, wantPages: 3},
		{name: "zero inputs use defaults", page: 0, size: 0, wantFirst: "m0", wantLen: DefaultPageSize, wantPage: 1, wantPages: 3},
		{name: "negative inputs use defaults", page: -2, size: -5, wantFirst: "m0", wantLen: DefaultPageSize, wantPage: 1, wantPages: 3},
		{name: "small pages", page: 2, size: 7, wantFirst: "m7", wantLen: 7, wantPage: 2, wantPages: 18},
		{name: "huge page", page: math.MaxInt, size: 50, wantLen: 0, wantPage: math.MaxInt, wantPages: 3},
		{name: "huge page times size", page: math.MaxInt / 25, size: 50, wantLen: 0, wantPage: math.MaxInt / 25, wantPages: 3},
		{name: "huge size", page: 1, size: math.MaxInt, wantFirst: "m0", wantLen: 120, wantPage: 1, wantPages: 1},
		{name: "huge size second page", page: 2, size: math.MaxInt, wantLen: 0, wantPage: 2, wantPages: 1},
		{name: "both huge", page: math.MaxInt, size: math.MaxInt, wantLen: 0, wantPage: math.MaxInt, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := log.Page(tt.page, tt.size)
			if len(got.Messages) != tt.wantLen {
				t.Fatalf("Page() len = %d, want %d", len(got.Messages), tt.wantLen)
			}
			if tt.wantLen > 0 && got.Messages[0].Text != tt.wantFirst {
				t.Errorf("Page() first = %q, want %q", got.Messages[0].Text, tt.wantFirst)
			}
			if got.Total != 120 {
				t.Errorf("Page() Total = %d, want 120", got.Total)
			}
			if got.Page != tt.wantPage {
				t.Errorf("Page() Page = %d, want %d", got.Page, tt.wantPage)
			}
			if got.TotalPages != tt.wantPages {
				t.Errorf("Page() TotalPages = %d, want %d", got.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestMessageLog_PageEmpty(t *testing.T) {
	got := NewMessageLog(10).Page(1, 50)
	if got.Messages == nil || len(got.Messages) != 0 {
		t.Errorf("Page() Messages = %v, want empty non-nil slice", got.Messages)
	}
	if got.TotalPages != 0 {
		t.Errorf("Page() TotalPages = %d, want 0", got.TotalPages)
	}
}

func TestMessageLog_Search(t *testing.T) {
	log := NewMessageLog(10)
	for _, text := range []string{"Hi there", "hello", "say HI", "STRASSE", "other"} {
		log.Append(domain.Message{Text: text})
	}

	tests := []struct {
		query string
		want  int
	}{
		{query: "hi", want: 2},
		{query: "HELLO", want: 1},
		{query: "strasse", want: 1},
		{query: "absent", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := log.Search(tt.query); len(got) != tt.want {
				t.Errorf("Search(%q) returned %d messages, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}
