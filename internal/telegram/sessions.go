package telegram

import (
	"sync"
	"time"

	"github.com/EmanJemal/byfu/internal/domain"
)

// Flow names the conversation a chat is currently in. A chat has at most
// one active flow; starting a new one replaces whatever was in progress.
type Flow string

const (
	FlowRegister   Flow = "register"
	FlowEdit       Flow = "edit"
	FlowAddStock   Flow = "addstock"
	FlowScreenshot Flow = "screenshot"
)

// Step tags, one set per flow.
const (
	stepAwaitingImage   = "awaiting_image"
	stepAwaitingName    = "awaiting_name"
	stepAwaitingCode    = "awaiting_code"
	stepAwaitingCost    = "awaiting_cost"
	stepAwaitingSelling = "awaiting_selling"
	stepAwaitingStore   = "awaiting_store"
	stepAwaitingSuq     = "awaiting_suq"

	stepMenu        = "menu"
	stepEditName    = "edit_name"
	stepEditCode    = "edit_code"
	stepEditCost    = "edit_cost"
	stepEditSelling = "edit_selling"
	stepEditStore   = "edit_store"
	stepEditSuq     = "edit_suq"
	stepEditImage   = "edit_image"

	stepChooseLocation    = "choose_location"
	stepAwaitingAmount    = "awaiting_amount"
	stepAwaitingDirection = "awaiting_transfer_direction"
	stepAwaitingTransfer  = "awaiting_transfer_amount"

	stepAwaitingID    = "awaiting_id"
	stepAwaitingPhoto = "awaiting_photo"
)

// Session is the per-chat state of the active flow. Only the dispatch loop
// touches a session after creation, so its fields are unguarded.
type Session struct {
	Flow      Flow
	Step      string
	Data      domain.Product
	Key       string // products/<Key> when editing or adding stock
	Location  string // addstock: "store" or "suq"
	Direction string // transfer: "suq_to_store" or "store_to_suq"
	ShotID    string // screenshot flow
	StartedAt time.Time
	LastEvent time.Time
}

// Sessions maps chat ids to their active flow state. In-memory only; a
// restart drops all in-flight flows.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

// Start creates a fresh session for the chat, replacing any active flow.
func (s *Sessions) Start(chatID int64, flow Flow, step string) *Session {
	now := time.Now()
	sess := &Session{Flow: flow, Step: step, StartedAt: now, LastEvent: now}
	s.mu.Lock()
	s.m[chatID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the chat's active session, if any, and marks it as touched.
func (s *Sessions) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.m[chatID]
	if sess != nil {
		sess.LastEvent = time.Now()
	}
	return sess
}

// Delete clears the chat's session and reports whether one existed.
func (s *Sessions) Delete(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[chatID]; !ok {
		return false
	}
	delete(s.m, chatID)
	return true
}

// Prune drops sessions idle for longer than the given duration and returns
// how many were removed.
func (s *Sessions) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for chatID, sess := range s.m {
		if sess.LastEvent.Before(cutoff) {
			delete(s.m, chatID)
			n++
		}
	}
	return n
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
