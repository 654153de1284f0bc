package domain

import (
	"sync"
	"time"
)

// Session is the live-connection-scoped state for one chat participant.
// ID is the opaque per-connection identifier, created on connect and
// destroyed on disconnect. Identity is optional; anonymous sessions have
// a nil UserID.
type Session struct {
	ID           string
	UserID       *int64
	Username     string
	CreatedAt    time.Time
	LastActiveAt time.Time

	currentRoom string
	mu          sync.RWMutex
}

// NewSession creates an anonymous session for a new connection.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Identify binds a verified identity to the session.
func (s *Session) Identify(userID int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = &userID
	s.Username = username
	s.LastActiveAt = time.Now()
}

// Identity returns the bound user ID (nil when anonymous) and username.
func (s *Session) Identity() (*int64, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID, s.Username
}

// JoinRoom records the session's current room.
func (s *Session) JoinRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoom = room
	s.LastActiveAt = time.Now()
}

// LeaveRoom clears the session's current room.
func (s *Session) LeaveRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoom = ""
	s.LastActiveAt = time.Now()
}

// CurrentRoom returns the most recently joined room, or "" before any join.
func (s *Session) CurrentRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoom
}

// UpdateActivity refreshes the last-active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
