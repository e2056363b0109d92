// Package loginhistory records login attempts made through the console.
package loginhistory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"evhub/backend/services/admin-console/internal/models"
)

// MaxEntries is the number of most recent entries kept.
const MaxEntries = 100

// Log is an append-only, newest-first login log.
type Log interface {
	Append(ctx context.Context, entry models.LoginEntry) error
	// Recent returns at most limit entries, newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]models.LoginEntry, error)
}

// Attempt describes a login attempt as seen by the console.
type Attempt struct {
	Status    models.LoginStatus
	Username  string
	IPAddress string
	UserAgent string
	Location  string
}

var now = func() time.Time { return time.Now().UTC() }

// NewEntry builds the entry for an attempt.
func NewEntry(a Attempt) models.LoginEntry {
	at := now()
	username := strings.TrimSpace(a.Username)
	if username == "" {
		username = "Unknown"
	}
	location := strings.TrimSpace(a.Location)
	if location == "" {
		location = "Unknown"
	}
	return models.LoginEntry{
		ID:        strconv.FormatInt(at.UnixNano(), 10),
		LoginTime: models.NewTimestamp(at),
		IPAddress: a.IPAddress,
		Device:    DeviceLabel(a.UserAgent),
		Location:  location,
		Status:    a.Status,
		Username:  username,
	}
}

// DeviceLabel derives a short device name from a user agent.
func DeviceLabel(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "iPhone"):
		return "iPhone"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "iPad"):
		return "iPad"
	case strings.Contains(userAgent, "Mac"):
		return "Mac"
	case strings.Contains(userAgent, "Windows"):
		return "Windows PC"
	}
	return "Unknown Device"
}

// MemoryLog keeps entries in process memory.
type MemoryLog struct {
	mu      sync.Mutex
	entries []models.LoginEntry
}

// NewMemoryLog returns an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append inserts entry at the front and drops entries beyond MaxEntries.
func (m *MemoryLog) Append(_ context.Context, entry models.LoginEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]models.LoginEntry{entry}, m.entries...)
	if len(m.entries) > MaxEntries {
		m.entries = m.entries[:MaxEntries]
	}
	return nil
}

func (m *MemoryLog) Recent(_ context.Context, limit int) ([]models.LoginEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.LoginEntry, n)
	copy(out, m.entries[:n])
	return out, nil
}
