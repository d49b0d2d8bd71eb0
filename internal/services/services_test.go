package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
	"github.com/ptlog/ptlog/internal/store/sqlite"
	"github.com/ptlog/ptlog/internal/week"
)

// testCalendar anchors week 1 at Monday 2025-07-21.
var testCalendar = week.MustCalendar(time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC))

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.OpenStore(filepath.Join(t.TempDir(), "ptlog_test.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return s
}

func newTestUser(t *testing.T, s store.Store, userID string) {
	t.Helper()
	_, err := s.Users().Create(context.Background(), &model.User{
		UserID: userID,
		Email:  userID + "@example.test",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func strptr(s string) *string { return &s }
