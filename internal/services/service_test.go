package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/database"
)

// newTestDB opens a throwaway sqlite database with the real schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// recordingNotifier captures NotifyUser calls for assertions.
type recordingNotifier struct {
	calls []notifierCall
}

type notifierCall struct {
	UserID string
	Action string
}

func (n *recordingNotifier) NotifyUser(userID, action string, payload interface{}) {
	n.calls = append(n.calls, notifierCall{UserID: userID, Action: action})
}
