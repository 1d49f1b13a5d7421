package services

import (
	"testing"

	"expensetracker/internal/models"
	"expensetracker/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditCreateExpense, "expense", "exp-1", "127.0.0.1", map[string]interface{}{"amount": 4.5})

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit logs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Action != AuditCreateExpense || entry.ResourceID != "exp-1" || entry.IPAddress != "127.0.0.1" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Changes != `{"amount":4.5}` {
		t.Errorf("unexpected changes %s", entry.Changes)
	}
}

func TestAuditLog_NilChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditDeleteExpense, "expense", "exp-2", "", nil)

	var entry models.AuditLog
	if err := db.Where("resource_id = ?", "exp-2").First(&entry).Error; err != nil {
		t.Fatalf("expected audit entry: %v", err)
	}
	if entry.Changes != "" {
		t.Errorf("expected empty changes, got %q", entry.Changes)
	}
}
