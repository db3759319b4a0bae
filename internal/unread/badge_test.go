package unread

import (
	"errors"
	"testing"

	"github.com/trangpham2601/group-task-manager/internal/models"
)

// mockGroupLister implements GroupLister.
type mockGroupLister struct {
	groups []models.Group
	err    error
}

func (m *mockGroupLister) GetUserGroups(userID uint) ([]models.Group, error) {
	return m.groups, m.err
}

// mockCounter implements Counter with per-group fixed results.
type mockCounter struct {
	counts map[uint]int64
	errs   map[uint]error
}

func (m *mockCounter) Count(groupID, userID uint) (int64, error) {
	if err, ok := m.errs[groupID]; ok {
		return 0, err
	}
	return m.counts[groupID], nil
}

func TestBadgeSumsAllGroups(t *testing.T) {
	lister := &mockGroupLister{groups: []models.Group{{ID: 1}, {ID: 2}, {ID: 3}}}
	counter := &mockCounter{counts: map[uint]int64{1: 2, 2: 0, 3: 5}}

	badge := NewBadge(lister, counter)
	total, err := badge.TotalUnread(42)
	if err != nil {
		t.Fatalf("TotalUnread() error = %v", err)
	}
	if total != 7 {
		t.Errorf("TotalUnread() = %d, want 7", total)
	}
}

func TestBadgeZeroGroups(t *testing.T) {
	badge := NewBadge(&mockGroupLister{}, &mockCounter{})
	total, err := badge.TotalUnread(42)
	if err != nil {
		t.Fatalf("TotalUnread() error = %v", err)
	}
	if total != 0 {
		t.Errorf("TotalUnread() = %d, want 0", total)
	}
}

func TestBadgeFailedGroupContributesZero(t *testing.T) {
	lister := &mockGroupLister{groups: []models.Group{{ID: 1}, {ID: 2}}}
	counter := &mockCounter{
		counts: map[uint]int64{1: 4},
		errs:   map[uint]error{2: errors.New("connection refused")},
	}

	badge := NewBadge(lister, counter)
	total, err := badge.TotalUnread(42)
	if err != nil {
		t.Fatalf("TotalUnread() error = %v", err)
	}
	if total != 4 {
		t.Errorf("TotalUnread() = %d, want 4 (failed group counts as zero)", total)
	}
}

func TestBadgeGroupListError(t *testing.T) {
	lister := &mockGroupLister{err: errors.New("connection refused")}
	badge := NewBadge(lister, &mockCounter{})

	if _, err := badge.TotalUnread(42); err == nil {
		t.Fatal("expected error when the group list cannot be loaded")
	}
}
