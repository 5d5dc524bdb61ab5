package service

import (
	"testing"
	"time"

	"github.com/medforo/medforo/internal/models"
)

func TestNameTaken(t *testing.T) {
	communities := []*models.Community{
		{ID: "c1", Name: "Cardiology"},
		{ID: "c2", Name: "Pediatric Surgery"},
	}

	tests := []struct {
		name      string
		candidate string
		excludeID string
		expected  bool
	}{
		{"exact match", "Cardiology", "", true},
		{"case folded match", "cardiology", "", true},
		{"mixed case match", "PEDIATRIC surgery", "", true},
		{"free name", "Neurology", "", false},
		{"own name excluded on rename", "Cardiology", "c1", false},
		{"other community still blocks", "Cardiology", "c2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nameTaken(communities, tt.candidate, tt.excludeID); got != tt.expected {
				t.Errorf("nameTaken(%q, %q) = %v, want %v", tt.candidate, tt.excludeID, got, tt.expected)
			}
		})
	}
}

func TestPickSuccessor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mod := func(userID string, offset time.Duration) *models.Moderator {
		return &models.Moderator{UserID: userID, AddedAt: base.Add(offset)}
	}

	tests := []struct {
		name       string
		moderators []*models.Moderator
		excludeID  string
		expected   string
	}{
		{
			name:       "no moderators",
			moderators: nil,
			excludeID:  "owner",
			expected:   "",
		},
		{
			name:       "only the owner",
			moderators: []*models.Moderator{mod("owner", 0)},
			excludeID:  "owner",
			expected:   "",
		},
		{
			name: "earliest assignment wins",
			moderators: []*models.Moderator{
				mod("owner", 0),
				mod("u-late", 48*time.Hour),
				mod("u-early", time.Hour),
			},
			excludeID: "owner",
			expected:  "u-early",
		},
		{
			name: "tie broken by user id",
			moderators: []*models.Moderator{
				mod("owner", 0),
				mod("u-bbb", time.Hour),
				mod("u-aaa", time.Hour),
			},
			excludeID: "owner",
			expected:  "u-aaa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickSuccessor(tt.moderators, tt.excludeID); got != tt.expected {
				t.Errorf("pickSuccessor() = %q, want %q", got, tt.expected)
			}
		})
	}
}
