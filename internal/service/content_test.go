package service

import (
	"database/sql"
	"sort"
	"testing"

	"github.com/medforo/medforo/internal/models"
)

func comment(id, author, parent string) *models.Comment {
	c := &models.Comment{ID: id, AuthorID: author}
	if parent != "" {
		c.ParentCommentID = sql.NullString{String: parent, Valid: true}
	}
	return c
}

func TestCommentSubtree(t *testing.T) {
	// c1 ── c2 ── c4
	//   └── c3    └── c5
	// c6 is a separate top-level comment.
	all := []*models.Comment{
		comment("c1", "u1", ""),
		comment("c2", "u2", "c1"),
		comment("c3", "u1", "c1"),
		comment("c4", "u3", "c2"),
		comment("c5", "u2", "c4"),
		comment("c6", "u4", ""),
	}

	tests := []struct {
		name     string
		rootID   string
		expected []string
	}{
		{"whole tree from root", "c1", []string{"c1", "c2", "c3", "c4", "c5"}},
		{"mid-tree branch", "c2", []string{"c2", "c4", "c5"}},
		{"leaf", "c5", []string{"c5"}},
		{"sibling untouched", "c6", []string{"c6"}},
		{"unknown root", "nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commentSubtree(all, tt.rootID)
			sort.Strings(got)
			want := append([]string(nil), tt.expected...)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("commentSubtree() = %v, want %v", got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("commentSubtree() = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestTallyAuthors(t *testing.T) {
	comments := []*models.Comment{
		comment("c1", "u1", ""),
		comment("c2", "u2", "c1"),
		comment("c3", "u1", "c1"),
		comment("c4", "u1", "c2"),
	}

	tally := tallyAuthors(comments)
	if len(tally) != 2 {
		t.Fatalf("tallyAuthors() has %d authors, want 2", len(tally))
	}
	if tally["u1"] != 3 {
		t.Errorf("tally[u1] = %d, want 3", tally["u1"])
	}
	if tally["u2"] != 1 {
		t.Errorf("tally[u2] = %d, want 1", tally["u2"])
	}
}

func TestImagesToRemove(t *testing.T) {
	current := []models.PostImage{
		{URL: "https://res.cloudinary.com/demo/image/upload/a.jpg"},
		{URL: "https://res.cloudinary.com/demo/image/upload/b.jpg"},
		{URL: "https://res.cloudinary.com/demo/image/upload/c.jpg"},
	}

	tests := []struct {
		name     string
		next     []string
		expected []string
	}{
		{
			"nothing dropped",
			[]string{
				"https://res.cloudinary.com/demo/image/upload/a.jpg",
				"https://res.cloudinary.com/demo/image/upload/b.jpg",
				"https://res.cloudinary.com/demo/image/upload/c.jpg",
			},
			nil,
		},
		{
			"one dropped",
			[]string{
				"https://res.cloudinary.com/demo/image/upload/a.jpg",
				"https://res.cloudinary.com/demo/image/upload/c.jpg",
			},
			[]string{"https://res.cloudinary.com/demo/image/upload/b.jpg"},
		},
		{
			"all dropped",
			nil,
			[]string{
				"https://res.cloudinary.com/demo/image/upload/a.jpg",
				"https://res.cloudinary.com/demo/image/upload/b.jpg",
				"https://res.cloudinary.com/demo/image/upload/c.jpg",
			},
		},
		{
			"new urls ignored",
			[]string{
				"https://res.cloudinary.com/demo/image/upload/a.jpg",
				"https://res.cloudinary.com/demo/image/upload/b.jpg",
				"https://res.cloudinary.com/demo/image/upload/c.jpg",
				"https://res.cloudinary.com/demo/image/upload/d.jpg",
			},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := imagesToRemove(current, tt.next)
			if len(got) != len(tt.expected) {
				t.Fatalf("imagesToRemove() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("imagesToRemove()[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}
