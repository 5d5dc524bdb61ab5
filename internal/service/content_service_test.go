package service

import (
	"context"
	"testing"

	"github.com/medforo/medforo/internal/models"
)

func TestCreatePostWithoutMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(doctor("owner"), doctor("author"))
	community := mustCreateCommunity(t, f, "owner", "Pediatrics", false, false)
	gated := mustCreateCommunity(t, f, "owner", "Surgery", false, true)

	// Publishing requires a publishing role and an existing community,
	// not a membership.
	post, err := f.content.CreatePost(ctx, CreatePostInput{
		CommunityID: community.ID,
		AuthorID:    "author",
		Title:       "Case discussion",
		Content:     "An unusual presentation worth sharing.",
	})
	if err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	if post.Status != models.PostStatusActive {
		t.Errorf("status = %s, want active", post.Status)
	}
	if got := f.communities.communities[community.ID].PostCount; got != 1 {
		t.Errorf("community post count = %d, want 1", got)
	}
	if got := f.users.users["author"].PostCount; got != 1 {
		t.Errorf("author post count = %d, want 1", got)
	}

	pending, err := f.content.CreatePost(ctx, CreatePostInput{
		CommunityID: gated.ID,
		AuthorID:    "author",
		Title:       "Awaiting review",
		Content:     "Held until a moderator validates it.",
	})
	if err != nil {
		t.Fatalf("CreatePost() in approval-gated community: %v", err)
	}
	if pending.Status != models.PostStatusPending {
		t.Errorf("status = %s, want pending", pending.Status)
	}
	// A pending post contributes to no counter.
	if got := f.communities.communities[gated.ID].PostCount; got != 0 {
		t.Errorf("gated community post count = %d, want 0", got)
	}
	if got := f.users.users["author"].PostCount; got != 1 {
		t.Errorf("author post count after pending post = %d, want 1", got)
	}
}

func TestDeletePostSettlesCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(doctor("owner"), doctor("author"), doctor("u1"), doctor("u2"))
	community := mustCreateCommunity(t, f, "owner", "Cardiology", false, false)

	post, err := f.content.CreatePost(ctx, CreatePostInput{
		CommunityID: community.ID,
		AuthorID:    "author",
		Title:       "Imaging findings",
		Content:     "Two scans attached for comparison.",
		ImageURLs:   []string{"https://cdn.example.com/scan-1.png", "https://cdn.example.com/scan-2.png"},
	})
	if err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	for _, c := range []struct{ author, content string }{
		{"u1", "First impression"},
		{"u1", "Second look after the follow-up"},
		{"u2", "Agree with the read"},
	} {
		if _, err := f.content.CreateComment(ctx, CreateCommentInput{
			PostID: post.ID, AuthorID: c.author, Content: c.content,
		}); err != nil {
			t.Fatalf("CreateComment() error: %v", err)
		}
	}

	result, err := f.content.DeletePost(ctx, post.ID, "owner")
	if err != nil {
		t.Fatalf("DeletePost() error: %v", err)
	}
	if !result.ModeratorDeletion {
		t.Error("owner deleting another author's post should count as moderation")
	}
	if result.DeletedComments != 3 {
		t.Errorf("DeletedComments = %d, want 3", result.DeletedComments)
	}
	if result.DeletedImages != 2 {
		t.Errorf("DeletedImages = %d, want 2", result.DeletedImages)
	}
	if result.UpdatedAuthors != 3 {
		t.Errorf("UpdatedAuthors = %d, want 3", result.UpdatedAuthors)
	}

	if f.posts.posts[post.ID] != nil {
		t.Error("post row still present after delete")
	}
	if got := f.communities.communities[community.ID].PostCount; got != 0 {
		t.Errorf("community post count = %d, want 0", got)
	}
	if got := f.users.users["author"].PostCount; got != 0 {
		t.Errorf("author post count = %d, want 0", got)
	}
	if got := f.users.users["u1"].CommentCount; got != 0 {
		t.Errorf("u1 comment count = %d, want 0", got)
	}
	if got := f.users.users["u1"].ContributionCount; got != 0 {
		t.Errorf("u1 contribution count = %d, want 0", got)
	}
	if got := f.users.users["u2"].CommentCount; got != 0 {
		t.Errorf("u2 comment count = %d, want 0", got)
	}
	if got := f.notifications.countByType("author", models.NotifyPostDeleted); got != 1 {
		t.Errorf("author post_deleted notifications = %d, want 1", got)
	}
}
