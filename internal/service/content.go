package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/db"
	"github.com/medforo/medforo/internal/media"
	"github.com/medforo/medforo/internal/models"
	"github.com/medforo/medforo/pkg/logging"
)

// ContentService implements the post and comment lifecycle, including
// the deletion cascades that keep the denormalized counters honest.
type ContentService struct {
	communities communityStore
	users       userStore
	posts       postStore
	comments    commentStore
	notifier    *Notifier
	media       *media.Client
	logger      *zap.Logger
}

// NewContentService creates a new content service
func NewContentService(repo *db.Repository, notifier *Notifier, mediaClient *media.Client) *ContentService {
	return &ContentService{
		communities: db.NewCommunityRepository(repo),
		users:       db.NewUserRepository(repo),
		posts:       db.NewPostRepository(repo),
		comments:    db.NewCommentRepository(repo),
		notifier:    notifier,
		media:       mediaClient,
		logger:      logging.GetLogger().With(zap.String("component", "content_service")),
	}
}

// CreatePostInput carries a new post
type CreatePostInput struct {
	CommunityID string
	AuthorID    string
	Title       string
	Content     string
	ImageURLs   []string
}

// EditPostInput is a partial post patch; nil fields are untouched
type EditPostInput struct {
	Title     *string
	Content   *string
	ImageURLs *[]string
}

// PostDeleteResult reports the scale of a post deletion cascade
type PostDeleteResult struct {
	DeletedComments   int  `json:"deletedComments"`
	UpdatedAuthors    int  `json:"updatedAuthors"`
	DeletedImages     int  `json:"deletedImages"`
	ModeratorDeletion bool `json:"moderatorDeletion"`
}

// CommentDeleteResult reports a comment subtree deletion
type CommentDeleteResult struct {
	Deleted         int  `json:"deleted"`
	ModeratorAction bool `json:"moderatorAction"`
}

// tallyAuthors counts comments per author
func tallyAuthors(comments []*models.Comment) map[string]int64 {
	tally := make(map[string]int64)
	for _, comment := range comments {
		tally[comment.AuthorID]++
	}
	return tally
}

// commentSubtree collects the ids of a comment and every transitive
// reply under it, walked with a worklist over the post's flat comment set
func commentSubtree(all []*models.Comment, rootID string) []string {
	children := make(map[string][]string)
	byID := make(map[string]*models.Comment, len(all))
	for _, comment := range all {
		byID[comment.ID] = comment
		if comment.ParentCommentID.Valid {
			parent := comment.ParentCommentID.String
			children[parent] = append(children[parent], comment.ID)
		}
	}
	if _, ok := byID[rootID]; !ok {
		return nil
	}

	var doomed []string
	worklist := []string{rootID}
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		doomed = append(doomed, id)
		worklist = append(worklist, children[id]...)
	}
	return doomed
}

// imagesToRemove returns the URLs present in the current image set but
// absent from the next one
func imagesToRemove(current []models.PostImage, next []string) []string {
	keep := make(map[string]bool, len(next))
	for _, url := range next {
		keep[url] = true
	}
	var removed []string
	for _, image := range current {
		if !keep[image.URL] {
			removed = append(removed, image.URL)
		}
	}
	return removed
}

// deleteAssets destroys a batch of stored images concurrently. Failures
// are logged and swallowed; an orphaned asset never blocks a deletion flow.
func (s *ContentService) deleteAssets(ctx context.Context, urls []string) {
	if s.media == nil || len(urls) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if err := s.media.Delete(ctx, url); err != nil {
				s.logger.Warn("Failed to destroy stored image",
					zap.String("url", url),
					zap.Error(err))
			}
		}(url)
	}
	wg.Wait()
}

// canModerate reports whether the user may act as a moderator of the
// community: its owner, one of its moderators, or a platform moderator
func (s *ContentService) canModerate(ctx context.Context, community *models.Community, userID string) (bool, error) {
	if community.OwnerID == userID {
		return true, nil
	}
	moderator, err := s.communities.GetModerator(ctx, community.ID, userID)
	if err != nil {
		return false, err
	}
	if moderator != nil {
		return true, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsSystemModerator(), nil
}

func (s *ContentService) getCommunity(ctx context.Context, id string) (*models.Community, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community == nil || community.IsDeleted {
		return nil, NotFoundError("community %s not found", id)
	}
	return community, nil
}

// CreatePost publishes a post into a community. When the community
// requires post approval the post is created pending and contributes to
// no counter until a moderator validates it.
func (s *ContentService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, InvalidInputError("post title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, InvalidInputError("post content is required")
	}

	author, err := s.users.GetByID(ctx, input.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, NotFoundError("user %s not found", input.AuthorID)
	}
	if !author.CanPublish() {
		return nil, ForbiddenError("role %s cannot publish", author.Role)
	}

	community, err := s.getCommunity(ctx, input.CommunityID)
	if err != nil {
		return nil, err
	}

	status := models.PostStatusActive
	if community.RequiresPostApproval {
		status = models.PostStatusPending
	}

	post := &models.Post{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		AuthorID:    input.AuthorID,
		CommunityID: input.CommunityID,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	images := make([]models.PostImage, 0, len(input.ImageURLs))
	for i, url := range input.ImageURLs {
		images = append(images, models.PostImage{PostID: post.ID, Position: i, URL: url})
	}
	if err := s.posts.Create(ctx, post, images); err != nil {
		return nil, err
	}

	if status == models.PostStatusActive {
		if err := s.communities.IncPostCount(ctx, input.CommunityID, 1, true); err != nil {
			s.logger.Warn("Failed to bump post count", zap.String("community_id", input.CommunityID), zap.Error(err))
		}
		if err := s.users.IncPostStats(ctx, input.AuthorID, 1); err != nil {
			s.logger.Warn("Failed to bump author post stats", zap.String("user_id", input.AuthorID), zap.Error(err))
		}
	}

	s.logger.Info("Post created",
		zap.String("post_id", post.ID),
		zap.String("community_id", input.CommunityID),
		zap.String("status", status))
	return post, nil
}

// GetPost retrieves a post
func (s *ContentService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundError("post %s not found", id)
	}
	return post, nil
}

// ListPosts retrieves every post of a community
func (s *ContentService) ListPosts(ctx context.Context, communityID string) ([]*models.Post, error) {
	if _, err := s.getCommunity(ctx, communityID); err != nil {
		return nil, err
	}
	return s.posts.ListByCommunity(ctx, communityID)
}

// PostImages retrieves a post's attached images in order
func (s *ContentService) PostImages(ctx context.Context, postID string) ([]models.PostImage, error) {
	return s.posts.Images(ctx, postID)
}

// EditPost applies a patch to a post. Allowed to the author and to
// anyone who can moderate the post's community. Images dropped from the
// attachment set are destroyed in the object store, best-effort.
func (s *ContentService) EditPost(ctx context.Context, postID, actorID string, input EditPostInput) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return NotFoundError("post %s not found", postID)
	}
	if post.AuthorID != actorID {
		community, err := s.getCommunity(ctx, post.CommunityID)
		if err != nil {
			return err
		}
		allowed, err := s.canModerate(ctx, community, actorID)
		if err != nil {
			return err
		}
		if !allowed {
			return ForbiddenError("only the author or a moderator can edit this post")
		}
	}

	patch := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return InvalidInputError("post title is required")
		}
		patch["title"] = title
	}
	if input.Content != nil {
		patch["content"] = *input.Content
	}
	if err := s.posts.Updates(ctx, postID, patch); err != nil {
		return err
	}

	if input.ImageURLs != nil {
		current, err := s.posts.Images(ctx, postID)
		if err != nil {
			return err
		}
		removed := imagesToRemove(current, *input.ImageURLs)
		images := make([]models.PostImage, 0, len(*input.ImageURLs))
		for i, url := range *input.ImageURLs {
			images = append(images, models.PostImage{PostID: postID, Position: i, URL: url})
		}
		if err := s.posts.ReplaceImages(ctx, postID, images); err != nil {
			return err
		}
		s.deleteAssets(ctx, removed)
	}
	return nil
}

// DeletePost removes a post with everything hanging off it: its comment
// tree, its stored images, and the counter contributions it made while
// active. When a moderator deletes someone else's post the author is
// notified.
func (s *ContentService) DeletePost(ctx context.Context, postID, actorID string) (*PostDeleteResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundError("post %s not found", postID)
	}

	moderatorDeletion := post.AuthorID != actorID
	if moderatorDeletion {
		community, err := s.getCommunity(ctx, post.CommunityID)
		if err != nil {
			return nil, err
		}
		allowed, err := s.canModerate(ctx, community, actorID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ForbiddenError("only the author or a moderator can delete this post")
		}
	}

	result := &PostDeleteResult{ModeratorDeletion: moderatorDeletion}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) > 0 {
		ids := make([]string, len(comments))
		for i, comment := range comments {
			ids[i] = comment.ID
		}
		if err := s.comments.DeleteByIDs(ctx, ids); err != nil {
			return result, err
		}
		result.DeletedComments = len(comments)
	}

	images, err := s.posts.Images(ctx, postID)
	if err != nil {
		return result, err
	}
	urls := make([]string, len(images))
	for i, image := range images {
		urls[i] = image.URL
	}
	s.deleteAssets(ctx, urls)
	result.DeletedImages = len(urls)

	for authorID, n := range tallyAuthors(comments) {
		user, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			return result, err
		}
		if user == nil {
			continue
		}
		if err := s.users.IncCommentStats(ctx, authorID, -n); err != nil {
			s.logger.Warn("Failed to drop author comment stats", zap.String("user_id", authorID), zap.Error(err))
			continue
		}
		result.UpdatedAuthors++
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return result, err
	}

	if post.Status == models.PostStatusActive {
		if err := s.communities.IncPostCount(ctx, post.CommunityID, -1, false); err != nil {
			s.logger.Warn("Failed to drop post count", zap.String("community_id", post.CommunityID), zap.Error(err))
		}
		author, err := s.users.GetByID(ctx, post.AuthorID)
		if err != nil {
			return result, err
		}
		if author != nil {
			if err := s.users.IncPostStats(ctx, post.AuthorID, -1); err != nil {
				s.logger.Warn("Failed to drop author post stats", zap.String("user_id", post.AuthorID), zap.Error(err))
			} else {
				result.UpdatedAuthors++
			}
			if moderatorDeletion {
				s.notifier.SendPostDeleted(ctx, post.AuthorID, post.Title)
			}
		}
	} else if moderatorDeletion {
		author, err := s.users.GetByID(ctx, post.AuthorID)
		if err != nil {
			return result, err
		}
		if author != nil {
			s.notifier.SendPostDeleted(ctx, post.AuthorID, post.Title)
		}
	}

	s.logger.Info("Post deleted",
		zap.String("post_id", postID),
		zap.Int("comments", result.DeletedComments),
		zap.Bool("by_moderator", moderatorDeletion))
	return result, nil
}

// CreateCommentInput carries a new comment; ParentCommentID is empty
// for a top-level comment
type CreateCommentInput struct {
	PostID          string
	AuthorID        string
	Content         string
	ParentCommentID string
}

// CreateComment appends a comment to a post, optionally as a reply
func (s *ContentService) CreateComment(ctx context.Context, input CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, InvalidInputError("comment content is required")
	}

	author, err := s.users.GetByID(ctx, input.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, NotFoundError("user %s not found", input.AuthorID)
	}
	if !author.CanPublish() {
		return nil, ForbiddenError("role %s cannot publish", author.Role)
	}

	post, err := s.posts.GetByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundError("post %s not found", input.PostID)
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    input.PostID,
		AuthorID:  input.AuthorID,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	}
	if input.ParentCommentID != "" {
		parent, err := s.comments.GetByID(ctx, input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != input.PostID {
			return nil, InvalidInputError("parent comment does not belong to this post")
		}
		comment.ParentCommentID = sql.NullString{String: input.ParentCommentID, Valid: true}
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.posts.IncCommentCount(ctx, input.PostID, 1); err != nil {
		s.logger.Warn("Failed to bump comment count", zap.String("post_id", input.PostID), zap.Error(err))
	}
	if err := s.users.IncCommentStats(ctx, input.AuthorID, 1); err != nil {
		s.logger.Warn("Failed to bump author comment stats", zap.String("user_id", input.AuthorID), zap.Error(err))
	}
	return comment, nil
}

// ListComments retrieves every comment of a post (the full flat tree)
func (s *ContentService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundError("post %s not found", postID)
	}
	return s.comments.ListByPost(ctx, postID)
}

// EditComment rewrites a comment's content; author only
func (s *ContentService) EditComment(ctx context.Context, commentID, actorID, content string) error {
	if strings.TrimSpace(content) == "" {
		return InvalidInputError("comment content is required")
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return NotFoundError("comment %s not found", commentID)
	}
	if comment.AuthorID != actorID {
		return ForbiddenError("only the author can edit a comment")
	}
	return s.comments.Updates(ctx, commentID, map[string]interface{}{
		"content":    content,
		"updated_at": time.Now().UTC(),
	})
}

// DeleteComment removes a comment and its whole reply subtree, settling
// the per-author and per-post counters. When a moderator deletes
// someone else's comment the author is notified.
func (s *ContentService) DeleteComment(ctx context.Context, commentID, actorID string) (*CommentDeleteResult, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, NotFoundError("comment %s not found", commentID)
	}

	post, err := s.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundError("post %s not found", comment.PostID)
	}

	moderatorAction := comment.AuthorID != actorID
	if moderatorAction {
		community, err := s.getCommunity(ctx, post.CommunityID)
		if err != nil {
			return nil, err
		}
		allowed, err := s.canModerate(ctx, community, actorID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ForbiddenError("only the author or a moderator can delete this comment")
		}
	}

	all, err := s.comments.ListByPost(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	doomedIDs := commentSubtree(all, commentID)
	doomedSet := make(map[string]bool, len(doomedIDs))
	for _, id := range doomedIDs {
		doomedSet[id] = true
	}
	var doomed []*models.Comment
	for _, c := range all {
		if doomedSet[c.ID] {
			doomed = append(doomed, c)
		}
	}

	if err := s.comments.DeleteByIDs(ctx, doomedIDs); err != nil {
		return nil, err
	}

	for authorID, n := range tallyAuthors(doomed) {
		user, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			return &CommentDeleteResult{Deleted: len(doomedIDs), ModeratorAction: moderatorAction}, err
		}
		if user == nil {
			continue
		}
		if err := s.users.IncCommentStats(ctx, authorID, -n); err != nil {
			s.logger.Warn("Failed to drop author comment stats", zap.String("user_id", authorID), zap.Error(err))
		}
	}
	if err := s.posts.IncCommentCount(ctx, comment.PostID, -int64(len(doomedIDs))); err != nil {
		s.logger.Warn("Failed to drop comment count", zap.String("post_id", comment.PostID), zap.Error(err))
	}

	if moderatorAction {
		author, err := s.users.GetByID(ctx, comment.AuthorID)
		if err == nil && author != nil {
			s.notifier.SendCommentDeleted(ctx, comment.AuthorID, commentID)
		}
	}

	s.logger.Info("Comment subtree deleted",
		zap.String("comment_id", commentID),
		zap.Int("deleted", len(doomedIDs)),
		zap.Bool("by_moderator", moderatorAction))
	return &CommentDeleteResult{Deleted: len(doomedIDs), ModeratorAction: moderatorAction}, nil
}
