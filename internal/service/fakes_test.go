package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/models"
)

// In-memory stores mirroring the repository semantics (member_count
// kept in step with membership rows, counters floor-clamped at zero)
// so the service flows can run without a database.

func clampCounter(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

type fakeCommunityStore struct {
	communities map[string]*models.Community
	members     map[string]map[string]bool
	pending     map[string]map[string]*models.PendingMember
	moderators  map[string]map[string]*models.Moderator
	bans        map[string][]*models.Ban
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		communities: make(map[string]*models.Community),
		members:     make(map[string]map[string]bool),
		pending:     make(map[string]map[string]*models.PendingMember),
		moderators:  make(map[string]map[string]*models.Moderator),
		bans:        make(map[string][]*models.Ban),
	}
}

func (f *fakeCommunityStore) seed(community *models.Community) {
	f.communities[community.ID] = community
	f.members[community.ID] = map[string]bool{community.OwnerID: true}
	f.pending[community.ID] = make(map[string]*models.PendingMember)
	f.moderators[community.ID] = map[string]*models.Moderator{
		community.OwnerID: {CommunityID: community.ID, UserID: community.OwnerID, AddedAt: community.CreatedAt, AddedBy: community.OwnerID},
	}
	community.MemberCount = 1
}

func (f *fakeCommunityStore) GetByID(_ context.Context, id string) (*models.Community, error) {
	return f.communities[id], nil
}

func (f *fakeCommunityStore) ListActive(_ context.Context) ([]*models.Community, error) {
	var out []*models.Community
	for _, c := range f.communities {
		if !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommunityStore) Create(_ context.Context, community *models.Community) error {
	f.seed(community)
	return nil
}

// Updates replaces the stored row with a patched copy so callers
// holding a previously loaded community keep its pre-patch values,
// the way a database read would.
func (f *fakeCommunityStore) Updates(_ context.Context, id string, patch map[string]interface{}) error {
	c := *f.communities[id]
	if v, ok := patch["name"].(string); ok {
		c.Name = v
	}
	if v, ok := patch["description"].(string); ok {
		c.Description = v
	}
	if v, ok := patch["rules"].(string); ok {
		c.Rules = v
	}
	if v, ok := patch["requires_approval"].(bool); ok {
		c.RequiresApproval = v
	}
	if v, ok := patch["requires_post_approval"].(bool); ok {
		c.RequiresPostApproval = v
	}
	f.communities[id] = &c
	return nil
}

func (f *fakeCommunityStore) Delete(_ context.Context, id string) error {
	delete(f.communities, id)
	delete(f.members, id)
	delete(f.pending, id)
	delete(f.moderators, id)
	delete(f.bans, id)
	return nil
}

func (f *fakeCommunityStore) IncPostCount(_ context.Context, id string, delta int64, _ bool) error {
	c := f.communities[id]
	c.PostCount = clampCounter(c.PostCount + delta)
	return nil
}

func (f *fakeCommunityStore) IsMember(_ context.Context, communityID, userID string) (bool, error) {
	return f.members[communityID][userID], nil
}

func (f *fakeCommunityStore) AddMember(_ context.Context, communityID, userID string) error {
	if !f.members[communityID][userID] {
		f.members[communityID][userID] = true
		f.communities[communityID].MemberCount++
	}
	return nil
}

func (f *fakeCommunityStore) RemoveMember(_ context.Context, communityID, userID string) error {
	if f.members[communityID][userID] {
		delete(f.members[communityID], userID)
		c := f.communities[communityID]
		c.MemberCount = clampCounter(c.MemberCount - 1)
	}
	return nil
}

func (f *fakeCommunityStore) ListMemberIDs(_ context.Context, communityID string) ([]string, error) {
	var ids []string
	for id := range f.members[communityID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeCommunityStore) CountMemberships(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, set := range f.members {
		if set[userID] {
			n++
		}
	}
	return n, nil
}

func (f *fakeCommunityStore) GetPending(_ context.Context, communityID, userID string) (*models.PendingMember, error) {
	return f.pending[communityID][userID], nil
}

func (f *fakeCommunityStore) ListPending(_ context.Context, communityID string) ([]*models.PendingMember, error) {
	var out []*models.PendingMember
	for _, p := range f.pending[communityID] {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCommunityStore) AddPending(_ context.Context, pending *models.PendingMember) error {
	f.pending[pending.CommunityID][pending.UserID] = pending
	return nil
}

func (f *fakeCommunityStore) RemovePending(_ context.Context, communityID, userID string) error {
	delete(f.pending[communityID], userID)
	return nil
}

func (f *fakeCommunityStore) PromotePending(ctx context.Context, communityID, userID string) error {
	delete(f.pending[communityID], userID)
	return f.AddMember(ctx, communityID, userID)
}

func (f *fakeCommunityStore) GetModerator(_ context.Context, communityID, userID string) (*models.Moderator, error) {
	return f.moderators[communityID][userID], nil
}

func (f *fakeCommunityStore) ListModerators(_ context.Context, communityID string) ([]*models.Moderator, error) {
	var out []*models.Moderator
	for _, m := range f.moderators[communityID] {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeCommunityStore) AddModerator(_ context.Context, moderator *models.Moderator) error {
	f.moderators[moderator.CommunityID][moderator.UserID] = moderator
	return nil
}

func (f *fakeCommunityStore) RemoveModerator(_ context.Context, communityID, userID string) error {
	delete(f.moderators[communityID], userID)
	return nil
}

func (f *fakeCommunityStore) ListBans(_ context.Context, communityID string) ([]*models.Ban, error) {
	return append([]*models.Ban(nil), f.bans[communityID]...), nil
}

func (f *fakeCommunityStore) GetActiveBan(_ context.Context, communityID, userID string) (*models.Ban, error) {
	for _, ban := range f.bans[communityID] {
		if ban.UserID == userID && ban.IsActive {
			return ban, nil
		}
	}
	return nil, nil
}

func (f *fakeCommunityStore) RemoveBans(_ context.Context, communityID, userID string) error {
	var kept []*models.Ban
	for _, ban := range f.bans[communityID] {
		if ban.UserID != userID {
			kept = append(kept, ban)
		}
	}
	f.bans[communityID] = kept
	return nil
}

func (f *fakeCommunityStore) ApplyBan(ctx context.Context, ban *models.Ban, wasMember, wasModerator, wasPending bool) error {
	f.bans[ban.CommunityID] = append(f.bans[ban.CommunityID], ban)
	if wasMember {
		if err := f.RemoveMember(ctx, ban.CommunityID, ban.UserID); err != nil {
			return err
		}
	}
	if wasModerator {
		delete(f.moderators[ban.CommunityID], ban.UserID)
	}
	if wasPending {
		delete(f.pending[ban.CommunityID], ban.UserID)
	}
	return nil
}

func (f *fakeCommunityStore) TransferOwnership(ctx context.Context, communityID, previousOwnerID, newOwnerID string) error {
	f.communities[communityID].OwnerID = newOwnerID
	delete(f.moderators[communityID], previousOwnerID)
	return f.RemoveMember(ctx, communityID, previousOwnerID)
}

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) IncForumCount(_ context.Context, id string, delta int64) error {
	if u := f.users[id]; u != nil {
		u.ForumCount = clampCounter(u.ForumCount + delta)
	}
	return nil
}

func (f *fakeUserStore) IncJoinedForumCount(_ context.Context, id string, delta int64) error {
	if u := f.users[id]; u != nil {
		u.JoinedForumCount = clampCounter(u.JoinedForumCount + delta)
	}
	return nil
}

func (f *fakeUserStore) SetJoinedForumCount(_ context.Context, id string, n int64) error {
	if u := f.users[id]; u != nil {
		u.JoinedForumCount = n
	}
	return nil
}

func (f *fakeUserStore) IncPostStats(_ context.Context, id string, delta int64) error {
	if u := f.users[id]; u != nil {
		u.PostCount = clampCounter(u.PostCount + delta)
		u.ContributionCount = clampCounter(u.ContributionCount + delta)
	}
	return nil
}

func (f *fakeUserStore) IncCommentStats(_ context.Context, id string, delta int64) error {
	if u := f.users[id]; u != nil {
		u.CommentCount = clampCounter(u.CommentCount + delta)
		u.ContributionCount = clampCounter(u.ContributionCount + delta)
	}
	return nil
}

type fakePostStore struct {
	posts  map[string]*models.Post
	images map[string][]models.PostImage
}

func newFakePostStore(posts ...*models.Post) *fakePostStore {
	f := &fakePostStore{posts: make(map[string]*models.Post), images: make(map[string][]models.PostImage)}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePostStore) GetByID(_ context.Context, id string) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostStore) Create(_ context.Context, post *models.Post, images []models.PostImage) error {
	f.posts[post.ID] = post
	f.images[post.ID] = images
	return nil
}

func (f *fakePostStore) Updates(_ context.Context, id string, patch map[string]interface{}) error {
	p := f.posts[id]
	if v, ok := patch["title"].(string); ok {
		p.Title = v
	}
	if v, ok := patch["content"].(string); ok {
		p.Content = v
	}
	return nil
}

func (f *fakePostStore) Delete(_ context.Context, id string) error {
	delete(f.posts, id)
	delete(f.images, id)
	return nil
}

func (f *fakePostStore) ListByCommunity(_ context.Context, communityID string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.CommunityID == communityID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostStore) ListPendingByCommunity(_ context.Context, communityID string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.CommunityID == communityID && p.Status == models.PostStatusPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostStore) Images(_ context.Context, postID string) ([]models.PostImage, error) {
	return f.images[postID], nil
}

func (f *fakePostStore) ReplaceImages(_ context.Context, postID string, images []models.PostImage) error {
	f.images[postID] = images
	return nil
}

func (f *fakePostStore) IncCommentCount(_ context.Context, postID string, delta int64) error {
	if p := f.posts[postID]; p != nil {
		p.CommentCount = clampCounter(p.CommentCount + delta)
	}
	return nil
}

func (f *fakePostStore) Activate(_ context.Context, postID, validatedBy string, when time.Time) error {
	p := f.posts[postID]
	p.Status = models.PostStatusActive
	return nil
}

func (f *fakePostStore) ActivateAll(ctx context.Context, postIDs []string, validatedBy string, when time.Time) error {
	for _, id := range postIDs {
		if err := f.Activate(ctx, id, validatedBy, when); err != nil {
			return err
		}
	}
	return nil
}

type fakeCommentStore struct {
	comments map[string]*models.Comment
}

func newFakeCommentStore(comments ...*models.Comment) *fakeCommentStore {
	f := &fakeCommentStore{comments: make(map[string]*models.Comment)}
	for _, c := range comments {
		f.comments[c.ID] = c
	}
	return f
}

func (f *fakeCommentStore) GetByID(_ context.Context, id string) (*models.Comment, error) {
	return f.comments[id], nil
}

func (f *fakeCommentStore) Create(_ context.Context, comment *models.Comment) error {
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentStore) Updates(_ context.Context, id string, patch map[string]interface{}) error {
	if v, ok := patch["content"].(string); ok {
		f.comments[id].Content = v
	}
	return nil
}

func (f *fakeCommentStore) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.comments, id)
	}
	return nil
}

type fakeNotificationStore struct {
	byUser map[string][]*models.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{byUser: make(map[string][]*models.Notification)}
}

func (f *fakeNotificationStore) countByType(userID, notifType string) int {
	n := 0
	for _, notif := range f.byUser[userID] {
		if notif.Type == notifType {
			n++
		}
	}
	return n
}

func (f *fakeNotificationStore) Create(_ context.Context, notification *models.Notification) error {
	f.byUser[notification.UserID] = append(f.byUser[notification.UserID], notification)
	return nil
}

func (f *fakeNotificationStore) ListByUser(_ context.Context, userID string) ([]*models.Notification, error) {
	return append([]*models.Notification(nil), f.byUser[userID]...), nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id string) error {
	for _, notifications := range f.byUser {
		for _, n := range notifications {
			if n.ID == id {
				n.IsRead = true
			}
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var updated int64
	for _, n := range f.byUser[userID] {
		if !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotificationStore) Delete(_ context.Context, id string) error {
	return f.DeleteByIDs(context.Background(), []string{id})
}

func (f *fakeNotificationStore) DeleteByIDs(_ context.Context, ids []string) error {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	for userID, notifications := range f.byUser {
		var kept []*models.Notification
		for _, n := range notifications {
			if !doomed[n.ID] {
				kept = append(kept, n)
			}
		}
		f.byUser[userID] = kept
	}
	return nil
}

func (f *fakeNotificationStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	n := int64(len(f.byUser[userID]))
	delete(f.byUser, userID)
	return n, nil
}

func (f *fakeNotificationStore) DeleteRead(_ context.Context, userID string) (int64, error) {
	var kept []*models.Notification
	var removed int64
	for _, n := range f.byUser[userID] {
		if n.IsRead {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	f.byUser[userID] = kept
	return removed, nil
}

// fixture wires the services over the fake stores
type fixture struct {
	communities   *fakeCommunityStore
	users         *fakeUserStore
	posts         *fakePostStore
	comments      *fakeCommentStore
	notifications *fakeNotificationStore
	community     *CommunityService
	content       *ContentService
}

func newFixture(users ...*models.User) *fixture {
	f := &fixture{
		communities:   newFakeCommunityStore(),
		users:         newFakeUserStore(users...),
		posts:         newFakePostStore(),
		comments:      newFakeCommentStore(),
		notifications: newFakeNotificationStore(),
	}
	notifier := &Notifier{
		repo:          f.notifications,
		logger:        zap.NewNop(),
		retentionDays: 30,
		maxRetained:   80,
	}
	f.community = &CommunityService{
		communities: f.communities,
		users:       f.users,
		posts:       f.posts,
		comments:    f.comments,
		notifier:    notifier,
		logger:      zap.NewNop(),
	}
	f.content = &ContentService{
		communities: f.communities,
		users:       f.users,
		posts:       f.posts,
		comments:    f.comments,
		notifier:    notifier,
		logger:      zap.NewNop(),
	}
	return f
}
