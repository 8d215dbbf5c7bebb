// Package memstore is an in-process implementation of store.Store guarded by
// a single mutex. InTx holds the mutex for the whole callback, so a
// transaction is atomic with respect to other callers; it does not roll back
// writes made before a failing step.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"subhive/internal/models"
	"subhive/internal/store"
)

type savedEntry struct {
	userID    uint
	postID    uint
	createdAt time.Time
}

type data struct {
	mu sync.Mutex

	seq           map[string]uint
	users         map[uint]*models.User
	posts         map[uint]*models.Post
	comments      map[uint]*models.Comment
	subreddits    map[uint]*models.Subreddit
	members       map[uint]map[uint]bool // subreddit -> user -> moderator
	karmaLogs     []models.KarmaLog
	notifications map[uint]*models.Notification
	saved         []savedEntry
}

type Store struct {
	d    *data
	inTx bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{d: &data{
		seq:           make(map[string]uint),
		users:         make(map[uint]*models.User),
		posts:         make(map[uint]*models.Post),
		comments:      make(map[uint]*models.Comment),
		subreddits:    make(map[uint]*models.Subreddit),
		members:       make(map[uint]map[uint]bool),
		notifications: make(map[uint]*models.Notification),
	}}
}

// lock acquires the mutex unless the caller already holds it through InTx.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.d.mu.Lock()
	return s.d.mu.Unlock
}

func (s *Store) nextID(table string) uint {
	s.d.seq[table]++
	return s.d.seq[table]
}

func (s *Store) Posts() store.PostStore                 { return postStore{s} }
func (s *Store) Comments() store.CommentStore           { return commentStore{s} }
func (s *Store) Users() store.UserStore                 { return userStore{s} }
func (s *Store) Subreddits() store.SubredditStore       { return subredditStore{s} }
func (s *Store) Notifications() store.NotificationStore { return notificationStore{s} }

func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return fn(&Store{d: s.d, inTx: true})
}

func stamp(created *time.Time) time.Time {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	return now
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---------------------------------------------------------------------------
// posts

type postStore struct{ *Store }

// view returns a detached copy with author and subreddit attached.
func (s postStore) view(p *models.Post) models.Post {
	out := *p
	if u, ok := s.d.users[p.UserID]; ok {
		out.User = *u
		out.User.JoinedSubreddits = nil
	}
	if sub, ok := s.d.subreddits[p.SubredditID]; ok {
		out.Subreddit = *sub
		out.Subreddit.ModeratorIDs = nil
	}
	return out
}

func (s postStore) Create(ctx context.Context, post *models.Post) error {
	defer s.lock()()
	post.ID = s.nextID("posts")
	post.UpdatedAt = stamp(&post.CreatedAt)
	if post.Status == "" {
		post.Status = models.PostStatusVisible
	}
	if post.Kind == "" {
		post.Kind = models.PostKindText
	}
	stored := *post
	stored.User = models.User{}
	stored.Subreddit = models.Subreddit{}
	s.d.posts[post.ID] = &stored
	*post = s.view(&stored)
	return nil
}

func (s postStore) Get(ctx context.Context, id uint) (*models.Post, error) {
	defer s.lock()()
	p, ok := s.d.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := s.view(p)
	return &out, nil
}

func (s postStore) matches(p *models.Post, f store.PostFilter) bool {
	if f.SubredditIDs != nil {
		found := false
		for _, id := range f.SubredditIDs {
			if id == p.SubredditID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AuthorID != 0 && p.UserID != f.AuthorID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Query != "" && !containsFold(p.Title, f.Query) && !containsFold(p.Content, f.Query) {
		return false
	}
	return true
}

func (s postStore) List(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	defer s.lock()()
	posts := make([]models.Post, 0)
	for _, id := range sortedIDs(s.d.posts) {
		p := s.d.posts[id]
		if !s.matches(p, filter) {
			continue
		}
		posts = append(posts, s.view(p))
		if filter.Limit > 0 && len(posts) == filter.Limit {
			break
		}
	}
	return posts, nil
}

func (s postStore) update(id uint, fn func(p *models.Post)) error {
	defer s.lock()()
	p, ok := s.d.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (s postStore) UpdateContent(ctx context.Context, id uint, title, content string) error {
	return s.update(id, func(p *models.Post) {
		p.Title = title
		p.Content = content
	})
}

func (s postStore) SetStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return s.update(id, func(p *models.Post) { p.Status = status })
}

func (s postStore) AddVotes(ctx context.Context, id uint, delta int) error {
	return s.update(id, func(p *models.Post) { p.Votes += delta })
}

func (s postStore) AddCommentsCount(ctx context.Context, id uint, delta int) error {
	return s.update(id, func(p *models.Post) { p.CommentsCount += delta })
}

func (s postStore) Delete(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.d.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.d.posts, id)
	for cid, c := range s.d.comments {
		if c.PostID == id {
			delete(s.d.comments, cid)
		}
	}
	for nid, n := range s.d.notifications {
		if n.PostID == id {
			delete(s.d.notifications, nid)
		}
	}
	kept := s.d.saved[:0]
	for _, e := range s.d.saved {
		if e.postID != id {
			kept = append(kept, e)
		}
	}
	s.d.saved = kept
	return nil
}

func (s postStore) ToggleSaved(ctx context.Context, userID, postID uint) (bool, error) {
	defer s.lock()()
	if _, ok := s.d.posts[postID]; !ok {
		return false, store.ErrNotFound
	}
	for i, e := range s.d.saved {
		if e.userID == userID && e.postID == postID {
			s.d.saved = append(s.d.saved[:i], s.d.saved[i+1:]...)
			return false, nil
		}
	}
	s.d.saved = append(s.d.saved, savedEntry{userID: userID, postID: postID, createdAt: time.Now()})
	return true, nil
}

func (s postStore) ListSaved(ctx context.Context, userID uint) ([]models.Post, error) {
	defer s.lock()()
	posts := make([]models.Post, 0)
	for i := len(s.d.saved) - 1; i >= 0; i-- {
		e := s.d.saved[i]
		if e.userID != userID {
			continue
		}
		if p, ok := s.d.posts[e.postID]; ok {
			posts = append(posts, s.view(p))
		}
	}
	return posts, nil
}

// ---------------------------------------------------------------------------
// comments

type commentStore struct{ *Store }

func (s commentStore) view(c *models.Comment) models.Comment {
	out := *c
	out.ReplyIDs = append([]uint{}, c.ReplyIDs...)
	if u, ok := s.d.users[c.UserID]; ok {
		out.User = *u
		out.User.JoinedSubreddits = nil
	}
	return out
}

func (s commentStore) Create(ctx context.Context, comment *models.Comment) error {
	defer s.lock()()
	if comment.ParentID != nil {
		if _, ok := s.d.comments[*comment.ParentID]; !ok {
			return store.ErrNotFound
		}
	}
	comment.ID = s.nextID("comments")
	comment.UpdatedAt = stamp(&comment.CreatedAt)
	comment.ReplyIDs = []uint{}
	stored := *comment
	stored.User = models.User{}
	stored.Post = nil
	stored.Parent = nil
	s.d.comments[comment.ID] = &stored
	if comment.ParentID != nil {
		parent := s.d.comments[*comment.ParentID]
		parent.ReplyIDs = append(parent.ReplyIDs, comment.ID)
	}
	*comment = s.view(&stored)
	return nil
}

func (s commentStore) Get(ctx context.Context, id uint) (*models.Comment, error) {
	defer s.lock()()
	c, ok := s.d.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := s.view(c)
	return &out, nil
}

func (s commentStore) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	defer s.lock()()
	comments := make([]models.Comment, 0)
	for _, id := range sortedIDs(s.d.comments) {
		if c := s.d.comments[id]; c.PostID == postID {
			comments = append(comments, s.view(c))
		}
	}
	return comments, nil
}

func (s commentStore) withPost(c models.Comment) models.Comment {
	if p, ok := s.d.posts[c.PostID]; ok {
		pv := postStore(s).view(p)
		c.Post = &pv
	}
	return c
}

func (s commentStore) newestFirst(keep func(c *models.Comment) bool, limit int) []models.Comment {
	ids := sortedIDs(s.d.comments)
	comments := make([]models.Comment, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		c := s.d.comments[ids[i]]
		if !keep(c) {
			continue
		}
		comments = append(comments, s.withPost(s.view(c)))
		if limit > 0 && len(comments) == limit {
			break
		}
	}
	return comments
}

func (s commentStore) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Comment, error) {
	defer s.lock()()
	return s.newestFirst(func(c *models.Comment) bool { return c.UserID == authorID }, limit), nil
}

func (s commentStore) Search(ctx context.Context, query string, limit int) ([]models.Comment, error) {
	defer s.lock()()
	return s.newestFirst(func(c *models.Comment) bool { return containsFold(c.Content, query) }, limit), nil
}

func (s commentStore) UpdateContent(ctx context.Context, id uint, content string) error {
	defer s.lock()()
	c, ok := s.d.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return nil
}

func (s commentStore) AddVotes(ctx context.Context, id uint, delta int) error {
	defer s.lock()()
	c, ok := s.d.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Votes += delta
	return nil
}

func (s commentStore) Delete(ctx context.Context, ids []uint) error {
	defer s.lock()()
	for _, id := range ids {
		delete(s.d.comments, id)
	}
	return nil
}

func (s commentStore) DetachReply(ctx context.Context, parentID, childID uint) error {
	defer s.lock()()
	parent, ok := s.d.comments[parentID]
	if !ok {
		return store.ErrNotFound
	}
	for i, id := range parent.ReplyIDs {
		if id == childID {
			parent.ReplyIDs = append(parent.ReplyIDs[:i], parent.ReplyIDs[i+1:]...)
			break
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// users

type userStore struct{ *Store }

func (s userStore) view(u *models.User) *models.User {
	out := *u
	out.JoinedSubreddits = s.joined(u.ID)
	return &out
}

func (s userStore) joined(userID uint) []uint {
	ids := make([]uint, 0)
	for _, subID := range sortedIDs(s.d.members) {
		if _, ok := s.d.members[subID][userID]; ok {
			ids = append(ids, subID)
		}
	}
	return ids
}

func (s userStore) Create(ctx context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.d.users {
		if u.Name == user.Name || u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	user.ID = s.nextID("users")
	user.UpdatedAt = stamp(&user.CreatedAt)
	stored := *user
	stored.JoinedSubreddits = nil
	s.d.users[user.ID] = &stored
	user.JoinedSubreddits = []uint{}
	return nil
}

func (s userStore) Get(ctx context.Context, id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.view(u), nil
}

func (s userStore) find(match func(u *models.User) bool) (*models.User, error) {
	for _, u := range s.d.users {
		if match(u) {
			return s.view(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s userStore) GetByName(ctx context.Context, name string) (*models.User, error) {
	defer s.lock()()
	return s.find(func(u *models.User) bool { return u.Name == name })
}

func (s userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock()()
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s userStore) Update(ctx context.Context, id uint, update store.UserUpdate) error {
	defer s.lock()()
	u, ok := s.d.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s userStore) AddKarma(ctx context.Context, userID uint, delta int, action string) error {
	defer s.lock()()
	u, ok := s.d.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	s.d.karmaLogs = append(s.d.karmaLogs, models.KarmaLog{
		ID:        s.nextID("karma_logs"),
		UserID:    userID,
		Amount:    delta,
		Action:    action,
		CreatedAt: time.Now(),
	})
	u.Karma += delta
	return nil
}

func (s userStore) KarmaLogs(ctx context.Context, userID uint, limit int) ([]models.KarmaLog, error) {
	defer s.lock()()
	logs := make([]models.KarmaLog, 0)
	for i := len(s.d.karmaLogs) - 1; i >= 0; i-- {
		if l := s.d.karmaLogs[i]; l.UserID == userID {
			logs = append(logs, l)
			if limit > 0 && len(logs) == limit {
				break
			}
		}
	}
	return logs, nil
}

// ---------------------------------------------------------------------------
// subreddits

type subredditStore struct{ *Store }

func (s subredditStore) view(sub *models.Subreddit) *models.Subreddit {
	out := *sub
	out.ModeratorIDs = make([]uint, 0)
	for _, userID := range sortedIDs(s.d.members[sub.ID]) {
		if s.d.members[sub.ID][userID] {
			out.ModeratorIDs = append(out.ModeratorIDs, userID)
		}
	}
	return &out
}

func (s subredditStore) Create(ctx context.Context, sub *models.Subreddit) error {
	defer s.lock()()
	for _, existing := range s.d.subreddits {
		if existing.Name == sub.Name {
			return store.ErrDuplicate
		}
	}
	sub.ID = s.nextID("subreddits")
	sub.UpdatedAt = stamp(&sub.CreatedAt)
	sub.MemberCount = 1
	sub.ModeratorIDs = []uint{sub.CreatorID}
	stored := *sub
	stored.ModeratorIDs = nil
	s.d.subreddits[sub.ID] = &stored
	s.d.members[sub.ID] = map[uint]bool{sub.CreatorID: true}
	return nil
}

func (s subredditStore) Get(ctx context.Context, id uint) (*models.Subreddit, error) {
	defer s.lock()()
	sub, ok := s.d.subreddits[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.view(sub), nil
}

func (s subredditStore) GetByName(ctx context.Context, name string) (*models.Subreddit, error) {
	defer s.lock()()
	for _, sub := range s.d.subreddits {
		if sub.Name == name {
			return s.view(sub), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s subredditStore) List(ctx context.Context) ([]models.Subreddit, error) {
	defer s.lock()()
	subs := make([]models.Subreddit, 0, len(s.d.subreddits))
	for _, id := range sortedIDs(s.d.subreddits) {
		subs = append(subs, *s.d.subreddits[id])
	}
	return subs, nil
}

func (s subredditStore) Search(ctx context.Context, query string, limit int) ([]models.Subreddit, error) {
	defer s.lock()()
	subs := make([]models.Subreddit, 0)
	for _, id := range sortedIDs(s.d.subreddits) {
		sub := s.d.subreddits[id]
		if !containsFold(sub.Name, query) && !containsFold(sub.Description, query) {
			continue
		}
		subs = append(subs, *sub)
		if limit > 0 && len(subs) == limit {
			break
		}
	}
	return subs, nil
}

func (s subredditStore) AddMember(ctx context.Context, subID, userID uint) error {
	defer s.lock()()
	sub, ok := s.d.subreddits[subID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := s.d.members[subID][userID]; ok {
		return nil
	}
	s.d.members[subID][userID] = false
	sub.MemberCount = len(s.d.members[subID])
	return nil
}

func (s subredditStore) RemoveMember(ctx context.Context, subID, userID uint) error {
	defer s.lock()()
	sub, ok := s.d.subreddits[subID]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.d.members[subID], userID)
	sub.MemberCount = len(s.d.members[subID])
	return nil
}

func (s subredditStore) JoinedBy(ctx context.Context, userID uint) ([]uint, error) {
	defer s.lock()()
	return userStore(s).joined(userID), nil
}

func (s subredditStore) IsModerator(ctx context.Context, subID, userID uint) (bool, error) {
	defer s.lock()()
	if _, ok := s.d.subreddits[subID]; !ok {
		return false, store.ErrNotFound
	}
	return s.d.members[subID][userID], nil
}

// ---------------------------------------------------------------------------
// notifications

type notificationStore struct{ *Store }

func (s notificationStore) Create(ctx context.Context, n *models.Notification) error {
	defer s.lock()()
	n.ID = s.nextID("notifications")
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	stored := *n
	stored.User = models.User{}
	stored.Actor = models.User{}
	s.d.notifications[n.ID] = &stored
	return nil
}

func (s notificationStore) List(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	defer s.lock()()
	ids := sortedIDs(s.d.notifications)
	list := make([]models.Notification, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		n := *s.d.notifications[ids[i]]
		if n.UserID != userID {
			continue
		}
		if actor, ok := s.d.users[n.ActorID]; ok {
			n.Actor = *actor
		}
		list = append(list, n)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}

func (s notificationStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	defer s.lock()()
	var count int64
	for _, n := range s.d.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s notificationStore) owned(userID, id uint) (*models.Notification, error) {
	n, ok := s.d.notifications[id]
	if !ok || n.UserID != userID {
		return nil, store.ErrNotFound
	}
	return n, nil
}

func (s notificationStore) MarkRead(ctx context.Context, userID, id uint) error {
	defer s.lock()()
	n, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	n.IsRead = true
	return nil
}

func (s notificationStore) MarkAllRead(ctx context.Context, userID uint) error {
	defer s.lock()()
	for _, n := range s.d.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (s notificationStore) Delete(ctx context.Context, userID, id uint) error {
	defer s.lock()()
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	delete(s.d.notifications, id)
	return nil
}
