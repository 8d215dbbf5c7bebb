// Package gormstore implements store.Store on top of gorm and Postgres.
// Counter changes are single UPDATE ... SET col = col + ? statements.
package gormstore

import (
	"context"
	"errors"

	"subhive/internal/models"
	"subhive/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an opened connection. The connection should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Posts() store.PostStore                 { return postStore{s.db} }
func (s *Store) Comments() store.CommentStore           { return commentStore{s.db} }
func (s *Store) Users() store.UserStore                 { return userStore{s.db} }
func (s *Store) Subreddits() store.SubredditStore       { return subredditStore{s.db} }
func (s *Store) Notifications() store.NotificationStore { return notificationStore{s.db} }

func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}

// affected turns a zero-row targeted update into ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func like(q string) string {
	return "%" + q + "%"
}

// ---------------------------------------------------------------------------
// posts

type postStore struct{ db *gorm.DB }

func (s postStore) preload(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("User").Preload("Subreddit")
}

func (s postStore) Create(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return translate(err)
	}
	return translate(s.preload(ctx).First(post, post.ID).Error)
}

func (s postStore) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.preload(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s postStore) List(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	q := s.preload(ctx).Order("id ASC")
	if filter.SubredditIDs != nil {
		if len(filter.SubredditIDs) == 0 {
			return []models.Post{}, nil
		}
		q = q.Where("subreddit_id IN ?", filter.SubredditIDs)
	}
	if filter.AuthorID != 0 {
		q = q.Where("user_id = ?", filter.AuthorID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		q = q.Where("title ILIKE ? OR content ILIKE ?", like(filter.Query), like(filter.Query))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	posts := make([]models.Post, 0)
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s postStore) UpdateContent(ctx context.Context, id uint, title, content string) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "content": content}))
}

func (s postStore) SetStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		Update("status", status))
}

func (s postStore) AddVotes(ctx context.Context, id uint, delta int) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta)))
}

func (s postStore) AddCommentsCount(ctx context.Context, id uint, delta int) error {
	return affected(s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", delta)))
}

func (s postStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return affected(tx.Unscoped().Delete(&models.Post{}, id))
	})
}

func (s postStore) ToggleSaved(ctx context.Context, userID, postID uint) (bool, error) {
	saved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return translate(err)
		}
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Create(&models.SavedPost{UserID: userID, PostID: postID}).Error
	})
	return saved, err
}

func (s postStore) ListSaved(ctx context.Context, userID uint) ([]models.Post, error) {
	var entries []models.SavedPost
	err := s.db.WithContext(ctx).
		Preload("Post").
		Preload("Post.User").
		Preload("Post.Subreddit").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(entries))
	for _, e := range entries {
		posts = append(posts, e.Post)
	}
	return posts, nil
}

// ---------------------------------------------------------------------------
// comments

type commentStore struct{ db *gorm.DB }

// fillReplies derives each comment's reply list from the children's
// ParentID, in id (insertion) order.
func fillReplies(comments []models.Comment) {
	index := make(map[uint]int, len(comments))
	for i := range comments {
		comments[i].ReplyIDs = []uint{}
		index[comments[i].ID] = i
	}
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			comments[i].ReplyIDs = append(comments[i].ReplyIDs, c.ID)
		}
	}
}

func (s commentStore) Create(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return translate(err)
	}
	comment.ReplyIDs = []uint{}
	return translate(s.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error)
}

func (s commentStore) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	var replies []uint
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_id = ?", id).Order("id ASC").Pluck("id", &replies).Error; err != nil {
		return nil, err
	}
	comment.ReplyIDs = append([]uint{}, replies...)
	return &comment, nil
}

func (s commentStore) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	fillReplies(comments)
	return comments, nil
}

func (s commentStore) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.db.WithContext(ctx).Preload("User").Preload("Post").
		Where("user_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (s commentStore) Search(ctx context.Context, query string, limit int) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.db.WithContext(ctx).Preload("User").Preload("Post").
		Where("content ILIKE ?", like(query)).
		Order("id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (s commentStore) UpdateContent(ctx context.Context, id uint, content string) error {
	return affected(s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Update("content", content))
}

func (s commentStore) AddVotes(ctx context.Context, id uint, delta int) error {
	return affected(s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta)))
}

func (s commentStore) Delete(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if err := s.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
			return err
		}
	}
	return nil
}

// DetachReply is implicit here: the reply list is derived from parent_id,
// so removing the child row already drops it from the parent's list.
func (s commentStore) DetachReply(ctx context.Context, parentID, childID uint) error {
	return nil
}

// ---------------------------------------------------------------------------
// users

type userStore struct{ db *gorm.DB }

func (s userStore) withJoined(ctx context.Context, user *models.User) (*models.User, error) {
	joined, err := subredditStore(s).JoinedBy(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.JoinedSubreddits = joined
	return user, nil
}

func (s userStore) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return s.withJoined(ctx, &user)
}

func (s userStore) Create(ctx context.Context, user *models.User) error {
	if err := translate(s.db.WithContext(ctx).Create(user).Error); err != nil {
		return err
	}
	user.JoinedSubreddits = []uint{}
	return nil
}

func (s userStore) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s userStore) GetByName(ctx context.Context, name string) (*models.User, error) {
	return s.first(ctx, "name = ?", name)
}

func (s userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s userStore) Update(ctx context.Context, id uint, update store.UserUpdate) error {
	updates := make(map[string]interface{})
	if update.Bio != nil {
		updates["bio"] = *update.Bio
	}
	if update.AvatarURL != nil {
		updates["avatar_url"] = *update.AvatarURL
	}
	if len(updates) == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrNotFound
		}
		return nil
	}
	return affected(s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates))
}

// AddKarma 使用事务记录明细并更新用户 karma
func (s userStore) AddKarma(ctx context.Context, userID uint, delta int, action string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 更新用户 karma 余额
		if err := affected(tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("karma", gorm.Expr("karma + ?", delta))); err != nil {
			return err
		}

		// 2. 创建明细记录
		entry := models.KarmaLog{
			UserID: userID,
			Amount: delta,
			Action: action,
		}
		return tx.Create(&entry).Error
	})
}

func (s userStore) KarmaLogs(ctx context.Context, userID uint, limit int) ([]models.KarmaLog, error) {
	logs := make([]models.KarmaLog, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ---------------------------------------------------------------------------
// subreddits

type subredditStore struct{ db *gorm.DB }

func (s subredditStore) withModerators(ctx context.Context, sub *models.Subreddit) (*models.Subreddit, error) {
	mods := make([]uint, 0)
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("subreddit_id = ? AND is_moderator = ?", sub.ID, true).
		Order("user_id ASC").
		Pluck("user_id", &mods).Error
	if err != nil {
		return nil, err
	}
	sub.ModeratorIDs = mods
	return sub, nil
}

func (s subredditStore) Create(ctx context.Context, sub *models.Subreddit) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub.MemberCount = 1
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		sub.ModeratorIDs = []uint{sub.CreatorID}
		return tx.Create(&models.Membership{
			SubredditID: sub.ID,
			UserID:      sub.CreatorID,
			IsModerator: true,
		}).Error
	}))
}

func (s subredditStore) Get(ctx context.Context, id uint) (*models.Subreddit, error) {
	var sub models.Subreddit
	if err := s.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, translate(err)
	}
	return s.withModerators(ctx, &sub)
}

func (s subredditStore) GetByName(ctx context.Context, name string) (*models.Subreddit, error) {
	var sub models.Subreddit
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&sub).Error; err != nil {
		return nil, translate(err)
	}
	return s.withModerators(ctx, &sub)
}

func (s subredditStore) List(ctx context.Context) ([]models.Subreddit, error) {
	subs := make([]models.Subreddit, 0)
	err := s.db.WithContext(ctx).Order("id ASC").Find(&subs).Error
	return subs, err
}

func (s subredditStore) Search(ctx context.Context, query string, limit int) ([]models.Subreddit, error) {
	subs := make([]models.Subreddit, 0)
	err := s.db.WithContext(ctx).
		Where("name ILIKE ? OR description ILIKE ?", like(query), like(query)).
		Order("id ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (s subredditStore) AddMember(ctx context.Context, subID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subreddit
		if err := tx.Select("id").First(&sub, subID).Error; err != nil {
			return translate(err)
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Membership{SubredditID: subID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Subreddit{}).Where("id = ?", subID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
	})
}

func (s subredditStore) RemoveMember(ctx context.Context, subID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subreddit
		if err := tx.Select("id").First(&sub, subID).Error; err != nil {
			return translate(err)
		}
		res := tx.Where("subreddit_id = ? AND user_id = ?", subID, userID).Delete(&models.Membership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Subreddit{}).Where("id = ?", subID).
			UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error
	})
}

func (s subredditStore) JoinedBy(ctx context.Context, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Order("subreddit_id ASC").
		Pluck("subreddit_id", &ids).Error
	return ids, err
}

func (s subredditStore) IsModerator(ctx context.Context, subID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("subreddit_id = ? AND user_id = ? AND is_moderator = ?", subID, userID, true).
		Count(&count).Error
	return count > 0, err
}

// ---------------------------------------------------------------------------
// notifications

type notificationStore struct{ db *gorm.DB }

func (s notificationStore) Create(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error
}

func (s notificationStore) List(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	list := make([]models.Notification, 0)
	err := s.db.WithContext(ctx).Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (s notificationStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s notificationStore) MarkRead(ctx context.Context, userID, id uint) error {
	return affected(s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true))
}

func (s notificationStore) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s notificationStore) Delete(ctx context.Context, userID, id uint) error {
	return affected(s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{}))
}
