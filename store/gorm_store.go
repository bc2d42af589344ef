package store

import (
	"context"

	"github.com/benjibook/api-go/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const postColumns = `
	posts.*,
	(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
	(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count`

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Follow{}, &models.Post{}, &models.Comment{}, &models.Like{})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return errors.Wrap(ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolation:
			// The referenced user or post is gone.
			return errors.Wrap(ErrNotFound, pgErr.ConstraintName)
		}
	}
	var liteErr sqliteError
	if errors.As(err, &liteErr) {
		if kind := sqliteConstraintKind(liteErr); kind != nil {
			return errors.Wrap(kind, msg)
		}
	}
	return errors.Wrap(err, msg)
}

func affected(result *gorm.DB, msg string) error {
	if result.Error != nil {
		return translate(result.Error, msg)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Create(user).Error, "create user")
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

func (s *GormStore) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, translate(err, "get user by google id")
	}
	return &user, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Save(user).Error, "update user")
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", id)

		if err := tx.Where("post_id IN (?) OR user_id = ?", ownPosts, id).Delete(&models.Like{}).Error; err != nil {
			return translate(err, "delete likes")
		}
		if err := tx.Where("post_id IN (?) OR author_id = ?", ownPosts, id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "delete comments")
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return translate(err, "delete posts")
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return translate(err, "delete follows")
		}
		return affected(tx.Where("id = ?", id).Delete(&models.User{}), "delete user")
	})
}

func (s *GormStore) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, int64, error) {
	pattern := "%" + query + "%"
	q := s.conn(ctx).Model(&models.User{}).
		Where("onboarded = ? AND (LOWER(name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?))", true, pattern, pattern)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count users")
	}

	var users []models.User
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, translate(err, "search users")
	}
	return users, total, nil
}

// Follows

func (s *GormStore) GetFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var follow models.Follow
	err := s.conn(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, translate(err, "get follow")
	}
	return &follow, nil
}

func (s *GormStore) PutFollow(ctx context.Context, follow *models.Follow) error {
	now := s.db.NowFunc()
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = now
	}
	follow.UpdatedAt = now

	err := s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Omit(clause.Associations).
		Create(follow).Error
	return translate(err, "put follow")
}

func (s *GormStore) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	result := s.conn(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	return affected(result, "delete follow")
}

func (s *GormStore) CountFollowers(ctx context.Context, userID string, status models.FollowStatus) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", userID, status).
		Count(&n).Error
	return n, translate(err, "count followers")
}

func (s *GormStore) CountFollowing(ctx context.Context, userID string, status models.FollowStatus) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, status).
		Count(&n).Error
	return n, translate(err, "count following")
}

func (s *GormStore) ListFollowers(ctx context.Context, userID string, statuses ...models.FollowStatus) ([]models.Follow, error) {
	q := s.conn(ctx).Preload("Follower").Where("following_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var follows []models.Follow
	if err := q.Order("updated_at DESC").Find(&follows).Error; err != nil {
		return nil, translate(err, "list followers")
	}
	return follows, nil
}

func (s *GormStore) ListFollowing(ctx context.Context, userID string, statuses ...models.FollowStatus) ([]models.Follow, error) {
	q := s.conn(ctx).Preload("Following").Where("follower_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var follows []models.Follow
	if err := q.Order("updated_at DESC").Find(&follows).Error; err != nil {
		return nil, translate(err, "list following")
	}
	return follows, nil
}

// Posts

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(post).Error, "create post")
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.conn(ctx).Model(&models.Post{}).
		Select(postColumns).
		Preload("Author").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, translate(err, "get post")
	}
	return &post, nil
}

func (s *GormStore) UpdatePostText(ctx context.Context, id, authorID, text string, hashtags []string) error {
	result := s.conn(ctx).Model(&models.Post{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]interface{}{
			"text":       text,
			"hashtags":   pq.StringArray(hashtags),
			"updated_at": s.db.NowFunc(),
		})
	return affected(result, "update post")
}

func (s *GormStore) DeletePost(ctx context.Context, id, authorID string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return translate(err, "delete likes")
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "delete comments")
		}
		return affected(tx.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.Post{}), "delete post")
	})
}

func (s *GormStore) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	var posts []models.Post
	err := s.conn(ctx).Model(&models.Post{}).
		Select(postColumns).
		Preload("Author").
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translate(err, "list posts")
	}
	return posts, nil
}

func (s *GormStore) ListFeed(ctx context.Context, authorIDs []string, limit, offset int) ([]models.Post, int64, error) {
	if len(authorIDs) == 0 {
		return nil, 0, nil
	}

	var total int64
	if err := s.conn(ctx).Model(&models.Post{}).Where("author_id IN ?", authorIDs).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count feed")
	}

	var posts []models.Post
	err := s.conn(ctx).Model(&models.Post{}).
		Select(postColumns).
		Preload("Author").
		Where("posts.author_id IN ?", authorIDs).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, translate(err, "list feed")
	}
	return posts, total, nil
}

// Comments

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(comment).Error, "create comment")
}

func (s *GormStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.conn(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err, "get comment")
	}
	return &comment, nil
}

func (s *GormStore) UpdateCommentText(ctx context.Context, id, authorID, text string) error {
	result := s.conn(ctx).Model(&models.Comment{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]interface{}{"text": text, "updated_at": s.db.NowFunc()})
	return affected(result, "update comment")
}

func (s *GormStore) DeleteComment(ctx context.Context, id, authorID string) error {
	result := s.conn(ctx).Where("id = ? AND author_id = ?", id, authorID).Delete(&models.Comment{})
	return affected(result, "delete comment")
}

func (s *GormStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.conn(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "list comments")
	}
	return comments, nil
}

// Likes

func (s *GormStore) GetLike(ctx context.Context, userID, postID string) (*models.Like, error) {
	var like models.Like
	if err := s.conn(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error; err != nil {
		return nil, translate(err, "get like")
	}
	return &like, nil
}

func (s *GormStore) PutLike(ctx context.Context, like *models.Like) error {
	err := s.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(like).Error
	return translate(err, "put like")
}

func (s *GormStore) DeleteLike(ctx context.Context, userID, postID string) error {
	err := s.conn(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	return translate(err, "delete like")
}

func (s *GormStore) ListLikes(ctx context.Context, postID string) ([]models.Like, error) {
	var likes []models.Like
	err := s.conn(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, translate(err, "list likes")
	}
	return likes, nil
}

func (s *GormStore) ListLikedPosts(ctx context.Context, userID string) ([]models.Like, error) {
	var likes []models.Like
	err := s.conn(ctx).
		Preload("Post", func(db *gorm.DB) *gorm.DB { return db.Select(postColumns) }).
		Preload("Post.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, translate(err, "list liked posts")
	}
	return likes, nil
}
