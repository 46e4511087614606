package store

import (
	"errors"
	"strings"
	"time"

	"gamine/blog-api/model"

	"gorm.io/gorm"
)

// DefaultPageSize is how many posts a feed page holds
const DefaultPageSize = 4

type Posts struct {
	db *gorm.DB
}

func NewPosts(db *gorm.DB) *Posts {
	return &Posts{db: db}
}

// Page is one slice of the reverse-chronological feed. Pages are
// 1-indexed and a page past the end comes back with an empty Posts
// slice, not an error.
type Page struct {
	Posts   []model.Post `json:"posts"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	Total   int64        `json:"total"`
}

func (s *Posts) Create(ownerID uint, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return nil, ErrEmptyTitle
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	var author model.User
	if err := s.db.First(&author, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	post := &model.Post{
		UserID:    ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
		Author:    author,
	}

	if err := s.db.Omit("Author").Create(post).Error; err != nil {
		return nil, err
	}

	return post, nil
}

func (s *Posts) Fetch(id uint) (*model.Post, error) {
	var post model.Post

	err := s.db.Preload("Author").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &post, nil
}

func (s *Posts) FetchPage(page, perPage int) (*Page, error) {
	return s.fetchPage(s.db.Model(&model.Post{}), page, perPage)
}

// FetchPageByUser returns the feed of a single author. An unknown
// username is ErrNotFound, unlike an out-of-range page which is just
// empty.
func (s *Posts) FetchPageByUser(username string, page, perPage int) (*model.User, *Page, error) {
	var author model.User

	err := s.db.Where("username = ?", username).First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}

		return nil, nil, err
	}

	p, err := s.fetchPage(s.db.Model(&model.Post{}).Where("user_id = ?", author.ID), page, perPage)
	if err != nil {
		return nil, nil, err
	}

	return &author, p, nil
}

func (s *Posts) fetchPage(q *gorm.DB, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	posts := []model.Post{}

	err := q.Session(&gorm.Session{}).
		Preload("Author").
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}

	return &Page{
		Posts:   posts,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

// Update rewrites title and content after checking ownership. The read
// and the write share one transaction so the owner can't change between
// the check and the mutation.
func (s *Posts) Update(id, editorID uint, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return nil, ErrEmptyTitle
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	var post model.Post

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}

		if post.UserID != editorID {
			return ErrForbidden
		}

		return tx.Model(&post).Updates(map[string]any{
			"title":   title,
			"content": content,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// Delete removes a post for good. Same transactional ownership check as
// Update, no soft delete.
func (s *Posts) Delete(id, editorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post model.Post

		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}

		if post.UserID != editorID {
			return ErrForbidden
		}

		return tx.Delete(&post).Error
	})
}
