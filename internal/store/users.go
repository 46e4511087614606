package store

import (
	"errors"
	"strings"

	"gamine/blog-api/model"
	"gamine/blog-api/pkg/security"

	"gorm.io/gorm"
)

type Users struct {
	db    *gorm.DB
	argon *security.ArgonHash
}

func NewUsers(db *gorm.DB, argon *security.ArgonHash) *Users {
	return &Users{db: db, argon: argon}
}

// Register hashes the password and inserts the new user. Uniqueness of
// username and email is enforced by the database indexes, not by a
// check-then-write in here, so two racing registrations can't both
// succeed.
func (s *Users) Register(username, email, password string) (*model.User, error) {
	hash, err := s.argon.GenerateFromPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		ImageFile:    model.DefaultImageFile,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, translateConflict(err)
	}

	return user, nil
}

// Authenticate looks a user up by email and verifies the password
// against the stored hash. Both failure modes collapse into
// ErrInvalidCredentials.
func (s *Users) Authenticate(email, password string) (*model.User, error) {
	var user model.User

	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	ok, err := s.argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// UpdateProfile writes the new username/email and, when imageFile is
// non-empty, the new profile picture. Writing a field's current value
// back doesn't trip the unique indexes, so a user can always "change" a
// field to what it already is.
func (s *Users) UpdateProfile(id uint, username, email, imageFile string) error {
	updates := map[string]any{
		"username": username,
		"email":    email,
	}
	if imageFile != "" {
		updates["image_file"] = imageFile
	}

	r := s.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if r.Error != nil {
		return translateConflict(r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPassword rehashes and replaces the password hash, nothing else.
// The previous password stops working the moment this commits.
func (s *Users) SetPassword(id uint, password string) error {
	hash, err := s.argon.GenerateFromPassword(password)
	if err != nil {
		return err
	}

	r := s.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Users) ByID(id uint) (*model.User, error) {
	var user model.User

	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (s *Users) ByEmail(email string) (*model.User, error) {
	var user model.User

	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (s *Users) ByUsername(username string) (*model.User, error) {
	var user model.User

	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

// translateConflict maps unique index violations onto the duplicate
// sentinels. SQLite reports the column ("users.username"), postgres the
// index name ("idx_users_username"), so both spellings are matched.
func translateConflict(err error) error {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "users.username") || strings.Contains(msg, "idx_users_username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "users.email") || strings.Contains(msg, "idx_users_email"):
		return ErrDuplicateEmail
	}

	return err
}
