package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"filehost/internal/models"
	"filehost/internal/repository"
	"filehost/internal/storage"
)

type AccountService struct {
	store         repository.ConfigStore
	rec           *recorder
	adminUsername string
	adminPassword string
	now           func() time.Time
}

func NewAccountService(store repository.ConfigStore, rec *recorder, adminUsername, adminPassword string) *AccountService {
	return &AccountService{
		store:         store,
		rec:           rec,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		now:           time.Now,
	}
}

// Bootstrap creates the account document with the configured admin when none exists.
// An existing document must already contain that admin.
func (s *AccountService) Bootstrap(ctx context.Context) error {
	exists, err := s.store.Exists()
	if err != nil {
		return err
	}
	if exists {
		doc, err := s.store.Load(ctx)
		if err != nil {
			return err
		}
		if _, ok := doc.Users[s.adminUsername]; !ok {
			return fmt.Errorf("bootstrap admin %q missing from account store: %w", s.adminUsername, ErrUserNotFound)
		}
		return nil
	}

	if !storage.ValidUsername(s.adminUsername) {
		return fmt.Errorf("bootstrap admin %q: %w", s.adminUsername, ErrInvalidUsername)
	}
	hash, err := hashPassword(s.adminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	doc := models.NewDocument()
	doc.Users[s.adminUsername] = &models.UserRecord{
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	}
	return s.store.Save(ctx, doc)
}

// Register queues a registration request for admin approval.
func (s *AccountService) Register(ctx context.Context, username, password, email string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if !storage.ValidUsername(username) {
		return ErrInvalidUsername
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return ErrInvalidEmail
		}
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	err = s.store.Update(ctx, func(doc *models.Document) error {
		if _, ok := doc.Users[username]; ok {
			return ErrUsernameTaken
		}
		if doc.PendingIndex(username) >= 0 {
			return ErrRequestAlreadyPending
		}
		doc.PendingRequests = append(doc.PendingRequests, models.PendingRequest{
			Username:     username,
			PasswordHash: hash,
			Email:        email,
			RequestedAt:  s.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.rec.record(ctx, models.EventRegister, username, username, "registration requested", nil)
	return nil
}

// Authenticate checks credentials against approved accounts only.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (models.Session, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return models.Session{}, err
	}

	user, ok := doc.Users[username]
	if !ok {
		_ = verifyPassword(string(dummyHash), password)
		s.rec.record(ctx, models.EventLoginFailed, username, username, "unknown user", nil)
		return models.Session{}, ErrInvalidCredentials
	}
	if err := verifyPassword(user.PasswordHash, password); err != nil {
		s.rec.record(ctx, models.EventLoginFailed, username, username, "wrong password", nil)
		return models.Session{}, ErrInvalidCredentials
	}

	s.rec.record(ctx, models.EventLogin, username, username, "signed in", nil)
	return models.Session{Username: username, Role: user.Role}, nil
}

// Role returns the current role of username as stored, never from a token.
func (s *AccountService) Role(ctx context.Context, username string) (models.Role, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	user, ok := doc.Users[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return user.Role, nil
}

func (s *AccountService) Logout(ctx context.Context, username string) {
	if username == "" {
		return
	}
	s.rec.record(ctx, models.EventLogout, username, username, "signed out", nil)
}

// IsInputError reports whether err is a validation failure the client can fix.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidUsername) ||
		errors.Is(err, ErrEmptyPassword) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidFileName)
}
