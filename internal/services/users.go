package services

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxBioLength      = 500
)

var userName = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

var errBadCredentials = &Error{Kind: KindUnauthenticated, Message: "invalid email or password"}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Me is the signed-in user's own view.
type Me struct {
	*models.User
	UnreadNotifications int64 `json:"unreadNotifications"`
}

type UserService struct {
	store         store.Store
	notifications *NotificationService
	hashCost      int
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if !userName.MatchString(name) {
		return nil, invalid("name must be 3-32 letters, digits, '-' or '_'")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Bio:      models.DefaultBio,
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("name or email already taken")
		}
		return nil, errors.Wrap(err, "create user")
	}
	return &user, nil
}

// Login checks the credentials. Unknown email and wrong password fail alike.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, name string) (*models.User, error) {
	user, err := s.store.Users().GetByName(ctx, name)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

func (s *UserService) Me(ctx context.Context, caller *models.User) (*Me, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.Get(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.UnreadCount(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &Me{User: user, UnreadNotifications: unread}, nil
}

// Comments lists the user's comments, newest first.
func (s *UserService) Comments(ctx context.Context, name string) ([]models.Comment, error) {
	user, err := s.Profile(ctx, name)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByAuthor(ctx, user.ID, listLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list user comments")
	}
	return comments, nil
}

// self loads the named user and checks the caller is that user.
func (s *UserService) self(ctx context.Context, caller *models.User, name string) (*models.User, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.Profile(ctx, name)
	if err != nil {
		return nil, err
	}
	if user.ID != caller.ID {
		return nil, forbidden("you can only edit your own profile")
	}
	return user, nil
}

// UpdateBio sets the bio; an empty bio resets it to the default.
func (s *UserService) UpdateBio(ctx context.Context, caller *models.User, name, bio string) (*models.User, error) {
	user, err := s.self(ctx, caller, name)
	if err != nil {
		return nil, err
	}
	bio = strings.TrimSpace(bio)
	if bio == "" {
		bio = models.DefaultBio
	}
	if utf8.RuneCountInString(bio) > maxBioLength {
		return nil, invalid("bio must be at most %d characters", maxBioLength)
	}
	if err := s.store.Users().Update(ctx, user.ID, store.UserUpdate{Bio: &bio}); err != nil {
		return nil, lookupErr(err, "user")
	}
	return s.Get(ctx, user.ID)
}

// UpdateAvatar accepts an http(s) URL or an inline data:image URL.
func (s *UserService) UpdateAvatar(ctx context.Context, caller *models.User, name, avatarURL string) (*models.User, error) {
	user, err := s.self(ctx, caller, name)
	if err != nil {
		return nil, err
	}
	avatarURL = strings.TrimSpace(avatarURL)
	if !isHTTPURL(avatarURL) && !strings.HasPrefix(avatarURL, "data:image/") {
		return nil, invalid("avatarUrl must be an http(s) or data:image URL")
	}
	if err := s.store.Users().Update(ctx, user.ID, store.UserUpdate{AvatarURL: &avatarURL}); err != nil {
		return nil, lookupErr(err, "user")
	}
	return s.Get(ctx, user.ID)
}
