package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/latency"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

const minPasswordLength = 6

// Service implements signup, login and session checks against the user and
// session slots. Only one user exists at a time.
type Service struct {
	repo       Repository
	latency    latency.Simulator
	sessionTTL time.Duration
	validate   *validator.Validate
	hashCost   int
	now        func() time.Time

	// mu serialises read-modify-write cycles on the user and session slots.
	mu sync.Mutex
}

// NewService creates the identity service.
func NewService(repo Repository, sim latency.Simulator, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		repo:       repo,
		latency:    sim,
		sessionTTL: sessionTTL,
		validate:   validator.New(),
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Login signs the user in. An unknown email creates a fresh unverified user,
// so login doubles as a lightweight signup.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if err := s.latency.Wait(ctx, latency.OpLogin); err != nil {
		return User{}, err
	}
	if err := s.check(Credentials{Email: email, Password: password}, "email and password are required"); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.repo.User(ctx); ok && existing.Email == email {
		if len(existing.PasswordHash) > 0 {
			if err := bcrypt.CompareHashAndPassword(existing.PasswordHash, []byte(password)); err != nil {
				return User{}, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
			}
		}
		s.startSession(ctx, existing.ID)
		return existing, nil
	}

	user, err := s.newUser(email, password, defaultName(email))
	if err != nil {
		return User{}, err
	}
	s.repo.SaveUser(ctx, user)
	s.startSession(ctx, user.ID)
	return user, nil
}

// Signup registers a new user and signs them in.
func (s *Service) Signup(ctx context.Context, reg Registration) (User, error) {
	if err := s.latency.Wait(ctx, latency.OpSignup); err != nil {
		return User{}, err
	}
	if err := s.check(reg, "all fields are required"); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.repo.User(ctx); ok && existing.Email == reg.Email {
		return User{}, fmt.Errorf("%w: user with this email already exists", apperr.ErrConflict)
	}

	user, err := s.newUser(reg.Email, reg.Password, reg.Name)
	if err != nil {
		return User{}, err
	}
	s.repo.SaveUser(ctx, user)
	s.startSession(ctx, user.ID)
	return user, nil
}

// Logout ends the session. The user record stays so a later login recovers it.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.latency.Wait(ctx, latency.OpLogout); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo.DeleteSession(ctx)
	return nil
}

// CurrentUser returns the signed-in user. An expired or dangling session is
// purged and reported as absent.
func (s *Service) CurrentUser(ctx context.Context) (User, bool, error) {
	if err := s.latency.Wait(ctx, latency.OpCurrentUser); err != nil {
		return User{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.activeSession(ctx)
	if !ok {
		return User{}, false, nil
	}
	user, ok := s.repo.User(ctx)
	if !ok {
		return User{}, false, nil
	}
	if user.ID != session.UserID {
		s.repo.DeleteSession(ctx)
		return User{}, false, nil
	}
	return user, true, nil
}

// CurrentSession returns the stored session while it is valid.
func (s *Service) CurrentSession(ctx context.Context) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSession(ctx)
}

// UpdateKYCStatus records the outcome of identity verification.
func (s *Service) UpdateKYCStatus(ctx context.Context, verified bool) (User, error) {
	if err := s.latency.Wait(ctx, latency.OpUpdateKYC); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.repo.User(ctx)
	if !ok {
		return User{}, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	user.KYCVerified = verified
	s.repo.SaveUser(ctx, user)
	return user, nil
}

func (s *Service) activeSession(ctx context.Context) (Session, bool) {
	session, ok := s.repo.Session(ctx)
	if !ok || !session.Valid(s.now()) {
		s.repo.DeleteSession(ctx)
		return Session{}, false
	}
	return session, true
}

func (s *Service) startSession(ctx context.Context, userID string) {
	s.repo.SaveSession(ctx, Session{UserID: userID, ExpiresAt: s.now().Add(s.sessionTTL).UTC()})
}

func (s *Service) newUser(email, password, name string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	return User{
		ID:           fmt.Sprintf("user-%d", now.UnixMilli()),
		Email:        email,
		Name:         name,
		KYCVerified:  false,
		PasswordHash: hash,
		CreatedAt:    now,
	}, nil
}

// check runs struct validation and turns the first failure into a user-facing
// validation error. Missing fields win over length problems.
func (s *Service) check(input any, requiredMsg string) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, requiredMsg)
		}
	}
	for _, fe := range fieldErrs {
		if fe.Field() == "Password" && fe.Tag() == "min" {
			return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
		}
	}
	return fmt.Errorf("%w: %s is invalid", apperr.ErrValidation, strings.ToLower(fieldErrs[0].Field()))
}

func defaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
