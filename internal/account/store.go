package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/repository"
)

var (
	ErrMissingFields      = errors.New("name, roll, email and password are required")
	ErrRollTaken          = errors.New("roll number already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrBadCredentials     = errors.New("incorrect roll number or password")
	ErrInsufficientPoints = errors.New("not enough reward points")
)

// Repository persists student accounts.
type Repository interface {
	Insert(ctx context.Context, s *models.StudentAccount) error
	Update(ctx context.Context, s *models.StudentAccount) error
	GetByRoll(ctx context.Context, roll string) (*models.StudentAccount, error)
	GetByEmail(ctx context.Context, email string) (*models.StudentAccount, error)
	List(ctx context.Context) ([]models.StudentAccount, error)
}

// Store registers and authenticates students and owns the reward-point
// balance. Authentication is deliberately a placeholder subsystem:
// bcrypt-hashed credentials and a session binding, nothing more,
// pending a real identity provider.
type Store struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewStore creates a student account store.
func NewStore(repo Repository, log *slog.Logger) *Store {
	return &Store{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Register creates a new student account with a salted bcrypt password
// hash. Roll numbers and emails are unique.
func (s *Store) Register(ctx context.Context, name, roll, email, password string) (*models.StudentAccount, error) {
	if name == "" || roll == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.repo.GetByRoll(ctx, roll); err == nil {
		return nil, ErrRollTaken
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acct := &models.StudentAccount{
		ID:           "STU-" + uuid.New().String(),
		Roll:         roll,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Rewards:      0,
		JoinedAt:     s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, acct); err != nil {
		if errors.Is(err, repository.ErrStudentExists) {
			return nil, ErrRollTaken
		}
		return nil, err
	}

	s.log.Info("student registered", "roll", roll)
	return acct, nil
}

// Authenticate verifies a roll number and password.
func (s *Store) Authenticate(ctx context.Context, roll, password string) (*models.StudentAccount, error) {
	acct, err := s.repo.GetByRoll(ctx, roll)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return acct, nil
}

// Get returns a student account by roll number.
func (s *Store) Get(ctx context.Context, roll string) (*models.StudentAccount, error) {
	return s.repo.GetByRoll(ctx, roll)
}

// List returns every student account for the admin console.
func (s *Store) List(ctx context.Context) ([]models.StudentAccount, error) {
	return s.repo.List(ctx)
}

// Balance returns a student's current reward-point balance.
func (s *Store) Balance(ctx context.Context, roll string) (int64, error) {
	acct, err := s.repo.GetByRoll(ctx, roll)
	if err != nil {
		return 0, err
	}
	return acct.Rewards, nil
}

// AdjustBalance applies a signed delta to a student's reward balance.
// The balance can never go negative; a delta that would is rejected and
// the balance is left unchanged.
func (s *Store) AdjustBalance(ctx context.Context, roll string, delta int64) (int64, error) {
	acct, err := s.repo.GetByRoll(ctx, roll)
	if err != nil {
		return 0, err
	}

	newBalance := acct.Rewards + delta
	if newBalance < 0 {
		return acct.Rewards, ErrInsufficientPoints
	}

	acct.Rewards = newBalance
	if err := s.repo.Update(ctx, acct); err != nil {
		return 0, err
	}

	s.log.Info("reward balance adjusted", "roll", roll, "delta", delta, "balance", newBalance)
	return newBalance, nil
}
