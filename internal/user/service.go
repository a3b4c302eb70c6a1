package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"cafebar-be/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,14}$`)

type Service interface {
	Load(ctx context.Context) error
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*Profile, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time

	mu      sync.RWMutex
	profile *Profile
}

func NewService(repo Repository) Service {
	return &service{
		repo:     repo,
		validate: newValidator(),
		now:      time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Load reads the stored profile into memory. A missing profile is not an error.
func (s *service) Load(ctx context.Context) error {
	p, err := s.repo.GetProfile(ctx)
	if errors.Is(err, ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return nil
}

func (s *service) GetProfile(ctx context.Context) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil, ErrProfileNotFound
	}
	p := *s.profile
	return &p, nil
}

func (s *service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProfile"),
	)

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := s.validate.Struct(input); err != nil {
		log.Warn("invalid profile input", zap.Error(err))
		return nil, validationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Profile{ID: uuid.NewString()}
	if s.profile != nil {
		p.ID = s.profile.ID
	}
	p.Name = input.Name
	p.Email = input.Email
	p.Phone = input.Phone
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.SaveProfile(ctx, &p); err != nil {
		return nil, err
	}
	s.profile = &p

	log.Info("profile updated", zap.String("profile_id", p.ID))
	out := p
	return &out, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("%w: check %s", ErrInvalidProfile, strings.Join(fields, ", "))
}
