// Package issue records equipment problems reported from the bar.
package issue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cafebar-be/internal/logger"
	"cafebar-be/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyReports holds the JSON array of reports, newest first.
const KeyReports = "issueReports"

// Catalog returns every device with its issue types.
func Catalog() []DeviceIssues {
	out := make([]DeviceIssues, 0, len(deviceOrder))
	for _, d := range deviceOrder {
		out = append(out, DeviceIssues{Device: d, Issues: append([]string(nil), issueTypes[d]...)})
	}
	return out
}

type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Report, error)
	List(ctx context.Context) ([]Report, error)
}

type service struct {
	kv       storage.Storage
	validate *validator.Validate
	now      func() time.Time

	// serializes read-modify-write of the report list
	mu sync.Mutex
}

func NewService(kv storage.Storage) Service {
	return &service{
		kv:       kv,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*Report, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Submit"),
		zap.String("device", string(input.Device)),
		zap.String("issue_type", input.IssueType),
	)

	input.Description = strings.TrimSpace(input.Description)
	if err := s.validate.Struct(input); err != nil {
		log.Warn("invalid issue report", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	issues, ok := issueTypes[input.Device]
	if !ok {
		return nil, ErrUnknownDevice
	}
	if !contains(issues, input.IssueType) {
		return nil, ErrUnknownIssue
	}

	r := Report{
		ID:          uuid.NewString(),
		Device:      input.Device,
		IssueType:   input.IssueType,
		Description: input.Description,
		ReportedBy:  logger.DeviceIDFrom(ctx),
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load(ctx)
	if err != nil {
		log.Error("failed to read reports", zap.Error(err))
		return nil, err
	}

	data, err := json.Marshal(append([]Report{r}, reports...))
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, KeyReports, string(data)); err != nil {
		log.Error("failed to save report", zap.Error(err))
		return nil, err
	}

	log.Info("issue reported", zap.String("report_id", r.ID))
	return &r, nil
}

func (s *service) List(ctx context.Context) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load treats a missing or unreadable list as empty.
func (s *service) load(ctx context.Context) ([]Report, error) {
	raw, err := s.kv.Get(ctx, KeyReports)
	if errors.Is(err, storage.ErrNotFound) {
		return []Report{}, nil
	}
	if err != nil {
		return nil, err
	}

	var reports []Report
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		logger.FromCtx(ctx).Warn("failed to parse issue reports, starting empty",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return []Report{}, nil
	}
	if reports == nil {
		reports = []Report{}
	}
	return reports, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
