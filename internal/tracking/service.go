package tracking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("tracking: database handle is required")

// ServiceConfig describes the dependencies of the visitor log service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service records page views and serves the admin visitor listing.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// LogVisitor appends one page-view row. Callers on the page-serving path must
// treat failures as non-fatal; the middleware swallows the returned error.
func (s *Service) LogVisitor(ctx context.Context, visitor Visitor) error {
	if visitor.CreatedAt.IsZero() {
		visitor.CreatedAt = s.clock().UTC()
	}
	return s.db.WithContext(ctx).Create(&visitor).Error
}

// ListQuery bounds an admin listing by creation date with offset pagination.
type ListQuery struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

const defaultListLimit = 100

// ListVisitors returns visitor rows in the date range, newest first, plus the
// total row count for the range.
func (s *Service) ListVisitors(ctx context.Context, query ListQuery) ([]Visitor, int64, error) {
	scope := s.db.WithContext(ctx).Model(&Visitor{})
	if !query.From.IsZero() {
		scope = scope.Where("created_at >= ?", query.From)
	}
	if !query.To.IsZero() {
		scope = scope.Where("created_at <= ?", query.To)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var visitors []Visitor
	err := scope.Order("created_at DESC").
		Limit(limit).
		Offset(query.Offset).
		Find(&visitors).Error
	if err != nil {
		return nil, 0, err
	}
	return visitors, total, nil
}
