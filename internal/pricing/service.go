package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnknownServiceType indicates a quote was requested for a service code
	// outside remove/reset.
	ErrUnknownServiceType = errors.New("pricing: unknown service type")
	// ErrInvalidItem indicates an admin write with missing code, name or type.
	ErrInvalidItem = errors.New("pricing: invalid catalog item")

	errMissingDatabase = errors.New("pricing: database handle is required")
)

// fallbackItems covers catalog reads that fail at order time. Degradation
// path only; the live catalog is authoritative.
var fallbackItems = map[string]QuoteLine{
	CodeRemove:         {Code: CodeRemove, Name: "Google Business Profile Removal", Price: 499},
	CodeReset:          {Code: CodeReset, Name: "Google Business Profile Reset", Price: 299},
	CodeYearProtection: {Code: CodeYearProtection, Name: "1-Year Re-listing Protection", Price: 199},
	CodeExpressService: {Code: CodeExpressService, Name: "Express Service", Price: 149},
}

// QuoteLine is one priced selection inside a quote.
type QuoteLine struct {
	Code  string
	Name  string
	Price float64
}

// Quote is the priced breakdown for a service selection: the base service line
// first, then one line per enabled add-on.
type Quote struct {
	Lines []QuoteLine
	Total float64
}

// ServiceConfig describes the dependencies of the pricing catalog.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service reads and maintains the pricing catalog and computes order totals.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// ActiveItems returns the catalog entries served to the public read path.
func (s *Service) ActiveItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("type, code").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert creates or replaces a catalog entry by code. Admin-only write path.
func (s *Service) Upsert(ctx context.Context, item Item) error {
	item.Code = strings.TrimSpace(item.Code)
	if item.Code == "" || strings.TrimSpace(item.Name) == "" {
		return ErrInvalidItem
	}
	if item.Type != ItemTypeService && item.Type != ItemTypeAddon {
		return ErrInvalidItem
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "type", "description", "is_active"}),
		}).
		Create(&item).Error
}

// Deactivate soft-disables a catalog entry. Rows are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidItem
	}
	return s.db.WithContext(ctx).
		Model(&Item{}).
		Where("code = ?", code).
		Update("is_active", false).Error
}

// Quote prices a service selection: the base service plus one line per enabled
// add-on. Prices come from the live catalog; the hardcoded fallback table is
// used only when the catalog read fails.
func (s *Service) Quote(ctx context.Context, serviceType string, yearProtection, expressService bool) (Quote, error) {
	if serviceType != CodeRemove && serviceType != CodeReset {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownServiceType, serviceType)
	}

	lines, err := s.activeLines(ctx)
	if err != nil {
		s.logger.Warn("catalog read failed, using fallback prices", zap.Error(err))
		lines = fallbackItems
	}

	selected := []string{serviceType}
	if yearProtection {
		selected = append(selected, CodeYearProtection)
	}
	if expressService {
		selected = append(selected, CodeExpressService)
	}

	quote := Quote{Lines: make([]QuoteLine, 0, len(selected))}
	for _, code := range selected {
		line, ok := lines[code]
		if !ok {
			line = fallbackItems[code]
		}
		quote.Lines = append(quote.Lines, line)
		quote.Total += line.Price
	}
	return quote, nil
}

// ComputeTotal returns the total price for a service selection.
func (s *Service) ComputeTotal(ctx context.Context, serviceType string, yearProtection, expressService bool) (float64, error) {
	quote, err := s.Quote(ctx, serviceType, yearProtection, expressService)
	if err != nil {
		return 0, err
	}
	return quote.Total, nil
}

func (s *Service) activeLines(ctx context.Context) (map[string]QuoteLine, error) {
	items, err := s.ActiveItems(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("pricing: catalog is empty")
	}
	lines := make(map[string]QuoteLine, len(items))
	for _, item := range items {
		lines[item.Code] = QuoteLine{Code: item.Code, Name: item.Name, Price: item.Price}
	}
	return lines, nil
}
