package pricing

import (
	"context"
	"errors"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Item{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := []Item{
		{Code: CodeRemove, Name: "Usunięcie wizytówki Google", Price: 499, Type: ItemTypeService, IsActive: true},
		{Code: CodeReset, Name: "Reset wizytówki Google", Price: 299, Type: ItemTypeService, IsActive: true},
		{Code: CodeYearProtection, Name: "Roczna ochrona", Price: 199, Type: ItemTypeAddon, IsActive: true},
		{Code: CodeExpressService, Name: "Usługa ekspresowa", Price: 149, Type: ItemTypeAddon, IsActive: true},
	}
	for _, item := range items {
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return service
}

func TestQuoteBaseServiceOnly(t *testing.T) {
	db := openTestDatabase(t)
	seedCatalog(t, db)
	service := newTestService(t, db)

	quote, err := service.Quote(context.Background(), CodeReset, false, false)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(quote.Lines))
	}
	if quote.Lines[0].Code != CodeReset || quote.Total != 299 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestQuoteWithAddOn(t *testing.T) {
	db := openTestDatabase(t)
	seedCatalog(t, db)
	service := newTestService(t, db)

	quote, err := service.Quote(context.Background(), CodeRemove, true, false)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if len(quote.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(quote.Lines))
	}
	if quote.Lines[0].Code != CodeRemove || quote.Lines[1].Code != CodeYearProtection {
		t.Fatalf("unexpected line order: %+v", quote.Lines)
	}
	if quote.Total != 698 {
		t.Fatalf("expected total 698, got %v", quote.Total)
	}
}

func TestQuoteAddOnsNeverReduceTotal(t *testing.T) {
	db := openTestDatabase(t)
	seedCatalog(t, db)
	service := newTestService(t, db)

	base, err := service.ComputeTotal(context.Background(), CodeRemove, false, false)
	if err != nil {
		t.Fatalf("base total failed: %v", err)
	}
	withBoth, err := service.ComputeTotal(context.Background(), CodeRemove, true, true)
	if err != nil {
		t.Fatalf("full total failed: %v", err)
	}
	if withBoth < base {
		t.Fatalf("add-ons reduced the total: base=%v full=%v", base, withBoth)
	}
	if withBoth != 499+199+149 {
		t.Fatalf("unexpected full total %v", withBoth)
	}
}

func TestQuoteUnknownServiceType(t *testing.T) {
	db := openTestDatabase(t)
	seedCatalog(t, db)
	service := newTestService(t, db)

	if _, err := service.Quote(context.Background(), "upgrade", false, false); !errors.Is(err, ErrUnknownServiceType) {
		t.Fatalf("expected ErrUnknownServiceType, got %v", err)
	}
}

func TestQuoteFallsBackWhenCatalogEmpty(t *testing.T) {
	db := openTestDatabase(t)
	service := newTestService(t, db)

	quote, err := service.Quote(context.Background(), CodeRemove, false, true)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.Total != 499+149 {
		t.Fatalf("fallback prices not applied, got %v", quote.Total)
	}
}

func TestQuoteUsesLiveCatalogPrices(t *testing.T) {
	db := openTestDatabase(t)
	seedCatalog(t, db)
	service := newTestService(t, db)

	updated := Item{Code: CodeRemove, Name: "Usunięcie wizytówki Google", Price: 599, Type: ItemTypeService, IsActive: true}
	if err := service.Upsert(context.Background(), updated); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	total, err := service.ComputeTotal(context.Background(), CodeRemove, false, false)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 599 {
		t.Fatalf("live catalog price not used, got %v", total)
	}
}

func TestUpsertValidation(t *testing.T) {
	db := openTestDatabase(t)
	service := newTestService(t, db)

	cases := []Item{
		{Code: "", Name: "Nameless", Type: ItemTypeService},
		{Code: "orphan", Name: "", Type: ItemTypeService},
		{Code: "weird", Name: "Weird", Type: "bundle"},
	}
	for _, item := range cases {
		if err := service.Upsert(context.Background(), item); !errors.Is(err, ErrInvalidItem) {
			t.Errorf("Upsert(%+v) = %v, want ErrInvalidItem", item, err)
		}
	}
}

func TestDeactivateHidesItemFromActiveList(t *testing.T) {
	db := openTestDatabase(t)
	seedCatalog(t, db)
	service := newTestService(t, db)

	if err := service.Deactivate(context.Background(), CodeExpressService); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	items, err := service.ActiveItems(context.Background())
	if err != nil {
		t.Fatalf("active items failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 active items, got %d", len(items))
	}
	for _, item := range items {
		if item.Code == CodeExpressService {
			t.Fatal("deactivated item still listed")
		}
	}

	var stored Item
	if err := db.Where("code = ?", CodeExpressService).Take(&stored).Error; err != nil {
		t.Fatalf("deactivated row must remain: %v", err)
	}
	if stored.IsActive {
		t.Fatal("is_active flag not cleared")
	}
}
