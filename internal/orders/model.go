package orders

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentStatus tracks an order through the payment lifecycle. The only legal
// transitions leave pending; completed and failed are terminal.
type PaymentStatus string

const (
	// PaymentStatusPending is the state of every freshly created order.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted is set once the checkout session is paid.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed is set when payment collection fails.
	PaymentStatusFailed PaymentStatus = "failed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Order is one paid-service request. Created pending at intake, mutated
// exactly once to a terminal status by the webhook handler or an admin
// override, never deleted. StripeSessionID is unique and is the join key the
// webhook handler matches on.
type Order struct {
	ID              string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	SessionID       *string       `gorm:"column:session_id;size:64;index" json:"session_id,omitempty"`
	CustomerEmail   string        `gorm:"column:customer_email;size:320;not null;index" json:"customer_email"`
	CustomerName    string        `gorm:"column:customer_name;size:190;not null" json:"customer_name"`
	CompanyName     *string       `gorm:"column:company_name;size:190" json:"company_name,omitempty"`
	NIP             *string       `gorm:"column:nip;size:32" json:"nip,omitempty"`
	Phone           string        `gorm:"column:phone;size:32;not null" json:"phone"`
	ServiceType     string        `gorm:"column:service_type;size:32;not null" json:"service_type"`
	YearProtection  bool          `gorm:"column:year_protection;not null" json:"year_protection"`
	ExpressService  bool          `gorm:"column:express_service;not null" json:"express_service"`
	TotalAmount     float64       `gorm:"column:total_amount;not null" json:"total_amount"`
	Currency        string        `gorm:"column:currency;size:8;not null" json:"currency"`
	PaymentStatus   PaymentStatus `gorm:"column:payment_status;size:16;not null;index" json:"payment_status"`
	PaymentIntentID *string       `gorm:"column:payment_intent_id;size:190" json:"payment_intent_id,omitempty"`
	StripeSessionID string        `gorm:"column:stripe_session_id;size:190;not null;uniqueIndex" json:"stripe_session_id"`

	BusinessPlaceID   string   `gorm:"column:business_place_id;size:190;not null" json:"business_place_id"`
	BusinessName      string   `gorm:"column:business_name;size:320;not null" json:"business_name"`
	BusinessAddress   string   `gorm:"column:business_address;size:512;not null" json:"business_address"`
	BusinessPhone     *string  `gorm:"column:business_phone;size:32" json:"business_phone,omitempty"`
	BusinessWebsite   *string  `gorm:"column:business_website;size:512" json:"business_website,omitempty"`
	BusinessRating    *float64 `gorm:"column:business_rating" json:"business_rating,omitempty"`
	BusinessGoogleURL *string  `gorm:"column:business_google_url;size:512" json:"business_google_url,omitempty"`

	IPAddress string    `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string    `gorm:"column:user_agent;size:512" json:"user_agent"`
	Referer   string    `gorm:"column:referer;size:512" json:"referer"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName exposes the table backing orders.
func (Order) TableName() string {
	return "orders"
}

// SearchedPlace records a business the visitor actively selected to proceed
// toward an order. View-only lookups are never persisted; the row exists only
// for selections, which keeps the log a lead log rather than traffic noise.
type SearchedPlace struct {
	ID                  uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID           *string        `gorm:"column:session_id;size:64;index" json:"session_id,omitempty"`
	SearchQuery         *string        `gorm:"column:search_query;size:512" json:"search_query,omitempty"`
	Location            *string        `gorm:"column:location;size:190" json:"location,omitempty"`
	PlaceID             string         `gorm:"column:place_id;size:190;not null;index" json:"place_id"`
	PlaceName           string         `gorm:"column:place_name;size:320;not null" json:"place_name"`
	PlaceAddress        string         `gorm:"column:place_address;size:512;not null" json:"place_address"`
	PlacePhone          *string        `gorm:"column:place_phone;size:32" json:"place_phone,omitempty"`
	PlaceWebsite        *string        `gorm:"column:place_website;size:512" json:"place_website,omitempty"`
	PlaceRating         *float64       `gorm:"column:place_rating" json:"place_rating,omitempty"`
	PlaceRatingCount    *int           `gorm:"column:place_rating_count" json:"place_rating_count,omitempty"`
	PlaceBusinessStatus *string        `gorm:"column:place_business_status;size:64" json:"place_business_status,omitempty"`
	PlaceTypes          datatypes.JSON `gorm:"column:place_types" json:"place_types,omitempty"`
	PlaceGeometry       datatypes.JSON `gorm:"column:place_geometry" json:"place_geometry,omitempty"`
	SearchResultsCount  *int           `gorm:"column:search_results_count" json:"search_results_count,omitempty"`
	IPAddress           string         `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent           string         `gorm:"column:user_agent;size:512" json:"user_agent"`
	Referer             string         `gorm:"column:referer;size:512" json:"referer"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName exposes the table backing selected-business rows.
func (SearchedPlace) TableName() string {
	return "searched_gmb"
}
