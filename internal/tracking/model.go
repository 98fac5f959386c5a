package tracking

import "time"

// Visitor is one append-only row per page view. Rows are never updated or
// deleted; optional attribution fields stay NULL rather than empty strings.
type Visitor struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IPAddress   string    `gorm:"column:ip_address;size:45;not null" json:"ip_address"`
	UserAgent   string    `gorm:"column:user_agent;size:512" json:"user_agent"`
	Referer     string    `gorm:"column:referer;size:512" json:"referer"`
	PagePath    string    `gorm:"column:page_path;size:512;not null;index" json:"page_path"`
	Country     *string   `gorm:"column:country;size:64" json:"country,omitempty"`
	City        *string   `gorm:"column:city;size:128" json:"city,omitempty"`
	SessionID   string    `gorm:"column:session_id;size:64;index" json:"session_id"`
	UTMSource   *string   `gorm:"column:utm_source;size:190" json:"utm_source,omitempty"`
	UTMMedium   *string   `gorm:"column:utm_medium;size:190" json:"utm_medium,omitempty"`
	UTMCampaign *string   `gorm:"column:utm_campaign;size:190" json:"utm_campaign,omitempty"`
	UTMTerm     *string   `gorm:"column:utm_term;size:190" json:"utm_term,omitempty"`
	UTMContent  *string   `gorm:"column:utm_content;size:190" json:"utm_content,omitempty"`
	GTMFrom     *string   `gorm:"column:gtm_from;size:190" json:"gtm_from,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName exposes the table backing visitor page views.
func (Visitor) TableName() string {
	return "visitors"
}
