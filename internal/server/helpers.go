package server

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

type dateRange struct {
	from time.Time
	to   time.Time
}

var errInvalidDateRange = errors.New("startDate and endDate must be YYYY-MM-DD or RFC3339")

// parseDateRange reads the optional startDate/endDate query parameters.
// Date-only end values are inclusive of the whole day.
func parseDateRange(c *gin.Context) (dateRange, error) {
	var parsed dateRange

	if raw := c.Query("startDate"); raw != "" {
		from, _, err := parseDateParam(raw)
		if err != nil {
			return dateRange{}, errInvalidDateRange
		}
		parsed.from = from
	}
	if raw := c.Query("endDate"); raw != "" {
		to, dateOnly, err := parseDateParam(raw)
		if err != nil {
			return dateRange{}, errInvalidDateRange
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		parsed.to = to
	}
	if !parsed.from.IsZero() && !parsed.to.IsZero() && parsed.from.After(parsed.to) {
		return dateRange{}, errInvalidDateRange
	}
	return parsed, nil
}

func parseDateParam(raw string) (time.Time, bool, error) {
	if value, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return value.UTC(), true, nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return value.UTC(), false, nil
}
