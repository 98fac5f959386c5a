package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/analytics"
	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/tracking"
	"go.uber.org/zap"
)

const topBuckets = 10

func (h *httpHandler) handleAnalytics(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reportType := c.Query("type")
	switch reportType {
	case "visitors":
		h.respondReport(c, func(ctx context.Context) (interface{}, error) {
			return h.visitorReport(ctx, dateRange)
		})
	case "orders":
		h.respondReport(c, func(ctx context.Context) (interface{}, error) {
			return h.orderReport(ctx, dateRange)
		})
	case "searches":
		h.respondReport(c, func(ctx context.Context) (interface{}, error) {
			return h.searchReport(ctx, dateRange)
		})
	case "", "overview":
		h.respondReport(c, func(ctx context.Context) (interface{}, error) {
			visitors, err := h.visitorReport(ctx, dateRange)
			if err != nil {
				return nil, err
			}
			orderSummary, err := h.orderReport(ctx, dateRange)
			if err != nil {
				return nil, err
			}
			searches, err := h.searchReport(ctx, dateRange)
			if err != nil {
				return nil, err
			}
			return gin.H{"visitors": visitors, "orders": orderSummary, "searches": searches}, nil
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be visitors, orders, searches or overview"})
	}
}

func (h *httpHandler) respondReport(c *gin.Context, build func(context.Context) (interface{}, error)) {
	report, err := build(c.Request.Context())
	if err != nil {
		h.logger.Error("analytics aggregation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *httpHandler) visitorReport(ctx context.Context, dates dateRange) (gin.H, error) {
	rows, total, err := h.visits.ListVisitors(ctx, tracking.ListQuery{
		From:  dates.from,
		To:    dates.to,
		Limit: exportLimit,
	})
	if err != nil {
		return nil, err
	}

	return gin.H{
		"total": total,
		"topPages": analytics.TopN(analytics.GroupCount(rows, func(v tracking.Visitor) string {
			return v.PagePath
		}), topBuckets),
		"topCountries": analytics.TopN(analytics.GroupCount(rows, func(v tracking.Visitor) string {
			return derefString(v.Country)
		}), topBuckets),
		"topReferers": analytics.TopN(analytics.GroupCount(rows, func(v tracking.Visitor) string {
			return analytics.NormalizeReferer(v.Referer)
		}), topBuckets),
		"perDay": analytics.GroupCount(rows, func(v tracking.Visitor) string {
			return analytics.DayKey(v.CreatedAt)
		}),
	}, nil
}

func (h *httpHandler) orderReport(ctx context.Context, dates dateRange) (gin.H, error) {
	rows, total, err := h.orders.ListOrders(ctx, orders.ListQuery{
		From:  dates.from,
		To:    dates.to,
		Limit: exportLimit,
	})
	if err != nil {
		return nil, err
	}

	amounts := make([]string, 0, len(rows))
	for _, row := range rows {
		amounts = append(amounts, formatAmount(row.TotalAmount))
	}

	return gin.H{
		"total": total,
		"byStatus": analytics.GroupCount(rows, func(o orders.Order) string {
			return string(o.PaymentStatus)
		}),
		"byService": analytics.GroupCount(rows, func(o orders.Order) string {
			return o.ServiceType
		}),
		"revenue": analytics.RevenueTotals(amounts),
		"perDay": analytics.GroupCount(rows, func(o orders.Order) string {
			return analytics.DayKey(o.CreatedAt)
		}),
	}, nil
}

func (h *httpHandler) searchReport(ctx context.Context, dates dateRange) (gin.H, error) {
	rows, total, err := h.orders.ListSelections(ctx, orders.ListQuery{
		From:  dates.from,
		To:    dates.to,
		Limit: exportLimit,
	})
	if err != nil {
		return nil, err
	}

	return gin.H{
		"total": total,
		"topQueries": analytics.TopN(analytics.GroupCount(rows, func(s orders.SearchedPlace) string {
			return derefString(s.SearchQuery)
		}), topBuckets),
		"topPlaces": analytics.TopN(analytics.GroupCount(rows, func(s orders.SearchedPlace) string {
			return s.PlaceName
		}), topBuckets),
		"perDay": analytics.GroupCount(rows, func(s orders.SearchedPlace) string {
			return analytics.DayKey(s.CreatedAt)
		}),
	}, nil
}
