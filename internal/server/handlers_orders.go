package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/listingshield/backend/internal/analytics"
	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/tracking"
	"go.uber.org/zap"
)

type createPaymentPayload struct {
	Business       orders.BusinessSelection `json:"orderData"`
	Form           orders.ContactForm       `json:"formData"`
	ServiceType    string                   `json:"serviceType"`
	YearProtection bool                     `json:"yearProtection"`
	ExpressService bool                     `json:"expressService"`
}

func (h *httpHandler) handleCreatePayment(c *gin.Context) {
	var request createPaymentPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.orders.CreateOrder(c.Request.Context(), orders.OrderRequest{
		Business:       request.Business,
		Form:           request.Form,
		ServiceType:    request.ServiceType,
		YearProtection: request.YearProtection,
		ExpressService: request.ExpressService,
		SessionID:      tracking.SessionFromContext(c),
		RequestInfo:    tracking.GetRequestInfo(c.Request),
	})
	if err != nil {
		if errors.Is(err, orders.ErrInvalidOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("order intake failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":   result.SessionID,
		"checkoutUrl": result.CheckoutURL,
		"orderId":     result.OrderID,
		"totalAmount": result.TotalAmount,
	})
}

type selectionPayload struct {
	IsSelected         bool                     `json:"isSelected"`
	ProceedingToOrder  bool                     `json:"proceedingToOrder"`
	Details            orders.BusinessSelection `json:"details"`
	BusinessStatus     *string                  `json:"businessStatus,omitempty"`
	RatingCount        *int                     `json:"ratingCount,omitempty"`
	Types              []string                 `json:"types,omitempty"`
	Geometry           json.RawMessage          `json:"geometry,omitempty"`
	SearchQuery        *string                  `json:"searchQuery,omitempty"`
	Location           *string                  `json:"location,omitempty"`
	SearchResultsCount *int                     `json:"searchResultsCount,omitempty"`
}

func (h *httpHandler) handleRecordSelection(c *gin.Context) {
	var request selectionPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recorded, err := h.orders.RecordSelection(c.Request.Context(), orders.SelectionRequest{
		Selected:           request.IsSelected || request.ProceedingToOrder,
		Details:            request.Details,
		BusinessStatus:     request.BusinessStatus,
		RatingCount:        request.RatingCount,
		Types:              request.Types,
		Geometry:           request.Geometry,
		SearchQuery:        request.SearchQuery,
		Location:           request.Location,
		SearchResultsCount: request.SearchResultsCount,
		SessionID:          tracking.SessionFromContext(c),
		RequestInfo:        tracking.GetRequestInfo(c.Request),
	})
	if err != nil {
		if errors.Is(err, orders.ErrInvalidOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Selection logging must not break the order funnel.
		h.logger.Warn("selection log write failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"recorded": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": recorded})
}

func (h *httpHandler) handleSelectionList(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := orders.ListQuery{
		From:   dateRange.from,
		To:     dateRange.to,
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	if c.Query("export") == "csv" {
		query.Limit = exportLimit
	}

	rows, total, err := h.orders.ListSelections(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("selection listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load searches"})
		return
	}

	if c.Query("export") == "csv" {
		writeCSV(c, "searched-gmb.csv", selectionCSVHeader, selectionCSVRows(rows))
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": rows, "total": total})
}

func (h *httpHandler) handleOrderList(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := orders.PaymentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, completed or failed"})
		return
	}

	query := orders.ListQuery{
		From:   dateRange.from,
		To:     dateRange.to,
		Status: status,
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	if c.Query("export") == "csv" {
		query.Limit = exportLimit
	}

	rows, total, err := h.orders.ListOrders(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("order listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	if c.Query("export") == "csv" {
		writeCSV(c, "orders.csv", orderCSVHeader, orderCSVRows(rows))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows, "total": total})
}

type orderPatchPayload struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

func (h *httpHandler) handleOrderPatch(c *gin.Context) {
	var request orderPatchPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.OrderID == "" || request.PaymentStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId and paymentStatus are required"})
		return
	}

	err := h.orders.UpdateStatus(c.Request.Context(), request.OrderID, orders.PaymentStatus(request.PaymentStatus))
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, orders.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentStatus must be completed or failed"})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "order already finalized"})
	case err != nil:
		h.logger.Error("order status update failed", zap.String("order_id", request.OrderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
	default:
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

const exportLimit = 10000

var orderCSVHeader = []string{
	"id", "created_at", "customer_email", "customer_name", "company_name", "nip",
	"phone", "service_type", "year_protection", "express_service", "total_amount",
	"currency", "payment_status", "payment_intent_id", "stripe_session_id",
	"business_place_id", "business_name", "business_address", "ip_address",
}

func orderCSVRows(rows []orders.Order) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.ID,
			row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			row.CustomerEmail,
			row.CustomerName,
			derefString(row.CompanyName),
			derefString(row.NIP),
			row.Phone,
			row.ServiceType,
			strconv.FormatBool(row.YearProtection),
			strconv.FormatBool(row.ExpressService),
			formatAmount(row.TotalAmount),
			row.Currency,
			string(row.PaymentStatus),
			derefString(row.PaymentIntentID),
			row.StripeSessionID,
			row.BusinessPlaceID,
			row.BusinessName,
			row.BusinessAddress,
			row.IPAddress,
		})
	}
	return out
}

var selectionCSVHeader = []string{
	"id", "created_at", "session_id", "search_query", "location", "place_id",
	"place_name", "place_address", "place_phone", "place_website", "place_rating",
	"search_results_count", "ip_address",
}

func selectionCSVRows(rows []orders.SearchedPlace) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		rating := ""
		if row.PlaceRating != nil {
			rating = strconv.FormatFloat(*row.PlaceRating, 'f', -1, 64)
		}
		resultsCount := ""
		if row.SearchResultsCount != nil {
			resultsCount = strconv.Itoa(*row.SearchResultsCount)
		}
		out = append(out, []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			derefString(row.SessionID),
			derefString(row.SearchQuery),
			derefString(row.Location),
			row.PlaceID,
			row.PlaceName,
			row.PlaceAddress,
			derefString(row.PlacePhone),
			derefString(row.PlaceWebsite),
			rating,
			resultsCount,
			row.IPAddress,
		})
	}
	return out
}

func writeCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", analytics.EncodeCSV(header, rows))
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
