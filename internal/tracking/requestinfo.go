package tracking

import (
	"net"
	"net/http"
	"strings"
)

const unknownAddress = "unknown"

// RequestInfo carries the client attributes recorded alongside every logged row.
type RequestInfo struct {
	IPAddress string
	UserAgent string
	Referer   string
}

// Campaign holds the optional UTM attribution tags for a request. Absent
// parameters stay nil so the store records NULL, not empty strings.
type Campaign struct {
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMTerm     *string
	UTMContent  *string
	GTMFrom     *string
}

// GetRequestInfo derives client IP, user agent and referer from the request.
// IP resolution order: X-Forwarded-For first segment, X-Real-IP, remote
// address, "unknown".
func GetRequestInfo(request *http.Request) RequestInfo {
	return RequestInfo{
		IPAddress: clientIP(request),
		UserAgent: request.UserAgent(),
		Referer:   request.Referer(),
	}
}

// GetCampaign reads the UTM and GTM attribution parameters from the request URL.
func GetCampaign(request *http.Request) Campaign {
	query := request.URL.Query()
	return Campaign{
		UTMSource:   optionalParam(query.Get("utm_source")),
		UTMMedium:   optionalParam(query.Get("utm_medium")),
		UTMCampaign: optionalParam(query.Get("utm_campaign")),
		UTMTerm:     optionalParam(query.Get("utm_term")),
		UTMContent:  optionalParam(query.Get("utm_content")),
		GTMFrom:     optionalParam(query.Get("gtm_from")),
	}
}

func clientIP(request *http.Request) string {
	if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(request.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if request.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(request.RemoteAddr)
		if err == nil && host != "" {
			return host
		}
		return request.RemoteAddr
	}
	return unknownAddress
}

func optionalParam(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
