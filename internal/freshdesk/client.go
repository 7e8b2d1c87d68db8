// Package freshdesk: адаптер REST v2, выполняет request templates SDK
// и загружает вложения.
package freshdesk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/psds-microservice/tracker-service/internal/metrics"
	"github.com/psds-microservice/tracker-service/internal/sdk"
)

const domainSuffix = ".freshdesk.com"

var subdomainJunk = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// SanitizeSubdomain убирает символы вне [A-Za-z0-9-] и приводит остальное к нижнему регистру.
func SanitizeSubdomain(s string) string {
	return strings.ToLower(subdomainJunk.ReplaceAllString(s, ""))
}

// NormalizeSubdomain принимает и "acme", и "acme.freshdesk.com".
func NormalizeSubdomain(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(domainSuffix) && strings.EqualFold(s[len(s)-len(domainSuffix):], domainSuffix) {
		s = s[:len(s)-len(domainSuffix)]
	}
	return SanitizeSubdomain(s)
}

// TicketURL: ссылка на тикет в интерфейсе агента.
func TicketURL(subdomain string, id int64) string {
	if sub := NormalizeSubdomain(subdomain); sub != "" {
		return fmt.Sprintf("https://%s%s/a/tickets/%d", sub, domainSuffix, id)
	}
	return fmt.Sprintf("https://freshdesk.com/a/tickets/%d", id)
}

type route struct {
	method string
	path   string
	param  string
}

// routes: имена request templates в эндпоинты Freshdesk, %s подставляется из контекста.
var routes = map[string]route{
	sdk.TemplateCreateTicket:       {method: http.MethodPost, path: "/api/v2/tickets"},
	sdk.TemplateGetTicketDetails:   {method: http.MethodGet, path: "/api/v2/tickets/%s", param: "ticketId"},
	sdk.TemplateGetTicketByID:      {method: http.MethodGet, path: "/api/v2/tickets/%s", param: "ticketId"},
	sdk.TemplateGetCompanyDetails:  {method: http.MethodGet, path: "/api/v2/companies/%s", param: "companyId"},
	sdk.TemplateTicketAssociations: {method: http.MethodGet, path: "/api/v2/tickets/%s/associated_tickets", param: "ticketId"},
}

// Client вызывает Freshdesk API v2 с Basic-авторизацией api_key:X.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient: клиент для https://<subdomain>.freshdesk.com.
func NewClient(subdomain, apiKey string, timeout time.Duration) *Client {
	base := ""
	if sub := NormalizeSubdomain(subdomain); sub != "" {
		base = "https://" + sub + domainSuffix
	}
	return NewClientWithBaseURL(base, apiKey, &http.Client{Timeout: timeout})
}

// NewClientWithBaseURL: NewClient с произвольным хостом (тесты, прокси).
func NewClientWithBaseURL(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, httpClient: httpClient}
}

// Configured: заданы ли хост и ключ.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// InvokeTemplate реализует sdk.Requester.
func (c *Client) InvokeTemplate(ctx context.Context, name string, opts sdk.Options) (*sdk.Response, error) {
	rt, ok := routes[name]
	if !ok {
		return nil, fmt.Errorf("freshdesk: unknown request template %q", name)
	}
	path := rt.path
	if rt.param != "" {
		v, ok := opts.Context[rt.param]
		if !ok || fmt.Sprint(v) == "" {
			return nil, fmt.Errorf("freshdesk: %s: context %s is required", name, rt.param)
		}
		path = fmt.Sprintf(rt.path, fmt.Sprint(v))
	}
	var body io.Reader
	if rt.method != http.MethodGet && opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}
	return c.do(ctx, name, rt.method, path, "application/json", body)
}

func (c *Client) do(ctx context.Context, name, method, path, contentType string, body io.Reader) (*sdk.Response, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("freshdesk: client is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("freshdesk: new request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "X")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RequestDuration.WithLabelValues(name, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("freshdesk: %s: %w", name, err)
	}
	defer resp.Body.Close()
	metrics.RequestDuration.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freshdesk: %s: read body: %w", name, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("freshdesk: %s %s: status %d", method, path, resp.StatusCode)
		return nil, &sdk.APIError{
			Status:   resp.StatusCode,
			Response: string(bytes.TrimSpace(data)),
			Message:  http.StatusText(resp.StatusCode),
		}
	}
	return &sdk.Response{Status: resp.StatusCode, Response: string(data)}, nil
}
