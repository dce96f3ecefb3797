package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"medcart/internal/lifecycle"
	"medcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderServiceClient talks to the remote order service. The remote side
// validates transitions independently; this client only transports.
type OrderServiceClient interface {
	// GetOrder fetches a single order.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListOrders fetches the orders visible in the given scope.
	ListOrders(ctx context.Context, scope model.Scope) ([]*model.Order, error)

	// UpdateStatus asks the remote service to move the order to status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// CreateOrder places a new order.
	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)
}

// client implements OrderServiceClient over HTTP.
type client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates an HTTP client for the remote order service.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) (OrderServiceClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid order service base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		baseURL: u,
		http:    httpClient,
		logger:  logger.With().Str("client", "order-service").Logger(),
	}, nil
}

// GetOrder implements OrderServiceClient.
func (c *client) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/orders/"+id.String(), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.ErrOrderNotFound
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return decodeOrder(resp.Body)
}

// ListOrders implements OrderServiceClient.
func (c *client) ListOrders(ctx context.Context, scope model.Scope) ([]*model.Order, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/orders", "scope="+url.QueryEscape(string(scope)), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode order list: %w", err)
	}

	orders := make([]*model.Order, 0, len(raw))
	for _, msg := range raw {
		order, err := decodeOrder(bytes.NewReader(msg))
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatus implements OrderServiceClient.
func (c *client) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	body, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status update: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPatch, "/api/orders/"+id.String()+"/status", "", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.ErrOrderNotFound
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return decodeOrder(resp.Body)
}

// CreateOrder implements OrderServiceClient.
func (c *client) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/orders", "", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return decodeOrder(resp.Body)
}

// do issues a request against the base URL.
func (c *client) do(ctx context.Context, method, path, rawQuery string, body io.Reader) (*http.Response, error) {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("order service request failed")
		return nil, fmt.Errorf("order service request failed: %w", err)
	}
	return resp, nil
}

// checkStatus converts a non-2xx response into an error carrying a
// snippet of the body.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("order service returned %d: %s", resp.StatusCode, string(snippet))
}

// decodeOrder parses an order and validates its status strictly. Bad
// status data is a load-time error, never coerced to a default.
func decodeOrder(r io.Reader) (*model.Order, error) {
	var order model.Order
	if err := json.NewDecoder(r).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	status, err := lifecycle.ParseStatus(string(order.Status))
	if err != nil {
		return nil, err
	}
	order.Status = status

	for i, ev := range order.Timeline {
		evStatus, err := lifecycle.ParseStatus(string(ev.Status))
		if err != nil {
			return nil, err
		}
		order.Timeline[i].Status = evStatus
	}

	return &order, nil
}
