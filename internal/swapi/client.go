package swapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/entities"
)

const (
	DefaultEndpoint = "https://swapi-graphql.netlify.app/.netlify/functions/index"

	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Config holds the connection settings of a Client.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
}

// Client fetches cursor-paginated lists from the SWAPI GraphQL endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new SWAPI client. Zero config fields take defaults.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		maxRetries: cfg.MaxRetries,
		retryDelay: initialRetryDelay,
	}
}

// Item is one entity of a fetched page.
type Item struct {
	ID        string
	Name      string
	FilmCount int
	Cursor    string
}

// Page is one page of a remote list.
type Page struct {
	Items      []Item
	NextCursor *string
	HasMore    bool
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphQLError             `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type connectionData struct {
	PageInfo struct {
		HasNextPage bool    `json:"hasNextPage"`
		EndCursor   *string `json:"endCursor"`
	} `json:"pageInfo"`
	Edges []struct {
		Cursor string `json:"cursor"`
		Node   *struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			FilmConnection struct {
				TotalCount int `json:"totalCount"`
			} `json:"filmConnection"`
		} `json:"node"`
	} `json:"edges"`
}

// FetchPage fetches up to pageSize items of label following cursor. An empty
// cursor requests the first page.
func (c *Client) FetchPage(ctx context.Context, label entities.Label, cursor string, pageSize int) (*Page, error) {
	conn, ok := connections[label]
	if !ok {
		return nil, fmt.Errorf("swapi: %w: %q", entities.ErrUnknownLabel, label)
	}

	variables := map[string]any{"first": pageSize}
	if cursor != "" {
		variables["after"] = cursor
	}
	body, err := json.Marshal(graphQLRequest{Query: conn.query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var resp *graphQLResponse
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt)
			log.Debug().Str("label", label.String()).Int("attempt", attempt).Dur("delay", delay).Err(lastErr).Msg("retrying swapi request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, lastErr = c.doRequest(ctx, body)
		if lastErr == nil {
			return decodePage(resp, conn.field)
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}

	return nil, &NetworkError{Err: fmt.Errorf("max retries exceeded: %w", lastErr)}
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*graphQLResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ProtocolError{Msg: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(msg))}
	}

	var out graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProtocolError{Msg: "failed to decode response", Err: err}
	}
	return &out, nil
}

func decodePage(resp *graphQLResponse, field string) (*Page, error) {
	if len(resp.Errors) > 0 {
		return nil, &ProtocolError{Msg: "graphql error: " + resp.Errors[0].Message}
	}
	raw, ok := resp.Data[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, &ProtocolError{Msg: "missing " + field + " in response"}
	}

	var data connectionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &ProtocolError{Msg: "failed to decode " + field, Err: err}
	}

	page := &Page{
		Items:      make([]Item, 0, len(data.Edges)),
		NextCursor: data.PageInfo.EndCursor,
		HasMore:    data.PageInfo.HasNextPage,
	}
	for _, edge := range data.Edges {
		if edge.Node == nil || edge.Node.ID == "" {
			return nil, &ProtocolError{Msg: "edge without node id in " + field}
		}
		page.Items = append(page.Items, Item{
			ID:        edge.Node.ID,
			Name:      edge.Node.Name,
			FilmCount: edge.Node.FilmConnection.TotalCount,
			Cursor:    edge.Cursor,
		})
	}
	if page.HasMore && (page.NextCursor == nil || *page.NextCursor == "") {
		return nil, &ProtocolError{Msg: "hasNextPage without endCursor in " + field}
	}
	return page, nil
}

func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
