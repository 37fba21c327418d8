// Package supabase provides a client for Supabase (PostgREST).
// Used as the hosted backend for users, transactions, investments and goals.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/resilience"
)

var tracer = otel.Tracer("supabase")

// Tables used by the store.
const (
	tableUsers        = "usuarios"
	tableTransactions = "transacoes"
	tableInvestments  = "investimentos"
	tableGoals        = "metas"
)

// Client wraps HTTP calls to Supabase PostgREST API.
// It implements port.FinanceStore.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
	newID          func() string
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
		newID:          uuid.NewString,
	}
}

// doRequest executes an authenticated GET against PostgREST.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil // no data
	}
	if err := c.checkStatus(method, path, resp.StatusCode, body); err != nil {
		return nil, err
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
}

// checkStatus turns non-2xx answers into errors. 4xx are permanent.
func (c *Client) checkStatus(method, path string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	c.logger.Warn("supabase: non-2xx response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("body", string(body)),
	)
	err := fmt.Errorf("supabase %s %s returned status %d: %s", method, path, status, string(body))
	if status < http.StatusInternalServerError {
		return resilience.Permanent(err)
	}
	return err
}

// run executes fn under breaker + retry and maps failures to domain errors.
// Not-found answers pass through untouched.
func (c *Client) run(ctx context.Context, service string, fn func() error) error {
	err := resilience.Protect(ctx, c.cb, c.cfg, service, fn)
	if err == nil {
		return nil
	}
	var nf *domain.ErrNotFound
	var co *domain.ErrCircuitOpen
	var to *domain.ErrTimeout
	if errors.As(err, &nf) || errors.As(err, &co) || errors.As(err, &to) {
		return err
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

// Ping checks that PostgREST answers, used by the health check.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, tableUsers+"?select=id&limit=1")
	return err
}

// --- Users ---

// GetUser fetches the chat owner.
func (c *Client) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var user *domain.User
	err := c.run(ctx, "supabase/users", func() error {
		path := fmt.Sprintf("%s?id=eq.%s&limit=1", tableUsers, url.QueryEscape(userID))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		var rows []domain.User
		if len(body) > 0 {
			if err := json.Unmarshal(body, &rows); err != nil {
				return resilience.Permanent(fmt.Errorf("failed to decode user: %w", err))
			}
		}
		if len(rows) == 0 {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "user", ID: userID})
		}
		user = &rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// --- Lists ---

func listByUser[T any](ctx context.Context, c *Client, table, userID string) ([]T, error) {
	ctx, span := tracer.Start(ctx, "Supabase.List."+table)
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	rows := []T{}
	err := c.run(ctx, "supabase/"+table, func() error {
		path := fmt.Sprintf("%s?user_id=eq.%s&order=created_at.desc", table, url.QueryEscape(userID))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return resilience.Permanent(fmt.Errorf("failed to decode %s: %w", table, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTransactions returns the user's transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]domain.TransactionRecord, error) {
	return listByUser[domain.TransactionRecord](ctx, c, tableTransactions, userID)
}

// ListInvestments returns the user's investments, newest first.
func (c *Client) ListInvestments(ctx context.Context, userID string) ([]domain.InvestmentRecord, error) {
	return listByUser[domain.InvestmentRecord](ctx, c, tableInvestments, userID)
}

// ListGoals returns the user's goals, newest first.
func (c *Client) ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error) {
	return listByUser[domain.GoalRecord](ctx, c, tableGoals, userID)
}

// --- Inserts ---

// CreateTransaction inserts a transaction and returns the stored row.
func (c *Client) CreateTransaction(ctx context.Context, tx *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	if tx.ID == "" {
		tx.ID = c.newID()
	}
	return insert(ctx, c, tableTransactions, tx)
}

// CreateInvestment inserts an investment and returns the stored row.
func (c *Client) CreateInvestment(ctx context.Context, inv *domain.InvestmentRecord) (*domain.InvestmentRecord, error) {
	if inv.ID == "" {
		inv.ID = c.newID()
	}
	return insert(ctx, c, tableInvestments, inv)
}

// CreateGoal inserts a goal and returns the stored row.
func (c *Client) CreateGoal(ctx context.Context, goal *domain.GoalRecord) (*domain.GoalRecord, error) {
	if goal.ID == "" {
		goal.ID = c.newID()
	}
	return insert(ctx, c, tableGoals, goal)
}

func insert[T any](ctx context.Context, c *Client, table string, row *T) (*T, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Insert."+table)
	defer span.End()

	var saved *T
	err := c.run(ctx, "supabase/"+table, func() error {
		body, err := c.doPost(ctx, table, row)
		if err != nil {
			return err
		}
		var rows []T
		if len(body) > 0 {
			if err := json.Unmarshal(body, &rows); err != nil {
				return resilience.Permanent(fmt.Errorf("failed to decode inserted %s: %w", table, err))
			}
		}
		if len(rows) == 0 {
			saved = row
			return nil
		}
		saved = &rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
