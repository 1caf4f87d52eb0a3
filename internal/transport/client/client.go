// Package client - HTTP клиент API журнала расходов. Используется утилитой ledgerctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fsdevblog/splitledger/internal/transport/api"
)

const (
	routeUsers          = "/users/"
	routeUser           = "/users/%d"
	routeUserBalances   = "/users/%d/balances"
	routeGroups         = "/groups/"
	routeGroup          = "/groups/%d"
	routeGroupBalances  = "/groups/%d/balances"
	routeGroupExpenses  = "/groups/%d/expenses/"
	routeExpensePreview = "/groups/%d/expenses/preview"
	routeExpense        = "/expenses/%d"
)

const DefaultTimeout = 10 * time.Second

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c HTTPClient) ListUsers(ctx context.Context, skip, limit uint) ([]api.UserResponse, error) {
	var users []api.UserResponse
	err := c.do(ctx, http.MethodGet, withPage(routeUsers, skip, limit), nil, &users)
	return users, err
}

func (c HTTPClient) CreateUser(ctx context.Context, params api.CreateUserParams) (*api.UserResponse, error) {
	var user api.UserResponse
	if err := c.do(ctx, http.MethodPost, routeUsers, params, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c HTTPClient) GetUser(ctx context.Context, id int64) (*api.UserResponse, error) {
	var user api.UserResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeUser, id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c HTTPClient) UpdateUser(ctx context.Context, id int64, params api.UpdateUserParams) (*api.UserResponse, error) {
	var user api.UserResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf(routeUser, id), params, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(routeUser, id), nil, nil)
}

func (c HTTPClient) UserBalances(ctx context.Context, id int64) ([]api.GroupBalancesResponse, error) {
	var balances []api.GroupBalancesResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeUserBalances, id), nil, &balances)
	return balances, err
}

func (c HTTPClient) ListGroups(ctx context.Context, skip, limit uint) ([]api.GroupResponse, error) {
	var groups []api.GroupResponse
	err := c.do(ctx, http.MethodGet, withPage(routeGroups, skip, limit), nil, &groups)
	return groups, err
}

func (c HTTPClient) CreateGroup(ctx context.Context, params api.CreateGroupParams) (*api.GroupResponse, error) {
	var group api.GroupResponse
	if err := c.do(ctx, http.MethodPost, routeGroups, params, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c HTTPClient) GetGroup(ctx context.Context, id int64) (*api.GroupResponse, error) {
	var group api.GroupResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeGroup, id), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c HTTPClient) UpdateGroup(
	ctx context.Context,
	id int64,
	params api.UpdateGroupParams,
) (*api.GroupResponse, error) {
	var group api.GroupResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf(routeGroup, id), params, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c HTTPClient) DeleteGroup(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(routeGroup, id), nil, nil)
}

func (c HTTPClient) GroupBalances(ctx context.Context, id int64) ([]api.BalanceResponse, error) {
	var balances []api.BalanceResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeGroupBalances, id), nil, &balances)
	return balances, err
}

func (c HTTPClient) ListExpenses(ctx context.Context, groupID int64) ([]api.ExpenseResponse, error) {
	var expenses []api.ExpenseResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeGroupExpenses, groupID), nil, &expenses)
	return expenses, err
}

func (c HTTPClient) CreateExpense(
	ctx context.Context,
	groupID int64,
	params api.CreateExpenseParams,
) (*api.ExpenseResponse, error) {
	var expense api.ExpenseResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf(routeGroupExpenses, groupID), params, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// PreviewExpense считает доли участников без сохранения расхода.
func (c HTTPClient) PreviewExpense(
	ctx context.Context,
	groupID int64,
	params api.CreateExpenseParams,
) ([]api.ShareResponse, error) {
	var shares []api.ShareResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf(routeExpensePreview, groupID), params, &shares)
	return shares, err
}

func (c HTTPClient) GetExpense(ctx context.Context, id int64) (*api.ExpenseResponse, error) {
	var expense api.ExpenseResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeExpense, id), nil, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (c HTTPClient) UpdateExpense(
	ctx context.Context,
	id int64,
	params api.UpdateExpenseParams,
) (*api.ExpenseResponse, error) {
	var expense api.ExpenseResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf(routeExpense, id), params, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (c HTTPClient) DeleteExpense(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(routeExpense, id), nil, nil)
}

// do выполняет запрос и декодирует JSON ответ в dst (если dst != nil). На статус вне диапазона 2xx
// возвращает StatusCodeError с текстом ошибки сервера.
//
//nolint:nonamedreturns
func (c HTTPClient) do(ctx context.Context, method, path string, payload, dst any) (err error) {
	var body io.Reader
	if payload != nil {
		raw, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return fmt.Errorf("marshal request: %w", marshalErr)
		}
		body = bytes.NewReader(raw)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if reqErr != nil {
		return fmt.Errorf("create request: %w", reqErr)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fmt.Errorf("do request: %w", doErr)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("read response: %w", readErr)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp struct {
			Error string `json:"error"`
		}
		// тело может быть не JSON, тогда остается только код.
		_ = json.Unmarshal(respBody, &errResp)
		return NewStatusCodeError(resp.StatusCode, errResp.Error)
	}

	if dst == nil {
		return nil
	}
	if jsonErr := json.Unmarshal(respBody, dst); jsonErr != nil {
		return fmt.Errorf("parse response: %w", jsonErr)
	}
	return nil
}

func withPage(path string, skip, limit uint) string {
	query := url.Values{}
	if skip > 0 {
		query.Set("skip", strconv.FormatUint(uint64(skip), 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.FormatUint(uint64(limit), 10))
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
