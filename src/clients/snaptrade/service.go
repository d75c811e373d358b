package snaptrade

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"server/src/utils"
)

// apiClient talks to the aggregator's REST API. Every request carries the
// clientId and a timestamp in the query string and an HMAC-SHA256 signature
// of {content, path, query} keyed with the consumer key.
type apiClient struct {
	baseURL     string
	clientID    string
	consumerKey string
	httpClient  *http.Client
}

func NewAPIClient(baseURL, clientID, consumerKey string) Client {
	if baseURL == "" {
		baseURL = "https://api.snaptrade.com/api/v1"
	}
	return &apiClient{
		baseURL:     baseURL,
		clientID:    clientID,
		consumerKey: consumerKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) sign(path, query string, body []byte) string {
	var content interface{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &content)
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"content": content,
		"path":    path,
		"query":   query,
	})
	mac := hmac.New(sha256.New, []byte(c.consumerKey))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *apiClient) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("clientId", c.clientID)
	params.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))

	// The signature is computed over the sorted query string, so encode once
	// and reuse the exact bytes.
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	query := params.Encode()

	var jsonBody []byte
	var err error
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Signature", c.sign(path, query, jsonBody))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return utils.NewHTTPError(resp.StatusCode, fmt.Sprintf("snaptrade %s %s: %s", method, path, string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) userParams(userID, userSecret string) url.Values {
	params := url.Values{}
	params.Set("userId", userID)
	if userSecret != "" {
		params.Set("userSecret", userSecret)
	}
	return params
}

func (c *apiClient) RegisterUser(ctx context.Context, userID string) (*RegisterUserResponse, error) {
	var out RegisterUserResponse
	err := c.do(ctx, "POST", "/snapTrade/registerUser", nil,
		map[string]string{"userId": userID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) DeleteUser(ctx context.Context, userID, userSecret string) error {
	return c.do(ctx, "DELETE", "/snapTrade/deleteUser", c.userParams(userID, userSecret), nil, nil)
}

func (c *apiClient) LoginUser(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	body := map[string]string{}
	if req.Broker != "" {
		body["broker"] = req.Broker
	}
	if req.CustomRedirect != "" {
		body["customRedirect"] = req.CustomRedirect
	}
	var out LoginResponse
	err := c.do(ctx, "POST", "/snapTrade/login", c.userParams(req.UserID, req.UserSecret), body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) RemoveConnection(ctx context.Context, userID, userSecret, authorizationID string) error {
	return c.do(ctx, "DELETE", "/authorizations/"+authorizationID,
		c.userParams(userID, userSecret), nil, nil)
}

func (c *apiClient) RefreshAuthorization(ctx context.Context, userID, userSecret, authorizationID string) error {
	return c.do(ctx, "POST", "/authorizations/"+authorizationID+"/refresh",
		c.userParams(userID, userSecret), nil, nil)
}

func (c *apiClient) ListAccounts(ctx context.Context, userID, userSecret string) ([]Account, error) {
	var out []Account
	err := c.do(ctx, "GET", "/accounts", c.userParams(userID, userSecret), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) GetPositions(ctx context.Context, userID, userSecret, accountID string) ([]Position, error) {
	var out []Position
	err := c.do(ctx, "GET", "/accounts/"+accountID+"/positions",
		c.userParams(userID, userSecret), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) GetBalances(ctx context.Context, userID, userSecret, accountID string) ([]Balance, error) {
	var out []Balance
	err := c.do(ctx, "GET", "/accounts/"+accountID+"/balances",
		c.userParams(userID, userSecret), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) GetActivities(ctx context.Context, userID, userSecret, accountID, startDate, endDate string) ([]Activity, error) {
	params := c.userParams(userID, userSecret)
	params.Set("accounts", accountID)
	if startDate != "" {
		params.Set("startDate", startDate)
	}
	if endDate != "" {
		params.Set("endDate", endDate)
	}
	var out []Activity
	err := c.do(ctx, "GET", "/activities", params, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
