package controllers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"server/src/clients/snaptrade"
	"server/src/repositories"
	"server/src/schemas"
)

// brokerIDMapping maps display broker ids to the aggregator's identifiers.
// A mapped empty string means the broker parameter must be omitted entirely,
// a vendor quirk for certain institutions.
var brokerIDMapping = map[string]string{
	"alpaca":              "ALPACA",
	"fidelity":            "FIDELITY",
	"ibkr":                "",
	"interactive_brokers": "",
	"questrade":           "QUESTRADE",
	"robinhood":           "ROBINHOOD",
	"tradier":             "TRADIER",
	"tradestation":        "TRADESTATION",
	"vanguard":            "VANGUARD",
	"schwab":              "SCHWAB",
}

type ConnectionsControllerI interface {
	CreateConnectionLink(ctx context.Context, req *schemas.ConnectRequest) *schemas.ConnectionLink
	ResolveCallback(ctx context.Context, req *schemas.CallbackRequest) string
	DeleteConnection(ctx context.Context, userID string) error
	Status(ctx context.Context, userID, email string) (*schemas.ConnectionStatus, error)
}

type ConnectionsController struct {
	Aggregator   snaptrade.Client
	Connections  repositories.BrokerConnectionRepository
	Registration RegistrationControllerI
	// DefaultRedirectPath is where the callback lands users when no redirect
	// target was requested.
	DefaultRedirectPath string
}

func NewConnectionsController(aggregator snaptrade.Client, connections repositories.BrokerConnectionRepository,
	registration RegistrationControllerI, defaultRedirectPath string) *ConnectionsController {
	if defaultRedirectPath == "" {
		defaultRedirectPath = "/dashboard/assets"
	}
	return &ConnectionsController{
		Aggregator:          aggregator,
		Connections:         connections,
		Registration:        registration,
		DefaultRedirectPath: defaultRedirectPath,
	}
}

// resolveBrokerParam translates a display broker id into the value sent to
// the aggregator, or "" when the parameter must be omitted.
func resolveBrokerParam(brokerID string) string {
	if brokerID == "" {
		return "ALPACA"
	}
	key := strings.ToLower(strings.TrimSpace(brokerID))
	if mapped, ok := brokerIDMapping[key]; ok {
		return mapped
	}
	return strings.ToUpper(key)
}

// CreateConnectionLink ensures registration and requests a broker portal
// URL. It never fails without a usable redirect target: on any error the
// fallback URL is returned with the error message surfaced for display.
func (c *ConnectionsController) CreateConnectionLink(ctx context.Context, req *schemas.ConnectRequest) *schemas.ConnectionLink {
	logger := loggerFor(ctx)

	fallback := req.RedirectURI
	if fallback == "" {
		fallback = snaptrade.DefaultPortalURL
	}

	conn, err := c.Registration.EnsureRegistered(ctx, req.UserID)
	if err != nil || conn == nil || conn.APISecretEncrypted == "" {
		logger.WithField("user_id", req.UserID).WithError(err).
			Error("could not obtain aggregator identity for connection link")
		return &schemas.ConnectionLink{RedirectURI: fallback, Error: "Failed to create connection"}
	}

	login, err := c.Aggregator.LoginUser(ctx, &snaptrade.LoginRequest{
		UserID:         req.UserID,
		UserSecret:     conn.APISecretEncrypted,
		Broker:         resolveBrokerParam(req.BrokerID),
		CustomRedirect: req.RedirectURI,
	})
	if err != nil {
		logger.WithField("user_id", req.UserID).WithError(err).
			Error("aggregator login failed")
		return &schemas.ConnectionLink{RedirectURI: fallback, Error: err.Error()}
	}
	if login.RedirectURI == "" {
		return &schemas.ConnectionLink{RedirectURI: fallback, Error: "aggregator returned no redirect URI"}
	}
	return &schemas.ConnectionLink{RedirectURI: login.RedirectURI}
}

// ResolveCallback runs the post-authorization state machine and returns the
// Location the browser is sent to. Absolute same-origin targets collapse to
// a relative path; cross-origin absolute targets pass through unchanged.
func (c *ConnectionsController) ResolveCallback(ctx context.Context, req *schemas.CallbackRequest) string {
	logger := loggerFor(ctx)

	redirectPath := req.Redirect
	if redirectPath == "" {
		redirectPath = c.DefaultRedirectPath
	}
	if strings.HasPrefix(redirectPath, "http") {
		target, err := url.Parse(redirectPath)
		if err != nil {
			redirectPath = c.DefaultRedirectPath
		} else if req.Origin != "" && target.Scheme+"://"+target.Host == req.Origin {
			redirectPath = target.Path
			if target.RawQuery != "" {
				redirectPath += "?" + target.RawQuery
			}
			if target.Fragment != "" {
				redirectPath += "#" + target.Fragment
			}
		}
	}

	if req.UserID == "" {
		fallback := req.Redirect
		if fallback == "" {
			fallback = c.DefaultRedirectPath
		}
		return appendQuery(fallback, "error=missing_user_id")
	}

	brokerage := req.Brokerage
	if brokerage == "" {
		brokerage = "unknown"
	}

	if req.Success != "true" {
		return appendQuery(redirectPath,
			"error=connection_failed&broker="+url.QueryEscape(brokerage))
	}

	if req.SessionUserID == "" || req.SessionUserID != req.UserID {
		logger.WithFields(map[string]interface{}{
			"session_user":  req.SessionUserID,
			"callback_user": req.UserID,
		}).Error("callback user mismatch")
		return appendQuery(redirectPath, "error=true&message="+url.QueryEscape("User mismatch"))
	}

	authorizationID := req.AuthorizationID
	if authorizationID == "" {
		authorizationID = "unknown"
	}
	err := c.Connections.MergeBrokerData(ctx, req.UserID, snaptrade.BrokerID, map[string]interface{}{
		"authorization_id": authorizationID,
		"brokerage":        brokerage,
		"connected_at":     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.WithField("user_id", req.UserID).WithError(err).
			Error("could not persist callback authorization")
		return appendQuery(redirectPath, "error=true&message="+url.QueryEscape(err.Error()))
	}

	return appendQuery(redirectPath, "success=true&broker="+url.QueryEscape(brokerage))
}

func appendQuery(path, query string) string {
	if strings.Contains(path, "?") {
		return path + "&" + query
	}
	return path + "?" + query
}

// DeleteConnection removes the brokerage authorization best-effort and
// soft-deletes the local connection. Aggregator failures are logged and
// ignored; local state is authoritative.
func (c *ConnectionsController) DeleteConnection(ctx context.Context, userID string) error {
	logger := loggerFor(ctx)

	conn, err := c.Connections.GetByUserAndBroker(ctx, userID, snaptrade.BrokerID)
	if err != nil {
		return err
	}
	if conn == nil {
		return nil
	}

	if authID := conn.AuthorizationID(); authID != "" && conn.APISecretEncrypted != "" {
		if err := c.Aggregator.RemoveConnection(ctx, userID, conn.APISecretEncrypted, authID); err != nil {
			logger.WithField("user_id", userID).WithError(err).
				Warn("aggregator connection removal with secret failed, retrying without")
			if err := c.Aggregator.RemoveConnection(ctx, userID, "", authID); err != nil {
				logger.WithField("user_id", userID).WithError(err).
					Warn("aggregator connection removal without secret failed")
			}
		}
	}

	return c.Connections.Deactivate(ctx, userID, snaptrade.BrokerID, map[string]interface{}{
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status reports session identity plus broker-connection counts for the
// dashboard's connection widget.
func (c *ConnectionsController) Status(ctx context.Context, userID, email string) (*schemas.ConnectionStatus, error) {
	if userID == "" {
		return &schemas.ConnectionStatus{Authenticated: false}, nil
	}
	count, err := c.Connections.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &schemas.ConnectionStatus{
		Authenticated:    true,
		UserID:           userID,
		Email:            email,
		HasConnections:   count > 0,
		ConnectionsCount: count,
	}, nil
}
