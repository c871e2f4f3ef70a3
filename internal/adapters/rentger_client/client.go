package rentger_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/go-resty/resty/v2"
)

// Config - параметры доступа к API Rentger
type Config struct {
	BaseURL    string
	APIToken   string
	Timeout    time.Duration
	RetryCount int
}

// Client - адаптер внешней системы учета объектов и договоров
type Client struct {
	http *resty.Client
}

var _ port.RemoteSystemPort = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rentger client: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(retryIdempotent)

	if cfg.APIToken != "" {
		httpClient.SetAuthToken(cfg.APIToken)
	}

	return &Client{http: httpClient}, nil
}

// retryIdempotent повторяет только GET при сетевой ошибке, 429 или 5xx
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.SetHeader("X-Trace-ID", traceID)
	}
	return req
}

// do выполняет запрос и превращает любой сбой в ErrRemoteUnavailable
func (c *Client) do(ctx context.Context, clientLogger port.LoggerPort, method, path string, body interface{}) ([]byte, error) {
	req := c.request(ctx)
	if body != nil {
		req.SetBody(body)
	}

	clientLogger.Debug("Sending request to Rentger", port.Fields{"http_method": method, "path": path})

	resp, err := req.Execute(method, path)
	if err != nil {
		clientLogger.Error("Failed to perform request to Rentger", err, nil)
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteUnavailable, method, path, err)
	}
	if resp.IsError() {
		err := fmt.Errorf("%w: %s %s returned status %d: %s", domain.ErrRemoteUnavailable, method, path, resp.StatusCode(), truncate(resp.String(), 256))
		clientLogger.Error("Received error response from Rentger", err, port.Fields{"status_code": resp.StatusCode()})
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RentgerClient",
		"method":    "ListAssets",
	})

	body, err := c.do(ctx, clientLogger, http.MethodGet, "/assets", nil)
	if err != nil {
		return nil, err
	}

	items, err := unwrapList(body)
	if err != nil {
		clientLogger.Error("Failed to decode assets response", err, nil)
		return nil, fmt.Errorf("%w: decode assets: %v", domain.ErrRemoteUnavailable, err)
	}

	assets := make([]domain.Asset, 0, len(items))
	for _, raw := range items {
		var dto assetDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			clientLogger.Warn("Skipping malformed asset", port.Fields{"error": err.Error()})
			continue
		}
		assets = append(assets, domain.Asset{ID: string(dto.ID), Address: dto.Address, Alias: dto.Alias})
	}

	clientLogger.Info("Assets received", port.Fields{"assets_count": len(assets)})
	return assets, nil
}

func (c *Client) ListActiveContracts(ctx context.Context) ([]domain.RemoteContract, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RentgerClient",
		"method":    "ListActiveContracts",
	})

	body, err := c.do(ctx, clientLogger, http.MethodGet, "/contracts?status=active", nil)
	if err != nil {
		return nil, err
	}

	items, err := unwrapList(body)
	if err != nil {
		clientLogger.Error("Failed to decode contracts response", err, nil)
		return nil, fmt.Errorf("%w: decode contracts: %v", domain.ErrRemoteUnavailable, err)
	}

	contracts := make([]domain.RemoteContract, 0, len(items))
	for _, raw := range items {
		var dto contractDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			clientLogger.Warn("Skipping malformed contract", port.Fields{"error": err.Error()})
			continue
		}
		contracts = append(contracts, dto.toDomain())
	}

	clientLogger.Info("Active contracts received", port.Fields{"contracts_count": len(contracts)})
	return contracts, nil
}

func (c *Client) CreateTenant(ctx context.Context, tenant domain.NewTenant) (string, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RentgerClient",
		"method":    "CreateTenant",
	})

	body, err := c.do(ctx, clientLogger, http.MethodPost, "/tenants", createTenantRequest{
		Name:  tenant.Name,
		Email: tenant.Email,
		Phone: tenant.Phone,
	})
	if err != nil {
		return "", err
	}
	return decodeCreatedID(clientLogger, body, "tenant")
}

func (c *Client) CreateContract(ctx context.Context, contract domain.NewRemoteContract) (string, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RentgerClient",
		"method":    "CreateContract",
		"asset_id":  contract.AssetID,
	})

	body, err := c.do(ctx, clientLogger, http.MethodPost, "/contracts", newCreateContractRequest(contract))
	if err != nil {
		return "", err
	}
	return decodeCreatedID(clientLogger, body, "contract")
}

func decodeCreatedID(clientLogger port.LoggerPort, body []byte, entity string) (string, error) {
	var created createdDTO
	if err := json.Unmarshal(unwrapObject(body), &created); err != nil || created.ID == "" {
		if err == nil {
			err = fmt.Errorf("response carries no id")
		}
		clientLogger.Error("Failed to decode created "+entity, err, nil)
		return "", fmt.Errorf("%w: decode created %s: %v", domain.ErrRemoteUnavailable, entity, err)
	}
	clientLogger.Info("Remote "+entity+" created", port.Fields{"remote_id": string(created.ID)})
	return string(created.ID), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
