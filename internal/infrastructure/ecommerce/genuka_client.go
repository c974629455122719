package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/commercesync/backend/internal/domain/integration"
)

// GenukaClient is the SOURCE catalog of one tenant.
type GenukaClient struct {
	config      *GenukaConfig
	transport   *transport
	accessToken string
	companyID   string
	logger      *zap.Logger
}

var _ integration.SourceCatalog = (*GenukaClient)(nil)

// NewGenukaClient creates a catalog client authenticated as companyID.
func NewGenukaClient(config *GenukaConfig, companyID, accessToken string, logger *zap.Logger) (*GenukaClient, error) {
	cfg := *config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if companyID == "" {
		return nil, ErrGenukaConfigMissingCompanyID
	}
	if accessToken == "" {
		return nil, ErrGenukaConfigMissingAccessToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenukaClient{
		config:      &cfg,
		transport:   newTransport(cfg.HTTP, logger),
		accessToken: accessToken,
		companyID:   companyID,
		logger:      logger,
	}, nil
}

// genukaPage is the collection envelope.
type genukaPage struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

// FetchPage returns one page of products, customers or orders.
func (c *GenukaClient) FetchPage(ctx context.Context, module integration.SyncModule, page int) (*integration.SourcePage, error) {
	if !module.IsValid() {
		return nil, fmt.Errorf("%w: %q", integration.ErrUnknownModule, module)
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, http.MethodGet, c.config.adminURL(string(module))+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var env genukaPage
	if err := decodeBody(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s page %d: %v", integration.ErrSourceInvalidResponse, module, page, err)
	}
	if env.Meta.CurrentPage == 0 {
		env.Meta.CurrentPage = page
	}
	if env.Meta.LastPage == 0 {
		env.Meta.LastPage = env.Meta.CurrentPage
	}
	return &integration.SourcePage{
		Data:        env.Data,
		CurrentPage: env.Meta.CurrentPage,
		LastPage:    env.Meta.LastPage,
	}, nil
}

// GetProduct fetches a product with its variants, options and medias.
func (c *GenukaClient) GetProduct(ctx context.Context, productID string) (*integration.SourceProduct, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.config.adminURL("products/"+url.PathEscape(productID)), nil)
	if err != nil {
		return nil, err
	}

	// single resources come either bare or wrapped in data
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		body = wrapped.Data
	}

	var p integration.SourceProduct
	if err := decodeBody(body, &p); err != nil {
		return nil, fmt.Errorf("%w: product %s: %v", integration.ErrSourceInvalidResponse, productID, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: product %s without id", integration.ErrSourceInvalidResponse, productID)
	}
	return &p, nil
}

// WriteBack resends the original document with its metadata replaced, so
// every field the SOURCE returned is preserved.
func (c *GenukaClient) WriteBack(ctx context.Context, module integration.SyncModule, doc integration.SourceDocument, md integration.Metadata) error {
	if !module.IsValid() {
		return fmt.Errorf("%w: %q", integration.ErrUnknownModule, module)
	}
	payload, err := mergeMetadata(doc.RawDocument(), md)
	if err != nil {
		return fmt.Errorf("build write-back of %s %s: %w", module, doc.SourceID(), err)
	}

	path := string(module) + "/" + url.PathEscape(doc.SourceID())
	if _, err := c.doRequest(ctx, http.MethodPut, c.config.adminURL(path), payload); err != nil {
		return err
	}
	c.logger.Debug("source metadata written back",
		zap.String("module", module.String()),
		zap.String("subject_id", doc.SourceID()),
		zap.Int64("target_id", md.TargetIDValue()))
	return nil
}

// mergeMetadata replaces the metadata key of raw with md.
func mergeMetadata(raw json.RawMessage, md integration.Metadata) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	encoded, err := json.Marshal(md)
	if err != nil {
		return nil, err
	}
	fields["metadata"] = encoded
	return json.Marshal(fields)
}

func (c *GenukaClient) doRequest(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + c.accessToken,
		"X-Company":     c.companyID,
	}
	if payload != nil {
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.transport.do(ctx, apiRequest{method: method, url: rawURL, body: payload, headers: headers})
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", integration.ErrSourceRequestFailed, method, rawURL, err)
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, fmt.Errorf("%w: %s %s: HTTP %d: %s",
			integration.ErrSourceRequestFailed, method, rawURL, resp.status, errorSnippet(resp.body))
	}
	return resp.body, nil
}
