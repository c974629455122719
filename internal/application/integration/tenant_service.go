package integration

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var baseURLPattern = regexp.MustCompile(`^https?://.+$`)

// TokenIssuer issues dashboard tokens scoped to a tenant.
type TokenIssuer interface {
	IssueTenantToken(tenantID string) (token string, expiresAt time.Time, err error)
}

// TenantServiceConfig holds the TenantService collaborators.
type TenantServiceConfig struct {
	Tenants    integration.TenantRepository
	Authorizer integration.SourceAuthorizer
	// Tokens is optional; without it the callback redirect carries no token.
	Tokens TokenIssuer
	// CallbackSecret enables HMAC verification of the callback when set.
	CallbackSecret string
	Logger         *zap.Logger
	Now            func() time.Time
}

// TenantService onboards tenants and manages their TARGET configuration.
type TenantService struct {
	tenants        integration.TenantRepository
	authorizer     integration.SourceAuthorizer
	tokens         TokenIssuer
	callbackSecret string
	validate       *validator.Validate
	logger         *zap.Logger
	now            func() time.Time
}

// NewTenantService creates a TenantService.
func NewTenantService(cfg TenantServiceConfig) *TenantService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("base_url", func(fl validator.FieldLevel) bool {
		return baseURLPattern.MatchString(fl.Field().String())
	})

	s := &TenantService{
		tenants:        cfg.Tenants,
		authorizer:     cfg.Authorizer,
		tokens:         cfg.Tokens,
		callbackSecret: cfg.CallbackSecret,
		validate:       v,
		logger:         cfg.Logger,
		now:            cfg.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// ConfigureTargetInput is the TARGET configuration form.
type ConfigureTargetInput struct {
	BaseURL        string `validate:"required,base_url"`
	ConsumerKey    string `validate:"required"`
	ConsumerSecret string `validate:"required"`
	APIVersion     string
}

// GetTenant returns a tenant by id.
func (s *TenantService) GetTenant(ctx context.Context, tenantID string) (*integration.Tenant, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, integration.ErrTenantInvalidID
	}
	return s.tenants.Get(ctx, tenantID)
}

// ListTenants returns every registered tenant.
func (s *TenantService) ListTenants(ctx context.Context) ([]*integration.Tenant, error) {
	return s.tenants.ListAll(ctx)
}

// ConfigureTarget replaces the tenant's TARGET configuration as a whole.
func (s *TenantService) ConfigureTarget(ctx context.Context, tenantID string, in ConfigureTargetInput) (*integration.Tenant, error) {
	in.BaseURL = strings.TrimSpace(in.BaseURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrTenantInvalidConfig, err)
	}

	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tenant.ReplaceTarget(integration.TargetCredentials{
		BaseURL:        in.BaseURL,
		ConsumerKey:    strings.TrimSpace(in.ConsumerKey),
		ConsumerSecret: strings.TrimSpace(in.ConsumerSecret),
		APIVersion:     in.APIVersion,
	}, s.now())

	if err := s.tenants.Upsert(ctx, tenant); err != nil {
		return nil, err
	}
	s.logger.Info("tenant target configured",
		zap.String("tenant_id", tenant.ID),
		zap.String("base_url", tenant.Target.BaseURL),
		zap.String("api_version", tenant.Target.APIVersion))
	return tenant, nil
}

// ---------------------------------------------------------------------------
// Authorization callback
// ---------------------------------------------------------------------------

// CallbackInput carries the authorization callback query parameters.
type CallbackInput struct {
	CompanyID  string `validate:"required"`
	Code       string `validate:"required"`
	Timestamp  string `validate:"required"`
	HMAC       string `validate:"required"`
	RedirectTo string
}

// CallbackResult is the outcome of a completed onboarding.
type CallbackResult struct {
	Tenant      *integration.Tenant
	RedirectURL string
	Token       string
}

// HandleCallback exchanges the authorization code, records the company as
// a tenant and returns where the browser should go next. An existing
// TARGET configuration is kept.
func (s *TenantService) HandleCallback(ctx context.Context, in CallbackInput) (*CallbackResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, integration.ErrCallbackInvalidParams
	}
	if s.callbackSecret != "" && !VerifyCallbackHMAC(s.callbackSecret, in) {
		return nil, integration.ErrCallbackInvalidHMAC
	}

	accessToken, err := s.authorizer.ExchangeCode(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	profile, err := s.authorizer.FetchCompany(ctx, in.CompanyID, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}

	now := s.now()
	tenant, err := s.tenants.Get(ctx, in.CompanyID)
	switch {
	case errors.Is(err, integration.ErrTenantNotFound):
		tenant = &integration.Tenant{ID: in.CompanyID, CreatedAt: now}
	case err != nil:
		return nil, err
	}
	tenant.Handle = profile.Handle
	tenant.Name = profile.Name
	tenant.Description = profile.Description
	tenant.LogoURL = profile.LogoURL
	tenant.AuthorizationCode = in.Code
	tenant.AccessToken = accessToken
	tenant.UpdatedAt = now

	if err := s.tenants.Upsert(ctx, tenant); err != nil {
		return nil, err
	}

	result := &CallbackResult{Tenant: tenant}
	if s.tokens != nil {
		token, _, err := s.tokens.IssueTenantToken(tenant.ID)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		result.Token = token
	}
	result.RedirectURL = buildRedirect(in.RedirectTo, tenant.ID, result.Token)

	s.logger.Info("tenant authorized", zap.String("tenant_id", tenant.ID), zap.String("name", tenant.Name))
	return result, nil
}

// VerifyCallbackHMAC checks the hex HMAC-SHA256 of the sorted
// "key=value" pairs of every parameter except hmac and redirect_to.
func VerifyCallbackHMAC(secret string, in CallbackInput) bool {
	expected := CallbackSignature(secret, in)
	given, err := hex.DecodeString(strings.ToLower(in.HMAC))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, given)
}

// CallbackSignature computes the callback HMAC.
func CallbackSignature(secret string, in CallbackInput) []byte {
	params := map[string]string{
		"code":       in.Code,
		"company_id": in.CompanyID,
		"timestamp":  in.Timestamp,
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return mac.Sum(nil)
}

func buildRedirect(redirectTo, companyID, token string) string {
	target := strings.TrimSpace(redirectTo)
	if target == "" {
		target = "/"
	}
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("company_id", companyID)
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
