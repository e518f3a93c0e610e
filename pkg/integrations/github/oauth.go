package github

import (
	"context"
	"net/url"
	"time"

	"github.com/matzehuels/repoexplorer/pkg/buildinfo"
	"github.com/matzehuels/repoexplorer/pkg/errors"
	"github.com/matzehuels/repoexplorer/pkg/integrations"
)

// DefaultClientID is the public OAuth App Client ID used for device login.
// The Device Flow doesn't require a secret, only the Client ID.
//
// To use your own OAuth App, set GITHUB_CLIENT_ID env var.
const DefaultClientID = "Ov23liyPM58WU6hMeP7E"

// DefaultScope is enough to read public repositories through GraphQL.
const DefaultScope = "read:user"

const (
	defaultOAuthURL = "https://github.com"
	minPollInterval = 5 * time.Second // GitHub minimum interval
	slowDownStep    = 5 * time.Second
)

// OAuthClient runs the GitHub device authorization flow.
type OAuthClient struct {
	config      OAuthConfig
	http        *integrations.Client
	baseURL     string
	minInterval time.Duration
}

// NewOAuthClient creates a new OAuth client.
func NewOAuthClient(config OAuthConfig) *OAuthClient {
	if config.ClientID == "" {
		config.ClientID = DefaultClientID
	}
	if config.Scope == "" {
		config.Scope = DefaultScope
	}
	return &OAuthClient{
		config: config,
		http: integrations.NewClient(map[string]string{
			"Accept":     "application/json",
			"User-Agent": buildinfo.UserAgent(),
		}, 30*time.Second),
		baseURL:     defaultOAuthURL,
		minInterval: minPollInterval,
	}
}

// DeviceCodeResponse contains the response from requesting a device code.
type DeviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// RequestDeviceCode initiates the device authorization flow.
// The user must visit the VerificationURI and enter the UserCode.
func (c *OAuthClient) RequestDeviceCode(ctx context.Context) (*DeviceCodeResponse, error) {
	form := url.Values{
		"client_id": {c.config.ClientID},
		"scope":     {c.config.Scope},
	}

	var result DeviceCodeResponse
	if err := c.http.PostForm(ctx, c.baseURL+"/login/device/code", form.Encode(), &result); err != nil {
		return nil, err
	}
	if result.DeviceCode == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "no device code returned")
	}
	return &result, nil
}

// PollForToken polls GitHub for the access token after user authorization.
// It respects the interval from the device code response.
// Returns the token when authorized, or an error if expired/denied.
func (c *OAuthClient) PollForToken(ctx context.Context, deviceCode string, interval int) (*OAuthToken, error) {
	wait := time.Duration(interval) * time.Second
	if wait < c.minInterval {
		wait = c.minInterval
	}

	ticker := time.NewTicker(wait)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			token, status, err := c.checkDeviceToken(ctx, deviceCode)
			switch {
			case err != nil:
				return nil, err
			case status == "authorization_pending":
				continue
			case status == "slow_down":
				wait += slowDownStep
				ticker.Reset(wait)
				continue
			}
			return token, nil
		}
	}
}

// checkDeviceToken attempts to exchange the device code for a token.
// Pending states are reported through status, not err.
func (c *OAuthClient) checkDeviceToken(ctx context.Context, deviceCode string) (*OAuthToken, string, error) {
	form := url.Values{
		"client_id":   {c.config.ClientID},
		"device_code": {deviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}

	var result struct {
		OAuthToken
		Error     string `json:"error"`
		ErrorDesc string `json:"error_description"`
	}
	if err := c.http.PostForm(ctx, c.baseURL+"/login/oauth/access_token", form.Encode(), &result); err != nil {
		return nil, "", err
	}

	switch result.Error {
	case "":
		token := result.OAuthToken
		return &token, "", nil
	case "authorization_pending", "slow_down":
		return nil, result.Error, nil
	case "expired_token":
		return nil, "", errors.New(errors.ErrCodeSessionExpired, "device code expired, run login again")
	case "access_denied":
		return nil, "", errors.New(errors.ErrCodeUnauthorized, "authorization denied")
	default:
		return nil, "", errors.New(errors.ErrCodeUnauthorized, "%s: %s", result.Error, result.ErrorDesc)
	}
}
