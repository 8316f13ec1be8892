package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/creativa-studio/lead-service/internal/config"
)

// ErrVerificationFailed indicates the provider rejected the token.
var ErrVerificationFailed = errors.New("human verification failed")

// ErrMissingToken indicates the client omitted the verification token.
var ErrMissingToken = errors.New("verification token missing")

// Verifier checks a verification token against an external provider.
// Any failure, including provider unreachability, counts as a rejection.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// siteVerifyResponse mirrors the provider's verification payload.
type siteVerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// RecaptchaVerifier calls the reCAPTCHA siteverify endpoint.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *zap.Logger
}

// NewRecaptchaVerifier builds a verifier from configuration.
func NewRecaptchaVerifier(cfg config.CaptchaConfig, logger *zap.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: cfg.Timeout()},
		logger:    logger,
	}
}

// Verify posts the token to the provider and maps every failure mode to a rejection.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		// an unreachable provider rejects the submission rather than waving it through
		v.logger.Warn("verification provider unreachable", zap.Error(err))
		return ErrVerificationFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("verification provider error", zap.Int("status", resp.StatusCode))
		return ErrVerificationFailed
	}

	var result siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Warn("verification response malformed", zap.Error(err))
		return ErrVerificationFailed
	}

	if !result.Success {
		v.logger.Info("verification rejected", zap.Strings("error_codes", result.ErrorCodes))
		return ErrVerificationFailed
	}
	return nil
}
