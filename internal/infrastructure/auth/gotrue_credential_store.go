package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
)

// GoTrueCredentialStore delegates password checks and recovery mail to the
// hosted auth provider's REST API.
type GoTrueCredentialStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewGoTrueCredentialStore creates a store for the provider at baseURL
func NewGoTrueCredentialStore(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *GoTrueCredentialStore {
	return &GoTrueCredentialStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type gotrueTokenResponse struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// Authenticate implements domain.CredentialStore
func (s *GoTrueCredentialStore) Authenticate(ctx context.Context, email, password string) (string, error) {
	resp, err := s.post(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		s.logger.Error("auth provider unreachable", zap.Error(err))
		return "", domain.ErrInvalidCredentials
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError {
			s.logger.Error("auth provider error", zap.Int("status", resp.StatusCode))
		}
		io.Copy(io.Discard, resp.Body)
		return "", domain.ErrInvalidCredentials
	}

	var body gotrueTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.User.ID == "" {
		s.logger.Error("unexpected auth provider response", zap.Error(err))
		return "", domain.ErrInvalidCredentials
	}
	return body.User.ID, nil
}

// RequestPasswordReset implements domain.CredentialStore. The provider sends
// the recovery mail itself and answers 200 for unknown addresses too.
func (s *GoTrueCredentialStore) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := s.post(ctx, "/auth/v1/recover", map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("%w: recover: %w", domain.ErrExternalStoreUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: recover returned %d", domain.ErrExternalStoreUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Warn("auth provider rejected recovery request", zap.Int("status", resp.StatusCode))
	}
	return nil
}

func (s *GoTrueCredentialStore) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	return s.client.Do(req)
}
