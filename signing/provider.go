// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrProviderStatus = errors.New("signing provider returned an error status")
	ErrEmptyURL       = errors.New("signing provider returned no url")
)

type Provider interface {
	RequestSignature(ctx context.Context, message string) (string, error)
}

type signRequest struct {
	Message string `json:"message"`
}

type signResponse struct {
	URL string `json:"url"`
}

type HTTPProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPProvider returns a provider rooted at baseURL. A nil client gets
// a default one with a 15 second timeout.
func NewHTTPProvider(baseURL, token string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (p *HTTPProvider) RequestSignature(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(signRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sign", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %d %s", ErrProviderStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out signResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode sign response: %w", err)
	}
	if out.URL == "" {
		return "", ErrEmptyURL
	}
	return out.URL, nil
}

// StaticProvider builds deep links without a network round trip.
type StaticProvider struct {
	// Base defaults to "mudamos://sign"
	Base string
}

func (p StaticProvider) RequestSignature(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := p.Base
	if base == "" {
		base = "mudamos://sign"
	}
	return base + "?message=" + url.QueryEscape(message), nil
}
