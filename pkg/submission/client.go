// Package submission delivers finished EMR graphs to the external clinical
// records system. The pipeline treats delivery as fire-and-report: a failed
// submission is logged and surfaced in the run history but never fails the
// batch.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
)

const recordsPath = "/ws/rest/v1/emr/records"

type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RetryCount   int
}

type Client struct {
	http *resty.Client
}

// NewClient builds a client for the configured clinical records endpoint.
// When client credentials are configured, requests carry OAuth2 bearer
// tokens; otherwise the endpoint is called unauthenticated (sandbox
// deployments).
func NewClient(cfg Config) *Client {
	var rc *resty.Client
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		rc = resty.NewWithClient(cc.Client(context.Background()))
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(cfg.BaseURL)
	rc.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryCount > 0 {
		rc.SetRetryCount(cfg.RetryCount)
	}

	return &Client{http: rc}
}

// Submit posts the EMR graph. The caller owns retry-on-next-batch policy;
// transport-level retries are handled by the client itself.
func (c *Client) Submit(ctx context.Context, graph *models.EMRRecord) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graph).
		Post(recordsPath)
	if err != nil {
		return fmt.Errorf("submitting EMR graph: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("clinical records system returned %s", resp.Status())
	}

	logger.Log.WithFields(map[string]interface{}{
		"patients":   len(graph.Patients),
		"conditions": len(graph.Conditions),
		"status":     resp.StatusCode(),
	}).Info("EMR graph submitted")

	return nil
}
