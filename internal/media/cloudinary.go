package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medforo/medforo/pkg/config"
	"github.com/medforo/medforo/pkg/logging"
	"github.com/medforo/medforo/pkg/telemetry"
)

// publicIDPattern captures the public id from a delivery URL: the path
// after /upload/, minus an optional version segment and the extension.
var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+?)(?:\.[^./]+)?$`)

// Client wraps the Cloudinary admin endpoint for image removal. It
// never uploads; clients upload directly and the backend only destroys
// orphaned assets.
type Client struct {
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
	http      *http.Client
	logger    *zap.Logger
}

// New creates a new media client
func New(cfg *config.MediaConfig) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, fmt.Errorf("media_cloud_name is required")
	}

	logger := logging.GetLogger().With(zap.String("component", "media-client"))

	client := &Client{
		baseURL:   strings.TrimRight(cfg.APIBase, "/"),
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}

	logger.Info("Media client initialized", zap.String("cloud_name", cfg.CloudName))

	return client, nil
}

// ExtractPublicID pulls the asset's public id out of a delivery URL.
// Returns "" for URLs that are not Cloudinary delivery URLs.
func ExtractPublicID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(parsed.Host, "cloudinary.com") {
		return ""
	}
	match := publicIDPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return ""
	}
	return match[1]
}

// Delete destroys the asset behind a delivery URL. An asset that is
// already gone counts as success; removal is best-effort and callers
// only log failures.
func (c *Client) Delete(ctx context.Context, rawURL string) error {
	ctx, span := telemetry.StartSpan(ctx, "media.delete")
	defer span.End()

	publicID := ExtractPublicID(rawURL)
	if publicID == "" {
		return fmt.Errorf("not a recognizable delivery URL: %s", rawURL)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(publicID, timestamp)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("invalidate", "true")
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy returned status %d", resp.StatusCode)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode destroy response: %w", err)
	}

	switch body.Result {
	case "ok", "not found":
		c.logger.Debug("Asset destroyed",
			zap.String("public_id", publicID),
			zap.String("result", body.Result))
		return nil
	}
	return fmt.Errorf("destroy rejected: %s", body.Result)
}

// sign computes the request signature over the alphabetically ordered
// signed parameters, as the admin API requires
func (c *Client) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("invalidate=true&public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
