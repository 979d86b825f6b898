// Package pinata implements ports.ContentStore on top of the Pinata pinning
// API and an IPFS gateway.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vncsmyrnk/personhood/internal/adapters/store/contentid"
	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

const (
	DefaultAPIURL     = "https://api.pinata.cloud"
	DefaultGatewayURL = "https://gateway.pinata.cloud"

	pageLimit       = 1000
	maxObjectSize   = 1 << 20
	maxErrorExcerpt = 512
)

type Config struct {
	APIURL       string
	GatewayURL   string
	JWT          string
	GatewayToken string
	Timeout      time.Duration
	// FetchRetries is how many times a gateway fetch is retried while the
	// object has not propagated yet. Zero disables retries.
	FetchRetries uint64
}

type Client struct {
	apiURL       string
	gatewayURL   string
	jwt          string
	gatewayToken string
	fetchRetries uint64
	http         *http.Client
	logger       *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = DefaultGatewayURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		gatewayURL:   strings.TrimRight(cfg.GatewayURL, "/"),
		jwt:          cfg.JWT,
		gatewayToken: cfg.GatewayToken,
		fetchRetries: cfg.FetchRetries,
		http:         &http.Client{Timeout: cfg.Timeout},
		logger:       logger.With("module", "store/pinata"),
	}
}

type pinRequest struct {
	PinataContent  any            `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
	PinataOptions  pinataOptions  `json:"pinataOptions"`
}

type pinataMetadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues"`
}

type pinataOptions struct {
	CIDVersion int `json:"cidVersion"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinListResponse struct {
	Count int      `json:"count"`
	Rows  []pinRow `json:"rows"`
}

type pinRow struct {
	ID          string    `json:"id"`
	IPFSPinHash string    `json:"ipfs_pin_hash"`
	DatePinned  time.Time `json:"date_pinned"`
}

type keyValueFilter struct {
	Value string `json:"value"`
	Op    string `json:"op"`
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, fmt.Sprintf(format, args...))
}

func (c *Client) Publish(ctx context.Context, name string, content any, tags ports.Tags) (string, error) {
	body, err := json.Marshal(pinRequest{
		PinataContent:  content,
		PinataMetadata: pinataMetadata{Name: name, KeyValues: tags},
		PinataOptions:  pinataOptions{CIDVersion: 1},
	})
	if err != nil {
		return "", fmt.Errorf("encode pin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var out pinResponse
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	if err := contentid.Validate(out.IpfsHash); err != nil {
		return "", unavailable("pin response: %v", err)
	}

	c.logger.Debug("object pinned", "event", "pinata_pinned", "name", name, "content_id", out.IpfsHash, "size", out.PinSize)
	return out.IpfsHash, nil
}

// Query pages through pinList until every pin matching tags is collected.
// Pinata returns pins most recently pinned first.
func (c *Client) Query(ctx context.Context, tags ports.Tags) ([]ports.PinRef, error) {
	filter := make(map[string]keyValueFilter, len(tags))
	for k, v := range tags {
		filter[k] = keyValueFilter{Value: v, Op: "eq"}
	}
	encoded, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode metadata filter: %w", err)
	}

	var refs []ports.PinRef
	for offset := 0; ; offset += pageLimit {
		q := url.Values{}
		q.Set("status", "pinned")
		q.Set("pageLimit", strconv.Itoa(pageLimit))
		q.Set("pageOffset", strconv.Itoa(offset))
		q.Set("metadata[keyvalues]", string(encoded))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/data/pinList?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build pinList request: %w", err)
		}
		c.authorize(req)

		var page pinListResponse
		if err := c.doJSON(req, &page); err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			refs = append(refs, ports.PinRef{ContentID: row.IPFSPinHash, PinnedAt: row.DatePinned})
		}
		if len(page.Rows) < pageLimit {
			return refs, nil
		}
	}
}

// Fetch reads an object through the gateway, retrying with exponential
// backoff while the gateway has not seen it yet.
func (c *Client) Fetch(ctx context.Context, contentID string) (json.RawMessage, error) {
	if err := contentid.Validate(contentID); err != nil {
		return nil, unavailable("%v", err)
	}

	var raw json.RawMessage
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayURL+"/ipfs/"+contentID, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.gatewayToken != "" {
			req.Header.Set("x-pinata-gateway-token", c.gatewayToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return unavailable("fetch %s: %v", contentID, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := unavailable("fetch %s: gateway returned status %d", contentID, resp.StatusCode)
			if retryableStatus(resp.StatusCode) {
				return err
			}
			return backoff.Permanent(err)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectSize+1))
		if err != nil {
			return unavailable("read %s: %v", contentID, err)
		}
		if len(data) > maxObjectSize {
			return backoff.Permanent(unavailable("object %s exceeds %d bytes", contentID, maxObjectSize))
		}
		raw = data
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.fetchRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("gateway fetch retry", "event", "pinata_fetch_retry", "content_id", contentID, "wait", wait, "error", err.Error())
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil, err
	}
	return raw, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusNotFound || code == http.StatusTooManyRequests || code >= 500
}

func (c *Client) authorize(req *http.Request) {
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		return unavailable("%s %s returned status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return unavailable("decode %s response: %v", req.URL.Path, err)
	}
	return nil
}
