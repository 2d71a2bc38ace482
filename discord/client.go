// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/filament-archive/filament/lib/clock"
	"github.com/filament-archive/filament/lib/netutil"
	"github.com/filament-archive/filament/lib/version"
)

// DefaultBaseURL is the Discord REST API endpoint.
const DefaultBaseURL = "https://discord.com/api/v10"

// MaxPageSize is the largest page ListPage can request.
const MaxPageSize = 100

const (
	// defaultRequestsPerSecond stays under Discord's global limit of
	// 50 requests per second per bot.
	defaultRequestsPerSecond = 40
	defaultBurst             = 5

	// maxRetries caps how many times a request rate-limited with 429
	// is retried before the error is returned to the caller.
	maxRetries = 5
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Token is the bot token sent in the Authorization header. Required.
	Token string
	// BaseURL overrides the API endpoint. If empty, DefaultBaseURL is used.
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Clock drives rate-limit retry waits. If nil, clock.Real() is used.
	Clock clock.Clock
	// RequestsPerSecond caps outbound API requests. If zero or
	// negative, a default under Discord's global limit is used.
	RequestsPerSecond float64
}

// Client is an authenticated Discord REST client. It is safe for
// concurrent use; the rate limiter is shared across all requests.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.Clock
	limiter    *rate.Limiter
	userAgent  string
}

// NewClient creates a Discord client from config.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("discord: Token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// Validate the URL structure. The string form (trailing slash
	// stripped) is stored and request URLs are built by concatenation.
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("discord: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
		clock:      clk,
		limiter:    rate.NewLimiter(rate.Limit(rps), defaultBurst),
		userAgent:  fmt.Sprintf("DiscordBot (https://github.com/filament-archive/filament, %s)", version.Version),
	}, nil
}

// messagePayload is the JSON body for creates and edits.
type messagePayload struct {
	Content string `json:"content"`
}

// CreateRecord creates a record in channel carrying the given files
// and text content. The request is sent as multipart/form-data with a
// payload_json part followed by one part per file; the whole body is
// buffered in memory, so peak usage is one batch of extents.
func (c *Client) CreateRecord(ctx context.Context, channel ChannelID, files []FileUpload, content string) (Record, error) {
	body, contentType, err := encodeMultipart(messagePayload{Content: content}, files)
	if err != nil {
		return Record{}, fmt.Errorf("discord: encoding create request: %w", err)
	}

	responseBody, err := c.do(ctx, http.MethodPost, messagesPath(channel), nil, contentType, body)
	if err != nil {
		return Record{}, fmt.Errorf("discord: create record in channel %s: %w", channel, err)
	}
	return decodeRecord(responseBody)
}

// EditRecord replaces a record's text content, leaving attachments
// untouched.
func (c *Client) EditRecord(ctx context.Context, channel ChannelID, id RecordID, content string) (Record, error) {
	body, err := json.Marshal(messagePayload{Content: content})
	if err != nil {
		return Record{}, fmt.Errorf("discord: encoding edit request: %w", err)
	}

	responseBody, err := c.do(ctx, http.MethodPatch, messagePath(channel, id), nil, "application/json", body)
	if err != nil {
		return Record{}, fmt.Errorf("discord: edit record %s in channel %s: %w", id, channel, err)
	}
	return decodeRecord(responseBody)
}

// GetRecord fetches a single record by ID.
func (c *Client) GetRecord(ctx context.Context, channel ChannelID, id RecordID) (Record, error) {
	responseBody, err := c.do(ctx, http.MethodGet, messagePath(channel, id), nil, "", nil)
	if err != nil {
		return Record{}, fmt.Errorf("discord: get record %s in channel %s: %w", id, channel, err)
	}
	return decodeRecord(responseBody)
}

// DeleteRecord permanently removes a record and its attachments.
func (c *Client) DeleteRecord(ctx context.Context, channel ChannelID, id RecordID) error {
	if _, err := c.do(ctx, http.MethodDelete, messagePath(channel, id), nil, "", nil); err != nil {
		return fmt.Errorf("discord: delete record %s in channel %s: %w", id, channel, err)
	}
	return nil
}

// ListPage fetches up to limit records older than before, newest
// first. A zero before requests the newest page.
func (c *Client) ListPage(ctx context.Context, channel ChannelID, before RecordID, limit int) ([]Record, error) {
	if limit < 1 || limit > MaxPageSize {
		return nil, fmt.Errorf("discord: page limit must be between 1 and %d, got %d", MaxPageSize, limit)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != 0 {
		query.Set("before", before.String())
	}

	responseBody, err := c.do(ctx, http.MethodGet, messagesPath(channel), query, "", nil)
	if err != nil {
		return nil, fmt.Errorf("discord: list channel %s: %w", channel, err)
	}

	var records []Record
	if err := json.Unmarshal(responseBody, &records); err != nil {
		return nil, fmt.Errorf("discord: parsing list response: %w", err)
	}
	return records, nil
}

// FetchAttachment streams an attachment from its CDN URL. The URL is
// pre-signed by the API, so no Authorization header is sent. The
// caller must close the returned reader.
func (c *Client) FetchAttachment(ctx context.Context, attachmentURL string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, attachmentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: building attachment request: %w", err)
	}
	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("discord: fetch attachment: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body := netutil.ErrorBody(response.Body)
		response.Body.Close()
		return nil, fmt.Errorf("discord: unexpected %d fetching attachment %s: %s",
			response.StatusCode, attachmentURL, body)
	}
	return response.Body, nil
}

func messagesPath(channel ChannelID) string {
	return "/channels/" + channel.String() + "/messages"
}

func messagePath(channel ChannelID, id RecordID) string {
	return messagesPath(channel) + "/" + id.String()
}

// do performs an API request and returns the response body. On 2xx,
// returns the body. On 4xx/5xx, returns an *APIError. Requests
// answered with 429 are retried up to maxRetries times, waiting out
// the server-reported delay between attempts.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		request.Header.Set("Authorization", "Bot "+c.token)
		request.Header.Set("User-Agent", c.userAgent)
		if contentType != "" {
			request.Header.Set("Content-Type", contentType)
		}

		response, err := c.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		responseBody, err := netutil.ReadResponse(response.Body)
		response.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return responseBody, nil
		}

		if response.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			delay := retryDelay(response.Header, responseBody)
			c.logger.Debug("rate limited, retrying",
				"method", method,
				"path", path,
				"delay", delay,
				"attempt", attempt+1,
			)
			select {
			case <-c.clock.After(delay):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		// All Discord error responses use the same JSON shape.
		var apiErr APIError
		if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil {
			// Non-JSON error body. Fail loud with the raw body.
			return nil, fmt.Errorf("unexpected %d response from %s %s: %s",
				response.StatusCode, method, path, string(responseBody))
		}
		apiErr.StatusCode = response.StatusCode
		return nil, &apiErr
	}
}

// retryDelay extracts the wait duration from a 429 response. The JSON
// body's retry_after field (fractional seconds) takes precedence; the
// Retry-After header is the fallback.
func retryDelay(header http.Header, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if value := header.Get("Retry-After"); value != "" {
		if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return time.Second
}

// encodeMultipart builds a multipart/form-data body with payload as
// the payload_json part followed by one files[i] part per file.
func encodeMultipart(payload any, files []FileUpload) ([]byte, string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("encoding payload_json: %w", err)
	}

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	if err := writer.WriteField("payload_json", string(encoded)); err != nil {
		return nil, "", err
	}
	for i, file := range files {
		part, err := writer.CreateFormFile(fmt.Sprintf("files[%d]", i), file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buffer.Bytes(), writer.FormDataContentType(), nil
}

func decodeRecord(body []byte) (Record, error) {
	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return Record{}, fmt.Errorf("discord: parsing record response: %w", err)
	}
	return record, nil
}
