// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/filament-archive/filament/lib/clock"
	"github.com/filament-archive/filament/lib/testutil"
)

// newTestClient creates a Client pointed at a test server. The rate
// limiter is opened wide so tests never wait on real time; clk may be
// nil for tests that never hit a 429.
func newTestClient(t *testing.T, baseURL string, clk clock.Clock) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		Token:             "test-token",
		BaseURL:           baseURL,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:             clk,
		RequestsPerSecond: 10000,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewClient(ClientConfig{Token: "abc"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client == nil {
			t.Fatal("NewClient returned nil")
		}
	})

	t.Run("missing token", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); err == nil {
			t.Fatal("expected error for missing token")
		}
	})

	t.Run("invalid base URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{Token: "abc", BaseURL: "://invalid"}); err == nil {
			t.Fatal("expected error for invalid BaseURL")
		}
	})
}

func TestCreateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", request.Method)
		}
		if request.URL.Path != "/channels/123/messages" {
			t.Errorf("path = %s, want /channels/123/messages", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bot test-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bot test-token")
		}
		if got := request.Header.Get("User-Agent"); !strings.HasPrefix(got, "DiscordBot (") {
			t.Errorf("User-Agent = %q, want DiscordBot form", got)
		}

		if err := request.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		var payload messagePayload
		if err := json.Unmarshal([]byte(request.FormValue("payload_json")), &payload); err != nil {
			t.Fatalf("decoding payload_json: %v", err)
		}
		if payload.Content != "uploading" {
			t.Errorf("payload content = %q, want %q", payload.Content, "uploading")
		}

		wantFiles := []struct{ field, name, content string }{
			{"files[0]", "blob.bin.part0", "first"},
			{"files[1]", "blob.bin.part1", "second"},
		}
		for _, want := range wantFiles {
			headers := request.MultipartForm.File[want.field]
			if len(headers) != 1 {
				t.Fatalf("part %s: got %d files, want 1", want.field, len(headers))
			}
			if headers[0].Filename != want.name {
				t.Errorf("part %s filename = %q, want %q", want.field, headers[0].Filename, want.name)
			}
			file, err := headers[0].Open()
			if err != nil {
				t.Fatalf("opening part %s: %v", want.field, err)
			}
			content, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				t.Fatalf("reading part %s: %v", want.field, err)
			}
			if string(content) != want.content {
				t.Errorf("part %s content = %q, want %q", want.field, content, want.content)
			}
		}

		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(Record{
			ID:      111,
			Content: "uploading",
			Attachments: []Attachment{
				{ID: 201, Filename: "blob.bin.part0", Size: 5, URL: "https://cdn.test/part0"},
				{ID: 202, Filename: "blob.bin.part1", Size: 6, URL: "https://cdn.test/part1"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	record, err := client.CreateRecord(context.Background(), 123, []FileUpload{
		{Name: "blob.bin.part0", Reader: strings.NewReader("first")},
		{Name: "blob.bin.part1", Reader: strings.NewReader("second")},
	}, "uploading")
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if record.ID != 111 {
		t.Errorf("record ID = %d, want 111", record.ID)
	}
	if len(record.Attachments) != 2 {
		t.Errorf("attachment count = %d, want 2", len(record.Attachments))
	}
}

func TestEditRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", request.Method)
		}
		if request.URL.Path != "/channels/123/messages/456" {
			t.Errorf("path = %s", request.URL.Path)
		}
		if got := request.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}

		var payload messagePayload
		if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding edit body: %v", err)
		}
		if payload.Content != "name=a.txt\nsize=5\nlen=1\n" {
			t.Errorf("edit content = %q", payload.Content)
		}

		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(Record{ID: 456, Content: payload.Content})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	record, err := client.EditRecord(context.Background(), 123, 456, "name=a.txt\nsize=5\nlen=1\n")
	if err != nil {
		t.Fatalf("EditRecord failed: %v", err)
	}
	if record.ID != 456 {
		t.Errorf("record ID = %d, want 456", record.ID)
	}
}

func TestGetRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", request.Method)
		}
		if request.URL.Path != "/channels/123/messages/789" {
			t.Errorf("path = %s", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		fmt.Fprint(writer, `{
			"id": "789",
			"content": "next=790\n",
			"attachments": [{"id": "800", "filename": "a.part0", "size": 3, "url": "https://cdn.test/a.part0"}]
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	record, err := client.GetRecord(context.Background(), 123, 789)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if record.ID != 789 {
		t.Errorf("record ID = %d, want 789", record.ID)
	}
	if record.Content != "next=790\n" {
		t.Errorf("content = %q", record.Content)
	}
	if len(record.Attachments) != 1 || record.Attachments[0].ID != 800 {
		t.Errorf("attachments = %+v", record.Attachments)
	}
}

func TestDeleteRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", request.Method)
		}
		if request.URL.Path != "/channels/123/messages/456" {
			t.Errorf("path = %s", request.URL.Path)
		}
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	if err := client.DeleteRecord(context.Background(), 123, 456); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
}

func TestListPage(t *testing.T) {
	t.Run("cursor page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			query := request.URL.Query()
			if got := query.Get("limit"); got != "100" {
				t.Errorf("limit = %q, want 100", got)
			}
			if got := query.Get("before"); got != "789" {
				t.Errorf("before = %q, want 789", got)
			}
			writer.Header().Set("Content-Type", "application/json")
			fmt.Fprint(writer, `[{"id": "700", "content": ""}, {"id": "600", "content": ""}]`)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		records, err := client.ListPage(context.Background(), 123, 789, 100)
		if err != nil {
			t.Fatalf("ListPage failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("record count = %d, want 2", len(records))
		}
		if records[0].ID != 700 || records[1].ID != 600 {
			t.Errorf("records = %+v", records)
		}
	})

	t.Run("newest page omits before", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Query().Has("before") {
				t.Error("before parameter should be absent for the newest page")
			}
			writer.Header().Set("Content-Type", "application/json")
			fmt.Fprint(writer, `[]`)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		records, err := client.ListPage(context.Background(), 123, 0, 50)
		if err != nil {
			t.Fatalf("ListPage failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("record count = %d, want 0", len(records))
		}
	})

	t.Run("limit validation", func(t *testing.T) {
		client := newTestClient(t, "http://localhost:1", nil)
		for _, limit := range []int{0, -1, MaxPageSize + 1} {
			if _, err := client.ListPage(context.Background(), 123, 0, limit); err == nil {
				t.Errorf("ListPage with limit %d should fail", limit)
			}
		}
	})
}

func TestAPIErrorResponse(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusNotFound)
			fmt.Fprint(writer, `{"message": "Unknown Message", "code": 10008}`)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		_, err := client.GetRecord(context.Background(), 123, 456)
		if err == nil {
			t.Fatal("expected error")
		}
		if !IsAPIError(err, CodeUnknownMessage) {
			t.Errorf("expected unknown-message error, got: %v", err)
		}
		if IsAPIError(err, CodeUnknownChannel) {
			t.Error("IsAPIError should not match a different code")
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError in chain, got: %v", err)
		}
		if apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
		}
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(writer, "<html>bad gateway</html>")
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		_, err := client.GetRecord(context.Background(), 123, 456)
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			t.Errorf("non-JSON body should not produce *APIError, got: %+v", apiErr)
		}
		if !strings.Contains(err.Error(), "502") {
			t.Errorf("error should include the status code, got: %v", err)
		}
	})
}

func TestRateLimitRetry(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		callCount++
		if callCount == 1 {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(writer, `{"message": "You are being rate limited.", "retry_after": 1.5, "global": false}`)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(Record{ID: 7, Content: "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, fake)

	type outcome struct {
		record Record
		err    error
	}
	results := make(chan outcome, 1)
	go func() {
		record, err := client.GetRecord(context.Background(), 123, 7)
		results <- outcome{record, err}
	}()

	// The client parks on the fake clock waiting out the 429.
	fake.WaitForTimers(1)
	fake.Advance(1500 * time.Millisecond)

	result := testutil.RequireReceive(t, results, 5*time.Second, "waiting for retried request")
	if result.err != nil {
		t.Fatalf("GetRecord after retry failed: %v", result.err)
	}
	if result.record.ID != 7 {
		t.Errorf("record ID = %d, want 7", result.record.ID)
	}
	if callCount != 2 {
		t.Errorf("request count = %d, want 2", callCount)
	}
}

func TestRateLimitExhausted(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		callCount++
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(writer, `{"message": "You are being rate limited.", "retry_after": 1, "global": false}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, fake)

	results := make(chan error, 1)
	go func() {
		_, err := client.GetRecord(context.Background(), 123, 7)
		results <- err
	}()

	for i := 0; i < maxRetries; i++ {
		fake.WaitForTimers(1)
		fake.Advance(time.Second)
	}

	err := testutil.RequireReceive(t, results, 5*time.Second, "waiting for exhausted retries")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got: %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
	if callCount != maxRetries+1 {
		t.Errorf("request count = %d, want %d", callCount, maxRetries+1)
	}
}

func TestFetchAttachment(t *testing.T) {
	t.Run("streams bytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Header.Get("Authorization") != "" {
				t.Error("attachment fetch must not send the bot token")
			}
			writer.Write([]byte("extent bytes"))
		}))
		defer server.Close()

		client := newTestClient(t, "http://localhost:1", nil)
		body, err := client.FetchAttachment(context.Background(), server.URL+"/attachments/1/2/a.part0")
		if err != nil {
			t.Fatalf("FetchAttachment failed: %v", err)
		}
		defer body.Close()

		content, err := io.ReadAll(body)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "extent bytes" {
			t.Errorf("content = %q", content)
		}
	})

	t.Run("error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(t, "http://localhost:1", nil)
		if _, err := client.FetchAttachment(context.Background(), server.URL+"/gone"); err == nil {
			t.Fatal("expected error for missing attachment")
		}
	})
}

func TestAPIErrorFormat(t *testing.T) {
	t.Run("error message format", func(t *testing.T) {
		err := &APIError{
			Code:       CodeMissingAccess,
			Message:    "Missing Access",
			StatusCode: 403,
		}
		expected := "discord: 50001 (403): Missing Access"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("non-API error returns false", func(t *testing.T) {
		if IsAPIError(context.Canceled, CodeUnknownMessage) {
			t.Error("IsAPIError should return false for non-API errors")
		}
	})
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		body   string
		want   time.Duration
	}{
		{
			name: "body retry_after",
			body: `{"retry_after": 1.5}`,
			want: 1500 * time.Millisecond,
		},
		{
			name:   "header fallback",
			header: http.Header{"Retry-After": []string{"2"}},
			body:   `{}`,
			want:   2 * time.Second,
		},
		{
			name: "default",
			body: `{}`,
			want: time.Second,
		},
		{
			name: "unparseable body",
			body: `not json`,
			want: time.Second,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			header := test.header
			if header == nil {
				header = http.Header{}
			}
			if got := retryDelay(header, []byte(test.body)); got != test.want {
				t.Errorf("retryDelay = %v, want %v", got, test.want)
			}
		})
	}
}
