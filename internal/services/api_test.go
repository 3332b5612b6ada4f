package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/sheetstats/internal/shared"
	tu "github.com/desertthunder/sheetstats/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL and Nil Client", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != defaultAPIBaseURL {
				t.Errorf("expected default baseURL %s, got %s", defaultAPIBaseURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}
			srv := NewAPIService("http://example.com", client)

			_, err := srv.Get(context.Background(), "/status")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(&tu.FCloser{}),
					Header:     make(http.Header),
				}, nil),
			}
			srv := NewAPIService("http://example.com", client)

			_, err := srv.Get(context.Background(), "/status")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})
	})

	t.Run("Start", func(t *testing.T) {
		t.Run("Accepted", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/start" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}

				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["worksheet"] != "ARK" {
					t.Errorf("expected worksheet ARK, got %v", body)
				}
				w.Write([]byte(`{"status":"started"}`))
			}))
			defer server.Close()

			if err := NewAPIService(server.URL, nil).Start(context.Background(), "ARK"); err != nil {
				t.Errorf("Start() error = %v", err)
			}
		})

		rejections := []struct {
			name    string
			body    string
			wantErr error
		}{
			{name: "Running", body: `{"error":"Running"}`, wantErr: shared.ErrJobRunning},
			{name: "Invalid", body: `{"error":"Invalid"}`, wantErr: shared.ErrInvalidTarget},
			{name: "Other", body: `boom`, wantErr: shared.ErrAPIRequest},
		}

		for _, tc := range rejections {
			t.Run("Rejected "+tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte(tc.body))
				}))
				defer server.Close()

				err := NewAPIService(server.URL, nil).Start(context.Background(), "ARK")
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}
			})
		}

		t.Run("Server Down", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			err := NewAPIService("http://example.com", client).Start(context.Background(), "ARK")
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("Status", func(t *testing.T) {
		t.Run("Decodes Snapshot", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"abc","running":true,"progress":40,"total":5,"current":"https://x","log":["Scraping ARK...","Row 2: https://x"],"worksheet":"ARK","outcome":""}`))
			}))
			defer server.Close()

			status, err := NewAPIService(server.URL, nil).Status(context.Background())
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}

			if !status.Running || status.Progress != 40 || status.Total != 5 || status.Target != "ARK" {
				t.Errorf("unexpected status %+v", status)
			}
			if len(status.Log) != 2 {
				t.Errorf("expected 2 log lines, got %d", len(status.Log))
			}
		})

		t.Run("Non 2xx", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, nil).Status(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, nil).Status(context.Background())
			if err == nil || !strings.Contains(err.Error(), "failed to decode status") {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	})
}
