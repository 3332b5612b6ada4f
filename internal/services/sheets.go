// Google Sheets [TableStore] implementation
//
// Talks to the Sheets v4 REST API with a service-account OAuth2 client.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
	"golang.org/x/oauth2/google"
)

const (
	defaultSheetsBaseURL string = "https://sheets.googleapis.com"
	sheetsScope          string = "https://www.googleapis.com/auth/spreadsheets"
)

// valueRange is a range of cells as exchanged with the Sheets API.
type valueRange struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

type batchUpdateRequest struct {
	ValueInputOption string       `json:"valueInputOption"`
	Data             []valueRange `json:"data"`
}

type batchUpdateResponse struct {
	SpreadsheetID     string `json:"spreadsheetId"`
	TotalUpdatedRows  int    `json:"totalUpdatedRows"`
	TotalUpdatedCells int    `json:"totalUpdatedCells"`
}

type sheetsError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// SheetsOpts configures a [SheetsService].
type SheetsOpts struct {
	SpreadsheetID string
	BaseURL       string
	HTTPClient    *http.Client // Must attach credentials; see [NewSheetsClient]
	Logger        *log.Logger
}

// SheetsService implements [TableStore] for one Google spreadsheet.
type SheetsService struct {
	spreadsheetID string
	baseURL       string
	httpClient    *http.Client
	logger        *log.Logger
}

// NewSheetsClient builds an authorized HTTP client from a service-account key file.
func NewSheetsClient(ctx context.Context, credentialsPath string) (*http.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("%w: no service account key configured", shared.ErrMissingCredentials)
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrMissingCredentials, credentialsPath, err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse service account key: %v", shared.ErrMissingCredentials, err)
	}

	return conf.Client(ctx), nil
}

// NewSheetsService creates a table store bound to a spreadsheet.
func NewSheetsService(opts SheetsOpts) (*SheetsService, error) {
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet_id is required", shared.ErrInvalidConfig)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultSheetsBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &SheetsService{
		spreadsheetID: opts.SpreadsheetID,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		httpClient:    opts.HTTPClient,
		logger:        opts.Logger,
	}, nil
}

// Name returns the service name.
func (s *SheetsService) Name() string {
	return "Google Sheets"
}

// A1Range quotes a tab name and appends an A1 reference, e.g. 'My Tab'!B2:E2.
func A1Range(table, ref string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(table, "'", "''"), ref)
}

// OutputRange returns the four output cells of row, right of the identifier column.
func OutputRange(table string, row int) string {
	return A1Range(table, fmt.Sprintf("B%d:E%d", row, row))
}

func (s *SheetsService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := fmt.Sprintf("%s/v4/spreadsheets/%s%s", s.baseURL, url.PathEscape(s.spreadsheetID), endpoint)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp sheetsError
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			if resp.StatusCode == http.StatusBadRequest && strings.Contains(errResp.Error.Message, "Unable to parse range") {
				return fmt.Errorf("%w: %s", shared.ErrTableNotFound, errResp.Error.Message)
			}
			return fmt.Errorf("%w: sheets API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: sheets API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ReadColumn returns the values of column A of the tab named table.
//
// The API drops trailing blank cells, so the slice ends at the last non-empty cell.
func (s *SheetsService) ReadColumn(ctx context.Context, table string) ([]string, error) {
	endpoint := fmt.Sprintf("/values/%s?majorDimension=COLUMNS", url.PathEscape(A1Range(table, "A:A")))

	var vr valueRange
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &vr); err != nil {
		return nil, err
	}

	if len(vr.Values) == 0 {
		return []string{}, nil
	}

	column := make([]string, len(vr.Values[0]))
	for i, v := range vr.Values[0] {
		if v != nil {
			column[i] = fmt.Sprint(v)
		}
	}
	return column, nil
}

// WriteBatch writes all rows of batch with one values:batchUpdate call.
func (s *SheetsService) WriteBatch(ctx context.Context, table string, batch models.BatchWrite) error {
	if batch.Len() == 0 {
		return nil
	}

	req := batchUpdateRequest{
		ValueInputOption: "RAW",
		Data:             make([]valueRange, 0, batch.Len()),
	}
	for _, row := range batch.Rows {
		req.Data = append(req.Data, valueRange{
			Range:  OutputRange(table, row.Row),
			Values: [][]any{row.Result.Cells()},
		})
	}

	var resp batchUpdateResponse
	if err := s.doRequest(ctx, http.MethodPost, "/values:batchUpdate", req, &resp); err != nil {
		return err
	}

	s.logger.Debug("batch update applied", "table", table, "rows", resp.TotalUpdatedRows, "cells", resp.TotalUpdatedCells)
	return nil
}
