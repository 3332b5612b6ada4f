// Package services implements the external collaborators of a sheet job.
//
// # Statistics Resolver
//
// [StatsService] implements [Resolver] against the EnsembleData TikTok post-info endpoint.
//
// The raw cell is first reduced to its canonical video URL ([CanonicalURL]); anything that
// does not match the canonical pattern is passed through unchanged. The URL and access token
// travel as query parameters, and each lookup is bounded by the client timeout.
//
// Every failure (transport, timeout, non-2xx status, malformed payload, empty data list,
// missing statistics field) is logged and reported as [models.Unavailable].
// Nothing is retried here; pacing and retries belong to the caller.
//
// # Table Store
//
// [SheetsService] implements [TableStore] on the Google Sheets v4 REST API.
//
// Authentication uses a service-account key through [google.JWTConfigFromJSON]; the resulting
// [oauth2] client signs and refreshes tokens transparently.
//
// Column one is read with majorDimension=COLUMNS, and results are written with a single
// values:batchUpdate call containing one B<n>:E<n> range per row.
//
// # Status API Client
//
// [APIService] talks to a running sheetstats server to start jobs and poll their status.
// It backs the start, status and watch commands.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : no credentials file or token configured
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrTableNotFound] : the spreadsheet has no tab with the requested name
//   - [shared.ErrStatsUnavailable] : internal reason behind an unavailable result
package services
