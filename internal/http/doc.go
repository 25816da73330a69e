// Package http provides an HTTP client configured for SmugMug requests.
//
// The Client in this package handles:
//   - The SMSESS session cookie for password-protected accounts
//   - User-Agent headers
//   - Streaming downloads with progress tracking
//   - Classification of connection-level failures via IsConnectionError
//
// # Basic Usage
//
//	client := http.NewClient(http.WithSession(sessionID))
//
//	// Fetch an API page
//	body, err := client.Get(ctx, "https://www.smugmug.com/api/v2/album/abc!images")
//
//	// Stream a file to disk
//	n, err := client.DownloadFile(ctx, mediaURL, file, nil)
//	if http.IsConnectionError(err) {
//	    // wait and retry
//	}
package http
