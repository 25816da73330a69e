// Package download provides the download orchestration logic for
// fetching albums and their media from SmugMug.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Fetch the account's album list
//  2. Apply the album name or path mask filter
//  3. Create one output directory per album
//  4. List each album's media, optionally following NextPage links
//  5. Resolve and download every item not already on disk
//  6. Verify images and write IPTC/XMP metadata (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	defer manager.Close()
//
//	if err := manager.Initialize(ctx); err != nil {
//	    log.Fatal(err) // wraps smugmug.ErrNoAlbums for unknown or protected users
//	}
//	manager.PrepareDirectories()
//
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err) // only on cancellation
//	}
//
// # Concurrency
//
// Downloads are sequential: one album after another, one item after another.
// GetProgress and GetAlbumNames may be called from other goroutines while
// StartDownloads runs.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Retry Logic
//
// Connection failures (refused, reset, DNS) are retried after a fixed delay
// of settings.RetryDelay seconds. settings.MaxRetries bounds the number of
// retries; zero retries forever. Any other error abandons the item and the
// run continues with the next one.
//
// Media are written to a temporary file next to their destination and
// renamed into place, so an existing file is always complete.
package download
