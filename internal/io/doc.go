// Package ioutils provides file system and image utilities.
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
//	// Skip media that is already on disk
//	if ioutils.FileExists(item.Path) {
//	    continue
//	}
//
//	// Stream into a temporary file and rename into place
//	err := ioutils.WriteStreamAtomic(ctx, item.Path, func(w io.Writer) error {
//	    _, err := client.DownloadFile(ctx, url, w, nil)
//	    return err
//	})
//
// # Image Verification
//
// The ImageService detects truncated or corrupt downloads:
//
//	svc := ioutils.NewImageService()
//	err := svc.Verify(ctx, "/out/album/IMG_0001.jpg")
package ioutils
