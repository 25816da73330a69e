package media

import (
	"errors"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/handiism/smugmug-downloader/internal/model"
)

// ErrVideo is returned when metadata writing is asked for a video.
var ErrVideo = errors.New("metadata not written for videos")

// MetadataWriter embeds an item's descriptive metadata into its downloaded file.
type MetadataWriter interface {
	WriteMetadata(item *model.MediaItem) error
	Close() error
}

// NopWriter is a MetadataWriter that does nothing.
type NopWriter struct{}

func (NopWriter) WriteMetadata(*model.MediaItem) error { return nil }
func (NopWriter) Close() error                         { return nil }

// ExifWriter writes IPTC and XMP fields through a long-running exiftool process.
type ExifWriter struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

// NewExifWriter starts exiftool. It fails when the exiftool binary is not
// installed.
func NewExifWriter() (*ExifWriter, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("could not initialize exiftool: %w", err)
	}
	return &ExifWriter{et: et}, nil
}

// WriteMetadata sets title, caption and keywords on item.Path.
//
// Only non-empty fields are written. Items with nothing to write are left
// untouched, and videos return ErrVideo.
func (w *ExifWriter) WriteMetadata(item *model.MediaItem) error {
	if item.IsVideo {
		return ErrVideo
	}

	fm, ok := fileMetadata(item)
	if !ok {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	fms := []exiftool.FileMetadata{fm}
	w.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("failed to write metadata to %s: %w", item.Path, fms[0].Err)
	}
	return nil
}

// Close stops the exiftool process.
func (w *ExifWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.et.Close()
}

// fileMetadata builds the exiftool fields for item. The boolean is false
// when the item carries no metadata.
func fileMetadata(item *model.MediaItem) (exiftool.FileMetadata, bool) {
	fm := exiftool.EmptyFileMetadata()
	fm.File = item.Path

	written := false
	if item.Title != "" {
		fm.SetString("IPTC:ObjectName", item.Title)
		written = true
	}
	if item.Caption != "" {
		fm.SetString("IPTC:Caption-Abstract", item.Caption)
		written = true
	}
	if len(item.Keywords) > 0 {
		fm.SetStrings("IPTC:Keywords", item.Keywords)
		fm.SetStrings("XMP:Subject", item.Keywords)
		written = true
	}

	return fm, written
}
