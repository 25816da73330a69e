package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

// ErrInvalidFileName is returned when a media filename cannot be turned into
// a usable local file name.
var ErrInvalidFileName = errors.New("invalid media file name")

// MediaItem represents a single image or video within an album.
//
// MediaItem carries the URIs needed to resolve a downloadable variant:
//   - URIs.LargestVideo is preferred when present
//   - URIs.LargestImage is used otherwise
//   - URIs.Archived is a direct link used when neither variant exists
//
// The local file path is computed by NewMediaItem from the album path and the
// sanitized file name.
type MediaItem struct {
	// Album is a reference to the parent album.
	Album *Album

	// FileName is the original file name as uploaded.
	FileName string

	// Title, Caption and Keywords are the item's descriptive metadata.
	Title    string
	Caption  string
	Keywords []string

	// IsVideo reports whether the item is a video.
	IsVideo bool

	// URIs resolves the downloadable variants of the item.
	URIs MediaURIs

	// Path is the computed local file path where the item will be saved.
	Path string
}

// MediaURIs holds the API URIs and direct links for an item's renditions.
type MediaURIs struct {
	// LargestImage is the API URI resolving the largest image rendition.
	LargestImage string

	// LargestVideo is the API URI resolving the largest video rendition.
	LargestVideo string

	// Archived is a direct download URL for the original upload.
	Archived string
}

// NewMediaItem creates a new MediaItem with its local path computed.
//
// Returns ErrInvalidFileName if the name sanitizes to nothing usable.
func NewMediaItem(album *Album, fileName string, uris MediaURIs) (*MediaItem, error) {
	name := SanitizeFileName(fileName)
	if name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}

	return &MediaItem{
		Album:    album,
		FileName: fileName,
		URIs:     uris,
		Path:     filepath.Join(album.Path, name),
	}, nil
}

// HasVariant reports whether the item exposes a largest video or image rendition.
func (m *MediaItem) HasVariant() bool {
	return m.URIs.LargestVideo != "" || m.URIs.LargestImage != ""
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]`)

// SanitizeFileName replaces every character that is not a letter, digit,
// underscore, dash, dot or space with an underscore.
//
// Example:
//
//	SanitizeFileName("a/b?.jpg") // Returns "a_b_.jpg"
func SanitizeFileName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}
