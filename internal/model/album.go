package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when an album URL path would place files outside
// the configured output directory.
var ErrUnsafePath = errors.New("album path escapes output directory")

// Album represents a SmugMug album as returned by the album list endpoint.
//
// Album contains everything needed to list and store its media:
//   - Key and Name identify the album for logging and filtering
//   - URLPath mirrors the album's location on the account (e.g. "/2020/09/Family")
//   - URI is the API resource the media listing is derived from
//   - Path is the computed local directory
//
// Example:
//
//	cfg := &PathConfig{OutputDir: "output"}
//	album, err := NewAlbum("abc123", "Family", "/2020/09/Family", "/api/v2/album/abc123", cfg)
//	// album.Path = "output/2020/09/Family"
type Album struct {
	// Key is the SmugMug album key.
	Key string

	// Name is the display name of the album.
	Name string

	// URLPath is the album's path on the account, with a leading slash.
	URLPath string

	// URI is the API URI of the album.
	URI string

	// Path is the local directory where the album's media is written.
	// This is automatically set by NewAlbum based on PathConfig.OutputDir.
	Path string

	// Items holds the album's media once the listing has been fetched.
	Items []*MediaItem
}

// PathConfig holds the settings used to compute local paths.
type PathConfig struct {
	// OutputDir is the root directory all album directories are created under.
	OutputDir string
}

// NewAlbum creates a new Album with its local path computed from cfg.
//
// The leading slash of urlPath is dropped and the rest is joined onto the
// output directory. Paths that would resolve outside the output directory
// return ErrUnsafePath.
func NewAlbum(key, name, urlPath, uri string, cfg *PathConfig) (*Album, error) {
	album := &Album{
		Key:     key,
		Name:    name,
		URLPath: urlPath,
		URI:     uri,
	}

	path, err := album.parseFolderPath(cfg)
	if err != nil {
		return nil, err
	}
	album.Path = path

	return album, nil
}

// ImagesURI returns the API URI of the album's media listing.
func (a *Album) ImagesURI() string {
	return a.URI + "!images"
}

// String returns a short description used in progress messages.
func (a *Album) String() string {
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(a.Name), a.URLPath)
}

// parseFolderPath computes the album directory from the output root.
func (a *Album) parseFolderPath(cfg *PathConfig) (string, error) {
	root := filepath.Clean(cfg.OutputDir)
	rel := filepath.FromSlash(strings.TrimPrefix(a.URLPath, "/"))
	path := filepath.Join(root, rel)

	r, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, a.URLPath)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, a.URLPath)
	}

	return path, nil
}
