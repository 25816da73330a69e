package smugmug

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/handiism/smugmug-downloader/internal/http"
	"github.com/handiism/smugmug-downloader/internal/model"
	"github.com/handiism/smugmug-downloader/internal/smugmug/dto"
)

// DefaultBaseURL is the SmugMug web endpoint the API paths are relative to.
const DefaultBaseURL = "https://www.smugmug.com"

var (
	// ErrNoAlbums is returned when the album list is missing or empty.
	//
	// This typically occurs when:
	//   - The user does not exist
	//   - The account is password protected and no valid session was given
	ErrNoAlbums = errors.New("no albums found")

	// ErrNoDownloadURL is returned when a media item exposes no downloadable rendition.
	ErrNoDownloadURL = errors.New("no download URL for media item")
)

// API talks to the SmugMug v2 API through its HTML API browser.
//
// Every call fetches a page, pulls the JSON document out of it and decodes
// it into the dto types, which are then converted to model types with their
// local paths computed.
//
// Example usage:
//
//	api := NewAPI(client, DefaultBaseURL, &model.PathConfig{OutputDir: "output"})
//
//	res, err := api.AlbumList(ctx, "jdoe")
//	if errors.Is(err, ErrNoAlbums) {
//	    log.Fatal("user not found or protected")
//	}
//
//	for _, album := range res.Albums {
//	    page, _ := api.AlbumImages(ctx, album, true)
//	    for _, item := range page.Items {
//	        url, _ := api.ResolveDownloadURL(ctx, item)
//	        fmt.Println(item.Path, url)
//	    }
//	}
type API struct {
	client     *http.Client
	baseURL    string
	pathConfig *model.PathConfig
}

// AlbumListResult holds the albums of an account.
type AlbumListResult struct {
	// Albums are the usable albums, in API order.
	Albums []*model.Album

	// Rejected holds one error per album that could not be mapped to a
	// local directory.
	Rejected []error
}

// ImagesResult holds an album's media listing.
type ImagesResult struct {
	// Items are the media items across all fetched pages, in API order.
	Items []*model.MediaItem

	// Rejected holds one error per item whose file name is unusable.
	Rejected []error

	// Pages is the number of listing pages fetched.
	Pages int
}

// NewAPI creates a new API client rooted at baseURL.
func NewAPI(client *http.Client, baseURL string, pathCfg *model.PathConfig) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &API{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pathConfig: pathCfg,
	}
}

// AlbumList fetches the full album list of user in a single call.
//
// Returns an error wrapping ErrNoAlbums when the response carries no albums
// or the account page cannot be read.
func (a *API) AlbumList(ctx context.Context, user string) (*AlbumListResult, error) {
	uri := fmt.Sprintf("/api/v2/folder/user/%s!albumlist", url.PathEscape(user))

	var resp dto.AlbumListResponse
	if err := a.getJSON(ctx, uri, &resp); err != nil {
		var se *http.StatusError
		if errors.As(err, &se) || errors.Is(err, ErrNoJSON) {
			return nil, fmt.Errorf("%w: %w", ErrNoAlbums, err)
		}
		return nil, err
	}
	if len(resp.Response.AlbumList) == 0 {
		return nil, ErrNoAlbums
	}

	res := &AlbumListResult{}
	for i := range resp.Response.AlbumList {
		album, err := resp.Response.AlbumList[i].ToAlbum(a.pathConfig)
		if err != nil {
			res.Rejected = append(res.Rejected, err)
			continue
		}
		res.Albums = append(res.Albums, album)
	}

	return res, nil
}

// AlbumImages fetches the media listing of album.
//
// When followPages is true, NextPage links are followed until the last page
// and every page's items are appended. An album without media yields an
// empty result. The items are also stored on album.Items.
func (a *API) AlbumImages(ctx context.Context, album *model.Album, followPages bool) (*ImagesResult, error) {
	res := &ImagesResult{}

	seen := make(map[string]struct{})
	next := album.ImagesURI()
	for next != "" {
		if _, ok := seen[next]; ok {
			break
		}
		seen[next] = struct{}{}

		var resp dto.AlbumImagesResponse
		if err := a.getJSON(ctx, next, &resp); err != nil {
			return nil, fmt.Errorf("failed to list page %d of %s: %w", res.Pages+1, album.Name, err)
		}
		res.Pages++

		for i := range resp.Response.AlbumImage {
			item, err := resp.Response.AlbumImage[i].ToMediaItem(album)
			if err != nil {
				res.Rejected = append(res.Rejected, err)
				continue
			}
			res.Items = append(res.Items, item)
		}

		// A first page without media means the album is empty.
		if res.Pages == 1 && len(resp.Response.AlbumImage) == 0 {
			break
		}
		if !followPages {
			break
		}
		next = resp.NextPage()
	}

	album.Items = res.Items
	return res, nil
}

// ResolveDownloadURL returns a direct URL for item.
//
// The largest video rendition is preferred, then the largest image; each
// needs a follow-up API call. Items with neither fall back to the archived
// original. Returns ErrNoDownloadURL when nothing is available.
func (a *API) ResolveDownloadURL(ctx context.Context, item *model.MediaItem) (string, error) {
	switch {
	case item.URIs.LargestVideo != "":
		var resp dto.VariantResponse
		if err := a.getJSON(ctx, item.URIs.LargestVideo, &resp); err != nil {
			return "", fmt.Errorf("failed to resolve largest video: %w", err)
		}
		if resp.Response.LargestVideo == nil || resp.Response.LargestVideo.URL == "" {
			return "", fmt.Errorf("%w: empty LargestVideo for %s", ErrNoDownloadURL, item.FileName)
		}
		return a.resolve(resp.Response.LargestVideo.URL), nil

	case item.URIs.LargestImage != "":
		var resp dto.VariantResponse
		if err := a.getJSON(ctx, item.URIs.LargestImage, &resp); err != nil {
			return "", fmt.Errorf("failed to resolve largest image: %w", err)
		}
		if resp.Response.LargestImage == nil || resp.Response.LargestImage.URL == "" {
			return "", fmt.Errorf("%w: empty LargestImage for %s", ErrNoDownloadURL, item.FileName)
		}
		return a.resolve(resp.Response.LargestImage.URL), nil

	case item.URIs.Archived != "":
		return a.resolve(item.URIs.Archived), nil
	}

	return "", fmt.Errorf("%w: %s", ErrNoDownloadURL, item.FileName)
}

// getJSON fetches uri and decodes the embedded JSON document into v.
func (a *API) getJSON(ctx context.Context, uri string, v any) error {
	body, err := a.client.Get(ctx, a.resolve(uri))
	if err != nil {
		return err
	}

	data, err := extractJSON(body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse API JSON: %w", err)
	}
	return nil
}

// resolve turns an API-relative URI into an absolute URL.
func (a *API) resolve(uri string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	if strings.HasPrefix(uri, "//") {
		return "https:" + uri
	}
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	return a.baseURL + uri
}
