package dto

import (
	"strings"

	"github.com/handiism/smugmug-downloader/internal/model"
)

// AlbumImagesResponse represents one page of the !images endpoint.
type AlbumImagesResponse struct {
	Response struct {
		AlbumImage []JSONImage `json:"AlbumImage"`
		Pages      *JSONPages  `json:"Pages"`
	} `json:"Response"`
}

// NextPage returns the URI of the following page, or "" on the last page.
func (r *AlbumImagesResponse) NextPage() string {
	if r.Response.Pages == nil {
		return ""
	}
	return r.Response.Pages.NextPage
}

// JSONPages holds the pagination block of a listing.
type JSONPages struct {
	Total    int    `json:"Total"`
	Start    int    `json:"Start"`
	Count    int    `json:"Count"`
	NextPage string `json:"NextPage"`
}

// JSONImage represents an image or video of an album listing.
type JSONImage struct {
	FileName     string       `json:"FileName"`
	Title        string       `json:"Title"`
	Caption      string       `json:"Caption"`
	Keywords     string       `json:"Keywords"`
	KeywordArray []string     `json:"KeywordArray"`
	IsVideo      bool         `json:"IsVideo"`
	ArchivedURI  string       `json:"ArchivedUri"`
	URIs         JSONImageURI `json:"Uris"`
}

// JSONImageURI holds the related-resource links of an image.
type JSONImageURI struct {
	LargestImage *JSONLink `json:"LargestImage"`
	LargestVideo *JSONLink `json:"LargestVideo"`
}

// JSONLink is a reference to another API resource.
type JSONLink struct {
	URI string `json:"Uri"`
}

// ToMediaItem converts JSONImage to a model.MediaItem.
func (ji *JSONImage) ToMediaItem(album *model.Album) (*model.MediaItem, error) {
	uris := model.MediaURIs{Archived: ji.ArchivedURI}
	if ji.URIs.LargestImage != nil {
		uris.LargestImage = ji.URIs.LargestImage.URI
	}
	if ji.URIs.LargestVideo != nil {
		uris.LargestVideo = ji.URIs.LargestVideo.URI
	}

	item, err := model.NewMediaItem(album, ji.FileName, uris)
	if err != nil {
		return nil, err
	}
	item.Title = ji.Title
	item.Caption = ji.Caption
	item.IsVideo = ji.IsVideo
	item.Keywords = ji.keywords()

	return item, nil
}

// keywords prefers KeywordArray and falls back to splitting the
// semicolon-separated Keywords string.
func (ji *JSONImage) keywords() []string {
	if len(ji.KeywordArray) > 0 {
		return ji.KeywordArray
	}
	var out []string
	for _, k := range strings.Split(ji.Keywords, ";") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// VariantResponse represents the !largestimage and !largestvideo endpoints.
type VariantResponse struct {
	Response struct {
		LargestImage *JSONVariant `json:"LargestImage"`
		LargestVideo *JSONVariant `json:"LargestVideo"`
	} `json:"Response"`
}

// JSONVariant is a single rendition with a direct URL.
type JSONVariant struct {
	URL    string `json:"Url"`
	Width  int    `json:"Width"`
	Height int    `json:"Height"`
	Size   int64  `json:"Size"`
}
