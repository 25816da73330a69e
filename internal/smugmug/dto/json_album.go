package dto

import (
	"github.com/handiism/smugmug-downloader/internal/model"
)

// AlbumListResponse represents the !albumlist endpoint.
type AlbumListResponse struct {
	Response struct {
		AlbumList []JSONAlbum `json:"AlbumList"`
	} `json:"Response"`
}

// JSONAlbum represents one album entry of the album list.
type JSONAlbum struct {
	AlbumKey string `json:"AlbumKey"`
	Name     string `json:"Name"`
	URLPath  string `json:"UrlPath"`
	URI      string `json:"Uri"`
}

// ToAlbum converts JSONAlbum to a model.Album.
func (ja *JSONAlbum) ToAlbum(pathCfg *model.PathConfig) (*model.Album, error) {
	return model.NewAlbum(ja.AlbumKey, ja.Name, ja.URLPath, ja.URI, pathCfg)
}
