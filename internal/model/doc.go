// Package model defines the core data structures used throughout
// the smugmug-downloader application.
//
// # Album
//
// Album represents a SmugMug album with its computed local directory:
//
//	album, err := model.NewAlbum(key, "Family", "/2020/09/Family", uri, pathConfig)
//	fmt.Println(album.Path) // output/2020/09/Family
//
// # MediaItem
//
// MediaItem represents a single image or video within an album:
//
//	item, err := model.NewMediaItem(album, "IMG_0001.jpg", uris)
//	fmt.Println(item.Path) // output/2020/09/Family/IMG_0001.jpg
//
// # Filter
//
// Filter keeps albums by exact name or by URL path prefix:
//
//	f := model.NewFilter(model.ParseAlbumNames("Title 1$Title 2"), "")
//	albums = f.Apply(albums)
package model
