// Package smugmug provides a client for the parts of the SmugMug v2 API
// needed to mirror an account's albums.
//
// The package handles three calls:
//
//  1. Listing an account's albums (!albumlist)
//  2. Listing an album's images and videos (!images), optionally across pages
//  3. Resolving a media item to a direct download URL (!largestvideo,
//     !largestimage, or the archived original)
//
// # Usage
//
//	api := smugmug.NewAPI(client, smugmug.DefaultBaseURL, pathConfig)
//
//	res, err := api.AlbumList(ctx, "jdoe")
//	if errors.Is(err, smugmug.ErrNoAlbums) {
//	    log.Fatal("no albums")
//	}
//
// # Response Format
//
// Requests go through the API browser, which returns an HTML page with the
// JSON document in the last <pre> element. The package extracts that text and
// decodes it into the types of the dto subpackage.
package smugmug
