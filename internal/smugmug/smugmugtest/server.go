// Package smugmugtest provides an in-process fake of the SmugMug API browser
// for tests.
package smugmugtest

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/handiism/smugmug-downloader/internal/smugmug/dto"
)

// Kind selects which rendition a fake image exposes.
type Kind int

const (
	// Archived exposes only an ArchivedUri.
	Archived Kind = iota
	// LargestImage exposes a LargestImage link.
	LargestImage
	// LargestVideo exposes a LargestVideo link.
	LargestVideo
)

// Server is a fake SmugMug endpoint serving an album list, paged image
// listings, variant lookups and media bytes. Responses are wrapped in HTML
// the way the API browser does.
type Server struct {
	*httptest.Server

	// User is the only account name with albums.
	User string

	// Session, when set, is required as the SMSESS cookie on API calls.
	Session string

	mu     sync.Mutex
	albums []dto.JSONAlbum
	pages  map[string][][]dto.JSONImage
	media  map[string][]byte
	hits   map[string]int
}

// NewServer starts a fake server for user. Call Close when done.
func NewServer(user string) *Server {
	s := &Server{
		User:  user,
		pages: make(map[string][][]dto.JSONImage),
		media: make(map[string][]byte),
		hits:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddAlbum registers an album whose listing is split into the given pages.
func (s *Server) AddAlbum(key, name, urlPath string, pages ...[]dto.JSONImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.albums = append(s.albums, dto.JSONAlbum{
		AlbumKey: key,
		Name:     name,
		URLPath:  urlPath,
		URI:      "/api/v2/album/" + key,
	})
	s.pages[key] = pages
}

// Image registers media bytes and returns a listing entry pointing at them.
func (s *Server) Image(fileName string, data []byte, kind Kind) dto.JSONImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(len(s.media) + 1)
	s.media[id] = data

	img := dto.JSONImage{
		FileName:    fileName,
		Title:       "Title " + fileName,
		Keywords:    "one; two",
		IsVideo:     kind == LargestVideo,
		ArchivedURI: s.URL + "/media/" + id,
	}
	switch kind {
	case LargestImage:
		img.URIs.LargestImage = &dto.JSONLink{URI: "/api/v2/image/" + id + "!largestimage"}
	case LargestVideo:
		img.URIs.LargestVideo = &dto.JSONLink{URI: "/api/v2/image/" + id + "!largestvideo"}
	}
	return img
}

// MediaPath returns the request path serving the bytes of a listing entry.
func MediaPath(img dto.JSONImage) string {
	i := strings.Index(img.ArchivedURI, "/media/")
	if i < 0 {
		return ""
	}
	return img.ArchivedURI[i:]
}

// Hits returns how many requests were served for path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := r.URL.Path
	s.hits[path]++

	if strings.HasPrefix(path, "/media/") {
		data, ok := s.media[strings.TrimPrefix(path, "/media/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
		return
	}

	if s.Session != "" {
		c, err := r.Cookie("SMSESS")
		if err != nil || c.Value != s.Session {
			s.writeHTML(w, http.StatusUnauthorized, map[string]any{"Code": 401, "Message": "Unauthorized"})
			return
		}
	}

	switch {
	case strings.HasPrefix(path, "/api/v2/folder/user/") && strings.HasSuffix(path, "!albumlist"):
		user := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v2/folder/user/"), "!albumlist")
		if user != s.User {
			s.writeHTML(w, http.StatusNotFound, map[string]any{"Code": 404, "Message": "Not Found"})
			return
		}
		s.writeHTML(w, http.StatusOK, map[string]any{
			"Response": map[string]any{"AlbumList": s.albums},
		})

	case strings.HasPrefix(path, "/api/v2/album/") && strings.HasSuffix(path, "!images"):
		key := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v2/album/"), "!images")
		s.writeImagesPage(w, key, r.URL.Query().Get("page"))

	case strings.HasPrefix(path, "/api/v2/image/"):
		rest := strings.TrimPrefix(path, "/api/v2/image/")
		id, variant, _ := strings.Cut(rest, "!")
		field := "LargestImage"
		if variant == "largestvideo" {
			field = "LargestVideo"
		}
		s.writeHTML(w, http.StatusOK, map[string]any{
			"Response": map[string]any{
				field: map[string]any{"Url": s.URL + "/media/" + id},
			},
		})

	default:
		s.writeHTML(w, http.StatusNotFound, map[string]any{"Code": 404, "Message": "Not Found"})
	}
}

func (s *Server) writeImagesPage(w http.ResponseWriter, key, page string) {
	pages, ok := s.pages[key]
	if !ok {
		s.writeHTML(w, http.StatusNotFound, map[string]any{"Code": 404, "Message": "Not Found"})
		return
	}

	n, _ := strconv.Atoi(page)
	response := map[string]any{}
	if n < len(pages) && len(pages[n]) > 0 {
		response["AlbumImage"] = pages[n]
	}
	pagesBlock := map[string]any{"Start": n + 1, "Count": 0}
	if n+1 < len(pages) {
		pagesBlock["NextPage"] = fmt.Sprintf("/api/v2/album/%s!images?page=%d", key, n+1)
	}
	response["Pages"] = pagesBlock

	s.writeHTML(w, http.StatusOK, map[string]any{"Response": response})
}

// writeHTML wraps v the way the API browser does: a decoy <pre> followed by
// the escaped JSON in the last <pre>.
func (s *Server) writeHTML(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintf(w, "<html><body><pre>GET %s</pre><pre>%s</pre></body></html>", "request", html.EscapeString(string(data)))
}
