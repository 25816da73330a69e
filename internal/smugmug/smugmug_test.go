package smugmug_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/handiism/smugmug-downloader/internal/http"
	"github.com/handiism/smugmug-downloader/internal/model"
	"github.com/handiism/smugmug-downloader/internal/smugmug"
	"github.com/handiism/smugmug-downloader/internal/smugmug/dto"
	"github.com/handiism/smugmug-downloader/internal/smugmug/smugmugtest"
)

func newAPI(srv *smugmugtest.Server, session string) *smugmug.API {
	client := http.NewClient(http.WithSession(session))
	return smugmug.NewAPI(client, srv.URL, &model.PathConfig{OutputDir: "/out"})
}

func TestAPI_AlbumList(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()
	srv.AddAlbum("A1", "Summer", "/2020/07/Summer")
	srv.AddAlbum("A2", "Family", "/2020/09/Family")
	srv.AddAlbum("A3", "Evil", "/../escape")

	res, err := newAPI(srv, "").AlbumList(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("AlbumList failed: %v", err)
	}

	if len(res.Albums) != 2 {
		t.Fatalf("got %d albums, want 2", len(res.Albums))
	}
	if res.Albums[0].Name != "Summer" || res.Albums[1].Name != "Family" {
		t.Errorf("album order = %q, %q", res.Albums[0].Name, res.Albums[1].Name)
	}
	if want := filepath.Join("/out", "2020", "09", "Family"); res.Albums[1].Path != want {
		t.Errorf("Path = %q, want %q", res.Albums[1].Path, want)
	}
	if len(res.Rejected) != 1 || !errors.Is(res.Rejected[0], model.ErrUnsafePath) {
		t.Errorf("Rejected = %v, want one ErrUnsafePath", res.Rejected)
	}
}

func TestAPI_AlbumList_UnknownUser(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()
	srv.AddAlbum("A1", "Summer", "/Summer")

	_, err := newAPI(srv, "").AlbumList(context.Background(), "nobody")
	if !errors.Is(err, smugmug.ErrNoAlbums) {
		t.Errorf("error = %v, want ErrNoAlbums", err)
	}
}

func TestAPI_AlbumList_EmptyAccount(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()

	_, err := newAPI(srv, "").AlbumList(context.Background(), "jdoe")
	if !errors.Is(err, smugmug.ErrNoAlbums) {
		t.Errorf("error = %v, want ErrNoAlbums", err)
	}
}

func TestAPI_AlbumList_Session(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()
	srv.Session = "cookie"
	srv.AddAlbum("A1", "Private", "/Private")

	if _, err := newAPI(srv, "").AlbumList(context.Background(), "jdoe"); !errors.Is(err, smugmug.ErrNoAlbums) {
		t.Errorf("without session: error = %v, want ErrNoAlbums", err)
	}
	if _, err := newAPI(srv, "cookie").AlbumList(context.Background(), "jdoe"); err != nil {
		t.Errorf("with session: %v", err)
	}
}

func TestAPI_AlbumImages_Pagination(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()

	page := func(names ...string) []dto.JSONImage {
		var p []dto.JSONImage
		for _, n := range names {
			p = append(p, srv.Image(n, []byte(n), smugmugtest.Archived))
		}
		return p
	}
	srv.AddAlbum("A1", "Big", "/Big",
		page("1.jpg", "2.jpg"),
		page("3.jpg", "4.jpg", "5.jpg"),
		page("6.jpg"),
	)

	api := newAPI(srv, "")
	res, err := api.AlbumList(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("AlbumList failed: %v", err)
	}
	album := res.Albums[0]

	tests := []struct {
		name      string
		follow    bool
		wantItems int
		wantPages int
	}{
		{"first page only", false, 2, 1},
		{"all pages", true, 6, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := api.AlbumImages(context.Background(), album, tt.follow)
			if err != nil {
				t.Fatalf("AlbumImages failed: %v", err)
			}
			if len(got.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(got.Items), tt.wantItems)
			}
			if got.Pages != tt.wantPages {
				t.Errorf("pages = %d, want %d", got.Pages, tt.wantPages)
			}
			if len(album.Items) != tt.wantItems {
				t.Errorf("album.Items = %d, want %d", len(album.Items), tt.wantItems)
			}
		})
	}
}

func TestAPI_AlbumImages_Empty(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()
	srv.AddAlbum("A1", "Empty", "/Empty")

	api := newAPI(srv, "")
	res, err := api.AlbumList(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("AlbumList failed: %v", err)
	}

	got, err := api.AlbumImages(context.Background(), res.Albums[0], true)
	if err != nil {
		t.Fatalf("AlbumImages failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("items = %d, want 0", len(got.Items))
	}
}

func TestAPI_ResolveDownloadURL(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()

	video := srv.Image("clip.mp4", []byte("v"), smugmugtest.LargestVideo)
	photo := srv.Image("photo.jpg", []byte("p"), smugmugtest.LargestImage)
	archived := srv.Image("raw.dng", []byte("r"), smugmugtest.Archived)
	srv.AddAlbum("A1", "Mixed", "/Mixed", []dto.JSONImage{video, photo, archived})

	api := newAPI(srv, "")
	res, err := api.AlbumList(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("AlbumList failed: %v", err)
	}
	images, err := api.AlbumImages(context.Background(), res.Albums[0], false)
	if err != nil {
		t.Fatalf("AlbumImages failed: %v", err)
	}

	want := []string{
		srv.URL + smugmugtest.MediaPath(video),
		srv.URL + smugmugtest.MediaPath(photo),
		srv.URL + smugmugtest.MediaPath(archived),
	}
	for i, item := range images.Items {
		got, err := api.ResolveDownloadURL(context.Background(), item)
		if err != nil {
			t.Errorf("%s: %v", item.FileName, err)
			continue
		}
		if got != want[i] {
			t.Errorf("%s: URL = %q, want %q", item.FileName, got, want[i])
		}
	}

	if !images.Items[0].IsVideo {
		t.Error("clip.mp4 should be marked as video")
	}
	if kw := images.Items[1].Keywords; len(kw) != 2 || kw[0] != "one" {
		t.Errorf("Keywords = %v", kw)
	}
}

func TestAPI_ResolveDownloadURL_Nothing(t *testing.T) {
	api := smugmug.NewAPI(http.NewClient(), "http://127.0.0.1:1", &model.PathConfig{OutputDir: "/out"})
	item := &model.MediaItem{FileName: "x.jpg"}

	_, err := api.ResolveDownloadURL(context.Background(), item)
	if !errors.Is(err, smugmug.ErrNoDownloadURL) {
		t.Errorf("error = %v, want ErrNoDownloadURL", err)
	}
}
