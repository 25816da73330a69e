package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/smugmug-downloader/internal/config"
	"github.com/handiism/smugmug-downloader/internal/http"
	ioutils "github.com/handiism/smugmug-downloader/internal/io"
	"github.com/handiism/smugmug-downloader/internal/media"
	"github.com/handiism/smugmug-downloader/internal/model"
	"github.com/handiism/smugmug-downloader/internal/smugmug"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Stats is a snapshot of the download counters.
type Stats struct {
	Albums          int32
	AlbumsDone      int32
	FilesTotal      int32
	FilesDownloaded int32
	FilesSkipped    int32
	FilesFailed     int32
	BytesReceived   int64
}

// FilesProcessed returns the number of files that reached a final state.
func (s Stats) FilesProcessed() int32 {
	return s.FilesDownloaded + s.FilesSkipped + s.FilesFailed
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	httpClient *nethttp.Client
	metadata   media.MetadataWriter
}

// WithHTTPClient sets the underlying HTTP client used for API and media requests.
func WithHTTPClient(hc *nethttp.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithMetadataWriter sets the writer used when metadata writing is enabled.
// Without it an exiftool-backed writer is started on Initialize.
func WithMetadataWriter(w media.MetadataWriter) Option {
	return func(o *options) {
		o.metadata = w
	}
}

// Manager coordinates album downloads.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	api          *smugmug.API
	filter       *model.Filter
	imageService *ioutils.ImageService
	metadata     media.MetadataWriter

	albums []*model.Album

	albumsDone      int32
	filesTotal      int32
	filesDownloaded int32
	filesSkipped    int32
	filesFailed     int32
	receivedBytes   int64

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []http.Option{http.WithSession(settings.Session)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, http.WithHTTPClient(o.httpClient))
	}
	client := http.NewClient(clientOpts...)

	return &Manager{
		settings:     settings,
		httpClient:   client,
		api:          smugmug.NewAPI(client, settings.BaseURL, settings.ToPathConfig()),
		filter:       settings.ToFilter(),
		imageService: ioutils.NewImageService(),
		metadata:     o.metadata,
		onProgress:   onProgress,
	}
}

// Initialize fetches the album list and applies the album filter.
//
// Returns an error wrapping smugmug.ErrNoAlbums when the account has no
// readable albums. Albums rejected for unsafe paths are reported as
// warnings and skipped.
func (m *Manager) Initialize(ctx context.Context) error {
	m.progress(ProgressEvent{Message: "Downloading album list...", Level: LevelInfo})

	res, err := m.api.AlbumList(ctx, m.settings.User)
	if err != nil {
		if errors.Is(err, smugmug.ErrNoAlbums) {
			return fmt.Errorf("no albums were found for the user %s, the user may not exist or may be password protected: %w", m.settings.User, err)
		}
		return fmt.Errorf("failed to download album list: %w", err)
	}
	m.progress(ProgressEvent{Message: "done.", Level: LevelInfo})

	for _, rejected := range res.Rejected {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping album: %v", rejected), Level: LevelWarning})
	}

	albums := m.filter.Apply(res.Albums)
	if !m.filter.IsEmpty() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Selected %d of %d albums", len(albums), len(res.Albums)), Level: LevelVerbose})
	}
	if len(albums) == 0 {
		m.progress(ProgressEvent{Message: "No albums match the selection", Level: LevelWarning})
	}

	for _, album := range albums {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s", album), Level: LevelVerbose})
	}

	m.mu.Lock()
	m.albums = albums
	m.mu.Unlock()

	if m.settings.WriteMetadata && m.metadata == nil {
		w, err := media.NewExifWriter()
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Metadata will not be written: %v", err), Level: LevelWarning})
			m.metadata = media.NopWriter{}
		} else {
			m.metadata = w
		}
	}

	return nil
}

// PrepareDirectories creates one output directory per selected album.
//
// Albums whose directory cannot be created are reported and dropped.
func (m *Manager) PrepareDirectories() {
	m.progress(ProgressEvent{Message: "Creating output directories...", Level: LevelInfo})

	m.mu.Lock()
	kept := m.albums[:0]
	for _, album := range m.albums {
		if err := ioutils.EnsureDir(album.Path); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory for %s: %v", album.Name, err), Level: LevelError})
			continue
		}
		kept = append(kept, album)
	}
	m.albums = kept
	m.mu.Unlock()

	m.progress(ProgressEvent{Message: "done.", Level: LevelInfo})
}

// StartDownloads downloads every selected album, one item at a time.
//
// Per-item failures are reported and do not stop the run. Returns the
// context error when ctx is cancelled.
func (m *Manager) StartDownloads(ctx context.Context) error {
	m.mu.RLock()
	albums := m.albums
	m.mu.RUnlock()

	for _, album := range albums {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.downloadAlbum(ctx, album)
		atomic.AddInt32(&m.albumsDone, 1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.progress(ProgressEvent{Message: "Completed.", Level: LevelSuccess})
	return nil
}

// Close releases the metadata writer, if one was started.
func (m *Manager) Close() error {
	if m.metadata == nil {
		return nil
	}
	return m.metadata.Close()
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Stats {
	m.mu.RLock()
	albums := int32(len(m.albums))
	m.mu.RUnlock()

	return Stats{
		Albums:          albums,
		AlbumsDone:      atomic.LoadInt32(&m.albumsDone),
		FilesTotal:      atomic.LoadInt32(&m.filesTotal),
		FilesDownloaded: atomic.LoadInt32(&m.filesDownloaded),
		FilesSkipped:    atomic.LoadInt32(&m.filesSkipped),
		FilesFailed:     atomic.LoadInt32(&m.filesFailed),
		BytesReceived:   atomic.LoadInt64(&m.receivedBytes),
	}
}

// GetAlbumNames returns the names of all selected albums.
func (m *Manager) GetAlbumNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.albums))
	for i, album := range m.albums {
		names[i] = album.String()
	}
	return names
}

func (m *Manager) downloadAlbum(ctx context.Context, album *model.Album) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading album: %s", album.Name), Level: LevelInfo})

	res, err := m.api.AlbumImages(ctx, album, m.settings.FollowPages)
	if err != nil {
		if ctx.Err() == nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error listing %s: %v", album.Name, err), Level: LevelError})
		}
		return
	}
	for _, rejected := range res.Rejected {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping item in %s: %v", album.Name, rejected), Level: LevelWarning})
	}
	if len(res.Items) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No media in %s", album.Name), Level: LevelVerbose})
		return
	}
	if res.Pages > 1 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Listed %d items over %d pages in %s", len(res.Items), res.Pages, album.Name), Level: LevelVerbose})
	}

	atomic.AddInt32(&m.filesTotal, int32(len(res.Items)))

	failed := 0
	for _, item := range res.Items {
		if ctx.Err() != nil {
			return
		}
		if err := m.downloadItem(ctx, item); err != nil {
			if ctx.Err() != nil {
				return
			}
			failed++
			atomic.AddInt32(&m.filesFailed, 1)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", item.FileName, err), Level: LevelError})
		}
	}

	if failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded album: %s", album.Name), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d items failed", album.Name, failed), Level: LevelWarning})
	}
}

func (m *Manager) downloadItem(ctx context.Context, item *model.MediaItem) error {
	if ioutils.FileExists(item.Path) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", item.FileName), Level: LevelVerbose})
		atomic.AddInt32(&m.filesSkipped, 1)
		return nil
	}

	url, err := m.api.ResolveDownloadURL(ctx, item)
	if err != nil {
		return err
	}
	if !item.HasVariant() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Using archived original for %s", item.FileName), Level: LevelVerbose})
	}

	n, err := m.fetch(ctx, item, url)
	if err != nil {
		return err
	}

	if m.settings.VerifyImages && m.imageService.CanVerify(item.Path) {
		if err := m.imageService.Verify(ctx, item.Path); err != nil {
			if rmErr := ioutils.RemoveIfExists(item.Path); rmErr != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error removing %s: %v", item.Path, rmErr), Level: LevelWarning})
			}
			return err
		}
	}

	if m.settings.WriteMetadata && m.metadata != nil {
		if err := m.metadata.WriteMetadata(item); err != nil && !errors.Is(err, media.ErrVideo) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing metadata to %s: %v", item.FileName, err), Level: LevelWarning})
		}
	}

	atomic.AddInt32(&m.filesDownloaded, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s (%d bytes)", item.FileName, n), Level: LevelVerbose})
	return nil
}

// fetch streams url into item.Path, retrying connection failures after a
// fixed delay. MaxRetries of zero retries without limit.
func (m *Manager) fetch(ctx context.Context, item *model.MediaItem, url string) (int64, error) {
	for tries := 0; ; tries++ {
		var n int64
		err := ioutils.WriteStreamAtomic(ctx, item.Path, func(w io.Writer) error {
			var last int64
			var err error
			n, err = m.httpClient.DownloadFile(ctx, url, w, func(written, _ int64) {
				atomic.AddInt64(&m.receivedBytes, written-last)
				last = written
			})
			return err
		})
		if err == nil {
			return n, nil
		}
		if !http.IsConnectionError(err) {
			return 0, err
		}
		if m.settings.MaxRetries > 0 && tries >= m.settings.MaxRetries {
			return 0, fmt.Errorf("giving up after %d retries: %w", tries, err)
		}

		m.progress(ProgressEvent{Message: fmt.Sprintf("Connection failed for %s, retry %d in %s: %v", item.FileName, tries+1, m.retryDelay(), err), Level: LevelWarning})
		if err := m.waitForRetry(ctx); err != nil {
			return 0, err
		}
	}
}

func (m *Manager) retryDelay() time.Duration {
	return time.Duration(m.settings.RetryDelay * float64(time.Second))
}

func (m *Manager) waitForRetry(ctx context.Context) error {
	t := time.NewTimer(m.retryDelay())
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
