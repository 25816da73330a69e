package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/smugmug-downloader/internal/config"
	"github.com/handiism/smugmug-downloader/internal/download"
	"github.com/handiism/smugmug-downloader/internal/smugmug"
	"github.com/handiism/smugmug-downloader/internal/smugmug/dto"
	"github.com/handiism/smugmug-downloader/internal/smugmug/smugmugtest"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// parse runs flag parsing on a fresh root command and returns the settings
// it would use.
func parse(t *testing.T, args ...string) *config.Settings {
	t.Helper()

	var got *config.Settings
	o := &options{}
	cmd := newRootCmd(o)
	cmd.RunE = func(c *cobra.Command, _ []string) error {
		var err error
		got, err = loadSettings(c, o)
		return err
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute(%v): %v", args, err)
	}
	return got
}

func TestLoadSettings_Flags(t *testing.T) {
	t.Setenv(sessionEnv, "")

	s := parse(t, "-u", "jdoe", "-o", "/tmp/out", "-a", "Summer $ Family", "-m", "/2020", "-p", "--max-retries", "4", "-v")

	if s.User != "jdoe" || s.OutputDir != "/tmp/out" || s.Mask != "/2020" {
		t.Errorf("unexpected settings: %+v", s)
	}
	if len(s.Albums) != 2 || s.Albums[0] != "Summer" || s.Albums[1] != "Family" {
		t.Errorf("Albums = %q", s.Albums)
	}
	if !s.FollowPages || s.MaxRetries != 4 || s.LogLevel != "debug" {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestLoadSettings_AlbumsWithoutNames(t *testing.T) {
	t.Setenv(sessionEnv, "")

	for _, albums := range []string{"$", " $ $ "} {
		o := &options{}
		cmd := newRootCmd(o)
		cmd.RunE = func(c *cobra.Command, _ []string) error {
			_, err := loadSettings(c, o)
			return err
		}
		cmd.SetArgs([]string{"-u", "x", "-m", "/2020", "-a", albums})
		if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "names no album") {
			t.Errorf("albums %q: error = %v, want names no album", albums, err)
		}
	}
}

func TestLoadSettings_PagesValues(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"-u", "x"}, false},
		{[]string{"-u", "x", "-p"}, true},
		{[]string{"-u", "x", "--pages=yes"}, true},
		{[]string{"-u", "x", "--pages=no"}, false},
		{[]string{"-u", "x", "--pages=off"}, false},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if got := parse(t, tt.args...).FollowPages; got != tt.want {
				t.Errorf("FollowPages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadSettings_SessionFromEnv(t *testing.T) {
	t.Setenv(sessionEnv, "from-env")

	if s := parse(t, "-u", "x"); s.Session != "from-env" {
		t.Errorf("Session = %q, want from-env", s.Session)
	}
	if s := parse(t, "-u", "x", "-s", "from-flag"); s.Session != "from-flag" {
		t.Errorf("Session = %q, want from-flag", s.Session)
	}
}

func TestLoadSettings_FlagsOverrideFile(t *testing.T) {
	t.Setenv(sessionEnv, "")

	path := filepath.Join(t.TempDir(), "s.yaml")
	content := "user: fromfile\noutput_dir: /file/out\nmask: /2019\nmax_retries: 7\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := parse(t, "-c", path, "-m", "/2020")
	if s.User != "fromfile" || s.OutputDir != "/file/out" || s.MaxRetries != 7 {
		t.Errorf("file values lost: %+v", s)
	}
	if s.Mask != "/2020" {
		t.Errorf("Mask = %q, want flag value", s.Mask)
	}
}

func TestConfigSave(t *testing.T) {
	t.Setenv(sessionEnv, "")
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cmd := newRootCmd(&options{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "save", path, "-u", "jdoe", "-s", "cookie", "-p"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config save: %v", err)
	}

	s, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.User != "jdoe" || s.Session != "cookie" || !s.FollowPages {
		t.Errorf("saved settings: %+v", s)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output = %q", out.String())
	}
}

func TestRootCmd_RequiresUser(t *testing.T) {
	t.Setenv(sessionEnv, "")

	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "user is required") {
		t.Errorf("error = %v, want user is required", err)
	}
}

func TestRun(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()
	srv.AddAlbum("A1", "Summer", "/2020/Summer", []dto.JSONImage{srv.Image("a.jpg", []byte("a"), smugmugtest.Archived)})

	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)

	tests := []struct {
		name     string
		dryRun   bool
		wantFile bool
		wantLog  string
	}{
		{"dry run", true, false, "Dry run"},
		{"download", false, true, "Completed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			s := config.DefaultSettings()
			s.BaseURL = srv.URL
			s.User = "jdoe"
			s.OutputDir = t.TempDir()

			if err := run(context.Background(), s, logger, tt.dryRun); err != nil {
				t.Fatalf("run: %v", err)
			}

			_, err := os.Stat(filepath.Join(s.OutputDir, "2020", "Summer", "a.jpg"))
			if (err == nil) != tt.wantFile {
				t.Errorf("file exists = %v, want %v", err == nil, tt.wantFile)
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log missing %q:\n%s", tt.wantLog, buf.String())
			}
		})
	}
}

func TestRun_NoAlbums(t *testing.T) {
	srv := smugmugtest.NewServer("jdoe")
	defer srv.Close()

	s := config.DefaultSettings()
	s.BaseURL = srv.URL
	s.User = "nobody"
	s.OutputDir = t.TempDir()

	logger := log.New()
	logger.SetOutput(&bytes.Buffer{})

	err := run(context.Background(), s, logger, false)
	if !errors.Is(err, smugmug.ErrNoAlbums) {
		t.Errorf("error = %v, want ErrNoAlbums", err)
	}
	if exitCode(err) != 1 {
		t.Errorf("exit code = %d, want 1", exitCode(err))
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{context.Canceled, exitInterrupted},
		{fmt.Errorf("listing: %w", context.Canceled), exitInterrupted},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[download.ProgressLevel]log.Level{
		download.LevelInfo:    log.InfoLevel,
		download.LevelVerbose: log.DebugLevel,
		download.LevelWarning: log.WarnLevel,
		download.LevelError:   log.ErrorLevel,
		download.LevelSuccess: log.InfoLevel,
	}
	for in, want := range tests {
		if got := logLevel(in); got != want {
			t.Errorf("logLevel(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	s := config.DefaultSettings()
	s.LogFormat = "json"
	s.LogLevel = "debug"

	logger, err := newLogger(s)
	if err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*log.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON", logger.Formatter)
	}

	s.LogLevel = "loud"
	if _, err := newLogger(s); err == nil {
		t.Error("expected error for bad level")
	}
}
