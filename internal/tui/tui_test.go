package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/smugmug-downloader/internal/config"
	"github.com/handiism/smugmug-downloader/internal/download"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_TogglesDoNotTypeIntoInput(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlV})

	if !m.pages || !m.verbose {
		t.Errorf("pages=%v verbose=%v, want both enabled", m.pages, m.verbose)
	}
	if m.textInput.Value() != "" {
		t.Errorf("input = %q, want empty", m.textInput.Value())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if m.textInput.Value() != "p" || !m.pages {
		t.Errorf("typing p: input=%q pages=%v", m.textInput.Value(), m.pages)
	}
}

func TestModel_EnterRequiresUser(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
}

func TestModel_PrefillsUser(t *testing.T) {
	s := config.DefaultSettings()
	s.User = "jdoe"
	s.FollowPages = true

	m := NewModel(s)
	if m.textInput.Value() != "jdoe" || !m.pages {
		t.Errorf("input=%q pages=%v", m.textInput.Value(), m.pages)
	}
}

func TestModel_VerboseFiltering(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "debug", Level: download.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "hello", Level: download.LevelInfo}})

	if len(m.logs) != 1 || m.logs[0].Message != "hello" {
		t.Errorf("logs = %+v, want only hello", m.logs)
	}

	m.verbose = true
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "debug", Level: download.LevelVerbose}})
	if len(m.logs) != 2 {
		t.Errorf("verbose log not kept: %+v", m.logs)
	}
}

func TestModel_LogsAreCapped(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "x", Level: download.LevelInfo}})
	}
	if len(m.logs) != maxLogs {
		t.Errorf("kept %d logs, want %d", len(m.logs), maxLogs)
	}
}

func TestModel_InitErrorShowsError(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateInitializing

	m = update(t, m, InitDoneMsg{Err: errors.New("no albums were found")})
	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "no albums were found") {
		t.Error("error not rendered")
	}
}

func TestModel_DownloadDone(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateDownloading

	stats := download.Stats{FilesTotal: 4, FilesDownloaded: 3, FilesSkipped: 1}
	m = update(t, m, DownloadDoneMsg{Stats: stats})

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	if got := m.percent(); got != 1 {
		t.Errorf("percent = %v, want 1", got)
	}
	if !strings.Contains(m.View(), "3 downloaded, 1 skipped, 0 failed") {
		t.Error("summary not rendered")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput || m.stats != (download.Stats{}) {
		t.Errorf("reset failed: state=%v stats=%+v", m.state, m.stats)
	}
}

func TestModel_CancelledRunDoesNotLeakIntoNextRun(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateDownloading
	stale := m.run

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateError || !errors.Is(m.err, errCancelled) {
		t.Fatalf("after esc: state=%v err=%v", m.state, m.err)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput {
		t.Fatalf("after r: state = %v, want StateInput", m.state)
	}

	m = update(t, m, DownloadDoneMsg{Run: stale, Err: context.Canceled})
	m = update(t, m, ProgressMsg{Run: stale, Event: download.ProgressEvent{Message: "late", Level: download.LevelInfo}})
	if m.state != StateInput || m.err != nil || len(m.logs) != 0 {
		t.Errorf("stale messages applied: state=%v err=%v logs=%+v", m.state, m.err, m.logs)
	}
}

func TestModel_StaleInitIsDropped(t *testing.T) {
	s := config.DefaultSettings()
	s.User = "jdoe"
	m := NewModel(s)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateInitializing {
		t.Fatalf("state = %v, want StateInitializing", m.state)
	}
	stale := m.run

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateInitializing || m.run == stale {
		t.Fatalf("second run not started: state=%v run=%d", m.state, m.run)
	}

	events := make(chan download.ProgressEvent, 1)
	m = update(t, m, InitDoneMsg{Run: stale, Albums: []string{"Old"}, events: events})
	if m.state != StateInitializing || m.albums != nil {
		t.Errorf("stale init applied: state=%v albums=%v", m.state, m.albums)
	}
	if _, ok := <-events; ok {
		t.Error("events of the dropped run left open")
	}
}

func TestWaitForEvent(t *testing.T) {
	events := make(chan download.ProgressEvent, 1)
	events <- download.ProgressEvent{Message: "hi"}
	close(events)

	msg, ok := waitForEvent(3, events)().(ProgressMsg)
	if !ok || msg.Run != 3 || msg.Event.Message != "hi" {
		t.Errorf("first message = %+v", msg)
	}
	if msg := waitForEvent(3, events)(); msg != nil {
		t.Errorf("closed stream yielded %+v, want nil", msg)
	}
}
