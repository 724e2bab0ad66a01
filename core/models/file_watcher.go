package models

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type FileWatcher struct {
	Watcher       *fsnotify.Watcher
	RootDir       string
	ExcludePaths  []string
	Extensions    []string
	Debounce      time.Duration
	DebounceTimer *time.Timer
	Mutex         sync.Mutex

	// Pending holds project-relative paths touched since the last flush.
	Pending map[string]bool
	// Forced is set when a directory went away and the pending set cannot
	// describe the change.
	Forced bool

	OnStart  func() error
	OnChange func(changed []string) error
	OnClose  func() error
}

func NewFileWatcher(rootDir string, excludePaths, extensions []string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", rootDir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		Watcher:      watcher,
		RootDir:      abs,
		ExcludePaths: excludePaths,
		Extensions:   extensions,
		Debounce:     debounce,
		Pending:      make(map[string]bool),
		OnStart:      func() error { return nil },
		OnChange:     func([]string) error { return fmt.Errorf("OnChange not set") },
		OnClose:      func() error { return nil },
	}, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func(changed []string) error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}
