package services

import (
	"context"
	"log"
	"sync"

	"github.com/ajramos/maildash/internal/mailbox"
	"golang.org/x/sync/errgroup"
)

// FolderServiceImpl implements FolderService
type FolderServiceImpl struct {
	api       FolderAPI
	mu        sync.RWMutex
	folders   map[mailbox.Folder][]mailbox.Message
	templates []mailbox.Template
	logger    *log.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(api FolderAPI) *FolderServiceImpl {
	return &FolderServiceImpl{
		api:     api,
		folders: make(map[mailbox.Folder][]mailbox.Message),
	}
}

// SetLogger sets the logger for debug output
func (s *FolderServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Load fetches folder and replaces its snapshot. Concurrent loads of the
// same folder are not deduplicated: whichever response arrives last wins.
func (s *FolderServiceImpl) Load(ctx context.Context, folder mailbox.Folder) []mailbox.Message {
	if folder == mailbox.Templates {
		s.loadTemplates(ctx)
		return []mailbox.Message{}
	}

	msgs, err := s.api.ListFolder(ctx, folder)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("FolderService: load %s failed: %v", folder, err)
		}
		return []mailbox.Message{}
	}

	if folder == mailbox.Inbox || folder == mailbox.Sent {
		msgs = withoutDeleted(msgs)
	}

	s.mu.Lock()
	s.folders[folder] = msgs
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Printf("FolderService: loaded %s (%d messages)", folder, len(msgs))
	}
	return cloneMessages(msgs)
}

func (s *FolderServiceImpl) loadTemplates(ctx context.Context) {
	tpls, err := s.api.ListTemplates(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("FolderService: load templates failed: %v", err)
		}
		return
	}
	if tpls == nil {
		tpls = []mailbox.Template{}
	}
	s.mu.Lock()
	s.templates = tpls
	s.mu.Unlock()
}

// Refresh loads the given folders in parallel and waits for all of them.
func (s *FolderServiceImpl) Refresh(ctx context.Context, folders ...mailbox.Folder) {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range uniqueFolders(folders) {
		folder := f
		g.Go(func() error {
			s.Load(gctx, folder)
			return nil
		})
	}
	_ = g.Wait()
}

// Snapshot returns a copy of the last loaded contents of folder.
func (s *FolderServiceImpl) Snapshot(folder mailbox.Folder) []mailbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.folders[folder])
}

// Templates returns the last loaded templates.
func (s *FolderServiceImpl) Templates() []mailbox.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mailbox.Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// Counts returns the size of every folder as of its last load.
func (s *FolderServiceImpl) Counts() map[mailbox.Folder]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[mailbox.Folder]int, len(mailbox.Folders))
	for _, f := range mailbox.Folders {
		counts[f] = len(s.folders[f])
	}
	counts[mailbox.Templates] = len(s.templates)
	return counts
}

// UnreadCount returns the number of unread inbox messages.
func (s *FolderServiceImpl) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.folders[mailbox.Inbox] {
		if m.IsUnread() {
			n++
		}
	}
	return n
}

// Reset forgets every snapshot.
func (s *FolderServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = make(map[mailbox.Folder][]mailbox.Message)
	s.templates = nil
}

func withoutDeleted(msgs []mailbox.Message) []mailbox.Message {
	out := make([]mailbox.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsDeleted() {
			out = append(out, m)
		}
	}
	return out
}

func cloneMessages(msgs []mailbox.Message) []mailbox.Message {
	out := make([]mailbox.Message, len(msgs))
	copy(out, msgs)
	return out
}

func uniqueFolders(folders []mailbox.Folder) []mailbox.Folder {
	seen := make(map[mailbox.Folder]bool, len(folders))
	out := make([]mailbox.Folder, 0, len(folders))
	for _, f := range folders {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
