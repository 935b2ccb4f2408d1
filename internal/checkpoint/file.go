package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileState is the on-disk shape of the checkpoint side file.
type fileState struct {
	Processed []string `json:"processed"`
	Failed    []string `json:"failed"`
}

// FileStore keeps the processed/failed sets in memory and mirrors them
// to a JSON side file. A missing or unreadable file loads as empty;
// resumability starts fresh but the run itself is unaffected.
type FileStore struct {
	mu        sync.Mutex
	path      string
	processed map[string]struct{}
	failed    map[string]struct{}
}

// OpenFileStore loads the side file at path, tolerating its absence.
func OpenFileStore(path string) *FileStore {
	s := &FileStore{
		path:      path,
		processed: make(map[string]struct{}),
		failed:    make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return s
	}
	for _, k := range state.Processed {
		s.processed[k] = struct{}{}
	}
	for _, k := range state.Failed {
		s.failed[k] = struct{}{}
	}
	return s
}

func (s *FileStore) IsDone(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processed[key]; ok {
		return true
	}
	_, ok := s.failed[key]
	return ok
}

func (s *FileStore) MarkProcessed(key string) {
	s.mu.Lock()
	s.processed[key] = struct{}{}
	s.mu.Unlock()
}

func (s *FileStore) MarkFailed(key string) {
	s.mu.Lock()
	s.failed[key] = struct{}{}
	s.mu.Unlock()
}

// Persist writes the full state atomically: temp file in the same
// directory, then rename. An interrupted persist leaves the previous
// snapshot intact.
func (s *FileStore) Persist() error {
	s.mu.Lock()
	state := fileState{
		Processed: sortedKeys(s.processed),
		Failed:    sortedKeys(s.failed),
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *FileStore) Processed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.processed)
}

func (s *FileStore) Failed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.failed)
}

func (s *FileStore) ClearFailed() error {
	s.mu.Lock()
	s.failed = make(map[string]struct{})
	s.mu.Unlock()
	return s.Persist()
}

func (s *FileStore) Close() error {
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
