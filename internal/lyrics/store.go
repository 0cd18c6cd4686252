package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store holds the lyrics the server hands out, keyed by song id then
// language code.
type Store struct {
	mu     sync.RWMutex
	data   map[string]map[string]string
	logger *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{data: seed(), logger: logger}
}

func seed() map[string]map[string]string {
	return map[string]map[string]string{
		"1": {
			"jp": "うっせぇ うっせぇ うっせぇわ\nあなたが思うより健康です\n全て正しい あなたが思う\n正しさの押し売り 馬鹿らしい",
			"es": "Cállate, cállate, cállate\nEstoy más sano de lo que piensas\nTodo es correcto, según tú\nTu justicia impuesta es ridícula",
			"en": "Shut up, shut up, shut up\nI'm healthier than you think\nEverything is right, in your opinion\nYour forced righteousness is absurd",
		},
		"2": {
			"jp": "踊りましょう 夜が明けるまで\nカオスなリズムで 心を解き放て\n全てを忘れて ただ踊れ",
			"es": "Bailemos hasta que amanezca\nCon un ritmo caótico, libera tu corazón\nOlvida todo y solo baila",
			"en": "Let's dance until dawn\nWith a chaotic rhythm, set your heart free\nForget everything and just dance",
		},
	}
}

func (s *Store) Get(songID string, lang string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.data[songID][lang]
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// Languages lists the codes available for songID.
func (s *Store) Languages(songID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, lang := range Languages {
		if s.data[songID][lang] != "" {
			out = append(out, lang)
		}
	}
	return out
}

// LoadFile merges a JSON override of the shape {"id": {"lang": "text"}} over
// the seeded lyrics. An empty text removes that entry.
func (s *Store) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read lyrics file: %w", err)
	}

	var override map[string]map[string]string
	if err := json.Unmarshal(raw, &override); err != nil {
		return fmt.Errorf("failed to decode lyrics file %s: %w", path, err)
	}

	merged := seed()
	for id, langs := range override {
		if merged[id] == nil {
			merged[id] = make(map[string]string, len(langs))
		}
		for lang, text := range langs {
			if text == "" {
				delete(merged[id], lang)
				continue
			}
			merged[id][lang] = text
		}
	}

	s.mu.Lock()
	s.data = merged
	s.mu.Unlock()
	return nil
}

// Watch reloads path whenever it changes, until ctx is done. The parent
// directory is watched so editors that replace the file are picked up.
func (s *Store) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.LoadFile(path); err != nil {
					s.logger.Warn("lyrics reload failed", "path", path, "error", err)
					continue
				}
				s.logger.Info("lyrics reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("lyrics watcher error", "error", err)
			}
		}
	}()

	return nil
}
