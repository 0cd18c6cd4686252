package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
)

const (
	KeyFavorites   = "favorites"
	KeyRecentSongs = "recentSongs"
	KeyTheme       = "theme"
	KeyAutoPlay    = "autoPlay"
	KeyCrossfade   = "crossfade"
	KeyQuality     = "quality"

	MaxRecents   = 10
	MaxCrossfade = 12

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	ErrUnknownKey   = errors.New("unknown preference key")
	ErrInvalidValue = errors.New("invalid preference value")
)

// Keys lists every preference in display order.
var Keys = []string{KeyFavorites, KeyRecentSongs, KeyTheme, KeyAutoPlay, KeyCrossfade, KeyQuality}

var Qualities = []string{"low", "medium", "high"}

type Preferences struct {
	Favorites   []string `json:"favorites"`
	RecentSongs []string `json:"recentSongs"`
	Theme       string   `json:"theme"`
	AutoPlay    bool     `json:"autoPlay"`
	Crossfade   int      `json:"crossfade"`
	Quality     string   `json:"quality"`
}

func Defaults() Preferences {
	return Preferences{
		Favorites:   []string{},
		RecentSongs: []string{},
		Theme:       ThemeLight,
		AutoPlay:    false,
		Crossfade:   3,
		Quality:     "high",
	}
}

func (p Preferences) clone() Preferences {
	p.Favorites = slices.Clone(p.Favorites)
	p.RecentSongs = slices.Clone(p.RecentSongs)
	return p
}

// Store is the typed view over a Backend. Every successful Set is persisted
// before it returns.
type Store struct {
	mu      sync.Mutex
	backend Backend
	prefs   Preferences
	logger  *slog.Logger
}

func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{backend: backend, logger: logger}
	s.Load()
	return s
}

// Load re-reads every key from the backend. A missing or corrupt value falls
// back to that key's default without touching the others.
func (s *Store) Load() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Defaults()
	for _, key := range Keys {
		raw, ok, err := s.backend.Get(key)
		if err != nil {
			s.logger.Warn("preference read failed", "key", key, "err", err)
			continue
		}
		if !ok {
			continue
		}
		if err := decodeInto(&p, key, raw); err != nil {
			s.logger.Warn("preference value corrupt, using default", "key", key, "err", err)
		}
	}
	s.prefs = p
	return p.clone()
}

func (s *Store) Snapshot() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.clone()
}

// Set validates value for key and persists it immediately.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value)
}

// SetString parses a textual value, as typed on the command line, then sets it.
func (s *Store) SetString(key, raw string) error {
	var value any
	switch key {
	case KeyFavorites, KeyRecentSongs:
		var ids []string
		if strings.TrimSpace(raw) != "" {
			ids = lo.Map(strings.Split(raw, ","), func(id string, _ int) string { return strings.TrimSpace(id) })
		}
		value = lo.Compact(ids)
	case KeyTheme, KeyQuality:
		value = raw
	case KeyAutoPlay:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
		}
		value = b
	case KeyCrossfade:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", ErrInvalidValue, key)
		}
		value = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.Set(key, value)
}

// Reset removes the stored value so the default applies again.
func (s *Store) Reset(key string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(key); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}
	def := Defaults()
	raw, _ := encodeValue(&def, key)
	_ = decodeInto(&s.prefs, key, raw)
	return nil
}

func (s *Store) setLocked(key string, value any) error {
	next := s.prefs.clone()
	if err := assign(&next, key, value); err != nil {
		return err
	}

	raw, err := encodeValue(&next, key)
	if err != nil {
		return err
	}
	if err := s.backend.Put(key, raw); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	s.prefs = next
	return nil
}

// ToggleFavorite adds or removes id and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := slices.Clone(s.prefs.Favorites)
	nowFavorite := !slices.Contains(favorites, id)
	if nowFavorite {
		favorites = append(favorites, id)
	} else {
		favorites = lo.Without(favorites, id)
	}
	if err := s.setLocked(KeyFavorites, favorites); err != nil {
		return !nowFavorite, err
	}
	return nowFavorite, nil
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.prefs.Favorites, id)
}

func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.prefs.Favorites)
}

// AddRecent puts id at the front of the recents list unless it is already
// there somewhere; a replay does not reorder the list.
func (s *Store) AddRecent(id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.prefs.RecentSongs, id) {
		return nil
	}
	recents := append([]string{id}, s.prefs.RecentSongs...)
	if len(recents) > MaxRecents {
		recents = recents[:MaxRecents]
	}
	return s.setLocked(KeyRecentSongs, recents)
}

func (s *Store) Recents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.prefs.RecentSongs)
}

func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Theme
}

func (s *Store) ToggleTheme() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ThemeDark
	if s.prefs.Theme == ThemeDark {
		next = ThemeLight
	}
	if err := s.setLocked(KeyTheme, next); err != nil {
		return s.prefs.Theme, err
	}
	return next, nil
}

func (s *Store) SetAutoPlay(on bool) error { return s.Set(KeyAutoPlay, on) }

func (s *Store) SetCrossfade(seconds int) error { return s.Set(KeyCrossfade, seconds) }

func (s *Store) SetQuality(q string) error { return s.Set(KeyQuality, q) }

func (s *Store) Close() error {
	return s.backend.Close()
}

func assign(p *Preferences, key string, value any) error {
	switch key {
	case KeyFavorites, KeyRecentSongs:
		ids, ok := value.([]string)
		if !ok {
			return fmt.Errorf("%w: %s must be a list of song ids", ErrInvalidValue, key)
		}
		if len(lo.Uniq(ids)) != len(ids) || slices.Contains(ids, "") {
			return fmt.Errorf("%w: %s must hold distinct, non-empty ids", ErrInvalidValue, key)
		}
		if key == KeyRecentSongs {
			if len(ids) > MaxRecents {
				return fmt.Errorf("%w: %s holds at most %d ids", ErrInvalidValue, key, MaxRecents)
			}
			p.RecentSongs = slices.Clone(ids)
		} else {
			p.Favorites = slices.Clone(ids)
		}
	case KeyTheme:
		theme, ok := value.(string)
		if !ok || (theme != ThemeLight && theme != ThemeDark) {
			return fmt.Errorf("%w: theme must be %q or %q", ErrInvalidValue, ThemeLight, ThemeDark)
		}
		p.Theme = theme
	case KeyAutoPlay:
		on, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: autoPlay must be a boolean", ErrInvalidValue)
		}
		p.AutoPlay = on
	case KeyCrossfade:
		seconds, ok := toInt(value)
		if !ok || seconds < 0 || seconds > MaxCrossfade {
			return fmt.Errorf("%w: crossfade must be 0..%d seconds", ErrInvalidValue, MaxCrossfade)
		}
		p.Crossfade = seconds
	case KeyQuality:
		q, ok := value.(string)
		if !ok || !slices.Contains(Qualities, q) {
			return fmt.Errorf("%w: quality must be one of %s", ErrInvalidValue, strings.Join(Qualities, ", "))
		}
		p.Quality = q
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

func encodeValue(p *Preferences, key string) ([]byte, error) {
	switch key {
	case KeyFavorites:
		return json.Marshal(p.Favorites)
	case KeyRecentSongs:
		return json.Marshal(p.RecentSongs)
	case KeyTheme:
		return json.Marshal(p.Theme)
	case KeyAutoPlay:
		return json.Marshal(p.AutoPlay)
	case KeyCrossfade:
		return json.Marshal(p.Crossfade)
	case KeyQuality:
		return json.Marshal(p.Quality)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// decodeInto validates a stored value the same way Set does, so a hand-edited
// file cannot smuggle an out-of-range value in.
func decodeInto(p *Preferences, key string, raw []byte) error {
	var value any
	switch key {
	case KeyFavorites, KeyRecentSongs:
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return err
		}
		if ids == nil {
			ids = []string{}
		}
		value = ids
	case KeyTheme, KeyQuality:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			// values written by hand are often unquoted
			str = strings.TrimSpace(string(raw))
		}
		value = str
	case KeyAutoPlay:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		value = b
	case KeyCrossfade:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			var str string
			if json.Unmarshal(raw, &str) != nil {
				return err
			}
			if n, err = strconv.ParseFloat(str, 64); err != nil {
				return err
			}
		}
		value = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return assign(p, key, value)
}
