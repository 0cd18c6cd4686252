package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/samber/lo"
)

const (
	MusicPrefix  = "/static/music/"
	VideoPrefix  = "/static/videos/"
	AlbumArtPath = "/static/images/ado_profile.jpg"
	videoSuffix  = "_video.mp4"
)

var (
	ErrEmptyID     = errors.New("song id is empty")
	ErrDuplicateID = errors.New("duplicate song id")
	ErrUnknownSong = errors.New("song not in catalog")
	ErrMissingFile = errors.New("song has no media file")
)

type Song struct {
	ID     string `json:"id"`
	File   string `json:"file"`
	Video  string `json:"video"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Info   string `json:"info"`
}

func (s *Song) IsValid() bool {
	if s == nil {
		return false
	}
	return s.ID != "" && s.File != ""
}

// Catalog is the ordered, read-only song registry.
type Catalog struct {
	order []string
	songs map[string]Song
}

func New(songs ...Song) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(songs)),
		songs: make(map[string]Song, len(songs)),
	}
	for _, s := range songs {
		if s.ID == "" {
			return nil, ErrEmptyID
		}
		if !s.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, s.ID)
		}
		if _, exists := c.songs[s.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		if s.Video == "" {
			s.Video = VideoFileFor(s.File)
		}
		c.order = append(c.order, s.ID)
		c.songs[s.ID] = s
	}
	return c, nil
}

func Default() *Catalog {
	c, _ := New(
		Song{
			ID:     "1",
			File:   "usseewa.mp3",
			Video:  "usseewa_video.mp4",
			Title:  "うっせぇわ (Usseewa)",
			Artist: "Ado",
			Info:   "Lanzada en 2020, \"Usseewa\" es el sencillo debut de Ado. La canción critica la conformidad social y se convirtió en un fenómeno viral, mostrando la potente y versátil voz de Ado.",
		},
		Song{
			ID:     "2",
			File:   "odo.mp3",
			Video:  "odo_video.mp4",
			Title:  "踊 (Odo)",
			Artist: "Ado",
			Info:   "\"Odo\", que significa \"bailar\", es una canción enérgica y caótica que invita a liberarse a través del baile. Fue lanzada en 2021 y se ha utilizado en diversas campañas.",
		},
	)
	return c
}

// LoadFile reads a JSON array of songs. Order in the file is catalog order.
func LoadFile(filePath string) (*Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var songs []Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", filePath, err)
	}

	return New(songs...)
}

func (c *Catalog) Get(id string) (Song, bool) {
	s, ok := c.songs[id]
	return s, ok
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.songs[id]
	return ok
}

func (c *Catalog) Len() int { return len(c.order) }

func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Songs() []Song {
	return lo.Map(c.order, func(id string, _ int) Song { return c.songs[id] })
}

// TopSongs lists the ids featured on the home page.
func (c *Catalog) TopSongs() []string {
	return c.IDs()
}

func (c *Catalog) IndexOf(id string) int {
	return lo.IndexOf(c.order, id)
}

// Next returns the circular successor of id. An id outside the catalog counts
// as index -1, so the first song follows it.
func (c *Catalog) Next(id string) (string, bool) {
	n := len(c.order)
	if n == 0 {
		return "", false
	}
	idx := c.IndexOf(id)
	return c.order[(idx+1)%n], true
}

// Previous returns the circular predecessor of id. The last song precedes an
// id outside the catalog.
func (c *Catalog) Previous(id string) (string, bool) {
	n := len(c.order)
	if n == 0 {
		return "", false
	}
	idx := c.IndexOf(id)
	if idx < 0 {
		return c.order[n-1], true
	}
	return c.order[(idx-1+n)%n], true
}

// Filter matches query against titles, case-insensitively.
func (c *Catalog) Filter(query string) []Song {
	q := strings.ToLower(strings.TrimSpace(query))
	return lo.Filter(c.Songs(), func(s Song, _ int) bool {
		return q == "" || strings.Contains(strings.ToLower(s.Title), q)
	})
}

// Resolve maps ids onto songs, skipping ids the catalog does not know.
func (c *Catalog) Resolve(ids []string) []Song {
	return lo.FilterMap(ids, func(id string, _ int) (Song, bool) {
		s, ok := c.songs[id]
		return s, ok
	})
}

// VideoFileFor derives the companion video name from the audio file name.
func VideoFileFor(audioFile string) string {
	if audioFile == "" {
		return ""
	}
	return strings.TrimSuffix(audioFile, path.Ext(audioFile)) + videoSuffix
}

func AudioPath(s Song) string { return MusicPrefix + s.File }

func VideoPath(s Song) string {
	video := s.Video
	if video == "" {
		video = VideoFileFor(s.File)
	}
	return VideoPrefix + video
}

// Enrich fills empty titles and artists from the tags of audio files found
// under mediaRoot/music. Songs without a local file are left as they are.
func (c *Catalog) Enrich(mediaRoot string) int {
	enriched := 0
	for _, id := range c.order {
		s := c.songs[id]
		if s.Title != "" && s.Artist != "" {
			continue
		}

		f, err := os.Open(filepath.Join(mediaRoot, "music", s.File))
		if err != nil {
			continue
		}
		meta, err := tag.ReadFrom(f)
		f.Close()
		if err != nil {
			continue
		}

		if s.Title == "" {
			s.Title = meta.Title()
		}
		if s.Artist == "" {
			s.Artist = meta.Artist()
		}
		if s.Title == "" {
			s.Title = strings.TrimSuffix(s.File, filepath.Ext(s.File))
		}
		c.songs[id] = s
		enriched++
	}
	return enriched
}
