package lyrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoaderLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/get_lyrics/1/es":
			_, _ = io.WriteString(w, `{"lyrics":"Cállate\nEstoy"}`)
		case "/get_lyrics/1/xx":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"lyrics not found"}`)
		case "/get_lyrics/2/es":
			_, _ = io.WriteString(w, `not json`)
		case "/get_lyrics/3/es":
			_, _ = io.WriteString(w, `{"lyrics":""}`)
		case "/get_lyrics/4/es":
			// a lyrics field wins even on an error status
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"lyrics":"still here"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL + "/")

	tests := []struct {
		name    string
		songID  string
		lang    string
		text    string
		wantErr error
	}{
		{"found", "1", "es", "Cállate\nEstoy", nil},
		{"not found", "1", "xx", "", ErrUnavailable},
		{"bad body", "2", "es", "", ErrUnavailable},
		{"empty lyrics", "3", "es", "", ErrUnavailable},
		{"field present on error status", "4", "es", "still here", nil},
		{"no song", "", "es", "", ErrNoSong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loader.Load(context.Background(), tt.songID, tt.lang)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, expected %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Text != tt.text {
				t.Errorf("Text = %q, expected %q", got.Text, tt.text)
			}
			if got.Lang != tt.lang || got.SongID != tt.songID {
				t.Errorf("unexpected identity: %+v", got)
			}
		})
	}
}

func TestLoaderDefaultsLanguage(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, `{"lyrics":"x"}`)
	}))
	defer srv.Close()

	got, err := NewLoader(srv.URL).Load(context.Background(), "1", "")
	if err != nil {
		t.Fatal(err)
	}
	if path != "/get_lyrics/1/jp" || got.Lang != "jp" {
		t.Errorf("requested %q, lang %q", path, got.Lang)
	}
}

func TestLoaderServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader(url).Load(context.Background(), "1", "jp")
	if err == nil {
		t.Fatal("expected error when server is unreachable")
	}
}

func TestNextLanguage(t *testing.T) {
	tests := []struct{ in, expected string }{
		{"jp", "es"},
		{"es", "en"},
		{"en", "jp"},
		{"", "jp"},
		{"de", "jp"},
	}
	for _, tt := range tests {
		if got := NextLanguage(tt.in); got != tt.expected {
			t.Errorf("NextLanguage(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
	if LanguageName("es") != "Español" || LanguageName("xx") != "xx" {
		t.Error("unexpected language names")
	}
}

func TestStoreSeeded(t *testing.T) {
	s := NewStore(quietLogger())
	for _, id := range []string{"1", "2"} {
		for _, lang := range Languages {
			if _, ok := s.Get(id, lang); !ok {
				t.Errorf("missing lyrics for %s/%s", id, lang)
			}
		}
	}
	if _, ok := s.Get("3", "jp"); ok {
		t.Error("song 3 should have no lyrics")
	}
	if _, ok := s.Get("1", "fr"); ok {
		t.Error("fr should have no lyrics")
	}
	text, _ := s.Get("2", "en")
	if text != "Let's dance until dawn\nWith a chaotic rhythm, set your heart free\nForget everything and just dance" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestStoreLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lyrics.json")
	body := `{"1":{"es":"","fr":"Tais-toi"},"9":{"en":"new song"}}`
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(quietLogger())
	if err := s.LoadFile(p); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if _, ok := s.Get("1", "es"); ok {
		t.Error("empty override should remove the entry")
	}
	if text, _ := s.Get("1", "fr"); text != "Tais-toi" {
		t.Errorf("fr = %q", text)
	}
	if _, ok := s.Get("1", "jp"); !ok {
		t.Error("seeded jp should survive")
	}
	if langs := s.Languages("9"); len(langs) != 1 || langs[0] != "en" {
		t.Errorf("Languages(9) = %v", langs)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("["), 0644)
	if err := s.LoadFile(bad); err == nil {
		t.Error("expected decode error")
	}
	if text, _ := s.Get("1", "fr"); text != "Tais-toi" {
		t.Error("failed load should keep previous data")
	}
}

func TestStoreWatchReloads(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lyrics.json")
	if err := os.WriteFile(p, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewStore(quietLogger())
	if err := s.Watch(ctx, p); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(p, []byte(`{"1":{"en":"reloaded"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if text, _ := s.Get("1", "en"); text == "reloaded" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("store was not reloaded after the file changed")
}

func TestParseSynced(t *testing.T) {
	raw := "[00:01.50] first\n[00:04.00] second\nplain\n[bad] nope\n[01:02.25] third\n[00:09.00]"
	lines := ParseSynced(raw)
	if len(lines) != 3 {
		t.Fatalf("parsed %d lines, expected 3: %+v", len(lines), lines)
	}
	if lines[0].At != 1500*time.Millisecond || lines[0].Text != "first" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[2].At != 62*time.Second+250*time.Millisecond {
		t.Errorf("line 2 at %v", lines[2].At)
	}
	if ParseSynced("just words\nmore words") != nil {
		t.Error("plain text should not parse as synced")
	}
}

func TestFindCurrentLineIndex(t *testing.T) {
	lines := []TimedLine{{At: time.Second}, {At: 3 * time.Second}, {At: 5 * time.Second}}
	tests := []struct {
		pos      time.Duration
		expected int
	}{
		{0, -1},
		{time.Second, 0},
		{2 * time.Second, 0},
		{3 * time.Second, 1},
		{10 * time.Second, 2},
	}
	for _, tt := range tests {
		if got := FindCurrentLineIndex(lines, tt.pos); got != tt.expected {
			t.Errorf("FindCurrentLineIndex(%v) = %d, expected %d", tt.pos, got, tt.expected)
		}
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("[00:01.00] one\ntwo\n[00:03.00] three")
	if got != "one\ntwo\nthree" {
		t.Errorf("PlainText() = %q", got)
	}
}
