package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"karolbroda.com/encore/internal/config"
)

var (
	ErrNoSong      = errors.New("no song selected")
	ErrUnavailable = errors.New("lyrics not available")
)

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

const maxBodyBytes = 1 << 20

type Lyrics struct {
	SongID string
	Lang   string
	Text   string
	// Lines is set when the text carries LRC timestamps.
	Lines []TimedLine
}

func (l Lyrics) Synced() bool { return len(l.Lines) > 0 }

type response struct {
	Lyrics *string `json:"lyrics"`
	Error  string  `json:"error,omitempty"`
}

func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   time.Duration(config.HTTPTimeoutSeconds) * time.Second,
		}
	})
	return httpClient
}

// Loader fetches lyrics from the companion server. It keeps no cache; every
// call is a fresh request.
type Loader struct {
	BaseURL string
	Client  *http.Client
}

func NewLoader(baseURL string) *Loader {
	return &Loader{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Load asks for the lyrics of songID in lang. Any response without a lyrics
// field counts as unavailable, whatever its status code.
func (l *Loader) Load(ctx context.Context, songID string, lang string) (Lyrics, error) {
	if songID == "" {
		return Lyrics{}, ErrNoSong
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	if l.BaseURL == "" {
		return Lyrics{}, errors.New("lyrics base url is empty")
	}

	requestURL := fmt.Sprintf("%s/get_lyrics/%s/%s", l.BaseURL, url.PathEscape(songID), url.PathEscape(lang))

	timeout := time.Duration(config.HTTPTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Lyrics{}, fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "encore/1.0")

	client := l.Client
	if client == nil {
		client = getHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return Lyrics{}, fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Lyrics{}, fmt.Errorf("failed to read lyrics response: %w", err)
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return Lyrics{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if payload.Lyrics == nil || *payload.Lyrics == "" {
		return Lyrics{}, ErrUnavailable
	}

	text := *payload.Lyrics
	return Lyrics{
		SongID: songID,
		Lang:   lang,
		Text:   text,
		Lines:  ParseSynced(text),
	}, nil
}
