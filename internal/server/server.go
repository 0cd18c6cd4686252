package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/lyrics"
)

const (
	DefaultHost     = "0.0.0.0"
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Host          string
	Port          int
	MediaRoot     string
	Catalog       *catalog.Catalog
	Lyrics        *lyrics.Store
	Users         *Users
	SessionSecret []byte
	Logger        *slog.Logger
}

// Server is the companion web server: static media, the lyrics endpoint and
// the logged-in home page.
type Server struct {
	opts     Options
	engine   *gin.Engine
	sessions *sessions
	logger   *slog.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("server needs a catalog")
	}
	if opts.Lyrics == nil {
		return nil, errors.New("server needs a lyrics store")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Users == nil {
		users, err := DefaultUsers()
		if err != nil {
			return nil, err
		}
		opts.Users = users
	}

	sess, err := newSessions(opts.SessionSecret)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		sessions: sess,
		logger:   opts.Logger,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders:   []string{"Content-Length", RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	r.SetHTMLTemplate(parseTemplates(map[string]any{
		"audioPath": catalog.AudioPath,
	}))

	if s.opts.MediaRoot != "" {
		r.Static("/static", s.opts.MediaRoot)
	}

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/get_lyrics/:song_id/:lang", s.getLyrics)
	r.GET("/api/songs", s.listSongs)
	r.GET("/login", s.loginForm)
	r.POST("/login", s.login)
	r.GET("/logout", s.logout)
	r.GET("/", s.requireSession(), s.home)

	return r
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr, "media_root", s.opts.MediaRoot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

func (s *Server) getLyrics(c *gin.Context) {
	text, ok := s.opts.Lyrics.Get(c.Param("song_id"), c.Param("lang"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lyrics not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lyrics": text})
}

type songsResponse struct {
	Songs    []catalog.Song `json:"songs"`
	TopSongs []string       `json:"top_songs"`
}

func (s *Server) listSongs(c *gin.Context) {
	c.JSON(http.StatusOK, songsResponse{
		Songs:    s.opts.Catalog.Songs(),
		TopSongs: s.opts.Catalog.TopSongs(),
	})
}

func (s *Server) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginPage{})
}

func (s *Server) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if err := s.opts.Users.Verify(username, password); err != nil {
		s.logger.Info("login rejected", "user", username)
		c.HTML(http.StatusOK, "login.html", loginPage{
			Error:    "Usuario o contraseña incorrectos",
			Username: username,
		})
		return
	}

	token, err := s.sessions.issue(username)
	if err != nil {
		s.logger.Error("session issue failed", "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

func (s *Server) home(c *gin.Context) {
	cat := s.opts.Catalog
	c.HTML(http.StatusOK, "index.html", indexPage{
		User:     c.GetString(userKey),
		AlbumArt: catalog.AlbumArtPath,
		Songs:    cat.Songs(),
		Top:      cat.Resolve(cat.TopSongs()),
	})
}
