package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"karolbroda.com/encore/internal/artwork"
	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/config"
	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/media"
	"karolbroda.com/encore/internal/mpris"
	"karolbroda.com/encore/internal/notify"
	"karolbroda.com/encore/internal/playback"
	"karolbroda.com/encore/internal/terminal"
	"karolbroda.com/encore/internal/ui"
	"karolbroda.com/encore/internal/visualizer"
)

const subscriberBuffer = 32

var (
	noMPRIS  bool
	notifyOn bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the interactive player",
	Long:  `starts the terminal player with the playlist, visualizer and lyrics panel.`,
	RunE:  runPlayer,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noMPRIS, "no-mpris", false, "do not export the player on the session bus")
	rootCmd.PersistentFlags().BoolVar(&notifyOn, "notify", false, "mirror playback failures as desktop notifications")
	rootCmd.AddCommand(runCmd)
}

func runPlayer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	defer terminal.Reset(os.Stdout)

	cfg := loadConfig(cmd)
	if noMPRIS {
		cfg.MPRIS = false
	}
	if cmd.Flags().Changed("notify") {
		cfg.Notify = notifyOn
	}

	logger, logFile, err := fileLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, logging disabled\n", err)
		logger = newLogger(io.Discard, cfg.LogLevel)
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	cat, err := openCatalog(cfg, logger)
	if err != nil {
		return err
	}

	store, err := openPrefs(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	policy, err := playback.ParseShufflePolicy(cfg.ShufflePolicy)
	if err != nil {
		logger.Warn("invalid shuffle policy, using any", "error", err)
	}

	output := media.NewSpeakerOutput(media.DefaultSampleRate, 0)
	defer output.Close()

	tap := media.NewTap(0)
	audio := media.NewAudioElement(output, cfg.MediaRoot, tap)
	defer audio.Close()

	video := media.NewFollower(media.FollowerOptions{
		MediaRoot: cfg.MediaRoot,
		Duration:  cfg.VideoDuration,
		Leader:    audio,
	})
	defer video.Close()

	controller, err := playback.New(playback.Config{
		Catalog: cat,
		Prefs:   store,
		Audio:   audio,
		Video:   video,
		Output:  output,
		Shuffle: policy,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create playback controller: %w", err)
	}

	vis := visualizer.New(tap, visualizer.Options{FFTSize: visualizer.DefaultFFTSize, FPS: 30})
	if err := vis.Start(ctx); err != nil {
		return err
	}

	go func() {
		if err := controller.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("playback loop stopped", "error", err)
		}
	}()

	broadcaster := playback.NewBroadcaster()

	model := ui.NewModel(ui.Config{
		Context:    ctx,
		Transport:  controller,
		Catalog:    cat,
		Prefs:      store,
		Lyrics:     lyrics.NewLoader(cfg.ServerURL),
		Visualizer: vis,
		Events:     broadcaster.Subscribe(subscriberBuffer),
		Notifier:   notify.New(cfg.Notify, artFile(cfg.MediaRoot), logger),
		Artwork: func(ctx context.Context) (image.Image, error) {
			return artwork.Load(ctx, cfg.MediaRoot, cfg.ServerURL)
		},
		TermCaps:   terminal.DetectCapabilities(),
		LyricsLang: cfg.LyricsLang,
		Logger:     logger,
	})

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if cfg.MPRIS {
		exporter, err := startMPRIS(controller, cat, cfg, logger, program.Quit)
		if err != nil {
			logger.Warn("mpris unavailable", "error", err)
		} else {
			defer exporter.Close()
			go exporter.Run(ctx, broadcaster.Subscribe(subscriberBuffer))
		}
	}

	go broadcaster.Run(ctx, controller.Events())

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err = program.Run()
	controller.Stop()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}

func startMPRIS(player mpris.Player, cat *catalog.Catalog, cfg *config.Config, logger *slog.Logger, quit func()) (*mpris.Exporter, error) {
	conn, err := mpris.Connect()
	if err != nil {
		return nil, err
	}

	exporter, err := mpris.NewExporter(conn, player, mpris.Options{
		Name:    config.DefaultMPRISName,
		Catalog: cat,
		ArtFile: artFile(cfg.MediaRoot),
		Quit:    quit,
		Logger:  logger,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := exporter.Start(); err != nil {
		conn.Close()
		return nil, err
	}
	return exporter, nil
}

// artFile is the local album art, advertised to MPRIS and used as the
// notification icon.
func artFile(mediaRoot string) string {
	return media.ResolvePath(mediaRoot, catalog.AlbumArtPath)
}
