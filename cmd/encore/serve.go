package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/server"
)

var (
	// flags for serve
	servePort int
	serveQR   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the companion web server",
	Long: `serves the media directory, the lyrics endpoint and the login-protected
home page until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		logger := newLogger(os.Stderr, cfg.LogLevel)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cat, err := openCatalog(cfg, logger)
		if err != nil {
			return err
		}

		store := lyrics.NewStore(logger)
		if cfg.LyricsFile != "" {
			if err := store.LoadFile(cfg.LyricsFile); err != nil {
				return fmt.Errorf("failed to load lyrics file: %w", err)
			}
			if err := store.Watch(ctx, cfg.LyricsFile); err != nil {
				logger.Warn("lyrics file will not be reloaded", "path", cfg.LyricsFile, "error", err)
			}
		}

		srv, err := server.New(server.Options{
			Port:          cfg.Port,
			MediaRoot:     cfg.MediaRoot,
			Catalog:       cat,
			Lyrics:        store,
			SessionSecret: []byte(cfg.SessionSecret),
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		figure.Write(os.Stdout, figure.NewFigure("encore", "", true))
		fmt.Printf("serving %s on port %d\n\n", cfg.MediaRoot, cfg.Port)

		if serveQR {
			url := fmt.Sprintf("http://%s:%d", server.LANAddress(), cfg.Port)
			code, err := server.QRCode(url)
			if err != nil {
				logger.Warn("could not render qr code", "error", err)
			} else {
				fmt.Println(code)
				fmt.Println(url)
			}
		}

		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 5000, "port to listen on")
	serveCmd.Flags().BoolVar(&serveQR, "qr", false, "print a qr code with the lan address")
	rootCmd.AddCommand(serveCmd)
}
