// Command docutils runs the document extraction service.
//
//	docutils serve              start the HTTP API
//	docutils extract FILE       extract one file and print the JSON result
//	docutils formats            list supported extensions
//	docutils mcp                serve the extraction tools over MCP stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v2"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/docutils/audit"
	"github.com/hazyhaar/docutils/config"
	"github.com/hazyhaar/docutils/docpipe"
	"github.com/hazyhaar/docutils/server"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "docutils",
		Usage:   "multi-format document text extraction",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API",
				Action: runServe,
			},
			{
				Name:      "extract",
				Usage:     "extract one file and print the JSON result",
				ArgsUsage: "FILE",
				Action:    runExtract,
			},
			{
				Name:   "formats",
				Usage:  "list supported extensions",
				Action: runFormats,
			},
			{
				Name:   "mcp",
				Usage:  "serve the extraction tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "docutils:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := audit.Open(cfg.AuditDB)
	if err != nil {
		return fmt.Errorf("open audit db: %w", err)
	}
	defer db.Close()

	auditor := audit.NewLogger(db)
	if err := auditor.Init(); err != nil {
		return fmt.Errorf("init audit schema: %w", err)
	}

	pipe := docpipe.New(docpipe.Config{
		MaxFileSize: cfg.MaxFileSize,
		SpoolDir:    cfg.SpoolDir,
		Logger:      logger,
	})

	handler := server.New(server.Options{
		Pipeline:      pipe,
		Audit:         auditor,
		Logger:        logger,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxFileSize:   cfg.MaxFileSize,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("docutils listening", "port", cfg.Port, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func runExtract(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: docutils extract FILE")
	}
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}

	pipe := docpipe.New(docpipe.Config{
		MaxFileSize: cfg.MaxFileSize,
		SpoolDir:    cfg.SpoolDir,
		Logger:      logger,
	})

	doc, err := pipe.ExtractFile(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func runFormats(_ *cli.Context) error {
	for _, ext := range docpipe.SupportedExtensions() {
		fmt.Println(ext)
	}
	return nil
}

func runMCP(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}

	pipe := docpipe.New(docpipe.Config{
		MaxFileSize: cfg.MaxFileSize,
		SpoolDir:    cfg.SpoolDir,
		Logger:      logger,
	})

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "docutils",
		Version: version,
	}, nil)
	pipe.RegisterMCP(srv)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("mcp server on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}
