package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pdf-webhook/internal/config"
	"pdf-webhook/internal/domain"
	"pdf-webhook/internal/handler"
	apperrors "pdf-webhook/pkg/errors"
	"pdf-webhook/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "pdf-webhook",
		Usage: "Extract text, images and metadata from PDF documents over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "dotenv file loaded before reading the environment",
				EnvVars: []string{"ENV_FILE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "optional YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			// Load environment variables from .env file
			if err := godotenv.Load(c.String("env-file")); err != nil {
				log.Printf("Warning: .env file not found or could not be loaded: %v", err)
			}
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP webhook server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "port",
						Usage: "listen port, overrides PORT",
					},
				},
				Action: serve,
			},
			{
				Name:      "extract",
				Usage:     "run one operation on a local PDF and print the JSON result",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "op",
						Value: "text",
						Usage: "operation: text, images or info",
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "password for encrypted documents",
						EnvVars: []string{"PDF_PASSWORD"},
					},
				},
				Action: extract,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	if port := c.String("port"); port != "" {
		if err := os.Setenv("PORT", port); err != nil {
			return err
		}
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	// Wiring
	container, err := config.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	// Handlers
	submissions := handler.NewSubmissionReader(cfg.GetAllowedExtensions(), cfg.GetMaxContentLength())
	webhookHandler := handler.NewWebhookHandler(submissions, container.PDFService, container.Logger)
	healthHandler := handler.NewHealthHandler(cfg)

	// Router
	router := handler.NewRouter(cfg, webhookHandler, healthHandler, container.Logger)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	// Run server
	go func() {
		container.Logger.Info("Server listening",
			"address", server.Addr,
			"base_path", cfg.GetBasePath(),
			"max_content_length", cfg.GetMaxContentLength(),
			"text_engine", cfg.GetTextEngine(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			container.Logger.Error("Server failed to start", err)
			return err
		}
		return nil
	case sig := <-quit:
		container.Logger.Info("Shutting down server...", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
	return nil
}

func extract(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("extract requires a FILE argument", 2)
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	// stdout carries the JSON result
	appLogger := logger.NewLoggerWithOutput(cfg.GetLogLevel(), cfg.GetLogFormat(), "stderr")
	container, err := config.NewContainerWithLogger(cfg, appLogger)
	if err != nil {
		return err
	}
	defer container.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read %s: %v", path, err), 1)
	}

	sub := &domain.RawSubmission{
		Data:     data,
		Password: c.String("password"),
		Source:   domain.SourceLocalFile,
		Filename: filepath.Base(path),
	}

	var result interface{}
	switch op := c.String("op"); op {
	case "text":
		result, err = container.PDFService.ExtractText(c.Context, sub)
	case "images":
		result, err = container.PDFService.ExtractImages(c.Context, sub)
	case "info":
		result, err = container.PDFService.DocumentInfo(c.Context, sub)
	default:
		return cli.Exit(fmt.Sprintf("unknown operation %q (want text, images or info)", op), 2)
	}

	if err != nil {
		_ = writeIndentedJSON(os.Stdout, map[string]string{"error": apperrors.GetMessage(err)})
		return cli.Exit("", 1)
	}
	return writeIndentedJSON(os.Stdout, result)
}

func writeIndentedJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
