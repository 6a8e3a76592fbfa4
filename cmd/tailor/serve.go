package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MoKho/resume-api-backend/internal/config"
	"github.com/MoKho/resume-api-backend/internal/gdoc"
	"github.com/MoKho/resume-api-backend/internal/gdrive"
	"github.com/MoKho/resume-api-backend/internal/jobs"
	"github.com/MoKho/resume-api-backend/internal/llm"
	"github.com/MoKho/resume-api-backend/internal/server"
	"github.com/MoKho/resume-api-backend/internal/store"
	"github.com/MoKho/resume-api-backend/internal/tailor"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tailor server",
	Long: `Start the tailor HTTP server and background workers.

The server provides:
  - POST /v1/applications/{id}/tailor - Queue a tailoring job
  - GET  /v1/jobs/{id}                - Check job status
  - POST /v1/documents/{id}/patch     - Patch a document directly
  - POST /v1/profiles/{id}/histories/extract - Parse work history text
  - GET  /health                      - Basic health check

Examples:
  tailor serve                    # Start on default port 8080
  tailor serve --port 3000        # Start on custom port
  tailor serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()
		cfg := cm.Get()

		st, err := store.New(cfg.Store.Dir)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		credFile := config.ResolveEnvVars(cfg.Google.CredentialsFile)
		ts, err := gdrive.TokenSourceFromFile(ctx, credFile)
		if err != nil {
			return fmt.Errorf("google credentials: %w", err)
		}

		docSvc, err := gdoc.NewDocumentService(ctx, ts)
		if err != nil {
			return fmt.Errorf("docs service: %w", err)
		}
		patcher := gdoc.NewPatcher(docSvc, logger)

		files, err := gdrive.NewService(ctx, ts, logger)
		if err != nil {
			return fmt.Errorf("drive service: %w", err)
		}

		gen, err := llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:            config.ResolveEnvVars(cfg.LLM.APIKey),
			Model:             cfg.LLM.Model,
			RequestsPerSecond: cfg.LLM.RateLimit,
			Logger:            logger,
		})
		if err != nil {
			return fmt.Errorf("llm: %w", err)
		}

		manager := jobs.NewManager(st.JobQueue(), logger)
		manager.Register(tailor.New(tailor.Config{
			Storage:  st,
			LLM:      gen,
			Files:    files,
			Patcher:  patcher,
			FolderID: cfg.Google.SharedFolderID,
			Logger:   logger,
		}))

		for i := 0; i < cfg.Worker.Count; i++ {
			w := jobs.NewWorker(manager, jobs.WorkerConfig{
				Name:         fmt.Sprintf("worker-%d", i),
				PollInterval: cfg.Worker.PollInterval,
				BatchSize:    cfg.Worker.BatchSize,
				Lease:        cfg.Worker.Lease,
				JobTimeout:   cfg.Worker.JobTimeout,
				Logger:       logger,
			})
			go w.Start(ctx)
		}

		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == "" {
			port = cfg.Server.Port
		}

		srv := server.New(server.Config{
			Host:    host,
			Port:    port,
			Jobs:    manager,
			Records: st,
			Patcher: patcher,
			Gen:     gen,
			Logger:  logger,
		})

		// Blocks until shutdown.
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config)")

	rootCmd.AddCommand(serveCmd)
}
