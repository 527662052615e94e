package main

import (
	"context"

	"github.com/neurolearn/lecture-pipeline/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that exposes POST /transcribe (alias /api/transcribe),
POST /transcribe/stream for SSE progress, and GET /health.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(context.Background())
	if err != nil {
		return err
	}
	defer rt.shutdown()

	port := rt.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:           port,
		MaxUploadBytes: rt.cfg.MaxUploadBytes(),
	}, rt.pipeline, rt.logger)

	return srv.Start()
}
