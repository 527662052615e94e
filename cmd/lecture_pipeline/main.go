// Package main provides the entry point for the lecture pipeline server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lecture_pipeline",
	Short: "Lecture transcription and generation pipeline",
	Long: `lecture_pipeline turns lecture recordings and course documents into transcripts,
summaries, curriculum outlines, and quizzes. Run it as an HTTP service with "serve" or
drive a single request from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (environment variables take priority)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
