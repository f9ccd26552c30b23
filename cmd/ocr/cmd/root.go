package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jrbeckett/speedreader/internal/models"
	"github.com/jrbeckett/speedreader/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ocr",
	Short: "SpeedReader OCR: tiled text detection and recognition",
	Long: `ocr runs images through a DBNet-style text detector and an
SVTRv2-style text recognizer, emitting the bounding boxes, decoded text, and
confidence of every detected region as JSON.

Examples:
  ocr image photo.jpg
  ocr image *.png --models-dir ./models`,
}

func init() {
	v, commit, date := version.Info()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	defaultModelsDir := models.DefaultModelsDir
	if envDir := os.Getenv(models.EnvModelsDir); envDir != "" {
		defaultModelsDir = envDir
	}
	rootCmd.PersistentFlags().String("models-dir", defaultModelsDir,
		"directory containing ONNX models (can also be set via "+models.EnvModelsDir+")")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		setupLogging(cmd)
	}
}

func setupLogging(cmd *cobra.Command) {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	switch levelFlag {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
