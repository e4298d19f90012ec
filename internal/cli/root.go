// Package cli implements ocrctl, the operator command line for the OCR
// worker.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/adverant/nexus/ocr-worker/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ocrctl",
	Short: "Inspect engine parameters, run and queue recognition jobs",
	Long: `ocrctl works against the same engine parameter catalog, presets and
queues as the OCR worker.

  ocrctl params list --group segmentation
  ocrctl recognize scan.png --param tessedit_pageseg_mode=4
  ocrctl enqueue scan.png --preset digits`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd.ErrOrStderr(), verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
}

// configureLogging keeps stdout for command output
func configureLogging(w io.Writer, verbose bool) {
	logging.SetOutput(w)
	if verbose {
		logging.SetLevel(logging.LevelDebug)
		log.SetOutput(w)
		return
	}
	logging.SetLevel(logging.LevelWarn)
	log.SetOutput(io.Discard)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
