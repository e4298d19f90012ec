package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adverant/nexus/ocr-worker/internal/engine/tesseract"
	"github.com/adverant/nexus/ocr-worker/internal/params"
)

var (
	version   = "dev"
	gitCommit = "none"
)

// SetVersionInfo sets the version information from main
func SetVersionInfo(v, commit string) {
	version = v
	gitCommit = commit
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ocrctl %s (%s)\n", version, gitCommit)
		fmt.Fprintf(out, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "  Tesseract:  %v\n", tesseract.Available)
		fmt.Fprintf(out, "  Parameters: %d\n", params.Default().Len())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
