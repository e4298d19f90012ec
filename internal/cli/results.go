package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adverant/nexus/ocr-worker/internal/processor"
	"github.com/adverant/nexus/ocr-worker/internal/storage"
)

var (
	storeDatabaseURL string
	storeQdrantURL   string
	storeCollection  string
	similarLimit     int
	similarMinScore  float32
)

var similarCmd = &cobra.Command{
	Use:   "similar <result-id>",
	Short: "Find stored pages with a layout like a stored result",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

var jobCmd = &cobra.Command{
	Use:   "job <job-id>",
	Short: "Show the recorded status of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJob,
}

func init() {
	for _, c := range []*cobra.Command{similarCmd, jobCmd} {
		c.Flags().StringVar(&storeDatabaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL URL")
		c.Flags().StringVar(&storeQdrantURL, "qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		c.Flags().StringVar(&storeCollection, "collection", envOr("QDRANT_COLLECTION", "ocr_layouts"), "Qdrant collection")
	}
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 10, "maximum results")
	similarCmd.Flags().Float32Var(&similarMinScore, "min-score", 0.8, "minimum cosine similarity")

	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(jobCmd)
}

func openStorage() (*storage.StorageManager, error) {
	if storeDatabaseURL == "" {
		return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	return storage.NewStorageManager(storeDatabaseURL, storeQdrantURL, storeCollection, processor.FingerprintSize)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if similarLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	sm, err := openStorage()
	if err != nil {
		return err
	}
	defer sm.Close()

	hits, err := sm.SearchSimilarToResult(commandContext(cmd), args[0], similarLimit, similarMinScore)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tRESULT\tJOB\tCREATED\tTEXT")
	for _, h := range hits {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\t%s\n",
			h.SimilarityScore, h.ResultID, h.JobID, h.CreatedAt.Format(time.RFC3339), snippet(h.Text, 40))
	}
	return tw.Flush()
}

func runJob(cmd *cobra.Command, args []string) error {
	sm, err := openStorage()
	if err != nil {
		return err
	}
	defer sm.Close()

	job, err := sm.GetJobByID(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), job)
}

// snippet shortens text to one line of at most n runes
func snippet(text string, n int) string {
	r := []rune(text)
	for i, c := range r {
		if c == '\n' || c == '\t' {
			r[i] = ' '
		}
	}
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return string(r)
}
