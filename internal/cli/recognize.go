package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/params"
	"github.com/adverant/nexus/ocr-worker/internal/processor"
)

var (
	recognizeParams    []string
	recognizePreset    string
	recognizePresetDir string
	recognizeDeadline  int
	recognizeFormat    string
	recognizeLanguages []string
	recognizeTessdata  string
)

// newEngineFactory opens the engine used by recognize; tests swap it for
// the scripted engine
var newEngineFactory = func(languages []string, tessdata string) (engine.Factory, error) {
	return processor.NewTesseractFactory(&processor.TesseractConfig{
		Languages:      languages,
		TessdataPrefix: tessdata,
	})
}

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize an image locally and print the result",
	Long: `Recognize runs one image through the same pipeline as the worker,
without storing the result. --preset takes either a preset name from
--preset-dir or a path to a preset file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	f := recognizeCmd.Flags()
	f.StringArrayVarP(&recognizeParams, "param", "p", nil, "engine parameter as name=value (repeatable)")
	f.StringVar(&recognizePreset, "preset", "", "preset name or preset file")
	f.StringVar(&recognizePresetDir, "preset-dir", os.Getenv("PRESET_DIR"), "directory of named presets")
	f.IntVar(&recognizeDeadline, "deadline", 0, "recognition deadline in milliseconds (0 = none)")
	f.StringVarP(&recognizeFormat, "format", "f", "text", "output: text, json, tree or layout")
	f.StringSliceVarP(&recognizeLanguages, "lang", "l", []string{"eng"}, "recognition languages")
	f.StringVar(&recognizeTessdata, "tessdata", os.Getenv("TESSDATA_PREFIX"), "tessdata directory")
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	switch recognizeFormat {
	case "text", "json", "tree", "layout":
	default:
		return fmt.Errorf("unknown output format %q", recognizeFormat)
	}

	assignments, err := parseAssignments(recognizeParams)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	presets, err := processor.NewPresetStore(recognizePresetDir)
	if err != nil {
		return err
	}
	preset := recognizePreset
	if params.IsPresetFile(preset) {
		p, err := params.LoadPreset(preset)
		if err != nil {
			return err
		}
		presets.Put(p)
		preset = p.Name
	}

	factory, err := newEngineFactory(recognizeLanguages, recognizeTessdata)
	if err != nil {
		return err
	}
	proc, err := processor.NewRecognitionProcessor(&processor.ProcessorConfig{
		EngineFactory: factory,
		Presets:       presets,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	res, err := proc.ProcessImage(ctx, &processor.ProcessRequest{
		Filename:    filepath.Base(args[0]),
		ImageBuffer: data,
		Parameters:  assignments,
		Preset:      preset,
		DeadlineMs:  recognizeDeadline,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch recognizeFormat {
	case "json":
		return writeJSON(out, res)
	case "tree":
		return writeJSON(out, res.Tree)
	case "layout":
		return writeJSON(out, res.Layout)
	default:
		_, err := fmt.Fprintln(out, res.Text)
		return err
	}
}

// parseAssignments turns name=value flags into a parameter map
func parseAssignments(list []string) (map[string]string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(list))
	for _, a := range list {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", a)
		}
		out[name] = value
	}
	return out, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
