package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/params"
)

var (
	paramsGroup  string
	paramsSearch string
	paramsJSON   bool
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Browse and validate engine parameters",
}

var paramsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog parameters",
	Args:  cobra.NoArgs,
	RunE:  runParamsList,
}

var paramsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show one parameter",
	Args:  cobra.ExactArgs(1),
	RunE:  runParamsGet,
}

var paramsCheckCmd = &cobra.Command{
	Use:   "check <preset-file>...",
	Short: "Validate preset files and print the values they change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParamsCheck,
}

func init() {
	paramsListCmd.Flags().StringVarP(&paramsGroup, "group", "g", "", "only list parameters of this group")
	paramsListCmd.Flags().StringVarP(&paramsSearch, "search", "s", "", "only list parameters whose name contains this text")
	paramsListCmd.Flags().BoolVar(&paramsJSON, "json", false, "print JSON")

	paramsCmd.AddCommand(paramsListCmd)
	paramsCmd.AddCommand(paramsGetCmd)
	paramsCmd.AddCommand(paramsCheckCmd)
	rootCmd.AddCommand(paramsCmd)
}

type paramView struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Default     string `json:"default"`
	Group       string `json:"group"`
	Description string `json:"description"`
	Deprecated  string `json:"deprecatedBy,omitempty"`
}

func viewOf(e params.Entry) paramView {
	return paramView{
		Name:        e.Name,
		Kind:        e.Kind.String(),
		Default:     e.Default.Format(),
		Group:       string(e.Group),
		Description: e.Description,
		Deprecated:  e.Deprecated,
	}
}

func runParamsList(cmd *cobra.Command, args []string) error {
	cat := params.Default()

	var entries []params.Entry
	switch {
	case paramsGroup != "":
		entries = cat.ByGroup(params.Group(paramsGroup))
		if len(entries) == 0 {
			return fmt.Errorf("unknown parameter group %q", paramsGroup)
		}
	case paramsSearch != "":
		entries = cat.Search(paramsSearch)
	default:
		entries = cat.Entries()
	}
	if paramsGroup != "" && paramsSearch != "" {
		entries = intersect(entries, cat.Search(paramsSearch))
	}

	out := cmd.OutOrStdout()
	if paramsJSON {
		views := make([]paramView, 0, len(entries))
		for _, e := range entries {
			views = append(views, viewOf(e))
		}
		return writeJSON(out, views)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDEFAULT\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Default.Format(), e.Description)
	}
	return tw.Flush()
}

func intersect(a, b []params.Entry) []params.Entry {
	keep := make(map[string]bool, len(b))
	for _, e := range b {
		keep[e.Name] = true
	}
	var out []params.Entry
	for _, e := range a {
		if keep[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

func runParamsGet(cmd *cobra.Command, args []string) error {
	e, ok := params.Default().Lookup(args[0])
	if !ok {
		return werrors.NewUnknownParameterError(args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:        %s\n", e.Name)
	fmt.Fprintf(out, "Kind:        %s\n", e.Kind)
	fmt.Fprintf(out, "Default:     %s\n", e.Default.Format())
	fmt.Fprintf(out, "Group:       %s\n", e.Group)
	fmt.Fprintf(out, "Description: %s\n", e.Description)
	if e.Deprecated != "" {
		fmt.Fprintf(out, "Deprecated:  use %s\n", e.Deprecated)
	}
	return nil
}

func runParamsCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, path := range args {
		p, err := params.LoadPreset(path)
		if err != nil {
			return err
		}
		reg := params.NewRegistry()
		if err := p.Apply(reg); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		fmt.Fprintf(out, "%s: ok (%d changed)\n", p.Name, len(reg.Changed()))
		for _, pair := range reg.Pairs() {
			fmt.Fprintf(out, "  %s = %s\n", pair.Name, pair.Value)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
