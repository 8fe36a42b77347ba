package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/swaysplit/internal/layout"
	"github.com/bryanchriswhite/swaysplit/internal/window"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the focused and master windows",
	Long: `Fetch the current sway tree once and print the focused window, the
master window and the split command the daemon would send.`,
	Example: `  # Show the current state
  swaysplit state

  # Show it as JSON
  swaysplit state --format json

  # Send the command as well
  swaysplit state --apply`,
	RunE: runState,
}

var (
	stateFormat string
	stateApply  bool
)

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVarP(&stateFormat, "format", "f", "table", "output format (table, yaml or json)")
	stateCmd.Flags().BoolVar(&stateApply, "apply", false, "send the layout command")
}

func runState(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	backend, err := window.NewSwayBackend(configMgr.Get().SocketPath)
	if err != nil {
		return err
	}

	decision, err := window.NewManager(backend).Evaluate(cmd.Context(), stateApply)
	if err != nil {
		return err
	}

	return printDecision(cmd.OutOrStdout(), stateFormat, decision)
}

func printDecision(out io.Writer, format string, d *window.Decision) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(d)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		return encoder.Encode(d)
	case "table":
		return printDecisionTable(out, d)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table', 'yaml' or 'json')", format)
	}
}

func printDecisionTable(out io.Writer, d *window.Decision) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ROLE\tPID\tX")
	fmt.Fprintln(w, "----\t---\t-")
	printWindowRow(w, "focused", d.State.Focused)
	printWindowRow(w, "master", d.State.Master)
	if err := w.Flush(); err != nil {
		return err
	}

	command := "none"
	if d.Command != "" {
		command = string(d.Command)
	}
	if d.Sent {
		command += " (sent)"
	}
	_, err := fmt.Fprintf(out, "\nCommand: %s\n", command)
	return err
}

func printWindowRow(w io.Writer, role string, win *layout.Window) {
	if win == nil {
		fmt.Fprintf(w, "%s\t-\t-\n", role)
		return
	}
	fmt.Fprintf(w, "%s\t%d\t%d\n", role, win.PID, win.X)
}
