package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"mention-picker/mention"
	"mention-picker/picker"
	"mention-picker/suggest"
	"mention-picker/ui/overlay"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query [text]",
		Short: "List mention suggestions without a terminal UI",
		Long: `query runs the picker headlessly for the text typed after the trigger and
prints the suggestions. --mode opens the files or symbols category first.
Each --select confirms the item at that index of the current list, in order;
selected mentions are printed as placeholders instead of the list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runQuery,
	}
	queryCmd.Flags().StringP("mode", "m", "", "Open a category first: file or symbol")
	queryCmd.Flags().IntSliceP("select", "s", nil, "Confirm the item at this index (repeatable)")
	queryCmd.Flags().Bool("view", false, "Print the dropdown as it is drawn in the terminal")
	return queryCmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	w, err := openWorkspace(cmd, cfg)
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	mode, _ := cmd.Flags().GetString("mode")
	// Categories are only listed for an empty query, so a mode is opened
	// before the query is typed.
	initial := query
	if mode != "" {
		initial = ""
	}
	c, err := picker.NewForWorkspace(w, cfg.Sources.Files, cfg.Sources.Symbols, cfg.Sources.Changes, picker.Options{
		Query:        initial,
		QueryDelay:   -1,
		LoadingDelay: -1,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	var selected []mention.Attributes
	observe := func(msg tea.Msg) {
		if sel, ok := msg.(picker.MentionSelectedMsg); ok {
			selected = append(selected, sel.Attributes)
		}
	}
	run := func(next tea.Cmd) error {
		if err := picker.Run(cmd.Context(), c, next, observe); err != nil {
			return err
		}
		return c.LastError()
	}

	if err := run(c.Init()); err != nil {
		return err
	}

	if mode != "" && suggest.Mode(mode) != c.Mode() {
		i := categoryIndex(c.Items(), suggest.Mode(mode))
		if i < 0 {
			return fmt.Errorf("no %q category to open", mode)
		}
		if err := run(c.SelectIndex(i)); err != nil {
			return err
		}
	}
	if err := run(c.SetQuery(query)); err != nil {
		return err
	}

	indexes, _ := cmd.Flags().GetIntSlice("select")
	for _, i := range indexes {
		if i < 0 || i >= len(c.Items()) {
			return fmt.Errorf("select %d: list has %d items", i, len(c.Items()))
		}
		if err := run(c.SelectIndex(i)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(selected) > 0 {
		for _, attrs := range selected {
			fmt.Fprintln(out, mention.RenderText(attrs))
		}
		return nil
	}

	if view, _ := cmd.Flags().GetBool("view"); view {
		dropdown := overlay.NewMentionListOverlay(c, cfg.VisibleRows)
		dropdown.SetWidth(80)
		fmt.Fprintln(out, dropdown.View())
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, item := range c.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, item.Icon, item.Name, strings.TrimSpace(item.Description))
	}
	return tw.Flush()
}

func categoryIndex(items []suggest.Item, mode suggest.Mode) int {
	for i, item := range items {
		if item.IsCategory() && item.Target == mode {
			return i
		}
	}
	return -1
}
