package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rwelin/soundgraph/history"
)

var (
	historyDB string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Inspect generations kept by 'evolve --db' or 'serve --db'",
	}

	historyListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored generations",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}

	historyShowCmd = &cobra.Command{
		Use:   "show ID",
		Short: "Print one generation as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	historyLineageCmd = &cobra.Command{
		Use:   "lineage ID",
		Short: "List the ancestors of a generation, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryLineage,
	}
)

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "history database directory")
	historyCmd.MarkPersistentFlagRequired("db")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyLineageCmd)
}

func openHistory() (*history.Store, error) {
	return history.Open(history.Config{Path: historyDB, Logger: logger})
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	list, err := h.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tID\tPARENT\tNODES\tEDGES\tCREATED")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n", s.Index, s.ID, s.ParentID, s.Nodes, s.Edges, s.Created.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	g, err := h.Get(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

func runHistoryLineage(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	chain, err := h.Lineage(args[0])
	if err != nil {
		return err
	}
	for _, g := range chain {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", g.Index, g.ID)
	}
	return nil
}
