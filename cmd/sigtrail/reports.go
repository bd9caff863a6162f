package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newthinker/sigtrail/internal/export"
	"github.com/newthinker/sigtrail/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect exported CSV reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exported reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := openSink()
		if err != nil {
			return err
		}
		paths, err := sink.List(context.Background(), report.ReportPrefix)
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}
		if len(paths) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports")
			return nil
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var reportsGetCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print an exported report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := openSink()
		if err != nil {
			return err
		}
		ctx := context.Background()

		ok, err := sink.Exists(ctx, args[0])
		if err != nil {
			return fmt.Errorf("checking %s: %w", args[0], err)
		}
		if !ok {
			return fmt.Errorf("report %s not found", args[0])
		}

		data, err := sink.Read(ctx, args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func openSink() (export.Sink, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	sink, err := export.New(cfg.Export)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("export is disabled; set export.type in the config")
	}
	return sink, nil
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsGetCmd)
	rootCmd.AddCommand(reportsCmd)
}
