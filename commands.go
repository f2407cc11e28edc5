package main

import (
	"codeberg.org/miketth/evremap/pkg/config"
	"codeberg.org/miketth/evremap/pkg/journal"
	"codeberg.org/miketth/evremap/pkg/journal/sqlite"
	"codeberg.org/miketth/evremap/pkg/layout"
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"io"
	"text/tabwriter"
	"time"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "evremap <device>",
		Short: "Remap a keyboard to another layout at the evdev level",
		Long: `evremap grabs a keyboard exclusively and re-emits its events through a
virtual keyboard, translating QWERTY positions to the configured layout while
the layout is toggled on. Holding control bypasses the translation.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(v, args[0])
			if err != nil {
				return err
			}
			return runDaemon(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.String("layout", "", "layout to translate to, by name or xkb description")
	flags.String("hotkey", "", "key whose release toggles the layout")
	flags.StringSlice("bypass", nil, "keys that suspend translation while held")
	flags.String("device-name", "", "name of the virtual keyboard")
	flags.String("evdev-xml-path", "", "path to xkb's evdev.xml, used for layout names")
	flags.Bool("no-journal", false, "do not record toggles in the journal")

	persistent := rootCmd.PersistentFlags()
	persistent.String("journal", "", "path to the toggle journal database")
	persistent.Bool("debug", false, "enable debug logging")

	bindFlags(v, rootCmd, map[string]string{
		"layout":         "layout",
		"hotkey":         "hotkey",
		"bypass":         "bypass",
		"device_name":    "device-name",
		"evdev_xml_path": "evdev-xml-path",
		"no_journal":     "no-journal",
		"journal":        "journal",
		"debug":          "debug",
	})

	rootCmd.AddCommand(newLayoutsCmd(), newHistoryCmd(v))

	return rootCmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the built-in layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printLayouts(cmd.OutOrStdout(), layout.Builtin())
		},
	}
}

func printLayouts(w io.Writer, tables []*layout.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tXKB\tKEYS")
	for _, t := range tables {
		fmt.Fprintf(tw, "%s\t%s(%s)\t%d\n", t.Name, t.Layout, t.Variant, len(t.Covered()))
	}
	return tw.Flush()
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sessions from the toggle journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(v.GetBool("debug"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer log.Sync()

			path := v.GetString("journal")
			if path == "" {
				path, err = config.DefaultJournalPath()
				if err != nil {
					return err
				}
			}

			return showHistory(cmd.Context(), cmd.OutOrStdout(), path, limit, log)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show")

	return cmd
}

func showHistory(ctx context.Context, w io.Writer, path string, limit int, log *zap.SugaredLogger) error {
	store, err := sqlite.NewJournal(path, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	sessions, err := store.RecentSessions(ctx, limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	return printSessions(w, sessions)
}

func printSessions(w io.Writer, sessions []journal.Session) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDURATION\tDEVICE\tLAYOUT\tTOGGLES")
	for _, s := range sessions {
		duration := "running"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			s.StartedAt.Format(time.DateTime), duration, s.Device, s.Layout, s.Toggles)
	}
	return tw.Flush()
}
