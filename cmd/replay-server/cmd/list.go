package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	replay "github.com/swordfishtr/replay-server"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed replays",
	Long:  "Index the replays directory once and print replay metadata, newest first.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Int64("min-date", 0, "earliest upload time (unix seconds)")
	listCmd.Flags().Int64("max-date", 0, "latest upload time (unix seconds)")
	listCmd.Flags().Int("limit", replay.DefaultLimit, "maximum number of replays")
	listCmd.Flags().String("format", "", "only list this format id")
}

func runList(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	srv, err := replay.Open(cfg.ReplaysDir, replay.WithWatch(false), replay.WithScanConcurrency(cfg.ScanConcurrency))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	q := replay.Query{}
	q.MinDate, _ = cmd.Flags().GetInt64("min-date")
	q.MaxDate, _ = cmd.Flags().GetInt64("max-date")
	q.Limit, _ = cmd.Flags().GetInt("limit")
	q.Format, _ = cmd.Flags().GetString("format")

	printMetadata(cmd.OutOrStdout(), srv.Query(q))
	return nil
}

func printMetadata(w io.Writer, metas []replay.Metadata) {
	if len(metas) == 0 {
		fmt.Fprintln(w, "(no replays)")
		return
	}

	for _, m := range metas {
		id := m.ID
		if m.Private {
			id += " (private)"
		}
		uploaded := time.Unix(m.UploadTime, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "%s\t%s\t%s\n", uploaded, id, strings.Join(m.Players, " vs. "))
	}
}
