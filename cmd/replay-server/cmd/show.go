package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	replay "github.com/swordfishtr/replay-server"
)

var showCmd = &cobra.Command{
	Use:   "show <replay>",
	Short: "Print a replay",
	Long: `Resolve a replay identifier the same way the server does and print it.

The identifier has the form <formatid>-<number>[-<password>][.json|.log];
without a suffix the replay page HTML is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) (err error) {
	id, err := replay.ParseIdentifier(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	srv, err := replay.Open(cfg.ReplaysDir,
		replay.WithWatch(false),
		replay.WithTemplate(cfg.Template),
		replay.WithScanConcurrency(cfg.ScanConcurrency),
	)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	rec, err := srv.Replay(context.Background(), id)
	if err != nil {
		return err
	}
	resp, err := srv.Render(rec, id)
	if err != nil {
		return err
	}

	if _, err := cmd.OutOrStdout().Write(resp.Body); err != nil {
		return fmt.Errorf("write replay: %w", err)
	}
	return nil
}
