package cmd

import (
	"fmt"

	"stremio-service/core/config"

	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the server binaries directory",
	Long:  `Resolves the runtime, ffmpeg, ffprobe and server.js and reports every missing file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		serverCfg, err := cfg.Server.ServerConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n--- Server Binaries ---")
		fmt.Fprintf(out, "Directory:      %s\n", serverCfg.Dir())
		fmt.Fprintf(out, "Runtime:        %s\n", serverCfg.Runtime())
		fmt.Fprintf(out, "FFmpeg:         %s\n", serverCfg.FFmpeg())
		fmt.Fprintf(out, "FFprobe:        %s\n", serverCfg.FFprobe())
		fmt.Fprintf(out, "Server:         %s\n", serverCfg.Server())
		fmt.Fprintf(out, "CORS disabled:  %v\n", serverCfg.DisableCORS())
		fmt.Fprintln(out, "-----------------------")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
