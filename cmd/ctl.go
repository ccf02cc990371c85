package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stremio-service/core/config"
	"stremio-service/core/middleware/auth"

	"github.com/spf13/cobra"
)

var ctlTimeout time.Duration

// ctlCmd represents the ctl command
var ctlCmd = &cobra.Command{
	Use:       "ctl [status|start|stop|restart]",
	Short:     "Control a running service",
	Long:      `Sends a lifecycle action to a running service through its local control API and prints the response.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"status", "start", "stop", "restart"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), ctlTimeout)
		defer cancel()

		body, err := callControl(ctx, http.DefaultClient, cfg.API.BaseURL(), cfg.API.ApiKey, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
		return err
	},
}

func init() {
	ctlCmd.Flags().DurationVar(&ctlTimeout, "timeout", 30*time.Second, "Request timeout")
	RootCmd.AddCommand(ctlCmd)
}

// callControl performs a control action and returns the indented JSON response.
func callControl(ctx context.Context, hc *http.Client, baseURL, apiKey, action string) (string, error) {
	method, path := http.MethodPost, "/server/"+action
	switch action {
	case "status":
		method, path = http.MethodGet, "/server"
	case "start", "stop", "restart":
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return "", err
	}
	if apiKey != "" {
		req.Header.Set(auth.Header, apiKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("service is not reachable at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var pretty any
	out := string(raw)
	if json.Unmarshal(raw, &pretty) == nil {
		if b, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			out = string(b)
		}
	}

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s failed with status %d: %s", action, resp.StatusCode, out)
	}
	return out, nil
}
