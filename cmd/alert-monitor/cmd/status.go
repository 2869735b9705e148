package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	api "github.com/oshokin/alert-monitor/internal/api/grpc/alert"
	"github.com/oshokin/alert-monitor/internal/config"
)

var errNoStatusAddress = errors.New("no status address: pass one or set status_addr in the config")

func newStatusCommand() *cobra.Command {
	var (
		statusConfigPath string
		timeout          time.Duration
	)

	command := &cobra.Command{
		Use:   "status [address]",
		Short: "Print the alert state of a running instance.",
		Long: `Queries the gRPC status endpoint of a running alert-monitor and prints the
last reading as JSON. The address defaults to status_addr from the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			address, err := resolveStatusAddress(statusConfigPath, args)
			if err != nil {
				return err
			}

			client, err := api.Dial(address, api.WithCallTimeout(timeout))
			if err != nil {
				return err
			}

			defer func() {
				_ = client.Close()
			}()

			payload, err := client.GetAlertStateRaw(ctx)
			if err != nil {
				return err
			}

			data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encode alert state: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return err
		},
	}

	command.Flags().
		StringVarP(&statusConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	command.Flags().DurationVarP(&timeout, "timeout", "t", api.DefaultCallTimeout, "call timeout")

	return command
}

// resolveStatusAddress prefers the positional argument over status_addr from the config.
func resolveStatusAddress(path string, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	if cfg.StatusAddress == "" {
		return "", errNoStatusAddress
	}

	return cfg.StatusAddress, nil
}
