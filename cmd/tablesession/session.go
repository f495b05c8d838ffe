package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/tablesession/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// withBackend opens the configured backend for the duration of fn.
func withBackend(cmd *cobra.Command, fn func(b *cli.Backend) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cli.NewLogger(cfg)

	backend, err := cli.OpenBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close backend", "err", err)
		}
	}()
	return fn(backend)
}

var readCmd = &cobra.Command{
	Use:   "read <session-id>",
	Short: "Print the current payload of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			store, err := b.NewStore()
			if err != nil {
				return err
			}
			data, err := store.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), data)
			return err
		})
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <session-id> [data]",
	Short: "Append a new payload for a session",
	Long:  `Append a new payload for a session. Without a data argument the payload is read from stdin, which must not be a terminal.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := payloadArg(cmd, args)
		if err != nil {
			return err
		}
		return withBackend(cmd, func(b *cli.Backend) error {
			store, err := b.NewStore()
			if err != nil {
				return err
			}
			return store.Write(cmd.Context(), args[0], data)
		})
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy <session-id>...",
	Short: "Remove every row of one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			store, err := b.NewStore()
			if err != nil {
				return err
			}
			var errs []error
			for _, sessionID := range args {
				if err := store.Destroy(cmd.Context(), sessionID); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
			}
			return errors.Join(errs...)
		})
	},
}

// payloadArg returns the data argument, or stdin when it is piped.
func payloadArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no data argument given and stdin is a terminal")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read payload from stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(destroyCmd)
}
