package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newQueryCommand(c *cli) *cobra.Command {
	attempts := 1
	cmd := &cobra.Command{
		Use:   "query <flux>",
		Short: "Run a flux query and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			w, err := connect(ctx, c.cfg, attempts, c.logger)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			body, qerr := w.Query(args[0])
			if qerr == nil {
				_, qerr = cmd.OutOrStdout().Write(body)
			}
			return errors.Join(qerr, w.Close())
		},
	}
	cmd.Flags().IntVar(&attempts, "connect-attempts", attempts, "connect attempts before giving up (0 retries forever)")
	return cmd
}
