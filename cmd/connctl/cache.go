package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the offline store",
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the record stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.close()

			raw, ok, err := s.rt.Store().Read(args[0])
			if err != nil {
				return fmt.Errorf("read %q: %w", args[0], err)
			}
			if !ok {
				return fmt.Errorf("no offline record for %q", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
			return err
		},
	}

	cmd.AddCommand(get)
	return cmd
}
