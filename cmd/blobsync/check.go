package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity to the target container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := newStore(ctx)
		if err != nil {
			return err
		}
		target, err := newTarget(ctx, store)
		if err != nil {
			return err
		}

		if err := target.Check(ctx); err != nil {
			return err
		}
		fmt.Printf("OK: container %q is reachable\n", viper.GetString("target.container"))
		return nil
	},
}
