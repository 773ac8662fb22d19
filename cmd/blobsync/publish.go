package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish [collection]",
	Short: "Synchronize a collection into the target container",
	Args:  cobra.MaximumNArgs(1),
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
		collection, err := newCollection(store)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			collection.Name = args[0]
		}

		started := time.Now()
		result, err := target.PublishCollection(ctx, collection)
		if err != nil {
			return err
		}

		fmt.Printf("collection %q published in %s\n",
			collection.Name, humanize.RelTime(started, time.Now(), "", ""))
		fmt.Printf("  uploaded: %d  copied: %d  skipped: %d  pruned: %d\n",
			result.Uploaded, result.Copied, result.Skipped, result.Pruned)

		if !result.Ok() {
			for _, publishErr := range result.Errors {
				fmt.Printf("  failed: %s\n", publishErr.Error())
			}
			return fmt.Errorf("%d of %s objects failed",
				len(result.Errors),
				humanize.Comma(int64(result.Uploaded+result.Copied+result.Skipped+len(result.Errors))))
		}
		return nil
	},
}
