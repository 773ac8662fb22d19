package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshStartAfter string

var refreshCmd = &cobra.Command{
	Use:   "refresh-metadata [collection]",
	Short: "Re-apply content types to already-published objects",
	Long: `Re-apply the declared content type to every published object of a
collection, in ascending content-hash order. Use --start-after with the last
hash printed by an interrupted run to resume.`,
	Args: cobra.MaximumNArgs(1),
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

		refreshed, err := target.RefreshContentTypes(ctx, collection, refreshStartAfter)
		if err != nil {
			return err
		}
		fmt.Printf("refreshed content type of %d objects\n", refreshed)
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshStartAfter, "start-after", "",
		"resume after this content hash")
}
