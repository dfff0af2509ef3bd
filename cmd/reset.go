package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all local exam data (history, saved attempt, caches)",
	Long: "Delete every stored key: attempt history, the saved unfinished attempt,\n" +
		"the subject cache and cached explanations. The LLM request log is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		yes, _ := cmd.Flags().GetBool("yes")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		kv := d.store.KV()
		keys, err := kv.Keys(ctx, "")
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("Nothing to reset.")
			return nil
		}
		if !yes {
			return fmt.Errorf("refusing to delete %d stored entries without --yes", len(keys))
		}
		for _, k := range keys {
			if err := kv.Remove(ctx, k); err != nil {
				return fmt.Errorf("remove %s: %w", k, err)
			}
		}
		fmt.Printf("Deleted %d entries.\n", len(keys))
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")
}
