package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"pixery/internal/application"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", application.ErrInvalidID, raw)
	}
	return id, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var starCmd = &cobra.Command{
	Use:   "star <id>",
	Short: "Toggle the star on a generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		starred, err := GetStore().ToggleStar(context.Background(), id)
		if err != nil {
			return err
		}
		if starred {
			fmt.Printf("Starred #%d\n", id)
		} else {
			fmt.Printf("Unstarred #%d\n", id)
		}
		return nil
	},
}

var titleCmd = &cobra.Command{
	Use:   "title <id> [title]",
	Short: "Set or clear the display title of a generation",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		title := ""
		if len(args) == 2 {
			title = args[1]
		}
		if err := GetStore().SetTitle(context.Background(), id, title); err != nil {
			return err
		}
		fmt.Printf("Updated title of #%d\n", id)
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <id> <tag>...",
	Short: "Add tags to a generation",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := GetStore().AddTags(context.Background(), id, args[1:]); err != nil {
			return err
		}
		fmt.Printf("Tagged #%d\n", id)
		return nil
	},
}

var untagCmd = &cobra.Command{
	Use:   "untag <id> <tag>",
	Short: "Remove a tag from a generation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := GetStore().RemoveTag(context.Background(), id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed %q from #%d\n", args[1], id)
		return nil
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash <id>...",
	Short: "Move generations to the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		count, err := GetStore().TrashMany(context.Background(), ids)
		if err != nil {
			return err
		}
		fmt.Printf("Trashed %d record(s)\n", count)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a generation from the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := GetStore().Restore(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Restored #%d\n", id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Permanently delete a generation and its image",
	Long: `Permanently delete a generation, its thumbnail, and its database row.

This cannot be undone. Use trash for a reversible removal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		imagePath, err := GetStore().Delete(context.Background(), id)
		if err != nil {
			return err
		}
		if imagePath == "" {
			return fmt.Errorf("generation %d not found", id)
		}
		if err := GetArchive().Remove(imagePath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: image not removed: %v\n", err)
		}
		fmt.Printf("Deleted #%d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(deleteCmd)
}
