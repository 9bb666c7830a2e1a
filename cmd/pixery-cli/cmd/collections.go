package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pixery/internal/application/commands"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections with member counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := GetStore().ListCollections(context.Background())
		if err != nil {
			return err
		}
		for _, c := range cols {
			fmt.Printf("%-24s %d\n", c.Name, c.Count)
		}
		return nil
	},
}

var collectCmd = &cobra.Command{
	Use:   "collect <id> <collection>",
	Short: "Add a generation to a collection",
	Long:  "Add a generation to a collection, creating the collection if it does not exist.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := GetStore().AddToCollection(context.Background(), id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Added #%d to %q\n", id, args[1])
		return nil
	},
}

var uncollectCmd = &cobra.Command{
	Use:   "uncollect <id> <collection>",
	Short: "Remove a generation from a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := GetStore().RemoveFromCollection(context.Background(), id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed #%d from %q\n", id, args[1])
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags [fragment]",
	Short: "List the tag vocabulary, or suggest tags for a fragment",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if len(args) == 1 {
			suggestCmd := commands.NewSuggestTagsCommand(GetStore(), args[0], 8)
			if err := suggestCmd.Validate(); err != nil {
				return err
			}
			suggestions, err := suggestCmd.Execute(ctx)
			if err != nil {
				return err
			}
			for _, s := range suggestions {
				fmt.Printf("%-24s %d\n", s.Name, s.Count)
			}
			return nil
		}

		tags, err := GetStore().ListTags(ctx)
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Printf("%-24s %d\n", t.Name, t.Count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(uncollectCmd)
	rootCmd.AddCommand(tagsCmd)
}
