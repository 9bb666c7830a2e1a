package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pixery/internal/domain"
)

var listFlags struct {
	tags        []string
	exclude     []string
	model       string
	starred     bool
	trashed     bool
	collection  string
	uncat       bool
	since       string
	limit       int64
	offset      int64
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generations, newest first",
	Long: `List generations in the gallery, newest first.

Filters combine with AND; a record must carry every tag given with --tag.

Examples:
  pixery-cli list --tag cyberpunk --tag night
  pixery-cli list --starred --since 7d
  pixery-cli list --collection portfolio
  pixery-cli list --trashed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		filter := domain.Filter{
			Tags:          listFlags.tags,
			ExcludeTags:   listFlags.exclude,
			Model:         listFlags.model,
			StarredOnly:   listFlags.starred,
			Trashed:       listFlags.trashed,
			Collection:    listFlags.collection,
			Uncategorized: listFlags.uncat,
			Limit:         listFlags.limit,
			Offset:        listFlags.offset,
		}
		if listFlags.since != "" {
			since, err := domain.ParseSince(listFlags.since, time.Now())
			if err != nil {
				return err
			}
			filter.Since = since
		}

		records, err := GetStore().List(ctx, filter)
		if err != nil {
			return err
		}
		printRecords(records)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search generation prompts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := GetStore().Search(context.Background(), args[0], listFlags.limit)
		if err != nil {
			return err
		}
		printRecords(records)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show full metadata for one generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		rec, err := GetStore().Get(context.Background(), id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("generation %d not found", id)
		}

		fmt.Printf("#%d  %s\n", rec.ID, rec.Timestamp)
		if rec.Title != "" {
			fmt.Printf("Title:    %s\n", rec.Title)
		}
		fmt.Printf("Prompt:   %s\n", rec.Prompt)
		if rec.NegativePrompt != "" {
			fmt.Printf("Negative: %s\n", rec.NegativePrompt)
		}
		fmt.Printf("Model:    %s (%s)\n", rec.Model, rec.Provider)
		fmt.Printf("Image:    %s\n", GetArchive().AbsPath(rec.ImagePath))
		if rec.Width > 0 {
			fmt.Printf("Size:     %dx%d\n", rec.Width, rec.Height)
		}
		if rec.Seed != "" {
			fmt.Printf("Seed:     %s\n", rec.Seed)
		}
		if rec.CostEstimateUSD > 0 {
			fmt.Printf("Cost:     $%.4f\n", rec.CostEstimateUSD)
		}
		if rec.Starred {
			fmt.Println("Starred:  yes")
		}
		if rec.TrashedAt != "" {
			fmt.Printf("Trashed:  %s\n", rec.TrashedAt)
		}
		if len(rec.Tags) > 0 {
			fmt.Printf("Tags:     %s\n", strings.Join(rec.Tags, ", "))
		}
		if len(rec.Collections) > 0 {
			fmt.Printf("Collections: %s\n", strings.Join(rec.Collections, ", "))
		}
		for _, ref := range rec.References {
			fmt.Printf("Reference: %s\n", ref.Path)
		}
		return nil
	},
}

func printRecords(records []*domain.Record) {
	for _, r := range records {
		star := " "
		if r.Starred {
			star = "*"
		}
		label := r.Title
		if label == "" {
			label = r.Prompt
			if len(label) > 60 {
				label = label[:59] + "…"
			}
		}
		line := fmt.Sprintf("#%-5d %s %s  %-24s %s", r.ID, star, r.Date, r.Model, label)
		if len(r.Tags) > 0 {
			line += "  [" + strings.Join(r.Tags, ",") + "]"
		}
		fmt.Println(line)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().StringArrayVarP(&listFlags.tags, "tag", "t", nil, "require this tag (repeatable)")
	listCmd.Flags().StringArrayVarP(&listFlags.exclude, "exclude-tag", "x", nil, "exclude this tag (repeatable)")
	listCmd.Flags().StringVarP(&listFlags.model, "model", "m", "", "only this model")
	listCmd.Flags().BoolVarP(&listFlags.starred, "starred", "s", false, "only starred")
	listCmd.Flags().BoolVar(&listFlags.trashed, "trashed", false, "show the trash")
	listCmd.Flags().StringVarP(&listFlags.collection, "collection", "c", "", "only this collection")
	listCmd.Flags().BoolVar(&listFlags.uncat, "uncategorized", false, "only records in no collection")
	listCmd.Flags().StringVar(&listFlags.since, "since", "", "date window: today, 7d, 2w, or YYYY-MM-DD")
	listCmd.Flags().Int64VarP(&listFlags.limit, "limit", "n", 50, "maximum results")
	listCmd.Flags().Int64Var(&listFlags.offset, "offset", 0, "pagination offset")

	searchCmd.Flags().Int64VarP(&listFlags.limit, "limit", "n", 50, "maximum results")
}
