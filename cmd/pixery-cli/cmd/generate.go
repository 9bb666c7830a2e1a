package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pixery/internal/application/commands"
	"pixery/internal/domain"
)

var generateFlags struct {
	model    string
	tags     []string
	negative string
	refs     []string
	aspect   string
	width    int
	height   int
	copyTo   string
}

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an image and archive it",
	Long: `Generate an image with the given prompt and store it in the archive.

The command blocks until the provider finishes. Progress is tracked as a
job, so a TUI open on the same archive shows it running.

Examples:
  pixery-cli generate "a neon city at night" -m dall-e-3 -t cyberpunk -t night
  pixery-cli generate "portrait study" -m gemini-flash -r ref.png
  pixery-cli generate "red panda" -m fal-ai/flux/schnell --copy-to ./panda.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateFlags.aspect != "" {
			w, h, ok := domain.ResolveAspectRatio(generateFlags.aspect)
			if !ok {
				return fmt.Errorf("unknown aspect ratio %q: use square, portrait, landscape, wide, tall, or W:H", generateFlags.aspect)
			}
			generateFlags.width, generateFlags.height = w, h
		}
		params := domain.GenerateParams{
			Prompt:         args[0],
			Model:          generateFlags.model,
			Tags:           generateFlags.tags,
			NegativePrompt: generateFlags.negative,
			ReferencePaths: generateFlags.refs,
			Width:          generateFlags.width,
			Height:         generateFlags.height,
			CopyTo:         generateFlags.copyTo,
		}

		genCmd := commands.NewGenerateCommand(GetStore(), GetStore(), GetArchive(), GetGenerators(), domain.JobSourceCLI, params)
		if err := genCmd.Validate(); err != nil {
			return err
		}

		result, err := genCmd.Execute(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Generated #%d in %.1fs ($%.4f)\n", result.RecordID, result.Seconds, result.CostUSD)
		fmt.Println(GetArchive().AbsPath(result.ImagePath))
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available generation models",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, m := range domain.Models() {
			cost := "free"
			if m.CostPerImage > 0 {
				cost = fmt.Sprintf("$%.3f/image", m.CostPerImage)
			}
			refs := ""
			if m.MaxRefs > 0 {
				refs = fmt.Sprintf(", up to %d refs", m.MaxRefs)
			}
			fmt.Printf("%-28s %s (%s, %s%s)\n", m.ID, m.DisplayName, m.Provider, cost, refs)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(modelsCmd)

	generateCmd.Flags().StringVarP(&generateFlags.model, "model", "m", "dall-e-3", "model ID, see `pixery-cli models`")
	generateCmd.Flags().StringArrayVarP(&generateFlags.tags, "tag", "t", nil, "tag the result (repeatable)")
	generateCmd.Flags().StringVar(&generateFlags.negative, "negative", "", "negative prompt (self-hosted models only)")
	generateCmd.Flags().StringArrayVarP(&generateFlags.refs, "ref", "r", nil, "reference image path (repeatable)")
	generateCmd.Flags().StringVarP(&generateFlags.aspect, "aspect", "a", "", "aspect ratio: square, portrait, landscape, wide, tall (self-hosted models only)")
	generateCmd.Flags().IntVar(&generateFlags.width, "width", 0, "output width (self-hosted models only)")
	generateCmd.Flags().IntVar(&generateFlags.height, "height", 0, "output height (self-hosted models only)")
	generateCmd.Flags().StringVar(&generateFlags.copyTo, "copy-to", "", "also copy the image to this path")
}
