package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// RegisterReadTools adds all read-only gallery tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, gallery ports.Gallery, jobs ports.JobService) {
	s.AddTool(listTool(), listHandler(gallery))
	s.AddTool(searchTool(), searchHandler(gallery))
	s.AddTool(showTool(), showHandler(gallery))
	s.AddTool(tagsTool(), tagsHandler(gallery))
	s.AddTool(collectionsTool(), collectionsHandler(gallery))
	s.AddTool(jobsTool(), jobsHandler(jobs))
	s.AddTool(costsTool(), costsHandler(gallery))
	s.AddTool(modelsTool(), modelsHandler())
}

// --- list ---

func listTool() mcp.Tool {
	return mcp.NewTool("list",
		mcp.WithDescription("List generations, newest first. Filters combine with AND. Tags must ALL be present on a match."),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags a generation must all carry"),
		),
		mcp.WithString("model",
			mcp.Description("Only generations made with this model ID"),
		),
		mcp.WithBoolean("starred",
			mcp.Description("Only starred generations"),
		),
		mcp.WithBoolean("trashed",
			mcp.Description("Show the trash instead of the active gallery"),
		),
		mcp.WithString("collection",
			mcp.Description("Only generations in this collection"),
		),
		mcp.WithString("since",
			mcp.Description("Date window: today, 7d, 2w, or YYYY-MM-DD"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 20)"),
		),
	)
}

func listHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := domain.Filter{
			Model:       req.GetString("model", ""),
			StarredOnly: req.GetBool("starred", false),
			Trashed:     req.GetBool("trashed", false),
			Collection:  req.GetString("collection", ""),
			Limit:       int64(req.GetFloat("limit", 20)),
		}
		if tags := req.GetString("tags", ""); tags != "" {
			filter.Tags = splitTags(tags)
		}
		if since := req.GetString("since", ""); since != "" {
			parsed, err := domain.ParseSince(since, timeNow())
			if err != nil {
				return toolError(err)
			}
			filter.Since = parsed
		}

		records, err := gallery.List(ctx, filter)
		if err != nil {
			return toolError(err)
		}
		return formatRecords(records)
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Full-text search generation prompts. Returns matches newest first."),
		mcp.WithString("query",
			mcp.Description("Text to look for in prompts"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 20)"),
		),
	)
}

func searchHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		records, err := gallery.Search(ctx, query, int64(req.GetFloat("limit", 20)))
		if err != nil {
			return toolError(err)
		}
		return formatRecords(records)
	}
}

// --- show ---

func showTool() mcp.Tool {
	return mcp.NewTool("show",
		mcp.WithDescription("Show full metadata for one generation: prompt, model, cost, tags, collections, references."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
	)
}

func showHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		rec, err := gallery.Get(ctx, id)
		if err != nil {
			return toolError(err)
		}
		if rec == nil {
			return toolError(fmt.Errorf("generation %d not found", id))
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "#%d  %s\n", rec.ID, rec.Timestamp)
		if rec.Title != "" {
			fmt.Fprintf(&sb, "Title: %s\n", rec.Title)
		}
		fmt.Fprintf(&sb, "Prompt: %s\n", rec.Prompt)
		if rec.NegativePrompt != "" {
			fmt.Fprintf(&sb, "Negative: %s\n", rec.NegativePrompt)
		}
		fmt.Fprintf(&sb, "Model: %s (%s)\n", rec.Model, rec.Provider)
		fmt.Fprintf(&sb, "Image: %s\n", rec.ImagePath)
		if rec.Width > 0 {
			fmt.Fprintf(&sb, "Size: %dx%d\n", rec.Width, rec.Height)
		}
		if rec.Seed != "" {
			fmt.Fprintf(&sb, "Seed: %s\n", rec.Seed)
		}
		if rec.CostEstimateUSD > 0 {
			fmt.Fprintf(&sb, "Cost: $%.4f\n", rec.CostEstimateUSD)
		}
		if rec.Starred {
			sb.WriteString("Starred: yes\n")
		}
		if rec.TrashedAt != "" {
			fmt.Fprintf(&sb, "Trashed: %s\n", rec.TrashedAt)
		}
		if len(rec.Tags) > 0 {
			fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(rec.Tags, ", "))
		}
		if len(rec.Collections) > 0 {
			fmt.Fprintf(&sb, "Collections: %s\n", strings.Join(rec.Collections, ", "))
		}
		for _, ref := range rec.References {
			fmt.Fprintf(&sb, "Reference: %s\n", ref.Path)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- tags ---

func tagsTool() mcp.Tool {
	return mcp.NewTool("tags",
		mcp.WithDescription("List the tag vocabulary with usage counts, most used first."),
	)
}

func tagsHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := gallery.ListTags(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(tags, func(t domain.TagCount) string {
			return fmt.Sprintf("%s (%d)", t.Name, t.Count)
		})
	}
}

// --- collections ---

func collectionsTool() mcp.Tool {
	return mcp.NewTool("collections",
		mcp.WithDescription("List collections with member counts."),
	)
}

func collectionsHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cols, err := gallery.ListCollections(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(cols, func(c domain.Collection) string {
			return fmt.Sprintf("%s (%d)", c.Name, c.Count)
		})
	}
}

// --- jobs ---

func jobsTool() mcp.Tool {
	return mcp.NewTool("jobs",
		mcp.WithDescription("List in-flight generation jobs and recent failures."),
	)
}

func jobsHandler(jobs ports.JobService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		active, err := jobs.ListActive(ctx)
		if err != nil {
			return toolError(err)
		}
		failed, err := jobs.ListFailed(ctx, 10)
		if err != nil {
			return toolError(err)
		}
		if len(active) == 0 && len(failed) == 0 {
			return mcp.NewToolResultText("No active jobs, no recent failures."), nil
		}

		var sb strings.Builder
		for _, j := range active {
			fmt.Fprintf(&sb, "#%d  %s  %s  %s\n", j.ID, j.Status, j.Model, truncate(j.Prompt, 60))
		}
		for _, j := range failed {
			fmt.Fprintf(&sb, "#%d  failed  %s  %s\n", j.ID, j.Model, j.Error)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- costs ---

func costsTool() mcp.Tool {
	return mcp.NewTool("costs",
		mcp.WithDescription("Summarize estimated API spend, total and by model."),
		mcp.WithString("since",
			mcp.Description("Date window: today, 7d, 2w, or YYYY-MM-DD. Omit for all time."),
		),
	)
}

func costsHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		since := ""
		if raw := req.GetString("since", ""); raw != "" {
			parsed, err := domain.ParseSince(raw, timeNow())
			if err != nil {
				return toolError(err)
			}
			since = parsed
		}
		sum, err := gallery.CostSummary(ctx, since)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Total: $%.2f across %d generations\n", sum.TotalUSD, sum.Count)
		for _, b := range sum.ByModel {
			fmt.Fprintf(&sb, "  %s  $%.2f\n", b.Key, b.USD)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- models ---

func modelsTool() mcp.Tool {
	return mcp.NewTool("models",
		mcp.WithDescription("List the available generation models with providers and costs."),
	)
}

func modelsHandler() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return formatEntities(domain.Models(), func(m domain.ModelInfo) string {
			refs := ""
			if m.MaxRefs > 0 {
				refs = fmt.Sprintf(", up to %d refs", m.MaxRefs)
			}
			return fmt.Sprintf("%s  %s (%s, $%.3f/image%s)", m.ID, m.DisplayName, m.Provider, m.CostPerImage, refs)
		})
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatRecords(records []*domain.Record) (*mcp.CallToolResult, error) {
	return formatEntities(records, func(r *domain.Record) string {
		star := " "
		if r.Starred {
			star = "*"
		}
		label := r.Title
		if label == "" {
			label = truncate(r.Prompt, 60)
		}
		return fmt.Sprintf("#%d %s %s  %s  %s", r.ID, star, r.Date, r.Model, label)
	})
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
