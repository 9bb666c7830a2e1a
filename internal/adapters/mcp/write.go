package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pixery/internal/application/commands"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// timeNow is replaceable in tests.
var timeNow = time.Now

// WriteDeps carries everything the mutating tools need.
type WriteDeps struct {
	Gallery    ports.Gallery
	Jobs       ports.JobService
	Archive    ports.Archive
	Generators map[domain.ProviderName]ports.Generator
}

// RegisterWriteTools adds all mutating gallery tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, deps WriteDeps) {
	s.AddTool(starTool(), starHandler(deps.Gallery))
	s.AddTool(setTitleTool(), setTitleHandler(deps.Gallery))
	s.AddTool(addTagsTool(), addTagsHandler(deps.Gallery))
	s.AddTool(removeTagTool(), removeTagHandler(deps.Gallery))
	s.AddTool(trashTool(), trashHandler(deps.Gallery))
	s.AddTool(restoreTool(), restoreHandler(deps.Gallery))
	s.AddTool(collectTool(), collectHandler(deps.Gallery))
	s.AddTool(uncollectTool(), uncollectHandler(deps.Gallery))
	s.AddTool(generateTool(), generateHandler(deps))
}

// --- star ---

func starTool() mcp.Tool {
	return mcp.NewTool("star",
		mcp.WithDescription("Toggle the star on a generation. Returns the new state."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
	)
}

func starHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		starred, err := gallery.ToggleStar(ctx, id)
		if err != nil {
			return toolError(err)
		}
		if starred {
			return mcp.NewToolResultText(fmt.Sprintf("Starred #%d.", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Unstarred #%d.", id)), nil
	}
}

// --- set_title ---

func setTitleTool() mcp.Tool {
	return mcp.NewTool("set_title",
		mcp.WithDescription("Set or clear the display title of a generation."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("New title. Empty clears the title."),
		),
	)
}

func setTitleHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		if err := gallery.SetTitle(ctx, id, req.GetString("title", "")); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Updated title of #%d.", id)), nil
	}
}

// --- add_tags ---

func addTagsTool() mcp.Tool {
	return mcp.NewTool("add_tags",
		mcp.WithDescription("Add tags to a generation. Existing tags are kept."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags to add"),
			mcp.Required(),
		),
	)
}

func addTagsHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		tags := splitTags(req.GetString("tags", ""))
		if len(tags) == 0 {
			return toolError(fmt.Errorf("tags is required"))
		}
		if err := gallery.AddTags(ctx, id, tags); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Tagged #%d.", id)), nil
	}
}

// --- remove_tag ---

func removeTagTool() mcp.Tool {
	return mcp.NewTool("remove_tag",
		mcp.WithDescription("Remove one tag from a generation."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
		mcp.WithString("tag",
			mcp.Description("Tag to remove"),
			mcp.Required(),
		),
	)
}

func removeTagHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		tag := req.GetString("tag", "")
		if tag == "" {
			return toolError(fmt.Errorf("tag is required"))
		}
		if err := gallery.RemoveTag(ctx, id, tag); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Removed %q from #%d.", tag, id)), nil
	}
}

// --- trash ---

func trashTool() mcp.Tool {
	return mcp.NewTool("trash",
		mcp.WithDescription("Move a generation to the trash. The image file is kept until the trash is emptied."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
	)
}

func trashHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		if err := gallery.Trash(ctx, id); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Trashed #%d.", id)), nil
	}
}

// --- restore ---

func restoreTool() mcp.Tool {
	return mcp.NewTool("restore",
		mcp.WithDescription("Restore a generation from the trash."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
	)
}

func restoreHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		if err := gallery.Restore(ctx, id); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Restored #%d.", id)), nil
	}
}

// --- collect / uncollect ---

func collectTool() mcp.Tool {
	return mcp.NewTool("collect",
		mcp.WithDescription("Add a generation to a collection, creating the collection if needed."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
		mcp.WithString("collection",
			mcp.Description("Collection name"),
			mcp.Required(),
		),
	)
}

func collectHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		name := req.GetString("collection", "")
		if name == "" {
			return toolError(fmt.Errorf("collection is required"))
		}
		if err := gallery.AddToCollection(ctx, id, name); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Added #%d to %q.", id, name)), nil
	}
}

func uncollectTool() mcp.Tool {
	return mcp.NewTool("uncollect",
		mcp.WithDescription("Remove a generation from a collection."),
		mcp.WithNumber("id",
			mcp.Description("Generation ID"),
			mcp.Required(),
		),
		mcp.WithString("collection",
			mcp.Description("Collection name"),
			mcp.Required(),
		),
	)
}

func uncollectHandler(gallery ports.Gallery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		name := req.GetString("collection", "")
		if name == "" {
			return toolError(fmt.Errorf("collection is required"))
		}
		if err := gallery.RemoveFromCollection(ctx, id, name); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Removed #%d from %q.", id, name)), nil
	}
}

// --- generate ---

func generateTool() mcp.Tool {
	return mcp.NewTool("generate",
		mcp.WithDescription("Generate an image and archive it. Blocks until the provider finishes."),
		mcp.WithString("prompt",
			mcp.Description("Generation prompt"),
			mcp.Required(),
		),
		mcp.WithString("model",
			mcp.Description("Model ID, see the models tool"),
			mcp.Required(),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags for the result"),
		),
		mcp.WithString("negative_prompt",
			mcp.Description("Negative prompt (self-hosted models only)"),
		),
	)
}

func generateHandler(deps WriteDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := domain.GenerateParams{
			Prompt:         req.GetString("prompt", ""),
			Model:          req.GetString("model", ""),
			Tags:           splitTags(req.GetString("tags", "")),
			NegativePrompt: req.GetString("negative_prompt", ""),
		}
		cmd := commands.NewGenerateCommand(deps.Gallery, deps.Jobs, deps.Archive, deps.Generators, domain.JobSourceCLI, params)
		if err := cmd.Validate(); err != nil {
			return toolError(err)
		}
		res, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Generated #%d in %.1fs ($%.4f): %s", res.RecordID, res.Seconds, res.CostUSD, res.ImagePath)), nil
	}
}
