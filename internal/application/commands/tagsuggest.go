package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"pixery/internal/application"
	"pixery/internal/ports"
)

// TagSuggestion is one ranked tag completion candidate
type TagSuggestion struct {
	Name  string
	Count int64
	// Distance is the edit distance to the input; prefix matches get 0.
	Distance int
}

// SuggestTagsCommand ranks the existing tag vocabulary against a partial
// input so the UI can offer completions while the user types.
type SuggestTagsCommand struct {
	gallery ports.Gallery
	Input   string
	Limit   int
}

// NewSuggestTagsCommand creates a new SuggestTagsCommand
func NewSuggestTagsCommand(gallery ports.Gallery, input string, limit int) *SuggestTagsCommand {
	return &SuggestTagsCommand{
		gallery: gallery,
		Input:   input,
		Limit:   limit,
	}
}

// Validate checks the suggestion parameters
func (c *SuggestTagsCommand) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return &application.ValidationError{
			Field:   "input",
			Message: "input is required",
		}
	}
	return nil
}

// Execute returns up to Limit suggestions: prefix matches first (most used
// first), then near matches by edit distance.
func (c *SuggestTagsCommand) Execute(ctx context.Context) ([]TagSuggestion, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	limit := c.Limit
	if limit <= 0 {
		limit = 8
	}

	tags, err := c.gallery.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	input := strings.ToLower(strings.TrimSpace(c.Input))
	out := make([]TagSuggestion, 0, len(tags))
	for _, tag := range tags {
		name := strings.ToLower(tag.Name)
		if name == input {
			continue // already typed in full
		}
		s := TagSuggestion{Name: tag.Name, Count: tag.Count}
		if !strings.HasPrefix(name, input) {
			s.Distance = levenshtein.ComputeDistance(input, name)
			// Distant vocabulary is noise, not a suggestion. The budget
			// grows with the input so short fragments only tolerate a
			// single edit.
			if s.Distance > max(1, len(input)/3) {
				continue
			}
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
