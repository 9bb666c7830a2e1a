package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pixery/internal/application"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

// GenerateResult contains the result of a completed generation
type GenerateResult struct {
	JobID     int64
	RecordID  int64
	ImagePath string
	CostUSD   float64
	Seconds   float64
}

// GenerateCommand runs one generation end to end: it tracks a job, calls
// the provider, archives the image, and inserts the record.
type GenerateCommand struct {
	gallery    ports.Gallery
	jobs       ports.JobService
	archive    ports.Archive
	generators map[domain.ProviderName]ports.Generator
	source     domain.JobSource
	Params     domain.GenerateParams
}

// NewGenerateCommand creates a new GenerateCommand
func NewGenerateCommand(
	gallery ports.Gallery,
	jobs ports.JobService,
	archive ports.Archive,
	generators map[domain.ProviderName]ports.Generator,
	source domain.JobSource,
	params domain.GenerateParams,
) *GenerateCommand {
	return &GenerateCommand{
		gallery:    gallery,
		jobs:       jobs,
		archive:    archive,
		generators: generators,
		source:     source,
		Params:     params,
	}
}

// Validate checks the generation parameters against the model catalog
func (c *GenerateCommand) Validate() error {
	if strings.TrimSpace(c.Params.Prompt) == "" {
		return &application.ValidationError{
			Field:   "prompt",
			Message: "prompt is required",
		}
	}

	model, ok := domain.FindModel(c.Params.Model)
	if !ok {
		return &application.ValidationError{
			Field:   "model",
			Message: fmt.Sprintf("unknown model: %s", c.Params.Model),
		}
	}

	if len(c.Params.ReferencePaths) > model.MaxRefs {
		return &application.ValidationError{
			Field:   "refs",
			Message: fmt.Sprintf("%s accepts at most %d reference images, got %d",
				model.ID, model.MaxRefs, len(c.Params.ReferencePaths)),
		}
	}
	for _, ref := range c.Params.ReferencePaths {
		if _, err := os.Stat(ref); err != nil {
			return &application.ValidationError{
				Field:   "refs",
				Message: fmt.Sprintf("reference image not found: %s", ref),
			}
		}
	}

	if _, ok := c.generators[model.Provider]; !ok {
		return &application.ValidationError{
			Field:   "model",
			Message: fmt.Sprintf("no generator configured for provider %s", model.Provider),
		}
	}

	return nil
}

// Execute runs the generation. The job row records progress so other
// front-ends can observe it; a provider failure marks the job failed and
// leaves no record behind.
func (c *GenerateCommand) Execute(ctx context.Context) (*GenerateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	model, _ := domain.FindModel(c.Params.Model)

	jobID, err := c.jobs.CreateJob(ctx, c.Params.Model, c.Params.Prompt, c.Params.Tags,
		c.source, len(c.Params.ReferencePaths))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := c.jobs.MarkStarted(ctx, jobID); err != nil {
		return nil, fmt.Errorf("failed to start job %d: %w", jobID, err)
	}

	out, err := c.generators[model.Provider].Generate(ctx, c.Params)
	if err != nil {
		genErr := &application.GenerationError{JobID: jobID, Model: model.ID, Reason: err.Error()}
		if mfErr := c.jobs.MarkFailed(ctx, jobID, err.Error()); mfErr != nil {
			return nil, fmt.Errorf("%w (and failed to record it: %v)", genErr, mfErr)
		}
		return nil, genErr
	}

	now := time.Now()
	date := now.Format("2006-01-02")
	slug := slugify(c.Params.Prompt) + "-" + uuid.NewString()[:8]

	imagePath, thumbPath, err := c.archive.Store(date, slug, out.ImageData)
	if err != nil {
		if mfErr := c.jobs.MarkFailed(ctx, jobID, err.Error()); mfErr != nil {
			return nil, fmt.Errorf("failed to archive image: %w (and failed to record it: %v)", err, mfErr)
		}
		return nil, fmt.Errorf("failed to archive image: %w", err)
	}

	rec := &domain.Record{
		Slug:              slug,
		Prompt:            c.Params.Prompt,
		Model:             model.ID,
		Provider:          string(model.Provider),
		Timestamp:         now.Format("2006-01-02T15:04:05"),
		Date:              date,
		ImagePath:         imagePath,
		ThumbPath:         thumbPath,
		GenerationSeconds: out.GenerationSeconds,
		CostEstimateUSD:   cost(model, out),
		Seed:              out.Seed,
		Width:             c.Params.Width,
		Height:            c.Params.Height,
		FileSize:          int64(len(out.ImageData)),
		NegativePrompt:    c.Params.NegativePrompt,
		Tags:              c.Params.Tags,
		ParentID:          c.Params.ParentID,
	}
	for _, refPath := range c.Params.ReferencePaths {
		stored, refErr := c.archive.StoreReference(refPath)
		if refErr != nil {
			// A lost reference copy is not worth failing the whole
			// generation over; the image itself is already archived.
			continue
		}
		rec.References = append(rec.References, stored)
	}

	recordID, err := c.gallery.Insert(ctx, rec)
	if err != nil {
		if mfErr := c.jobs.MarkFailed(ctx, jobID, err.Error()); mfErr != nil {
			return nil, fmt.Errorf("failed to insert record: %w (and failed to record it: %v)", err, mfErr)
		}
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	if err := c.jobs.MarkCompleted(ctx, jobID, recordID); err != nil {
		return nil, fmt.Errorf("failed to complete job %d: %w", jobID, err)
	}

	if c.Params.CopyTo != "" {
		if err := copyImage(c.archive.AbsPath(imagePath), c.Params.CopyTo); err != nil {
			return nil, fmt.Errorf("generation succeeded but copy failed: %w", err)
		}
	}

	return &GenerateResult{
		JobID:     jobID,
		RecordID:  recordID,
		ImagePath: imagePath,
		CostUSD:   rec.CostEstimateUSD,
		Seconds:   out.GenerationSeconds,
	}, nil
}

// cost prefers the provider-reported cost over the catalog estimate.
func cost(model domain.ModelInfo, out *domain.GenerationOutput) float64 {
	if out.CostUSD > 0 {
		return out.CostUSD
	}
	return model.CostPerImage
}

// slugify reduces a prompt to a short filesystem-safe stem.
func slugify(prompt string) string {
	const maxLen = 40
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(prompt) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if b.Len() >= maxLen {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

func copyImage(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
