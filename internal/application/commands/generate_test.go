package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pixery/internal/application"
	"pixery/internal/domain"
	"pixery/internal/ports"
)

type galleryStub struct {
	insertedRec *domain.Record
	insertErr   error
	tags        []domain.TagCount
}

func (g *galleryStub) List(context.Context, domain.Filter) ([]*domain.Record, error) {
	return nil, nil
}
func (g *galleryStub) Search(context.Context, string, int64) ([]*domain.Record, error) {
	return nil, nil
}
func (g *galleryStub) Get(context.Context, int64) (*domain.Record, error) { return nil, nil }
func (g *galleryStub) Insert(_ context.Context, rec *domain.Record) (int64, error) {
	if g.insertErr != nil {
		return 0, g.insertErr
	}
	g.insertedRec = rec
	return 99, nil
}
func (g *galleryStub) ToggleStar(context.Context, int64) (bool, error) { return false, nil }
func (g *galleryStub) SetTitle(context.Context, int64, string) error   { return nil }
func (g *galleryStub) SetPrompt(context.Context, int64, string) error  { return nil }
func (g *galleryStub) AddTags(context.Context, int64, []string) error  { return nil }
func (g *galleryStub) RemoveTag(context.Context, int64, string) error  { return nil }
func (g *galleryStub) Trash(context.Context, int64) error              { return nil }
func (g *galleryStub) TrashMany(context.Context, []int64) (int, error) { return 0, nil }
func (g *galleryStub) Restore(context.Context, int64) error            { return nil }
func (g *galleryStub) Delete(context.Context, int64) (string, error)   { return "", nil }
func (g *galleryStub) AddToCollection(context.Context, int64, string) error {
	return nil
}
func (g *galleryStub) RemoveFromCollection(context.Context, int64, string) error {
	return nil
}
func (g *galleryStub) ListCollections(context.Context) ([]domain.Collection, error) {
	return nil, nil
}
func (g *galleryStub) ListTags(context.Context) ([]domain.TagCount, error) {
	return g.tags, nil
}
func (g *galleryStub) CostSummary(context.Context, string) (domain.CostSummary, error) {
	return domain.CostSummary{}, nil
}

// jobLog records job lifecycle transitions in order.
type jobLog struct {
	events  []string
	nextID  int64
	failMsg string
}

func (j *jobLog) CreateJob(_ context.Context, model, _ string, _ []string, _ domain.JobSource, _ int) (int64, error) {
	j.nextID = 7
	j.events = append(j.events, "create:"+model)
	return j.nextID, nil
}
func (j *jobLog) MarkStarted(_ context.Context, id int64) error {
	j.events = append(j.events, "started")
	return nil
}
func (j *jobLog) MarkCompleted(_ context.Context, id, recordID int64) error {
	j.events = append(j.events, "completed")
	return nil
}
func (j *jobLog) MarkFailed(_ context.Context, id int64, errText string) error {
	j.events = append(j.events, "failed")
	j.failMsg = errText
	return nil
}
func (j *jobLog) ListActive(context.Context) ([]domain.Job, error)        { return nil, nil }
func (j *jobLog) ListFailed(context.Context, int64) ([]domain.Job, error) { return nil, nil }
func (j *jobLog) CleanupStalled(context.Context) (int, error)             { return 0, nil }
func (j *jobLog) CleanupOld(context.Context, int) (int, error)            { return 0, nil }

type archiveStub struct {
	stored []byte
}

func (a *archiveStub) Store(date, slug string, image []byte) (string, string, error) {
	a.stored = image
	return date + "/" + slug + ".png", date + "/" + slug + ".thumb.png", nil
}
func (a *archiveStub) StoreReference(src string) (domain.Reference, error) {
	return domain.Reference{Hash: "h-" + src, Path: "references/" + src}, nil
}
func (a *archiveStub) Remove(string) error                       { return nil }
func (a *archiveStub) AbsPath(rel string) string                 { return "/archive/" + rel }

type generatorStub struct {
	out *domain.GenerationOutput
	err error
}

func (g *generatorStub) Generate(context.Context, domain.GenerateParams) (*domain.GenerationOutput, error) {
	return g.out, g.err
}

func generators(g ports.Generator) map[domain.ProviderName]ports.Generator {
	return map[domain.ProviderName]ports.Generator{
		domain.ProviderOpenAI:     g,
		domain.ProviderFal:        g,
		domain.ProviderGemini:     g,
		domain.ProviderSelfHosted: g,
	}
}

func TestGenerateCommand_Validate(t *testing.T) {
	gen := generators(&generatorStub{})
	tests := []struct {
		name    string
		params  domain.GenerateParams
		wantErr string
	}{
		{
			name:    "empty prompt",
			params:  domain.GenerateParams{Model: "dall-e-3"},
			wantErr: "prompt",
		},
		{
			name:    "unknown model",
			params:  domain.GenerateParams{Prompt: "a cat", Model: "sd-1.5"},
			wantErr: "unknown model",
		},
		{
			name: "too many references",
			params: domain.GenerateParams{
				Prompt:         "a cat",
				Model:          "dall-e-3",
				ReferencePaths: []string{"a.png"},
			},
			wantErr: "reference",
		},
		{
			name:   "valid text-to-image",
			params: domain.GenerateParams{Prompt: "a cat", Model: "dall-e-3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewGenerateCommand(&galleryStub{}, &jobLog{}, &archiveStub{}, gen,
				domain.JobSourceCLI, tt.params)
			err := cmd.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
			var verr *application.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Validate() error type = %T, want *ValidationError", err)
			}
		})
	}
}

func TestGenerateCommand_Execute(t *testing.T) {
	gallery := &galleryStub{}
	jobs := &jobLog{}
	archive := &archiveStub{}
	gen := generators(&generatorStub{out: &domain.GenerationOutput{
		ImageData:         []byte("png-bytes"),
		Seed:              "1234",
		GenerationSeconds: 3.5,
	}})

	cmd := NewGenerateCommand(gallery, jobs, archive, gen, domain.JobSourceGUI,
		domain.GenerateParams{Prompt: "Neon city at night!", Model: "dall-e-3", Tags: []string{"city"}, ParentID: 42})
	res, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.JobID != 7 || res.RecordID != 99 {
		t.Errorf("result ids = (%d, %d), want (7, 99)", res.JobID, res.RecordID)
	}
	wantEvents := []string{"create:dall-e-3", "started", "completed"}
	if len(jobs.events) != len(wantEvents) {
		t.Fatalf("job events = %v, want %v", jobs.events, wantEvents)
	}
	for i := range wantEvents {
		if jobs.events[i] != wantEvents[i] {
			t.Fatalf("job events = %v, want %v", jobs.events, wantEvents)
		}
	}

	rec := gallery.insertedRec
	if rec == nil {
		t.Fatal("no record inserted")
	}
	if !strings.HasPrefix(rec.Slug, "neon-city-at-night-") {
		t.Errorf("slug = %q, want a slugified prompt with a unique suffix", rec.Slug)
	}
	if rec.CostEstimateUSD != 0.04 {
		t.Errorf("cost = %v, want the catalog estimate 0.04", rec.CostEstimateUSD)
	}
	if rec.ParentID != 42 {
		t.Errorf("parent id = %d, want the lineage link 42", rec.ParentID)
	}
	if string(archive.stored) != "png-bytes" {
		t.Error("the provider output must be what gets archived")
	}
}

func TestGenerateCommand_ProviderFailureMarksJobFailed(t *testing.T) {
	jobs := &jobLog{}
	gen := generators(&generatorStub{err: errors.New("content policy refusal")})

	cmd := NewGenerateCommand(&galleryStub{}, jobs, &archiveStub{}, gen, domain.JobSourceCLI,
		domain.GenerateParams{Prompt: "a cat", Model: "gpt-image-1"})
	_, err := cmd.Execute(context.Background())
	if !errors.Is(err, application.ErrGenerationFail) {
		t.Fatalf("Execute() = %v, want ErrGenerationFail", err)
	}

	last := jobs.events[len(jobs.events)-1]
	if last != "failed" {
		t.Errorf("last job event = %q, want failed", last)
	}
	if jobs.failMsg != "content policy refusal" {
		t.Errorf("failure message = %q, want the provider error", jobs.failMsg)
	}
}

func TestGenerateCommand_ReportedCostWins(t *testing.T) {
	gallery := &galleryStub{}
	gen := generators(&generatorStub{out: &domain.GenerationOutput{
		ImageData: []byte("x"),
		CostUSD:   0.123,
	}})

	cmd := NewGenerateCommand(gallery, &jobLog{}, &archiveStub{}, gen, domain.JobSourceCLI,
		domain.GenerateParams{Prompt: "a cat", Model: "dall-e-3"})
	if _, err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if gallery.insertedRec.CostEstimateUSD != 0.123 {
		t.Errorf("cost = %v, want the API-reported 0.123", gallery.insertedRec.CostEstimateUSD)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Neon city at night!", "neon-city-at-night"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"ALL CAPS 123", "all-caps-123"},
		{"????", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
