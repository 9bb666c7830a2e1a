package commands

import (
	"context"
	"testing"

	"pixery/internal/domain"
)

func TestSuggestTagsCommand_Execute(t *testing.T) {
	gallery := &galleryStub{tags: []domain.TagCount{
		{Name: "cyberpunk", Count: 42},
		{Name: "cyber", Count: 3},
		{Name: "city", Count: 17},
		{Name: "portrait", Count: 55},
		{Name: "cat", Count: 9},
	}}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "prefix matches rank by usage",
			input: "cy",
			want:  []string{"cyberpunk", "cyber"},
		},
		{
			name:  "near match by edit distance",
			input: "portriat",
			want:  []string{"portrait"},
		},
		{
			name:  "exact input is not suggested back",
			input: "city",
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewSuggestTagsCommand(gallery, tt.input, 8)
			got, err := cmd.Execute(context.Background())
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("suggestions = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i].Name != tt.want[i] {
					t.Fatalf("suggestions = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSuggestTagsCommand_EmptyInputIsInvalid(t *testing.T) {
	cmd := NewSuggestTagsCommand(&galleryStub{}, "   ", 8)
	if _, err := cmd.Execute(context.Background()); err == nil {
		t.Fatal("blank input must fail validation")
	}
}

func TestSuggestTagsCommand_LimitApplies(t *testing.T) {
	gallery := &galleryStub{tags: []domain.TagCount{
		{Name: "car", Count: 1},
		{Name: "cart", Count: 2},
		{Name: "card", Count: 3},
	}}
	cmd := NewSuggestTagsCommand(gallery, "car", 2)
	got, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want limit of 2", len(got))
	}
	// Equal distance resolves by usage count.
	if got[0].Name != "card" || got[1].Name != "cart" {
		t.Errorf("suggestions = [%s %s], want [card cart]", got[0].Name, got[1].Name)
	}
}
