package domain

import (
	"testing"
	"time"
)

func TestFilterSignatureIgnoresPagination(t *testing.T) {
	base := Filter{Tags: []string{"portrait"}, Model: "dall-e-3", StarredOnly: true}

	page1 := base.WithPage(50, 0)
	page2 := base.WithPage(50, 50)

	if page1.Signature() != page2.Signature() {
		t.Errorf("same query on different pages must share a signature:\n%s\n%s",
			page1.Signature(), page2.Signature())
	}
}

func TestFilterSignatureDistinguishesQueries(t *testing.T) {
	tests := []struct {
		name string
		a, b Filter
	}{
		{
			name: "different tags",
			a:    Filter{Tags: []string{"a"}},
			b:    Filter{Tags: []string{"b"}},
		},
		{
			name: "starred vs not",
			a:    Filter{StarredOnly: true},
			b:    Filter{},
		},
		{
			name: "trash vs active",
			a:    Filter{Trashed: true},
			b:    Filter{},
		},
		{
			name: "collection vs search carrying same text",
			a:    Filter{Collection: "x"},
			b:    Filter{Search: "x"},
		},
		{
			name: "uncategorized flag",
			a:    Filter{Uncategorized: true},
			b:    Filter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Signature() == tt.b.Signature() {
				t.Errorf("distinct queries share signature %q", tt.a.Signature())
			}
		})
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "all", want: ""},
		{in: "today", want: "2026-03-15"},
		{in: "7d", want: "2026-03-08"},
		{in: "2w", want: "2026-03-01"},
		{in: "2026-01-31", want: "2026-01-31"},
		{in: "yesterday", wantErr: true},
		{in: "-3d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSince(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSince(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSince(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSince(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
