package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want []Category
	}{
		{
			name: "empty defaults to frontend",
			in:   Signals{Name: "dotfiles"},
			want: []Category{Frontend},
		},
		{
			name: "frontend language",
			in:   Signals{Name: "landing", Language: "TypeScript"},
			want: []Category{Frontend},
		},
		{
			name: "backend language",
			in:   Signals{Name: "crawler", Language: "Go"},
			want: []Category{Backend},
		},
		{
			name: "secondary language counts",
			in:   Signals{Name: "blog", Language: "HTML", Languages: []string{"HTML", "Python"}},
			want: []Category{Backend, Frontend, Fullstack},
		},
		{
			name: "mobile topic",
			in:   Signals{Name: "weather", Topics: []string{"Flutter"}, Language: "Dart"},
			want: []Category{Mobile},
		},
		{
			name: "mobile keyword in description",
			in:   Signals{Name: "habit", Description: "A React Native habit tracker", Language: "TypeScript"},
			want: []Category{Mobile, Frontend},
		},
		{
			name: "fullstack topic without sides",
			in:   Signals{Name: "thing", Topics: []string{"fullstack"}, Language: "Elixir"},
			want: []Category{Fullstack},
		},
		{
			name: "full stack text",
			in:   Signals{Name: "shop", Description: "Full Stack store", Language: ""},
			want: []Category{Fullstack},
		},
		{
			name: "backend keyword substring",
			in:   Signals{Name: "rapid-prototype", Language: "Elixir"},
			want: []Category{Backend},
		},
		{
			name: "all four",
			in: Signals{
				Name:        "delivery-app",
				Description: "Android app with an Express API",
				Language:    "TypeScript",
			},
			want: []Category{Mobile, Backend, Frontend, Fullstack},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify (-want +got):\n%s", diff)
			}
			for _, c := range got {
				if !c.Valid() {
					t.Errorf("invalid category %q", c)
				}
			}
		})
	}
}

func TestDetectTraits(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want Traits
	}{
		{
			name: "nothing",
			in:   Signals{Name: "notes", Language: "Markdown"},
			want: Traits{},
		},
		{
			name: "api by topic",
			in:   Signals{Name: "payments", Topics: []string{"Swagger"}},
			want: Traits{API: true},
		},
		{
			name: "crud by portuguese keyword",
			in:   Signals{Name: "estoque", Description: "Sistema de gestão de estoque"},
			want: Traits{CRUD: true},
		},
		{
			name: "fullstack needs both sides",
			in:   Signals{Name: "store", Description: "React storefront with node server", Language: "JavaScript"},
			want: Traits{Fullstack: true},
		},
		{
			name: "secondary languages are ignored",
			in:   Signals{Name: "site", Language: "HTML", Languages: []string{"HTML", "Python"}},
			want: Traits{},
		},
		{
			name: "admin dashboard api",
			in:   Signals{Name: "admin-dashboard", Description: "REST API", Language: "Java"},
			want: Traits{API: true, CRUD: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DetectTraits(tt.in)); diff != "" {
				t.Errorf("DetectTraits (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	got := Strings([]Category{Backend, Fullstack})
	if diff := cmp.Diff([]string{"backend", "fullstack"}, got); diff != "" {
		t.Errorf("Strings (-want +got):\n%s", diff)
	}
}
