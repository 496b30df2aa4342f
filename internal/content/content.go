// Package content loads the static dashboard text: header, disclaimer,
// category schema and the illustrative panels.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"reposcan/web"
)

type (
	Page struct {
		Title      string
		Subtitle   string
		Disclaimer string
		Tagline    string
		Schema     []SchemaEntry
		Panels     []Panel
	}

	// SchemaEntry explains one category label.
	SchemaEntry struct {
		Category    string
		Description string
	}

	// Panel is a block of static text with an optional info blurb.
	Panel struct {
		ID    string
		Title string
		Intro string
		Items []Item
		Info  string
	}

	Item struct {
		Title      string
		Body       string
		Categories []string // linked repository categories, if any
		Scores     []Score
	}

	Score struct {
		Name  string
		Value string
	}
)

// Op errors returned by Load and Parse.
var (
	ErrRead    = errors.New("read panels")
	ErrDecode  = errors.New("decode panels")
	ErrInvalid = errors.New("invalid panels")
)

// Default returns the built-in page content.
func Default() (Page, error) {
	return Parse(web.DefaultPanels, "embedded")
}

// Load reads path, or the built-in content when path is empty.
func Load(path string) (Page, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("%w %s: %w", ErrRead, path, err)
	}
	return Parse(b, path)
}

// Parse decodes YAML content. Unknown keys are rejected so typos surface at
// startup.
func Parse(b []byte, source string) (Page, error) {
	var dto yamlPage
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil {
		return Page{}, fmt.Errorf("%w %s: %w", ErrDecode, source, err)
	}
	page := mapPage(dto)
	if err := page.validate(); err != nil {
		return Page{}, fmt.Errorf("%w %s: %w", ErrInvalid, source, err)
	}
	return page, nil
}

func mapPage(dto yamlPage) Page {
	p := Page{
		Title:      strings.TrimSpace(dto.Title),
		Subtitle:   strings.TrimSpace(dto.Subtitle),
		Disclaimer: strings.TrimSpace(dto.Disclaimer),
		Tagline:    strings.TrimSpace(dto.Tagline),
	}
	for _, s := range dto.Schema {
		p.Schema = append(p.Schema, SchemaEntry{Category: strings.TrimSpace(s.Category), Description: strings.TrimSpace(s.Description)})
	}
	for _, yp := range dto.Panels {
		panel := Panel{
			ID:    strings.TrimSpace(yp.ID),
			Title: strings.TrimSpace(yp.Title),
			Intro: strings.TrimSpace(yp.Intro),
			Info:  strings.TrimSpace(yp.Info),
		}
		for _, yi := range yp.Items {
			item := Item{Title: strings.TrimSpace(yi.Title), Body: strings.TrimSpace(yi.Body)}
			for _, c := range yi.Categories {
				if c = strings.TrimSpace(c); c != "" {
					item.Categories = append(item.Categories, c)
				}
			}
			for _, s := range yi.Scores {
				item.Scores = append(item.Scores, Score{Name: strings.TrimSpace(s.Name), Value: strings.TrimSpace(s.Value)})
			}
			panel.Items = append(panel.Items, item)
		}
		p.Panels = append(p.Panels, panel)
	}
	return p
}

func (p Page) validate() error {
	if p.Title == "" {
		return errors.New("title is required")
	}
	seen := make(map[string]bool, len(p.Panels))
	for i, panel := range p.Panels {
		if panel.ID == "" {
			return fmt.Errorf("panel %d: id is required", i)
		}
		if seen[panel.ID] {
			return fmt.Errorf("panel %q: duplicate id", panel.ID)
		}
		seen[panel.ID] = true
		if panel.Title == "" {
			return fmt.Errorf("panel %q: title is required", panel.ID)
		}
	}
	for _, s := range p.Schema {
		if s.Category == "" {
			return errors.New("schema entry without category")
		}
	}
	return nil
}

// RepositoryCount sums counts over the item's linked categories.
func (it Item) RepositoryCount(counts map[string]int) int {
	n := 0
	for _, c := range it.Categories {
		n += counts[c]
	}
	return n
}

// Linked reports whether the item is tied to repository categories.
func (it Item) Linked() bool {
	return len(it.Categories) > 0
}
