package cli

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/services"
)

// DocumentFile is the YAML document blockctl reads:
//
//	title: ガクチカ
//	theme: 学生時代に力を入れたこと
//	targetCharCount: 400
//	mode: formal
//	documentType: entry_sheet
//	blocks:
//	  - {type: point, label: 結論, content: ...}
//	experiences:
//	  - {title: サークル運営, content: ..., category: サークル}
type DocumentFile struct {
	Title           string               `yaml:"title"`
	Theme           string               `yaml:"theme"`
	TargetCharCount int                  `yaml:"targetCharCount"`
	Mode            models.WritingMode   `yaml:"mode"`
	DocumentType    *models.DocumentType `yaml:"documentType"`
	Blocks          []FileBlock          `yaml:"blocks"`
	Experiences     []FileExperience     `yaml:"experiences"`
}

// FileBlock is one block of a DocumentFile
type FileBlock struct {
	Type    models.BlockType `yaml:"type"`
	Label   string           `yaml:"label"`
	Content string           `yaml:"content"`
}

// FileExperience is an experience supplied inline for hints
type FileExperience struct {
	Title    string  `yaml:"title"`
	Content  string  `yaml:"content"`
	Category *string `yaml:"category"`
}

// ReadDocument loads a DocumentFile from path, or from stdin when path is "-"
func ReadDocument(path string, stdin io.Reader) (*DocumentFile, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc DocumentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return &doc, nil
}

// Target returns the document budget, falling back to the default
func (d *DocumentFile) Target() int {
	if d.TargetCharCount > 0 {
		return d.TargetCharCount
	}
	return models.DefaultTargetCharCount
}

// BlockTypes returns the block types in order
func (d *DocumentFile) BlockTypes() []models.BlockType {
	types := make([]models.BlockType, len(d.Blocks))
	for i, b := range d.Blocks {
		types[i] = b.Type
	}
	return types
}

// ComposeRequest converts the file into a compose request
func (d *DocumentFile) ComposeRequest() *services.ComposeRequest {
	req := &services.ComposeRequest{
		Blocks:          make([]services.ComposeBlock, len(d.Blocks)),
		Mode:            d.Mode,
		TargetCharCount: float64(d.Target()),
		DocumentType:    d.DocumentType,
	}
	for i, b := range d.Blocks {
		order := i
		req.Blocks[i] = services.ComposeBlock{Type: b.Type, Label: b.Label, Content: b.Content, Order: &order}
	}
	return req
}

// HintsRequest converts the file into a hints request
func (d *DocumentFile) HintsRequest() *services.HintsRequest {
	req := &services.HintsRequest{
		UserID:          localUserID,
		Theme:           d.Theme,
		Blocks:          make([]services.HintBlock, len(d.Blocks)),
		TargetCharCount: float64(d.Target()),
		WritingMode:     d.Mode,
		DocumentType:    d.DocumentType,
	}
	for i, b := range d.Blocks {
		order := i
		req.Blocks[i] = services.HintBlock{Type: b.Type, Label: b.Label, Order: &order}
	}
	return req
}

const localUserID = "local"

// fileExperiences serves a DocumentFile's inline experiences as a read-only repository
type fileExperiences struct {
	items []models.Experience
}

func newFileExperiences(doc *DocumentFile) *fileExperiences {
	items := make([]models.Experience, len(doc.Experiences))
	for i, e := range doc.Experiences {
		items[i] = models.Experience{
			ID:       fmt.Sprintf("exp-%d", i+1),
			UserID:   localUserID,
			Title:    e.Title,
			Content:  e.Content,
			Category: e.Category,
			Source:   models.ExperienceSourceManual,
		}
	}
	return &fileExperiences{items: items}
}

func (f *fileExperiences) List(_ context.Context, _ string, _ models.ExperienceFilter) ([]models.Experience, error) {
	return f.items, nil
}

func (f *fileExperiences) GetByID(_ context.Context, id, _ string) (*models.Experience, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fileExperiences) Categories(context.Context, string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range f.items {
		if e.Category != nil && !seen[*e.Category] {
			seen[*e.Category] = true
			out = append(out, *e.Category)
		}
	}
	return out, nil
}

func (f *fileExperiences) Create(context.Context, *models.Experience) error {
	return domain.ErrForbidden
}
func (f *fileExperiences) Update(context.Context, *models.Experience) error {
	return domain.ErrForbidden
}
func (f *fileExperiences) Delete(context.Context, string, string) error { return domain.ErrForbidden }
