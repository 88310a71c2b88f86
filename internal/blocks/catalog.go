package blocks

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"blockwriter/internal/domain/models"
)

//go:embed config/catalog.yaml
var configFiles embed.FS

// DefaultPresetID is the template used when a document is created without one.
const DefaultPresetID = "preset-prep"

// BlockTypeInfo is the display and prompt metadata for a block type.
type BlockTypeInfo struct {
	Type   models.BlockType `yaml:"type" json:"type"`
	Label  string           `yaml:"label" json:"label"`
	Intent string           `yaml:"intent" json:"intent"`
	Color  string           `yaml:"color" json:"color"`
	Ratio  *float64         `yaml:"ratio" json:"ratio,omitempty"` // null = even split
}

// DocumentTypeInfo is the display and prompt metadata for a document type.
type DocumentTypeInfo struct {
	Type           models.DocumentType `yaml:"type" json:"type"`
	Label          string              `yaml:"label" json:"label"`
	Description    string              `yaml:"description" json:"description"`
	PromptModifier string              `yaml:"prompt_modifier" json:"promptModifier"`
}

type presetFile struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Blocks      []models.TemplateBlock `yaml:"blocks"`
}

type catalogFile struct {
	BlockTypes    []BlockTypeInfo    `yaml:"block_types"`
	DocumentTypes []DocumentTypeInfo `yaml:"document_types"`
	Presets       []presetFile       `yaml:"presets"`
}

// Catalog holds the static block-type, document-type and preset tables.
// It is read-only after loading and safe for concurrent use.
type Catalog struct {
	blockTypes    []BlockTypeInfo
	byType        map[models.BlockType]BlockTypeInfo
	documentTypes map[models.DocumentType]DocumentTypeInfo
	docTypeOrder  []models.DocumentType
	presets       []models.Template
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, loading it on first use.
// The embedded file is part of the binary, so a load failure is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCatalog
}

// Load parses the embedded catalog file
func Load() (*Catalog, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML and checks its internal consistency
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c := &Catalog{
		blockTypes:    file.BlockTypes,
		byType:        make(map[models.BlockType]BlockTypeInfo, len(file.BlockTypes)),
		documentTypes: make(map[models.DocumentType]DocumentTypeInfo, len(file.DocumentTypes)),
	}
	for _, bt := range file.BlockTypes {
		if !bt.Type.Valid() {
			return nil, fmt.Errorf("catalog: unknown block type %q", bt.Type)
		}
		if bt.Ratio != nil && (*bt.Ratio <= 0 || *bt.Ratio > 1) {
			return nil, fmt.Errorf("catalog: ratio for %s must be in (0, 1]", bt.Type)
		}
		c.byType[bt.Type] = bt
	}
	for _, dt := range file.DocumentTypes {
		c.documentTypes[dt.Type] = dt
		c.docTypeOrder = append(c.docTypeOrder, dt.Type)
	}
	for _, p := range file.Presets {
		if len(p.Blocks) == 0 {
			return nil, fmt.Errorf("catalog: preset %s has no blocks", p.ID)
		}
		description := p.Description
		c.presets = append(c.presets, models.Template{
			ID:          p.ID,
			Name:        p.Name,
			Description: &description,
			Blocks:      p.Blocks,
			IsPreset:    true,
		})
	}
	return c, nil
}

// BlockTypes returns block types in palette order
func (c *Catalog) BlockTypes() []BlockTypeInfo {
	return append([]BlockTypeInfo(nil), c.blockTypes...)
}

// Label returns the default display label for a block type
func (c *Catalog) Label(t models.BlockType) string {
	if info, ok := c.byType[t]; ok {
		return info.Label
	}
	return c.byType[models.BlockTypeCustom].Label
}

// Intent returns the prompt-facing description of what a block of type t is for.
// Unknown types read as a generic section.
func (c *Catalog) Intent(t models.BlockType) string {
	if info, ok := c.byType[t]; ok && info.Intent != "" {
		return info.Intent
	}
	return "セクション"
}

// Ratios returns the per-type budget shares. Types without a ratio are absent.
func (c *Catalog) Ratios() map[models.BlockType]float64 {
	ratios := make(map[models.BlockType]float64)
	for t, info := range c.byType {
		if info.Ratio != nil {
			ratios[t] = *info.Ratio
		}
	}
	return ratios
}

// DocumentTypes returns document types in display order
func (c *Catalog) DocumentTypes() []DocumentTypeInfo {
	out := make([]DocumentTypeInfo, 0, len(c.docTypeOrder))
	for _, t := range c.docTypeOrder {
		out = append(out, c.documentTypes[t])
	}
	return out
}

// ValidDocumentType reports whether t is a known document type
func (c *Catalog) ValidDocumentType(t models.DocumentType) bool {
	_, ok := c.documentTypes[t]
	return ok
}

// PromptModifier returns the style instruction for a document type, or "" for nil/unknown
func (c *Catalog) PromptModifier(t *models.DocumentType) string {
	if t == nil {
		return ""
	}
	return c.documentTypes[*t].PromptModifier
}

// Presets returns copies of the read-only preset templates
func (c *Catalog) Presets() []models.Template {
	out := make([]models.Template, len(c.presets))
	for i, p := range c.presets {
		p.Blocks = append([]models.TemplateBlock(nil), p.Blocks...)
		out[i] = p
	}
	return out
}

// Preset looks up a preset by id
func (c *Catalog) Preset(id string) (models.Template, bool) {
	for _, p := range c.Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Template{}, false
}

// IsPreset reports whether id names a preset template
func (c *Catalog) IsPreset(id string) bool {
	_, ok := c.Preset(id)
	return ok
}
