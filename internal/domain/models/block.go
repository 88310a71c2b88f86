package models

// BlockType identifies the rhetorical role of a block.
type BlockType string

const (
	BlockTypePoint      BlockType = "point"
	BlockTypeReason     BlockType = "reason"
	BlockTypeExample    BlockType = "example"
	BlockTypeBackground BlockType = "background"
	BlockTypeProblem    BlockType = "problem"
	BlockTypeSolution   BlockType = "solution"
	BlockTypeCustom     BlockType = "custom"
)

// BlockTypes lists every known block type in palette order.
var BlockTypes = []BlockType{
	BlockTypePoint,
	BlockTypeReason,
	BlockTypeExample,
	BlockTypeBackground,
	BlockTypeProblem,
	BlockTypeSolution,
	BlockTypeCustom,
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	for _, known := range BlockTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Block is a labeled, ordered unit of document content with its own budget.
// TargetCharCount is derived by the allocator and never trusted from clients.
type Block struct {
	ID              string    `json:"id"`
	DocumentID      string    `json:"documentId,omitempty"`
	Type            BlockType `json:"type"`
	Label           string    `json:"label"`
	Content         string    `json:"content"`
	Order           int       `json:"order"`
	TargetCharCount int       `json:"targetCharCount"`
}
