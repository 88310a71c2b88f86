// Package editor is the document editor state machine. Every transition is a
// method on a State value that returns the next State; the receiver is never
// modified. Allocation is recomputed after target changes, block insertion and
// removal, reset and load, never after content, label or order edits.
package editor

import (
	"sort"

	"github.com/google/uuid"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/utils"
)

// State is a snapshot of one open document.
type State struct {
	DocumentID      string
	Title           string
	TargetCharCount int
	WritingMode     models.WritingMode
	DocumentType    *models.DocumentType
	Blocks          []models.Block

	Hints          *models.HintsData
	HintsCollapsed bool
	Composition    *models.Composition

	// Err is the message of the last failed operation, shown as a banner
	Err string

	alloc *blocks.Allocator
}

// New returns a fresh PREP document using the default allocator
func New() State {
	return NewWithAllocator(blocks.DefaultAllocator())
}

// NewWithAllocator returns a fresh PREP document using alloc
func NewWithAllocator(alloc *blocks.Allocator) State {
	prep, _ := blocks.Default().Preset(blocks.DefaultPresetID)
	return State{
		TargetCharCount: models.DefaultTargetCharCount,
		WritingMode:     models.WritingModeFormal,
		Blocks:          alloc.FromTemplate(prep, models.DefaultTargetCharCount),
		alloc:           alloc,
	}
}

// Load replaces the state with a stored document. Hints and compositions are dropped.
func Load(doc models.Document) State {
	return New().Load(doc)
}

func (s State) allocator() *blocks.Allocator {
	if s.alloc == nil {
		return blocks.DefaultAllocator()
	}
	return s.alloc
}

func (s State) withBlocks(bs []models.Block) State {
	s.Blocks = s.allocator().Apply(bs, s.TargetCharCount)
	return s
}

func (s State) copyBlocks() []models.Block {
	return append([]models.Block(nil), s.Blocks...)
}

func (s State) indexOf(id string) int {
	for i, b := range s.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s State) SetTitle(title string) State {
	s.Title = title
	return s
}

// SetTargetCharCount changes the budget and re-allocates. Non-positive counts are ignored.
func (s State) SetTargetCharCount(count int) State {
	if count <= 0 {
		return s
	}
	s.TargetCharCount = count
	return s.withBlocks(s.copyBlocks())
}

func (s State) SetWritingMode(mode models.WritingMode) State {
	s.WritingMode = mode.Normalize()
	return s
}

func (s State) SetDocumentType(t *models.DocumentType) State {
	s.DocumentType = t
	return s
}

// AddBlock inserts an empty block of type t at index, or appends when index is nil.
// Out-of-range indexes are clamped.
func (s State) AddBlock(t models.BlockType, index *int) State {
	block := models.Block{
		ID:    uuid.New().String(),
		Type:  t,
		Label: blocks.Default().Label(t),
	}

	pos := len(s.Blocks)
	if index != nil {
		pos = *index
		if pos < 0 {
			pos = 0
		}
		if pos > len(s.Blocks) {
			pos = len(s.Blocks)
		}
	}

	next := make([]models.Block, 0, len(s.Blocks)+1)
	next = append(next, s.Blocks[:pos]...)
	next = append(next, block)
	next = append(next, s.Blocks[pos:]...)
	return s.withBlocks(next)
}

// RemoveBlock deletes the block with id and re-allocates
func (s State) RemoveBlock(id string) State {
	next := make([]models.Block, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		if b.ID != id {
			next = append(next, b)
		}
	}
	return s.withBlocks(next)
}

func (s State) UpdateBlockContent(id, content string) State {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}
	s.Blocks = s.copyBlocks()
	s.Blocks[i].Content = content
	return s
}

func (s State) UpdateBlockLabel(id, label string) State {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}
	s.Blocks = s.copyBlocks()
	s.Blocks[i].Label = label
	return s
}

// ReorderBlocks moves activeID into overID's slot. Targets travel with their blocks.
func (s State) ReorderBlocks(activeID, overID string) State {
	from, to := s.indexOf(activeID), s.indexOf(overID)
	if from < 0 || to < 0 {
		return s
	}

	next := s.copyBlocks()
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]models.Block{moved}, next[to:]...)...)
	for i := range next {
		next[i].Order = i
	}
	s.Blocks = next
	return s
}

// Reset returns a fresh PREP document, keeping the allocator
func (s State) Reset() State {
	return NewWithAllocator(s.allocator())
}

// Load replaces the state with doc. Blocks are ordered by their stored order and re-allocated.
func (s State) Load(doc models.Document) State {
	bs := append([]models.Block(nil), doc.Blocks...)
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].Order < bs[j].Order })

	target := doc.TargetCharCount
	if target <= 0 {
		target = models.DefaultTargetCharCount
	}

	next := State{
		DocumentID:      doc.ID,
		Title:           doc.Title,
		TargetCharCount: target,
		WritingMode:     doc.WritingMode.Normalize(),
		DocumentType:    doc.DocumentType,
		alloc:           s.allocator(),
	}
	return next.withBlocks(bs)
}

// SetHints replaces the hints wholesale and clears any error banner
func (s State) SetHints(h models.HintsData) State {
	s.Hints = &h
	s.Err = ""
	return s
}

func (s State) ClearHints() State {
	s.Hints = nil
	return s
}

func (s State) SetHintsCollapsed(collapsed bool) State {
	s.HintsCollapsed = collapsed
	return s
}

// SetComposition stores the latest draft and clears any error banner
func (s State) SetComposition(c models.Composition) State {
	s.Composition = &c
	s.Err = ""
	return s
}

// Fail records err for display. Blocks, hints and compositions are left as they were.
func (s State) Fail(err error) State {
	if err == nil {
		return s
	}
	s.Err = err.Error()
	return s
}

// BlockHint returns the hint for the block at order, if any
func (s State) BlockHint(order int) (string, bool) {
	if s.Hints == nil {
		return "", false
	}
	for _, h := range s.Hints.BlockHints {
		if h.Order == order {
			return h.Hint, true
		}
	}
	return "", false
}

// TotalCharCount is the number of characters written across all blocks
func (s State) TotalCharCount() int {
	return utils.CountBlockChars(s.Blocks)
}

// BlockCharCount is the number of characters in one block, 0 if it does not exist
func (s State) BlockCharCount(id string) int {
	i := s.indexOf(id)
	if i < 0 {
		return 0
	}
	return utils.CountChars(s.Blocks[i].Content)
}

// Document converts the state back into a document for saving
func (s State) Document() models.Document {
	return models.Document{
		ID:              s.DocumentID,
		Title:           s.Title,
		TargetCharCount: s.TargetCharCount,
		WritingMode:     s.WritingMode,
		DocumentType:    s.DocumentType,
		Blocks:          s.copyBlocks(),
	}
}
