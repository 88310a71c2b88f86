package blocks

import (
	"math"

	"github.com/google/uuid"

	"blockwriter/internal/domain/models"
)

// Policy decides what happens when the rounding residual drives the first block negative.
type Policy int

const (
	// PolicyClamped floors every target at zero and takes the excess back from the
	// largest remaining targets, one character at a time (ties go to the lowest index).
	PolicyClamped Policy = iota

	// PolicyAsObserved adds the signed residual to the first block unchanged,
	// which can leave it negative under pathological rounding.
	PolicyAsObserved
)

func (p Policy) String() string {
	if p == PolicyAsObserved {
		return "as-observed"
	}
	return "clamped"
}

// Allocator distributes a document budget across blocks by type ratio.
type Allocator struct {
	ratios map[models.BlockType]float64
	policy Policy
}

// NewAllocator creates an allocator for the given per-type ratios
func NewAllocator(ratios map[models.BlockType]float64, policy Policy) *Allocator {
	copied := make(map[models.BlockType]float64, len(ratios))
	for t, r := range ratios {
		copied[t] = r
	}
	return &Allocator{ratios: copied, policy: policy}
}

// DefaultAllocator uses the embedded catalog ratios and PolicyClamped
func DefaultAllocator() *Allocator {
	return NewAllocator(Default().Ratios(), PolicyClamped)
}

// Policy returns the allocator's negative-residual policy
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Allocate returns one target per block type. The result always sums to total.
// Types without a ratio get 1/N of the budget, N being the number of blocks.
// The rounding residual is absorbed by the first block.
func (a *Allocator) Allocate(types []models.BlockType, total int) []int {
	targets := make([]int, len(types))
	if len(types) == 0 {
		return targets
	}

	even := 1 / float64(len(types))
	sum := 0
	for i, t := range types {
		ratio, ok := a.ratios[t]
		if !ok {
			ratio = even
		}
		targets[i] = Round(float64(total) * ratio)
		sum += targets[i]
	}
	targets[0] += total - sum

	if a.policy == PolicyClamped {
		clampNegatives(targets)
	}
	return targets
}

// Apply returns a copy of blocks with dense orders and freshly allocated targets
func (a *Allocator) Apply(blocks []models.Block, total int) []models.Block {
	types := make([]models.BlockType, len(blocks))
	for i, b := range blocks {
		types[i] = b.Type
	}
	targets := a.Allocate(types, total)

	out := make([]models.Block, len(blocks))
	for i, b := range blocks {
		b.Order = i
		b.TargetCharCount = targets[i]
		out[i] = b
	}
	return out
}

// clampNegatives zeroes negative targets and removes the same amount from the
// largest targets so the total is preserved. Units come off the largest target
// first, ties by lowest index, so the tied group is lowered level by level.
func clampNegatives(targets []int) {
	surplus := 0
	for i, v := range targets {
		if v < 0 {
			surplus -= v
			targets[i] = 0
		}
	}
	for surplus > 0 {
		top, next := 0, 0
		var tied []int
		for i, v := range targets {
			switch {
			case v > top:
				next = max(next, top)
				top = v
				tied = append(tied[:0], i)
			case v == top:
				tied = append(tied, i)
			case v > next:
				next = v
			}
		}
		if top == 0 {
			// only possible when total itself is negative
			return
		}

		if step := (top - next) * len(tied); surplus >= step {
			for _, i := range tied {
				targets[i] = next
			}
			surplus -= step
			continue
		}
		each, extra := surplus/len(tied), surplus%len(tied)
		for n, i := range tied {
			targets[i] -= each
			if n < extra {
				targets[i]--
			}
		}
		surplus = 0
	}
}

// Round rounds half away from zero.
func Round(x float64) int {
	return int(math.Round(x))
}

// FromTemplate instantiates empty blocks for a template with allocated targets
func (a *Allocator) FromTemplate(tmpl models.Template, total int) []models.Block {
	blocks := make([]models.Block, len(tmpl.Blocks))
	for i, tb := range tmpl.Blocks {
		label := tb.Label
		if label == "" {
			label = Default().Label(tb.Type)
		}
		blocks[i] = models.Block{
			ID:    uuid.New().String(),
			Type:  tb.Type,
			Label: label,
		}
	}
	return a.Apply(blocks, total)
}
