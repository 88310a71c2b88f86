// Package hints turns the model's hints response into models.HintsData.
// Parsing is total: malformed output yields a deterministic fallback, never an error.
package hints

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"blockwriter/internal/domain/models"
)

// FallbackOverview is shown when the response could not be decoded.
const FallbackOverview = "ヒントの生成に問題がありました。もう一度お試しください。"

const fallbackSection = "このセクション"

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

var errNotObject = errors.New("hints payload is not a JSON object")

// FallbackBlock is a request block used to synthesize hints when decoding fails.
type FallbackBlock struct {
	Type  models.BlockType
	Label string
	Order int
}

// ExtractJSON returns the body of the first ```json fence, or the whole text when there is none.
func ExtractJSON(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// Parse decodes raw model output. NoExperiences is always derived from
// experienceCount, whatever the model claims.
func Parse(raw string, fallbackBlocks []FallbackBlock, experienceCount int) models.HintsData {
	var data models.HintsData
	if decoded, err := decode(ExtractJSON(raw)); err != nil {
		data = Fallback(fallbackBlocks)
	} else {
		data = *decoded
	}

	if data.SuggestedExperiences == nil {
		data.SuggestedExperiences = []models.SuggestedExperience{}
	}
	if data.RecommendedStructure == nil {
		data.RecommendedStructure = []models.RecommendedBlock{}
	}
	if data.BlockHints == nil {
		data.BlockHints = []models.BlockHint{}
	}
	data.NoExperiences = experienceCount == 0
	return data
}

// decode reads the hints object field by field. Only a candidate that is not a JSON
// object fails; a mistyped field degrades to its zero value and a malformed entry is skipped.
func decode(candidate string) (*models.HintsData, error) {
	trimmed := bytes.TrimSpace([]byte(candidate))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}

	data := &models.HintsData{
		Overview:      text(fields["overview"]),
		StructureHint: text(fields["structureHint"]),
	}
	for _, e := range objects(fields["suggestedExperiences"]) {
		data.SuggestedExperiences = append(data.SuggestedExperiences, models.SuggestedExperience{
			ID:        text(e["id"]),
			Title:     text(e["title"]),
			Relevance: text(e["relevance"]),
		})
	}
	for _, b := range objects(fields["recommendedStructure"]) {
		data.RecommendedStructure = append(data.RecommendedStructure, models.RecommendedBlock{
			Type: text(b["type"]),
			Hint: text(b["hint"]),
		})
	}
	for _, h := range objects(fields["blockHints"]) {
		order, ok := integer(h["order"])
		if !ok {
			continue
		}
		data.BlockHints = append(data.BlockHints, models.BlockHint{Order: order, Hint: text(h["hint"])})
	}
	return data, nil
}

// text reads a string, keeping numbers and booleans as their literal text
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// integer reads a whole number given as a JSON number or a numeric string
func integer(raw json.RawMessage) (int, bool) {
	s := text(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// objects returns the object entries of a JSON array, skipping anything else
func objects(raw json.RawMessage) []map[string]json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err == nil && obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// Fallback builds generic hints naming each block
func Fallback(blocks []FallbackBlock) models.HintsData {
	data := models.HintsData{
		Overview:             FallbackOverview,
		SuggestedExperiences: []models.SuggestedExperience{},
		RecommendedStructure: make([]models.RecommendedBlock, len(blocks)),
		BlockHints:           make([]models.BlockHint, len(blocks)),
	}
	for i, b := range blocks {
		hint := fallbackHint(b.Label)
		data.RecommendedStructure[i] = models.RecommendedBlock{Type: string(b.Type), Hint: hint}
		data.BlockHints[i] = models.BlockHint{Order: b.Order, Hint: hint}
	}
	return data
}

func fallbackHint(label string) string {
	if label == "" {
		label = fallbackSection
	}
	return label + "について書いてみましょう"
}
