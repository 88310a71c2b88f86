// Package prompts builds the instruction text sent to the generative backend
// for hint generation and composition.
package prompts

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain/models"
)

// ExperiencePreviewLength is the number of characters of each experience shown to the model.
const ExperiencePreviewLength = 100

// LengthTier buckets a target length for structural advice.
type LengthTier int

const (
	TierShort LengthTier = iota
	TierMedium
	TierLong
	TierExtended
)

// TierFor returns the tier for a target character count
func TierFor(target int) LengthTier {
	switch {
	case target < 1500:
		return TierShort
	case target < 2500:
		return TierMedium
	case target < 4000:
		return TierLong
	default:
		return TierExtended
	}
}

func (t LengthTier) String() string {
	switch t {
	case TierShort:
		return "short"
	case TierMedium:
		return "medium"
	case TierLong:
		return "long"
	default:
		return "extended"
	}
}

// structureAdvice is the recommended number of reasons and examples for a tier
func (t LengthTier) structureAdvice() string {
	switch t {
	case TierShort:
		return "短めの文章なので、理由は1つ、具体例は1つに絞った構成を推奨する。"
	case TierMedium:
		return "中程度の長さなので、理由は2つ、具体例は1〜2つを推奨する。"
	case TierLong:
		return "長めの文章なので、理由は2〜3つ、具体例は2つを推奨する。"
	default:
		return "長い文章なので、理由は3つ以上、具体例は2〜3つを推奨し、背景や課題のブロック追加も検討させる。"
	}
}

// HintBlock is a block as seen by the hints prompt
type HintBlock struct {
	Type  models.BlockType
	Label string
	Order int
}

// Experience is the part of a stored experience shown to the model
type Experience struct {
	ID       string
	Title    string
	Content  string
	Category *string
}

// HintsInput collects everything the hints prompt depends on
type HintsInput struct {
	Theme           string
	Blocks          []HintBlock
	Experiences     []Experience
	WritingMode     models.WritingMode
	TargetCharCount int
	DocumentType    *models.DocumentType
}

// ComposeBlock is a block as seen by the compose prompt
type ComposeBlock struct {
	Type    models.BlockType
	Label   string
	Content string
	Order   int
}

// ComposeInput collects everything the compose prompt depends on
type ComposeInput struct {
	Blocks          []ComposeBlock
	Mode            models.WritingMode
	TargetCharCount int
	DocumentType    *models.DocumentType
}

// EmptyComposeInstruction replaces the block section when nothing has been written yet
const EmptyComposeInstruction = "（入力が空です。ユーザーに内容入力を促す短い案内文を1〜2文だけ出力してください。）"

const noExperiencesText = "（経験データがありません）"

// Builder renders prompts using the block and document-type catalog.
type Builder struct {
	catalog *blocks.Catalog
}

// NewBuilder creates a prompt builder
func NewBuilder(catalog *blocks.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// DefaultBuilder uses the embedded catalog
func DefaultBuilder() *Builder {
	return NewBuilder(blocks.Default())
}

// KnownDocumentType reports whether t has a prompt modifier
func (b *Builder) KnownDocumentType(t models.DocumentType) bool {
	return b.catalog.ValidDocumentType(t)
}

// ModeInstruction returns the style instruction for a writing mode
func ModeInstruction(mode models.WritingMode) string {
	if mode == models.WritingModeCasual {
		return "文体はカジュアル（親しみやすく、読みやすい口調）。砕けすぎず、大学のレポートとして許容される範囲で自然に。"
	}
	return "文体はフォーマル（大学レポート向け、論理的で丁寧）。主観は許容するが、曖昧表現を減らし、論理のつながりを明確に。"
}

// ComposeWindow returns the [low, high] length window declared to the model
func ComposeWindow(target int) (int, int) {
	return blocks.Round(float64(target) * 0.95), target
}

// BuildHintsPrompt renders the hint-generation instruction. It never fails.
func (b *Builder) BuildHintsPrompt(in HintsInput) string {
	ordered := append([]HintBlock(nil), in.Blocks...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	blockLines := make([]string, len(ordered))
	for i, blk := range ordered {
		intent := b.catalog.Intent(blk.Type)
		name := blk.Label
		if name == "" {
			name = intent
		}
		blockLines[i] = fmt.Sprintf("%d. %s（%s）", i+1, name, intent)
	}

	experienceList := noExperiencesText
	if len(in.Experiences) > 0 {
		lines := make([]string, len(in.Experiences))
		for i, e := range in.Experiences {
			category := ""
			if e.Category != nil && *e.Category != "" {
				category = fmt.Sprintf("（%s）", *e.Category)
			}
			lines[i] = fmt.Sprintf("- 「%s」%s: %s", e.Title, category, preview(e.Content, ExperiencePreviewLength))
		}
		experienceList = strings.Join(lines, "\n")
	}

	constraints := []string{
		"- 出力は必ず以下のJSON形式のみ。それ以外のテキストは出力しない。",
		"- ヒントは具体的かつ励ましを含む口調で（例: 「〜を書いてみよう！」）",
		"- 経験データがある場合は、関連しそうな経験を具体的に提案する",
		"- 経験データがない場合は、汎用的なヒントを出す",
		"- " + ModeInstruction(in.WritingMode.Normalize()),
		"- " + TierFor(in.TargetCharCount).structureAdvice(),
	}
	if modifier := b.catalog.PromptModifier(in.DocumentType); modifier != "" {
		constraints = append(constraints, "- "+modifier)
	}

	closing := "経験データがないので、汎用的なヒントを出してください。また、経験を登録すると良いアドバイスができることを示唆してください。"
	if len(in.Experiences) > 0 {
		closing = "経験データを参照して、具体的な経験名を含めたヒントを出してください。"
	}

	lines := []string{
		"あなたは大学生向けレポートの執筆支援アシスタントです。",
		"ユーザーが入力した「テーマ」と「構成（ブロック）」を見て、各ブロックに何を書けばよいかヒントを提案してください。",
		"",
		"【重要な制約】",
	}
	lines = append(lines, constraints...)
	lines = append(lines,
		"",
		"【入力情報】",
		"テーマ: "+in.Theme,
		fmt.Sprintf("目標文字数: %d文字", in.TargetCharCount),
		"",
		"【ブロック構成】",
		strings.Join(blockLines, "\n"),
		"",
		"【ユーザーの経験データ】",
		experienceList,
		"",
		"【出力形式（JSON）】",
		"```json",
		"{",
		`  "overview": "テーマと経験を踏まえた全体アドバイス（1〜2文）",`,
		`  "suggestedExperiences": [`,
		`    { "id": "経験ID", "title": "経験タイトル", "relevance": "このテーマとの関連" }`,
		"  ],",
		`  "recommendedStructure": [`,
		`    { "type": "point", "hint": "このブロックを置く理由と書く内容" }`,
		"  ],",
		`  "structureHint": "構成についてのアドバイス（PREP法の流れなど）",`,
		`  "blockHints": [`,
		`    { "order": 0, "hint": "このブロックに書く内容のヒント" },`,
		"    ...",
		"  ]",
		"}",
		"```",
		"",
		closing,
	)
	return strings.Join(lines, "\n")
}

// BuildComposePrompt renders the composition instruction. Blocks whose content is
// blank are left out; when every block is blank the prompt asks for a short
// redirect message instead. It never fails.
func (b *Builder) BuildComposePrompt(in ComposeInput) string {
	ordered := append([]ComposeBlock(nil), in.Blocks...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	var sections []string
	for _, blk := range ordered {
		content := strings.TrimSpace(blk.Content)
		if content == "" {
			continue
		}
		intent := b.catalog.Intent(blk.Type)
		title := strings.TrimSpace(blk.Label)
		if title == "" {
			title = intent
		}
		sections = append(sections, strings.Join([]string{
			fmt.Sprintf("【%d. %s】", len(sections)+1, title),
			fmt.Sprintf("(意図: %s)", intent),
			content,
		}, "\n"))
	}

	body := EmptyComposeInstruction
	if len(sections) > 0 {
		body = strings.Join(sections, "\n\n")
	}

	low, high := ComposeWindow(in.TargetCharCount)
	constraints := []string{
		"- 出力は日本語のみ。",
		"- Markdown記法（見出し/箇条書き/コードフェンス）は使わず、通常の文章として出力する。",
		"- 文章の重複を避け、論理の飛躍があれば補ってつなぐ（ただし事実は捏造しない）。",
		fmt.Sprintf("- 文字数は%d〜%d文字に収める（%d文字を超えない）。", low, high, high),
		"- " + ModeInstruction(in.Mode.Normalize()),
	}
	if modifier := b.catalog.PromptModifier(in.DocumentType); modifier != "" {
		constraints = append(constraints, "- "+modifier)
	}

	lines := []string{
		"あなたは大学生向けレポートの文章編集アシスタントです。",
		"以下の「構成ブロックのメモ」を、論理が通る自然な日本語の文章に統合して仕上げてください。",
		"",
		"【重要な制約】",
	}
	lines = append(lines, constraints...)
	lines = append(lines,
		"",
		"【入力（構成ブロックのメモ）】",
		body,
		"",
		"【出力】",
	)
	return strings.Join(lines, "\n")
}

// preview returns the first n runes of s, marking truncation with an ellipsis
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
