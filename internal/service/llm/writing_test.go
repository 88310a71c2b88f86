package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/services"
	"blockwriter/internal/service/llm/gemini"
	"blockwriter/internal/service/llm/hints"
	"blockwriter/internal/service/llm/prompts"
)

type fakeGenerator struct {
	configured bool
	response   string
	err        error
	models     []gemini.Model
	prompts    []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, req gemini.GenerateRequest) (string, error) {
	f.prompts = append(f.prompts, req.Prompt)
	return f.response, f.err
}

func (f *fakeGenerator) ListModels(context.Context) ([]gemini.Model, error) {
	return f.models, f.err
}

func (f *fakeGenerator) Configured() bool { return f.configured }

type fakeExperienceRepo struct {
	experiences []models.Experience
	err         error
	userIDs     []string
}

func (r *fakeExperienceRepo) Create(context.Context, *models.Experience) error { return nil }
func (r *fakeExperienceRepo) GetByID(context.Context, string, string) (*models.Experience, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeExperienceRepo) List(_ context.Context, userID string, _ models.ExperienceFilter) ([]models.Experience, error) {
	r.userIDs = append(r.userIDs, userID)
	return r.experiences, r.err
}
func (r *fakeExperienceRepo) Update(context.Context, *models.Experience) error { return nil }
func (r *fakeExperienceRepo) Delete(context.Context, string, string) error     { return nil }
func (r *fakeExperienceRepo) Categories(context.Context, string) ([]string, error) {
	return nil, nil
}

func newTestService(gen *fakeGenerator, repo *fakeExperienceRepo) services.WritingService {
	if repo == nil {
		repo = &fakeExperienceRepo{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWritingService(gen, repo, prompts.DefaultBuilder(), logger)
}

func intPtr(i int) *int { return &i }

func TestCompose_EndToEnd(t *testing.T) {
	types := []models.BlockType{models.BlockTypePoint, models.BlockTypeReason, models.BlockTypeExample, models.BlockTypePoint}
	targets := blocks.DefaultAllocator().Allocate(types, 1000)
	require.Equal(t, []int{200, 300, 300, 200}, targets)

	// 1100 characters, the last terminal being the 960th character
	generated := []rune(strings.Repeat("あ", 1100))
	generated[959] = '。'
	gen := &fakeGenerator{configured: true, response: string(generated)}
	svc := newTestService(gen, nil)

	req := &services.ComposeRequest{Mode: models.WritingModeFormal, TargetCharCount: 1000}
	for i, bt := range types {
		req.Blocks = append(req.Blocks, services.ComposeBlock{Type: bt, Label: blocks.Default().Label(bt), Content: "メモ", Order: intPtr(i)})
	}

	got, err := svc.Compose(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "950〜1000文字")
	assert.Equal(t, 960, got.CharCount)
	assert.Equal(t, 960, utf8.RuneCountInString(got.ComposedText))
	assert.True(t, strings.HasSuffix(got.ComposedText, "。"))
	assert.Equal(t, models.WritingModeFormal, got.Mode)
}

func TestCompose_Defaults(t *testing.T) {
	gen := &fakeGenerator{configured: true, response: "短い文章です。"}
	svc := newTestService(gen, nil)

	got, err := svc.Compose(context.Background(), &services.ComposeRequest{
		Blocks:          []services.ComposeBlock{{Content: "メモ"}},
		Mode:            "shouty",
		TargetCharCount: -5,
	})

	require.NoError(t, err)
	assert.Equal(t, models.WritingModeFormal, got.Mode)
	assert.Equal(t, 7, got.CharCount)
	assert.Contains(t, gen.prompts[0], "950〜1000文字")
	assert.Contains(t, gen.prompts[0], "【1. セクション】")
}

func TestCompose_EmptyBlocksUseRedirectPrompt(t *testing.T) {
	gen := &fakeGenerator{configured: true, response: "内容を入力してください。"}
	svc := newTestService(gen, nil)

	_, err := svc.Compose(context.Background(), &services.ComposeRequest{Blocks: []services.ComposeBlock{}})

	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], prompts.EmptyComposeInstruction)
}

func TestCompose_Errors(t *testing.T) {
	t.Run("missing key is a config error before validation", func(t *testing.T) {
		gen := &fakeGenerator{}
		_, err := newTestService(gen, nil).Compose(context.Background(), &services.ComposeRequest{})

		var cfgErr *domain.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, msgMissingAPIKey, cfgErr.Message)
		assert.Empty(t, gen.prompts)
	})

	t.Run("missing blocks", func(t *testing.T) {
		gen := &fakeGenerator{configured: true}
		_, err := newTestService(gen, nil).Compose(context.Background(), &services.ComposeRequest{})

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.EqualError(t, err, msgBlocksMissing)
		assert.Empty(t, gen.prompts)
	})

	t.Run("upstream failure", func(t *testing.T) {
		apiErr := &gemini.APIError{StatusCode: 429, Message: "Resource has been exhausted"}
		gen := &fakeGenerator{configured: true, err: apiErr}
		_, err := newTestService(gen, nil).Compose(context.Background(), &services.ComposeRequest{Blocks: []services.ComposeBlock{}})

		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.EqualError(t, err, "Resource has been exhausted")
		var got *gemini.APIError
		assert.True(t, errors.As(err, &got))
	})
}

func TestUnknownDocumentTypeIsRejected(t *testing.T) {
	unknown := models.DocumentType("haiku")
	known := models.DocumentType("entry_sheet")
	order := 0

	t.Run("compose", func(t *testing.T) {
		gen := &fakeGenerator{configured: true, response: "文章。"}
		svc := newTestService(gen, nil)

		_, err := svc.Compose(context.Background(), &services.ComposeRequest{
			Blocks:       []services.ComposeBlock{{Type: models.BlockTypePoint, Content: "メモ"}},
			DocumentType: &unknown,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, `unknown document type "haiku"`)
		assert.Empty(t, gen.prompts)

		_, err = svc.Compose(context.Background(), &services.ComposeRequest{
			Blocks:       []services.ComposeBlock{{Type: models.BlockTypePoint, Content: "メモ"}},
			DocumentType: &known,
		})
		assert.NoError(t, err)
	})

	t.Run("hints", func(t *testing.T) {
		gen := &fakeGenerator{configured: true, response: "{}"}
		svc := newTestService(gen, nil)

		_, err := svc.Hints(context.Background(), &services.HintsRequest{
			UserID:       "u1",
			Theme:        "ガクチカ",
			Blocks:       []services.HintBlock{{Type: models.BlockTypePoint, Order: &order}},
			DocumentType: &unknown,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, gen.prompts)
	})
}

func TestHints(t *testing.T) {
	category := "部活"
	repo := &fakeExperienceRepo{experiences: []models.Experience{
		{ID: "e1", Title: "サッカー部", Content: "主将を務めた", Category: &category},
	}}
	gen := &fakeGenerator{configured: true, response: "```json\n{\"overview\": \"いいね\", \"blockHints\": [{\"order\": 0, \"hint\": \"書こう\"}], \"noExperiences\": true}\n```"}
	svc := newTestService(gen, repo)

	got, err := svc.Hints(context.Background(), &services.HintsRequest{
		UserID:          "user-1",
		Theme:           "  リーダーシップ ",
		Blocks:          []services.HintBlock{{Type: models.BlockTypePoint, Label: "結論"}},
		TargetCharCount: 2000,
		WritingMode:     models.WritingModeCasual,
	})

	require.NoError(t, err)
	assert.Equal(t, "リーダーシップ", got.Theme)
	assert.Equal(t, "いいね", got.Overview)
	assert.False(t, got.NoExperiences)
	assert.Equal(t, []string{"user-1"}, repo.userIDs)
	assert.Contains(t, gen.prompts[0], "テーマ: リーダーシップ\n")
	assert.Contains(t, gen.prompts[0], "「サッカー部」（部活）: 主将を務めた")
	assert.Contains(t, gen.prompts[0], "文体はカジュアル")
}

func TestHints_FallbackOnGarbage(t *testing.T) {
	gen := &fakeGenerator{configured: true, response: "I cannot help with that."}
	svc := newTestService(gen, &fakeExperienceRepo{})

	got, err := svc.Hints(context.Background(), &services.HintsRequest{
		Theme:  "テーマ",
		Blocks: []services.HintBlock{{Type: "reason", Label: ""}, {Type: "example", Label: "例", Order: intPtr(4)}},
	})

	require.NoError(t, err)
	assert.Equal(t, hints.FallbackOverview, got.Overview)
	assert.True(t, got.NoExperiences)
	assert.Equal(t, []models.BlockHint{
		{Order: 0, Hint: "このセクションについて書いてみましょう"},
		{Order: 4, Hint: "例について書いてみましょう"},
	}, got.BlockHints)
}

func TestHints_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  services.HintsRequest
		msg  string
	}{
		{"missing theme", services.HintsRequest{Blocks: []services.HintBlock{{Type: "point"}}}, msgThemeRequired},
		{"blank theme", services.HintsRequest{Theme: "   ", Blocks: []services.HintBlock{{Type: "point"}}}, msgThemeRequired},
		{"missing blocks", services.HintsRequest{Theme: "t"}, msgBlocksRequired},
		{"empty blocks", services.HintsRequest{Theme: "t", Blocks: []services.HintBlock{}}, msgBlocksRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{configured: true}
			_, err := newTestService(gen, nil).Hints(context.Background(), &tt.req)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.EqualError(t, err, tt.msg)
			assert.Empty(t, gen.prompts)
		})
	}
}

func TestHints_RepositoryError(t *testing.T) {
	gen := &fakeGenerator{configured: true}
	repo := &fakeExperienceRepo{err: errors.New("db down")}

	_, err := newTestService(gen, repo).Hints(context.Background(), &services.HintsRequest{
		Theme:  "t",
		Blocks: []services.HintBlock{{Type: "point"}},
	})

	assert.EqualError(t, err, "db down")
	assert.Empty(t, gen.prompts)
}

func TestListModels(t *testing.T) {
	gen := &fakeGenerator{configured: true, models: []gemini.Model{
		{Name: "gemini-2.0-flash", DisplayName: "Gemini 2.0 Flash", SupportedGenerationMethods: []string{"generateContent"}},
	}}

	got, err := newTestService(gen, nil).ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []services.ModelInfo{{
		Name:                       "gemini-2.0-flash",
		DisplayName:                "Gemini 2.0 Flash",
		SupportedGenerationMethods: []string{"generateContent"},
	}}, got)

	_, err = newTestService(&fakeGenerator{}, nil).ListModels(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSafeTarget(t *testing.T) {
	assert.Equal(t, 1000, safeTarget(0))
	assert.Equal(t, 1000, safeTarget(-3))
	assert.Equal(t, 1000, safeTarget(0.2))
	assert.Equal(t, 801, safeTarget(800.5))
	assert.Equal(t, 1200, safeTarget(1200))
}
