package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain/models"
	serviceLLM "blockwriter/internal/service/llm"
	"blockwriter/internal/service/llm/gemini"
)

type fakeGenerator struct {
	configured bool
	response   string
	models     []gemini.Model
	prompts    []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, req gemini.GenerateRequest) (string, error) {
	f.prompts = append(f.prompts, req.Prompt)
	return f.response, nil
}

func (f *fakeGenerator) ListModels(context.Context) ([]gemini.Model, error) {
	return f.models, nil
}

func (f *fakeGenerator) Configured() bool { return f.configured }

// testApp returns an unstyled App backed by gen. The settings it was built with are recorded in got.
func testApp(t *testing.T, gen *fakeGenerator, got *Settings) *App {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	return &App{
		Catalog: blocks.Default(),
		NewGenerator: func(s Settings, _ *slog.Logger) serviceLLM.TextGenerator {
			if got != nil {
				*got = s
			}
			return gen
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

const sampleDoc = `
title: ガクチカ
theme: 学生時代に力を入れたこと
targetCharCount: 400
mode: formal
documentType: entry_sheet
blocks:
  - type: point
    label: 結論
    content: テニスサークルの新歓で参加者を倍増させた。
  - type: reason
    label: 理由
    content: SNS発信を週3回に増やした。
  - type: example
    label: 具体例
    content: 体験会の動画が1万回再生された。
  - type: point
    label: まとめ
    content: 仕組みで成果を出す力を得た。
experiences:
  - title: 新歓リーダー
    content: 30人規模のサークルで新歓を統括した。
    category: サークル
`

// tableTargets sums the last column of a plain allocate table
func tableTargets(t *testing.T, out string) []int {
	t.Helper()
	var targets []int
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[2:] {
		cols := strings.Split(line, "\t")
		n, err := strconv.Atoi(cols[len(cols)-1])
		require.NoError(t, err, line)
		targets = append(targets, n)
	}
	return targets
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestAllocate_Args(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	out, err := executeCmd(t, app, "", "allocate", "point", "reason", "example", "point", "--target", "400")
	require.NoError(t, err)

	targets := tableTargets(t, out)
	require.Len(t, targets, 4)
	assert.Equal(t, 400, sum(targets))
	assert.Equal(t, blocks.DefaultAllocator().Allocate(
		[]models.BlockType{models.BlockTypePoint, models.BlockTypeReason, models.BlockTypeExample, models.BlockTypePoint}, 400,
	), targets)
}

func TestAllocate_FileUsesDocumentTarget(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	out, err := executeCmd(t, app, sampleDoc, "allocate", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "400 字 / 4 blocks (clamped)")
	assert.Contains(t, out, "まとめ")
	assert.Equal(t, 400, sum(tableTargets(t, out)))
}

func TestAllocate_Preset(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	out, err := executeCmd(t, app, "", "allocate", "--preset", blocks.DefaultPresetID, "--target", "800", "--policy", "as-observed")
	require.NoError(t, err)
	assert.Contains(t, out, "(as-observed)")
	assert.Equal(t, 800, sum(tableTargets(t, out)))
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no blocks", []string{"allocate"}, "no blocks"},
		{"bad policy", []string{"allocate", "point", "--policy", "loose"}, "unknown policy"},
		{"bad preset", []string{"allocate", "--preset", "nope"}, "unknown preset"},
		{"zero target", []string{"allocate", "point", "reason", "--target", "0"}, "--target must be positive"},
		{"negative target", []string{"allocate", "point", "reason", "--target=-50"}, "--target must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(t, &fakeGenerator{}, nil)
			_, err := executeCmd(t, app, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClamp(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)
	text := strings.Repeat("あいうえおかきくけこ。", 20)

	out, err := executeCmd(t, app, text, "clamp", "--target", "100")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.LessOrEqual(t, len([]rune(lines[0])), 105)
	assert.True(t, strings.HasSuffix(lines[0], "。"))
	assert.Contains(t, lines[1], "220 →")
}

func TestClamp_RequiresTarget(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)
	_, err := executeCmd(t, app, "", "clamp", "text")
	require.Error(t, err)
}

func TestPromptCompose(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	out, err := executeCmd(t, app, sampleDoc, "prompt", "compose")
	require.NoError(t, err)
	assert.Contains(t, out, "# compose formal, 380〜400 字")
	assert.Contains(t, out, "SNS発信を週3回に増やした。")
}

func TestPromptHints_IncludesExperiences(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	out, err := executeCmd(t, app, sampleDoc, "prompt", "hints")
	require.NoError(t, err)
	assert.Contains(t, out, "学生時代に力を入れたこと")
	assert.Contains(t, out, "新歓リーダー")
}

func TestCompose(t *testing.T) {
	gen := &fakeGenerator{configured: true, response: "新歓で参加者を倍増させた経験から、仕組みで成果を出す力を得た。"}
	app := testApp(t, gen, nil)

	out, err := executeCmd(t, app, sampleDoc, "compose")
	require.NoError(t, err)
	assert.Contains(t, out, "仕組みで成果を出す力を得た。")
	assert.Contains(t, out, "/ 400 字 (formal)")
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "体験会の動画")
}

func TestCompose_JSON(t *testing.T) {
	gen := &fakeGenerator{configured: true, response: "短い文章です。"}
	app := testApp(t, gen, nil)

	out, err := executeCmd(t, app, sampleDoc, "compose", "--json")
	require.NoError(t, err)

	var got models.Composition
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "短い文章です。", got.ComposedText)
	assert.Equal(t, models.WritingModeFormal, got.Mode)
}

func TestCompose_MissingKey(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	_, err := executeCmd(t, app, sampleDoc, "compose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestHints(t *testing.T) {
	gen := &fakeGenerator{
		configured: true,
		response:   "```json\n{\"overview\": \"数字で語れている\", \"blockHints\": [{\"order\": 1, \"hint\": \"投稿の工夫を書く\"}]}\n```",
	}
	app := testApp(t, gen, nil)

	out, err := executeCmd(t, app, sampleDoc, "hints")
	require.NoError(t, err)
	assert.Contains(t, out, "数字で語れている")
	assert.Contains(t, out, "1\t理由\t投稿の工夫を書く")
}

func TestHints_JSON(t *testing.T) {
	gen := &fakeGenerator{configured: true, response: "not json"}
	app := testApp(t, gen, nil)

	out, err := executeCmd(t, app, sampleDoc, "hints", "--json")
	require.NoError(t, err)

	var got models.HintsData
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "学生時代に力を入れたこと", got.Theme)
	assert.Len(t, got.BlockHints, 4)
}

func TestModels(t *testing.T) {
	gen := &fakeGenerator{configured: true, models: []gemini.Model{
		{Name: "models/gemini-1.5-flash", DisplayName: "Gemini 1.5 Flash", SupportedGenerationMethods: []string{"generateContent"}},
		{Name: "models/embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
	}}
	app := testApp(t, gen, nil)

	out, err := executeCmd(t, app, "", "models", "--generate")
	require.NoError(t, err)
	assert.Contains(t, out, "models/gemini-1.5-flash")
	assert.NotContains(t, out, "embedding-001")
}

func TestTemplates(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	out, err := executeCmd(t, app, "", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, blocks.DefaultPresetID+" *")
	assert.Contains(t, out, string(models.BlockTypeReason))
}

func TestSettings_FlagsEnvAndFile(t *testing.T) {
	var got Settings
	gen := &fakeGenerator{configured: true, response: "ok。"}
	app := testApp(t, gen, &got)

	cfg := filepath.Join(t.TempDir(), "blockctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("gemini:\n  model: gemini-from-file\n  timeout: 2m\n"), 0o600))
	t.Setenv("GEMINI_API_KEY", "env-key")

	_, err := executeCmd(t, app, sampleDoc, "compose", "--config", cfg, "--base-url", "http://localhost:9999")
	require.NoError(t, err)

	assert.Equal(t, "env-key", got.APIKey)
	assert.Equal(t, "gemini-from-file", got.Model)
	assert.Equal(t, "http://localhost:9999", got.BaseURL)
	assert.Equal(t, "2m0s", got.Timeout.String())
}

func TestSettings_MissingExplicitConfig(t *testing.T) {
	app := testApp(t, &fakeGenerator{}, nil)

	_, err := executeCmd(t, app, "", "templates", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
