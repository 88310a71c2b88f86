package service

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTx runs fn directly and counts calls
type fakeTx struct{ calls int }

func (f *fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}

type memDocumentRepo struct {
	docs     map[string]models.Document
	detached []string
	err      error
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: map[string]models.Document{}}
}

func (r *memDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	if r.err != nil {
		return r.err
	}
	r.docs[doc.ID] = cloneDoc(*doc)
	return nil
}

func (r *memDocumentRepo) GetByID(_ context.Context, id, userID string) (*models.Document, error) {
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return nil, domain.ErrNotFound
	}
	out := cloneDoc(doc)
	return &out, nil
}

func (r *memDocumentRepo) List(_ context.Context, userID string, opts repositories.DocumentListOptions) ([]models.DocumentSummary, int, error) {
	var all []models.DocumentSummary
	for _, d := range r.docs {
		if d.UserID != userID {
			continue
		}
		if opts.FolderID != nil && (d.FolderID == nil || *d.FolderID != *opts.FolderID) {
			continue
		}
		chars := 0
		for _, b := range d.Blocks {
			chars += len([]rune(b.Content))
		}
		all = append(all, models.DocumentSummary{
			ID:              d.ID,
			Title:           d.Title,
			TargetCharCount: d.TargetCharCount,
			WritingMode:     d.WritingMode,
			FolderID:        d.FolderID,
			CharCount:       chars,
			UpdatedAt:       d.UpdatedAt,
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if opts.Offset >= total {
		return nil, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return all[opts.Offset:end], total, nil
}

func (r *memDocumentRepo) Update(_ context.Context, doc *models.Document) error {
	existing, ok := r.docs[doc.ID]
	if !ok || existing.UserID != doc.UserID {
		return domain.ErrNotFound
	}
	blocks := existing.Blocks
	updated := cloneDoc(*doc)
	updated.Blocks = blocks
	r.docs[doc.ID] = updated
	return nil
}

func (r *memDocumentRepo) ReplaceBlocks(_ context.Context, documentID string, blocks []models.Block) error {
	doc, ok := r.docs[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Blocks = append([]models.Block(nil), blocks...)
	r.docs[documentID] = doc
	return nil
}

func (r *memDocumentRepo) Delete(_ context.Context, id, userID string) error {
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) DetachFolder(_ context.Context, folderID, userID string) error {
	r.detached = append(r.detached, folderID)
	for id, d := range r.docs {
		if d.UserID == userID && d.FolderID != nil && *d.FolderID == folderID {
			d.FolderID = nil
			r.docs[id] = d
		}
	}
	return nil
}

func cloneDoc(d models.Document) models.Document {
	d.Blocks = append([]models.Block(nil), d.Blocks...)
	return d
}

type memFolderRepo struct {
	folders map[string]models.Folder
}

func newMemFolderRepo(folders ...models.Folder) *memFolderRepo {
	r := &memFolderRepo{folders: map[string]models.Folder{}}
	for _, f := range folders {
		r.folders[f.ID] = f
	}
	return r
}

func (r *memFolderRepo) Create(_ context.Context, f *models.Folder) error {
	r.folders[f.ID] = *f
	return nil
}

func (r *memFolderRepo) GetByID(_ context.Context, id, userID string) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok || f.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (r *memFolderRepo) List(_ context.Context, userID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFolderRepo) Update(_ context.Context, f *models.Folder) error {
	if _, ok := r.folders[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.folders[f.ID] = *f
	return nil
}

func (r *memFolderRepo) Delete(_ context.Context, id, userID string) error {
	f, ok := r.folders[id]
	if !ok || f.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.folders, id)
	return nil
}

type memTemplateRepo struct {
	templates map[string]models.Template
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: map[string]models.Template{}}
}

func (r *memTemplateRepo) Create(_ context.Context, t *models.Template) error {
	r.templates[t.ID] = *t
	return nil
}

func (r *memTemplateRepo) GetByID(_ context.Context, id, userID string) (*models.Template, error) {
	t, ok := r.templates[id]
	if !ok || t.UserID == nil || *t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memTemplateRepo) List(_ context.Context, userID string) ([]models.Template, error) {
	var out []models.Template
	for _, t := range r.templates {
		if t.UserID != nil && *t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTemplateRepo) Update(_ context.Context, t *models.Template) error {
	if _, ok := r.templates[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.templates[t.ID] = *t
	return nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id, userID string) error {
	t, ok := r.templates[id]
	if !ok || t.UserID == nil || *t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

type memExperienceRepo struct {
	experiences map[string]models.Experience
}

func newMemExperienceRepo(exps ...models.Experience) *memExperienceRepo {
	r := &memExperienceRepo{experiences: map[string]models.Experience{}}
	for _, e := range exps {
		r.experiences[e.ID] = e
	}
	return r
}

func (r *memExperienceRepo) Create(_ context.Context, e *models.Experience) error {
	r.experiences[e.ID] = *e
	return nil
}

func (r *memExperienceRepo) GetByID(_ context.Context, id, userID string) (*models.Experience, error) {
	e, ok := r.experiences[id]
	if !ok || e.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (r *memExperienceRepo) List(_ context.Context, userID string, filter models.ExperienceFilter) ([]models.Experience, error) {
	var out []models.Experience
	for _, e := range r.experiences {
		if e.UserID != userID {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		if filter.Category != "" && (e.Category == nil || *e.Category != filter.Category) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memExperienceRepo) Update(_ context.Context, e *models.Experience) error {
	if _, ok := r.experiences[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.experiences[e.ID] = *e
	return nil
}

func (r *memExperienceRepo) Delete(_ context.Context, id, userID string) error {
	e, ok := r.experiences[id]
	if !ok || e.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.experiences, id)
	return nil
}

func (r *memExperienceRepo) Categories(_ context.Context, userID string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range r.experiences {
		if e.UserID == userID && e.Category != nil && !seen[*e.Category] {
			seen[*e.Category] = true
			out = append(out, *e.Category)
		}
	}
	return out, nil
}

type memProfileRepo struct {
	profiles map[string]models.UserProfile
	upserts  int
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[string]models.UserProfile{}}
}

func (r *memProfileRepo) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memProfileRepo) Upsert(_ context.Context, p *models.UserProfile) error {
	r.upserts++
	r.profiles[p.ID] = *p
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
