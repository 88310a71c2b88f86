package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/services"
)

func seededExperiences() *memExperienceRepo {
	now := time.Now()
	return newMemExperienceRepo(
		models.Experience{ID: "e1", UserID: testUser, Title: "サークル", Content: "部長", Category: strPtr("課外活動"),
			Source: models.ExperienceSourceManual, UpdatedAt: now.Add(-time.Hour)},
		models.Experience{ID: "e2", UserID: testUser, Title: "ゼミ", Content: "発表", Category: strPtr("学業"),
			Source: models.ExperienceSourceAuto, UpdatedAt: now},
		models.Experience{ID: "e3", UserID: "other", Title: "x", Content: "y",
			Source: models.ExperienceSourceManual, UpdatedAt: now},
	)
}

func TestListExperiences(t *testing.T) {
	svc := NewExperienceService(seededExperiences(), testLogger())
	ctx := context.Background()

	all, err := svc.ListExperiences(ctx, testUser, models.ExperienceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "e2", all[0].ID, "most recently updated first")

	manual, err := svc.ListExperiences(ctx, testUser, models.ExperienceFilter{Source: models.ExperienceSourceManual})
	require.NoError(t, err)
	require.Len(t, manual, 1)
	assert.Equal(t, "e1", manual[0].ID)

	byCategory, err := svc.ListExperiences(ctx, testUser, models.ExperienceFilter{Category: "学業"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "e2", byCategory[0].ID)

	_, err = svc.ListExperiences(ctx, testUser, models.ExperienceFilter{Source: "imported"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	none, err := svc.ListExperiences(ctx, "nobody", models.ExperienceFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
}

func TestCreateExperience(t *testing.T) {
	svc := NewExperienceService(newMemExperienceRepo(), testLogger())
	ctx := context.Background()

	exp, err := svc.CreateExperience(ctx, &services.CreateExperienceRequest{
		UserID:   testUser,
		Title:    " アルバイト ",
		Content:  "接客",
		Category: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "アルバイト", exp.Title)
	assert.Equal(t, models.ExperienceSourceManual, exp.Source)
	assert.Nil(t, exp.Category)

	_, err = svc.CreateExperience(ctx, &services.CreateExperienceRequest{UserID: testUser, Title: "x"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title と content は必須です", ve.Message)
}

func TestUpdateExperience(t *testing.T) {
	svc := NewExperienceService(seededExperiences(), testLogger())
	ctx := context.Background()

	updated, err := svc.UpdateExperience(ctx, testUser, "e1", &services.UpdateExperienceRequest{
		Content:  strPtr("副部長"),
		Category: services.OptionalField{Present: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "サークル", updated.Title)
	assert.Equal(t, "副部長", updated.Content)
	assert.Nil(t, updated.Category)

	_, err = svc.UpdateExperience(ctx, testUser, "e1", &services.UpdateExperienceRequest{Title: strPtr(" ")})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.UpdateExperience(ctx, testUser, "e2", &services.UpdateExperienceRequest{Title: strPtr("x")})
	var fe *domain.ForbiddenError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "自動蓄積データは編集できません", fe.Message)

	_, err = svc.UpdateExperience(ctx, testUser, "e3", &services.UpdateExperienceRequest{Title: strPtr("x")})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "経験データが見つかりません", nf.Message)
}

func TestDeleteExperience(t *testing.T) {
	repo := seededExperiences()
	svc := NewExperienceService(repo, testLogger())
	ctx := context.Background()

	err := svc.DeleteExperience(ctx, testUser, "e2")
	var fe *domain.ForbiddenError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "自動蓄積データは削除できません", fe.Message)
	assert.Contains(t, repo.experiences, "e2")

	require.NoError(t, svc.DeleteExperience(ctx, testUser, "e1"))
	assert.NotContains(t, repo.experiences, "e1")

	assert.True(t, errors.Is(svc.DeleteExperience(ctx, testUser, "e1"), domain.ErrNotFound))
}

func TestListCategories(t *testing.T) {
	svc := NewExperienceService(seededExperiences(), testLogger())

	cats, err := svc.ListCategories(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"学業", "課外活動"}, cats)

	empty, err := svc.ListCategories(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, []string{}, empty)
}
