// Package seed creates a demo account's profile, folder, PREP document and experiences.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blockwriter/internal/blocks"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
)

// Seeder writes demo data through the service layer so every invariant holds
type Seeder struct {
	documents      services.DocumentService
	folders        services.FolderService
	experiences    services.ExperienceService
	profiles       services.ProfileService
	experienceRepo repositories.ExperienceRepository // auto experiences bypass the manual-only service
	logger         *slog.Logger
}

// Result summarizes what Seed created
type Result struct {
	FolderID      string
	DocumentID    string
	ExperienceIDs []string
}

// NewSeeder creates a new seeder
func NewSeeder(
	documents services.DocumentService,
	folders services.FolderService,
	experiences services.ExperienceService,
	profiles services.ProfileService,
	experienceRepo repositories.ExperienceRepository,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		documents:      documents,
		folders:        folders,
		experiences:    experiences,
		profiles:       profiles,
		experienceRepo: experienceRepo,
		logger:         logger,
	}
}

// prepContent fills the PREP preset's blocks in order
var prepContent = []string{
	"大学時代に最も力を入れたのは、テニスサークルの新入生定着率の改善です。",
	"入部後三か月で半数が辞めてしまう状況に、代表として強い危機感を持っていました。",
	"新入生一人ひとりに先輩を付けるペア制度を提案し、練習後の振り返り会も始めました。",
	"その結果、定着率は五割から八割に向上し、周囲を巻き込む力を身につけました。",
}

// Seed creates the demo data for identity
func (s *Seeder) Seed(ctx context.Context, identity models.Identity) (*Result, error) {
	university, major := "東京大学", "経済学部"
	if _, err := s.profiles.UpdateProfile(ctx, identity, &services.UpdateProfileRequest{
		University: services.OptionalField{Present: true, Value: &university},
		Major:      services.OptionalField{Present: true, Value: &major},
	}); err != nil {
		return nil, fmt.Errorf("seed profile: %w", err)
	}

	folder, err := s.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID: identity.UserID,
		Name:   "就活",
	})
	if err != nil {
		return nil, fmt.Errorf("seed folder: %w", err)
	}

	docType := models.DocumentTypeEntrySheet
	presetID := blocks.DefaultPresetID
	doc, err := s.documents.CreateDocument(ctx, &services.CreateDocumentRequest{
		UserID:          identity.UserID,
		Title:           "ガクチカ（サークル活動）",
		TargetCharCount: 400,
		WritingMode:     models.WritingModeFormal,
		DocumentType:    &docType,
		FolderID:        &folder.ID,
		TemplateID:      &presetID,
	})
	if err != nil {
		return nil, fmt.Errorf("seed document: %w", err)
	}

	inputs := make([]services.BlockInput, len(doc.Blocks))
	for i, b := range doc.Blocks {
		order := b.Order
		inputs[i] = services.BlockInput{ID: b.ID, Type: b.Type, Label: b.Label, Order: &order}
		if i < len(prepContent) {
			inputs[i].Content = prepContent[i]
		}
	}
	if _, err := s.documents.UpdateDocument(ctx, identity.UserID, doc.ID, &services.UpdateDocumentRequest{Blocks: inputs}); err != nil {
		return nil, fmt.Errorf("seed document blocks: %w", err)
	}

	result := &Result{FolderID: folder.ID, DocumentID: doc.ID}

	category := "サークル"
	manual, err := s.experiences.CreateExperience(ctx, &services.CreateExperienceRequest{
		UserID:   identity.UserID,
		Title:    "テニスサークルの運営",
		Content:  "代表として三十名のサークルを運営。新入生の定着率を五割から八割に改善した。",
		Category: &category,
	})
	if err != nil {
		return nil, fmt.Errorf("seed manual experience: %w", err)
	}
	result.ExperienceIDs = append(result.ExperienceIDs, manual.ID)

	now := time.Now()
	seminar := "ゼミ"
	auto := &models.Experience{
		ID:         uuid.NewString(),
		UserID:     identity.UserID,
		Title:      "ゼミでの共同研究",
		Content:    "地域商店街の来客数データを分析し、販促施策を三つ提案した。",
		Category:   &seminar,
		Source:     models.ExperienceSourceAuto,
		DocumentID: &doc.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.experienceRepo.Create(ctx, auto); err != nil {
		return nil, fmt.Errorf("seed auto experience: %w", err)
	}
	result.ExperienceIDs = append(result.ExperienceIDs, auto.ID)

	s.logger.Info("demo data seeded",
		"user_id", identity.UserID,
		"document_id", doc.ID,
		"folder_id", folder.ID,
		"experiences", len(result.ExperienceIDs),
	)

	return result, nil
}
