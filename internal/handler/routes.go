package handler

import "net/http"

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	AI          *AIHandler
	Documents   *DocumentHandler
	Folders     *FolderHandler
	Templates   *TemplateHandler
	Experiences *ExperienceHandler
	Profile     *ProfileHandler
}

// RegisterRoutes registers all API routes on mux using Go 1.22 method patterns
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /health", HealthCheck)

	// AI
	mux.HandleFunc("POST /api/ai/compose", h.AI.Compose)
	mux.HandleFunc("POST /api/ai/hints", h.AI.Hints)
	mux.HandleFunc("GET /api/ai/models", h.AI.ListModels)

	// Documents
	mux.HandleFunc("GET /api/documents", h.Documents.ListDocuments)
	mux.HandleFunc("POST /api/documents", h.Documents.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", h.Documents.GetDocument)
	mux.HandleFunc("PUT /api/documents/{id}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.Documents.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/blocks", h.Documents.AddBlock)
	mux.HandleFunc("POST /api/documents/{id}/blocks/reorder", h.Documents.ReorderBlocks)
	mux.HandleFunc("DELETE /api/documents/{id}/blocks/{blockId}", h.Documents.RemoveBlock)

	// Folders
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)

	// Templates
	mux.HandleFunc("GET /api/templates", h.Templates.ListTemplates)
	mux.HandleFunc("POST /api/templates", h.Templates.CreateTemplate)
	mux.HandleFunc("PUT /api/templates/{id}", h.Templates.UpdateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", h.Templates.DeleteTemplate)

	// Experiences
	mux.HandleFunc("GET /api/experiences", h.Experiences.ListExperiences)
	mux.HandleFunc("POST /api/experiences", h.Experiences.CreateExperience)
	mux.HandleFunc("GET /api/experiences/categories", h.Experiences.ListCategories)
	mux.HandleFunc("GET /api/experiences/{id}", h.Experiences.GetExperience)
	mux.HandleFunc("PUT /api/experiences/{id}", h.Experiences.UpdateExperience)
	mux.HandleFunc("DELETE /api/experiences/{id}", h.Experiences.DeleteExperience)

	// Profile
	mux.HandleFunc("GET /api/users/me/profile", h.Profile.GetProfile)
	mux.HandleFunc("PATCH /api/users/me/profile", h.Profile.UpdateProfile)
}
