package models

// SuggestedExperience points at a stored experience the model found relevant.
type SuggestedExperience struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Relevance string `json:"relevance"`
}

// RecommendedBlock is a suggested block in the recommended structure.
type RecommendedBlock struct {
	Type string `json:"type"`
	Hint string `json:"hint"`
}

// BlockHint is advice for the block at Order.
type BlockHint struct {
	Order int    `json:"order"`
	Hint  string `json:"hint"`
}

// HintsData is the typed hints payload. It is never persisted.
type HintsData struct {
	Theme                string                `json:"theme"`
	Overview             string                `json:"overview"`
	SuggestedExperiences []SuggestedExperience `json:"suggestedExperiences"`
	RecommendedStructure []RecommendedBlock    `json:"recommendedStructure"`
	StructureHint        string                `json:"structureHint"`
	BlockHints           []BlockHint           `json:"blockHints"`
	NoExperiences        bool                  `json:"noExperiences"`
}

// Composition is a generated draft after length post-processing.
type Composition struct {
	ComposedText string      `json:"composedText"`
	CharCount    int         `json:"charCount"`
	Mode         WritingMode `json:"mode"`
}
