package domain

// Language is a detected or declared document language.
type Language string

const (
	LanguageSpanish   Language = "es"
	LanguageEnglish   Language = "en"
	LanguageBilingual Language = "bilingual"
	LanguagePending   Language = "pending"
)

// DialectCentralAmerican tags blocks carrying Central American Spanish
// markers (voseo forms and regional vocabulary).
const DialectCentralAmerican = "es-CA"

// BlockLanguage is the detector's verdict for a single text block.
type BlockLanguage struct {
	BlockID    string   `json:"block_id"`
	Language   Language `json:"language"`
	Confidence float64  `json:"confidence"`
	Dialect    string   `json:"dialect,omitempty"`
}

// DocumentLanguage is the document-level rollup of per-block verdicts.
type DocumentLanguage struct {
	Primary    Language `json:"primary"`
	Confidence float64  `json:"confidence"`
	// Share of blocks that voted for each language, 0..1.
	SpanishRatio float64 `json:"spanish_ratio"`
	EnglishRatio float64 `json:"english_ratio"`
}
