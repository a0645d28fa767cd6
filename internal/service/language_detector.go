package service

import (
	"strings"

	"edu-document-pipeline/internal/domain"
)

// DetectorPolicy holds the lexical indicators used for bilingual language
// scoring. Word lists are compared against lowercased tokens longer than two
// characters; dialect markers are substring matches against the whole text.
type DetectorPolicy struct {
	SpanishWords   []string
	EnglishWords   []string
	DialectMarkers []string
	AccentedRunes  string

	// Blocks with fewer qualifying tokens than this fall back to a neutral
	// low-confidence verdict instead of attempting detection.
	MinTokens int
	// Document rollup: above this ratio of agreeing blocks the document gets
	// a single primary language, otherwise it is marked bilingual.
	AgreementRatio float64
	MaxConfidence  float64
}

// DefaultDetectorPolicy returns the production word lists: Spanish as the
// target language, English as the second language, with Central American
// Spanish dialect markers.
func DefaultDetectorPolicy() DetectorPolicy {
	return DetectorPolicy{
		SpanishWords: []string{
			"que", "los", "las", "del", "por", "para", "con", "como", "una",
			"esta", "este", "pero", "más", "sus", "entre", "cuando", "muy",
			"sin", "sobre", "también", "hasta", "hay", "donde", "desde",
			"todo", "todos", "durante", "ellos", "esto", "antes", "otro",
			"otra", "mucho", "ella", "estar", "tiene", "tienen", "hacer",
			"puede", "cada", "ser", "son", "fue", "año", "años", "día",
			"escribe", "lee", "responde", "siguiente", "ejercicio", "página",
		},
		EnglishWords: []string{
			"the", "and", "for", "are", "with", "this", "that", "from",
			"they", "have", "has", "was", "were", "will", "what", "when",
			"where", "which", "their", "about", "would", "there", "been",
			"each", "other", "these", "some", "then", "than", "write",
			"read", "answer", "following", "exercise", "page", "student",
			"word", "sentence", "question", "complete",
		},
		DialectMarkers: []string{
			"vos ", "tenés", "querés", "podés", "sabés", "hacés", "sos ",
			"andá", "mirá", "fijate", "cipote", "chamba", "pisto",
			"pulpería", "catracho",
		},
		AccentedRunes:  "áéíóúüñ¿¡",
		MinTokens:      3,
		AgreementRatio: 0.8,
		MaxConfidence:  0.99,
	}
}

// LanguageDetector scores text blocks for Spanish vs. English content and
// rolls the verdicts up to a document-level primary language.
type LanguageDetector struct {
	policy DetectorPolicy
	logger domain.Logger

	spanishSet map[string]struct{}
	englishSet map[string]struct{}
}

// NewLanguageDetector creates a detector with the given policy.
func NewLanguageDetector(policy DetectorPolicy, logger domain.Logger) *LanguageDetector {
	d := &LanguageDetector{
		policy:     policy,
		logger:     logger,
		spanishSet: make(map[string]struct{}, len(policy.SpanishWords)),
		englishSet: make(map[string]struct{}, len(policy.EnglishWords)),
	}
	for _, w := range policy.SpanishWords {
		d.spanishSet[w] = struct{}{}
	}
	for _, w := range policy.EnglishWords {
		d.englishSet[w] = struct{}{}
	}
	return d
}

// DetectBlock computes the language verdict for a single block. Detection is
// case-insensitive: the text is lowercased before any scoring.
func (d *LanguageDetector) DetectBlock(block *domain.TextBlock) domain.BlockLanguage {
	text := strings.ToLower(block.Content)
	tokens := qualifyingTokens(text)

	// Short fragments are unreliable; do not attempt detection.
	if len(tokens) < d.policy.MinTokens {
		return domain.BlockLanguage{
			BlockID:    block.ID,
			Language:   domain.LanguageEnglish,
			Confidence: 0.5,
		}
	}

	spanishMatches := 0
	englishMatches := 0
	for _, tok := range tokens {
		if _, ok := d.spanishSet[tok]; ok {
			spanishMatches++
		}
		if _, ok := d.englishSet[tok]; ok {
			englishMatches++
		}
	}

	dialectMatches := 0
	for _, marker := range d.policy.DialectMarkers {
		if strings.Contains(text, marker) {
			dialectMatches++
		}
	}

	spanishScore := float64(spanishMatches)/float64(len(tokens)) +
		2*d.accentRatio(text) +
		0.5*float64(dialectMatches)
	englishScore := float64(englishMatches) / float64(len(tokens))

	verdict := domain.BlockLanguage{BlockID: block.ID}
	total := spanishScore + englishScore

	switch {
	case spanishScore > englishScore:
		verdict.Language = domain.LanguageSpanish
		verdict.Confidence = spanishScore / total
		if dialectMatches > 0 {
			verdict.Dialect = domain.DialectCentralAmerican
		}
	case englishScore > spanishScore:
		verdict.Language = domain.LanguageEnglish
		verdict.Confidence = englishScore / total
	default:
		// Tied scores, including no signal at all.
		verdict.Language = domain.LanguageEnglish
		verdict.Confidence = 0.5
	}

	if verdict.Confidence > d.policy.MaxConfidence {
		verdict.Confidence = d.policy.MaxConfidence
	}
	return verdict
}

// DetectAll scores every block and computes the document rollup.
func (d *LanguageDetector) DetectAll(blocks []*domain.TextBlock) ([]domain.BlockLanguage, domain.DocumentLanguage) {
	verdicts := make([]domain.BlockLanguage, 0, len(blocks))
	spanish := 0
	english := 0

	for _, block := range blocks {
		v := d.DetectBlock(block)
		verdicts = append(verdicts, v)
		switch v.Language {
		case domain.LanguageSpanish:
			spanish++
		case domain.LanguageEnglish:
			english++
		}
	}

	rollup := domain.DocumentLanguage{Primary: domain.LanguagePending}
	if len(verdicts) == 0 {
		return verdicts, rollup
	}

	rollup.SpanishRatio = float64(spanish) / float64(len(verdicts))
	rollup.EnglishRatio = float64(english) / float64(len(verdicts))

	switch {
	case rollup.SpanishRatio > d.policy.AgreementRatio:
		rollup.Primary = domain.LanguageSpanish
		rollup.Confidence = rollup.SpanishRatio
	case rollup.EnglishRatio > d.policy.AgreementRatio:
		rollup.Primary = domain.LanguageEnglish
		rollup.Confidence = rollup.EnglishRatio
	default:
		rollup.Primary = domain.LanguageBilingual
		rollup.Confidence = rollup.SpanishRatio
		if rollup.EnglishRatio > rollup.Confidence {
			rollup.Confidence = rollup.EnglishRatio
		}
	}
	return verdicts, rollup
}

// accentRatio returns the share of Spanish-specific accented characters in
// the text.
func (d *LanguageDetector) accentRatio(text string) float64 {
	total := 0
	accented := 0
	for _, r := range text {
		total++
		if strings.ContainsRune(d.policy.AccentedRunes, r) {
			accented++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(accented) / float64(total)
}

// qualifyingTokens splits on whitespace and keeps tokens longer than two
// characters, with surrounding punctuation trimmed.
func qualifyingTokens(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?¿¡\"'()[]")
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
