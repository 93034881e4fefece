package analyzer

import "time"

// Config tunes the heuristics used by the edge-discovery passes. Zero
// values are replaced by DefaultConfig's values where that makes sense
// for a caller that only wants to override one or two knobs.
type Config struct {
	// JaccardThreshold is the minimum keyword-overlap ratio for the
	// implicit-by-content pass to emit an edge. Default 0.25.
	JaccardThreshold float64

	// TemporalWindow is the clustering window for the temporal pass.
	// Tasks whose deadlines fall within this window of one another are
	// chained in deadline order. Default 1h.
	TemporalWindow time.Duration

	// PrecedenceVocabulary lists title keywords that mark a task as a
	// plausible predecessor in the implicit-by-content pass.
	PrecedenceVocabulary []string

	// StopWords are excluded from keyword tokenization.
	StopWords map[string]bool

	// MaxRemovalFraction is the fraction of remaining tasks whose
	// disconnection from their roots additionally marks a task critical,
	// independent of critical-path membership. Default 0.25.
	MaxRemovalFraction float64
}

var defaultPrecedenceVocabulary = []string{
	"setup", "initialize", "analyze", "design", "scaffold", "bootstrap", "plan",
}

var defaultStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"it": true, "this": true, "that": true, "be": true, "as": true, "at": true,
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		JaccardThreshold:     0.25,
		TemporalWindow:       time.Hour,
		PrecedenceVocabulary: defaultPrecedenceVocabulary,
		StopWords:            defaultStopWords,
		MaxRemovalFraction:   0.25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.JaccardThreshold == 0 {
		c.JaccardThreshold = d.JaccardThreshold
	}
	if c.TemporalWindow == 0 {
		c.TemporalWindow = d.TemporalWindow
	}
	if len(c.PrecedenceVocabulary) == 0 {
		c.PrecedenceVocabulary = d.PrecedenceVocabulary
	}
	if len(c.StopWords) == 0 {
		c.StopWords = d.StopWords
	}
	if c.MaxRemovalFraction == 0 {
		c.MaxRemovalFraction = d.MaxRemovalFraction
	}
	return c
}
