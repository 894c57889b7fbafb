package service

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	goaway "github.com/TwiN/go-away"
	"go.uber.org/zap"
)

// ProfanityDetector is the optional screening capability.
type ProfanityDetector interface {
	IsProfane(s string) bool
}

// ScreeningConfig selects whether and how community text is screened.
type ScreeningConfig struct {
	Enabled  bool
	Wordlist string
}

// ScreeningService checks community text against an optional detector.
// Without a detector every text passes.
type ScreeningService struct {
	detector ProfanityDetector
}

// NewScreeningService acquires the detector at startup. Failure to load a
// custom word list disables screening instead of failing startup.
func NewScreeningService(cfg ScreeningConfig, logger *zap.Logger) *ScreeningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("profanity screening disabled")
		return &ScreeningService{}
	}
	if cfg.Wordlist == "" {
		return &ScreeningService{detector: goaway.NewProfanityDetector()}
	}
	words, err := loadWordlist(cfg.Wordlist)
	if err != nil || len(words) == 0 {
		logger.Warn("profanity word list unavailable, screening skipped", zap.String("path", cfg.Wordlist), zap.Error(err))
		return &ScreeningService{}
	}
	detector := goaway.NewProfanityDetector().WithCustomDictionary(words, goaway.DefaultFalsePositives, goaway.DefaultFalseNegatives)
	return &ScreeningService{detector: detector}
}

// NewScreeningServiceWith wraps an existing detector.
func NewScreeningServiceWith(detector ProfanityDetector) *ScreeningService {
	return &ScreeningService{detector: detector}
}

// Active reports whether a detector is loaded.
func (s *ScreeningService) Active() bool {
	return s != nil && s.detector != nil
}

// Profane reports whether any of texts trips the detector.
func (s *ScreeningService) Profane(texts ...string) bool {
	if !s.Active() {
		return false
	}
	for _, t := range texts {
		if s.detector.IsProfane(t) {
			return true
		}
	}
	return false
}

func loadWordlist(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}
