package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	internalconfig "github.com/foxseedlab/callinterview/internal/config"
	"gopkg.in/yaml.v3"
)

// questionFile accepts either a bare YAML list or a document with a
// "questions" key.
type questionFile struct {
	Questions []string `yaml:"questions"`
}

func LoadQuestions(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []string
	if err := yaml.Unmarshal(b, &list); err != nil {
		var doc questionFile
		if docErr := yaml.Unmarshal(b, &doc); docErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, docErr)
		}
		list = doc.Questions
	}

	out := make([]string, 0, len(list))
	for _, q := range list {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("question file contains no questions")
	}
	return out, nil
}

func loadQuestionsOrDefault(path string) []string {
	if strings.TrimSpace(path) == "" {
		return defaultQuestions()
	}
	qs, err := LoadQuestions(path)
	if err != nil {
		slog.Warn("failed to load interview questions; using defaults", "error", err, "path", path)
		return defaultQuestions()
	}
	slog.Info("interview questions loaded", "path", path, "count", len(qs))
	return qs
}

func defaultQuestions() []string {
	return append([]string(nil), internalconfig.DefaultQuestions...)
}
