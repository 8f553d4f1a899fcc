// Package report renders the FAQ bundle for files and terminals.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/logging"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Formats lists the accepted format names.
var Formats = []string{FormatJSON, FormatYAML, FormatText}

// Generator renders FAQ bundles in several formats.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logging.OrDefault(logger)}
}

// Generate renders faq in the named format (json, yaml or text).
func (g *Generator) Generate(faq analytics.FAQ, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return g.generateJSON(faq)
	case FormatYAML:
		return g.generateYAML(faq)
	case FormatText:
		return g.generateText(faq), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Write renders faq to w.
func (g *Generator) Write(w io.Writer, faq analytics.FAQ, format string) error {
	out, err := g.Generate(faq, format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (g *Generator) generateJSON(faq analytics.FAQ) ([]byte, error) {
	out, err := json.MarshalIndent(faq, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

// generateYAML goes through JSON so the YAML keys match the JSON bundle.
func (g *Generator) generateYAML(faq analytics.FAQ) ([]byte, error) {
	data, err := json.Marshal(faq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) generateText(faq analytics.FAQ) []byte {
	meta := faq.FinancialAnalysis.Metadata
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Financial analysis of %d transactions\n", meta.TotalTransactionsAnalyzed)
	if !meta.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "Generated: %s\n", meta.GeneratedAt.Format(dateutils.DateLayoutFull))
	}
	if meta.SourceFile != "" {
		fmt.Fprintf(&buf, "Source: %s\n", meta.SourceFile)
	}
	for _, qa := range faq.FinancialAnalysis.QuestionsAndAnswers {
		fmt.Fprintf(&buf, "\nQ: %s\nA: %s\n", qa.Question, qa.Answer)
	}
	return buf.Bytes()
}
