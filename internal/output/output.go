// Package output renders completed assessments into text and JSON artifacts
// and mirrors them to blob storage when configured.
package output

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veldt-labs/arbiter/internal/workflow"
	"github.com/veldt-labs/arbiter/pkg/storage"
	"github.com/veldt-labs/arbiter/pkg/xjson"
)

const (
	timestampLayout = "20060102150405"
	formatVersion   = "1.0"
)

var contentTypes = map[string]string{
	FormatText: "text/plain",
	FormatJSON: "application/json",
}

// Artifact describes one written output file.
type Artifact struct {
	Format   string
	Filename string
	Path     string
	// StorageKey is set when the artifact was mirrored to blob storage.
	StorageKey string
}

// System defines the public contract for writing assessment artifacts.
type System interface {
	// Write renders one artifact per configured format for a completed
	// assessment and returns them in format order.
	Write(ctx context.Context, a *workflow.Assessment) ([]Artifact, error)
}

type system struct {
	cfg     *Config
	version string
	store   storage.System
	logger  *slog.Logger
}

// NewSystem creates the artifact output system. A nil store disables blob
// storage mirroring.
func NewSystem(cfg *Config, version string, store storage.System, logger *slog.Logger) System {
	return &system{
		cfg:     cfg,
		version: version,
		store:   store,
		logger:  logger.With("system", "output"),
	}
}

func (s *system) Write(ctx context.Context, a *workflow.Assessment) ([]Artifact, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	stem := fmt.Sprintf("credit_assessment_%s_%s",
		sanitize(strings.TrimSuffix(a.Document.Filename, filepath.Ext(a.Document.Filename))),
		a.CompletedAt.Format(timestampLayout),
	)

	artifacts := make([]Artifact, 0, len(s.cfg.Formats))
	for _, format := range s.cfg.Formats {
		var (
			filename string
			data     []byte
			err      error
		)

		switch format {
		case FormatText:
			filename = stem + ".txt"
			data = []byte(s.renderTextArtifact(a))
		case FormatJSON:
			filename = stem + ".json"
			data, err = s.renderJSONArtifact(a)
			if err != nil {
				return nil, fmt.Errorf("render json artifact: %w", err)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}

		path := filepath.Join(s.cfg.Dir, filename)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s artifact: %w", format, err)
		}

		artifact := Artifact{Format: format, Filename: filename, Path: path}

		if s.store != nil {
			key := fmt.Sprintf("runs/%s/%s", a.RunID, filename)
			if err := s.store.Upload(ctx, key, bytes.NewReader(data), contentTypes[format]); err != nil {
				return nil, fmt.Errorf("mirror %s artifact: %w", format, err)
			}
			artifact.StorageKey = key
		}

		s.logger.Info("artifact written",
			"format", format,
			"path", path,
			"bytes", len(data),
			"mirrored", artifact.StorageKey != "",
		)
		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

type runMetadata struct {
	RunID         string              `json:"run_id"`
	Document      string              `json:"document"`
	Pages         int                 `json:"pages"`
	RiskStage     workflow.Invocation `json:"risk_invocation"`
	DecisionStage workflow.Invocation `json:"decision_invocation"`
	StartedAt     time.Time           `json:"started_at"`
	CompletedAt   time.Time           `json:"completed_at"`
	Version       string              `json:"version"`
	FormatVersion string              `json:"format_version"`
}

type jsonArtifact struct {
	RiskAnalysis workflow.RiskAnalysis `json:"risk_analysis"`
	LoanDecision workflow.LoanDecision `json:"loan_decision"`
	Metadata     *runMetadata          `json:"metadata,omitempty"`
}

func (s *system) metadata(a *workflow.Assessment) *runMetadata {
	return &runMetadata{
		RunID:         a.RunID.String(),
		Document:      a.Document.Filename,
		Pages:         a.Document.PageCount,
		RiskStage:     a.RiskInvocation,
		DecisionStage: a.DecisionInvocation,
		StartedAt:     a.StartedAt,
		CompletedAt:   a.CompletedAt,
		Version:       s.version,
		FormatVersion: formatVersion,
	}
}

func (s *system) renderTextArtifact(a *workflow.Assessment) string {
	text := renderText(a)
	if !s.cfg.IncludeMetadata {
		return text
	}

	meta := s.metadata(a)
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString(sectionSeparator)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Run: %s\n", meta.RunID)
	fmt.Fprintf(&sb, "Document: %s (%d pages)\n", meta.Document, meta.Pages)
	fmt.Fprintf(&sb, "Risk analysis: %s/%s, %d attempt(s), %dms\n",
		meta.RiskStage.Provider, meta.RiskStage.Model, meta.RiskStage.Attempts, meta.RiskStage.ElapsedMS)
	fmt.Fprintf(&sb, "Loan decision: %s/%s, %d attempt(s), %dms\n",
		meta.DecisionStage.Provider, meta.DecisionStage.Model, meta.DecisionStage.Attempts, meta.DecisionStage.ElapsedMS)
	fmt.Fprintf(&sb, "Completed: %s\n", meta.CompletedAt.Format(time.RFC3339))
	return sb.String()
}

func (s *system) renderJSONArtifact(a *workflow.Assessment) ([]byte, error) {
	artifact := jsonArtifact{
		RiskAnalysis: a.Risk,
		LoanDecision: a.Decision,
	}
	if s.cfg.IncludeMetadata {
		artifact.Metadata = s.metadata(a)
	}
	return xjson.MarshalIndent(artifact, "", "  ")
}

// sanitize reduces a document base name to a filesystem and storage safe
// token.
func sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "document"
	}
	return sb.String()
}
