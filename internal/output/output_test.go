package output_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veldt-labs/arbiter/internal/output"
	"github.com/veldt-labs/arbiter/pkg/lifecycle"
	"github.com/veldt-labs/arbiter/pkg/xjson"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryStore captures uploads for mirroring assertions.
type memoryStore struct {
	uploads map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		uploads: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *memoryStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memoryStore) Upload(_ context.Context, key string, reader io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.uploads[key] = buf.Bytes()
	m.types[key] = contentType
	return nil
}

func TestWriteBothFormats(t *testing.T) {
	dir := t.TempDir()
	cfg := &output.Config{
		Dir:     dir,
		Formats: []string{output.FormatText, output.FormatJSON},
	}

	s := output.NewSystem(cfg, "0.1.0", nil, discardLogger())

	artifacts, err := s.Write(context.Background(), testAssessment())
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(artifacts))
	}

	wantStem := "credit_assessment_credit_report_20260824150405"
	for i, format := range []string{output.FormatText, output.FormatJSON} {
		artifact := artifacts[i]
		if artifact.Format != format {
			t.Errorf("artifact %d format = %q, want %q", i, artifact.Format, format)
		}
		if !strings.HasPrefix(artifact.Filename, wantStem) {
			t.Errorf("filename = %q, want prefix %q", artifact.Filename, wantStem)
		}
		if artifact.StorageKey != "" {
			t.Errorf("StorageKey = %q, want empty without a store", artifact.StorageKey)
		}
		if _, err := os.Stat(artifact.Path); err != nil {
			t.Errorf("artifact %s not written: %v", artifact.Path, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, wantStem+".txt"))
	if err != nil {
		t.Fatalf("read text artifact: %v", err)
	}
	if !strings.Contains(string(data), "XXX-XX-6789") {
		t.Error("text artifact should mask the SSN")
	}
}

func TestWriteJSONWithMetadata(t *testing.T) {
	cfg := &output.Config{
		Dir:             t.TempDir(),
		Formats:         []string{output.FormatJSON},
		IncludeMetadata: true,
	}

	s := output.NewSystem(cfg, "0.1.0", nil, discardLogger())

	a := testAssessment()
	artifacts, err := s.Write(context.Background(), a)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}

	data, err := os.ReadFile(artifacts[0].Path)
	if err != nil {
		t.Fatalf("read json artifact: %v", err)
	}

	var parsed struct {
		RiskAnalysis struct {
			Conclusion string `json:"conclusion"`
		} `json:"risk_analysis"`
		LoanDecision struct {
			Decisions []any `json:"decisions"`
		} `json:"loan_decision"`
		Metadata *struct {
			RunID         string `json:"run_id"`
			Document      string `json:"document"`
			Version       string `json:"version"`
			FormatVersion string `json:"format_version"`
		} `json:"metadata"`
	}
	if err := xjson.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("parse json artifact: %v", err)
	}

	if parsed.RiskAnalysis.Conclusion != "Moderate risk applicant." {
		t.Errorf("conclusion = %q", parsed.RiskAnalysis.Conclusion)
	}
	if len(parsed.LoanDecision.Decisions) != 1 {
		t.Errorf("decisions = %d, want 1", len(parsed.LoanDecision.Decisions))
	}
	if parsed.Metadata == nil {
		t.Fatal("metadata should be embedded when include_metadata is set")
	}
	if parsed.Metadata.RunID != a.RunID.String() {
		t.Errorf("metadata run_id = %q, want %q", parsed.Metadata.RunID, a.RunID)
	}
	if parsed.Metadata.Document != "credit report.pdf" {
		t.Errorf("metadata document = %q", parsed.Metadata.Document)
	}
	if parsed.Metadata.Version != "0.1.0" || parsed.Metadata.FormatVersion != "1.0" {
		t.Errorf("metadata versions = (%q, %q)", parsed.Metadata.Version, parsed.Metadata.FormatVersion)
	}
}

func TestWriteOmitsMetadataByDefault(t *testing.T) {
	cfg := &output.Config{
		Dir:     t.TempDir(),
		Formats: []string{output.FormatJSON},
	}

	s := output.NewSystem(cfg, "0.1.0", nil, discardLogger())

	artifacts, err := s.Write(context.Background(), testAssessment())
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}

	data, err := os.ReadFile(artifacts[0].Path)
	if err != nil {
		t.Fatalf("read json artifact: %v", err)
	}
	if strings.Contains(string(data), `"metadata"`) {
		t.Error("metadata should be omitted when include_metadata is unset")
	}
}

func TestWriteMirrorsToStorage(t *testing.T) {
	store := newMemoryStore()
	cfg := &output.Config{
		Dir:     t.TempDir(),
		Formats: []string{output.FormatText, output.FormatJSON},
	}

	s := output.NewSystem(cfg, "0.1.0", store, discardLogger())

	a := testAssessment()
	artifacts, err := s.Write(context.Background(), a)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}

	for _, artifact := range artifacts {
		wantKey := "runs/" + a.RunID.String() + "/" + artifact.Filename
		if artifact.StorageKey != wantKey {
			t.Errorf("StorageKey = %q, want %q", artifact.StorageKey, wantKey)
		}

		uploaded, ok := store.uploads[wantKey]
		if !ok {
			t.Errorf("no upload recorded for %s", wantKey)
			continue
		}

		local, err := os.ReadFile(artifact.Path)
		if err != nil {
			t.Fatalf("read local artifact: %v", err)
		}
		if !bytes.Equal(uploaded, local) {
			t.Errorf("mirrored bytes differ from local artifact %s", artifact.Filename)
		}
	}

	if store.types["runs/"+a.RunID.String()+"/"+artifacts[0].Filename] != "text/plain" {
		t.Error("text artifact should upload as text/plain")
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	cfg := &output.Config{
		Dir:     t.TempDir(),
		Formats: []string{"xml"},
	}

	s := output.NewSystem(cfg, "0.1.0", nil, discardLogger())

	if _, err := s.Write(context.Background(), testAssessment()); !errors.Is(err, output.ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &output.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.Dir != "results" {
			t.Errorf("Dir = %q, want results", cfg.Dir)
		}
		if len(cfg.Formats) != 2 {
			t.Errorf("Formats = %v, want [text json]", cfg.Formats)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_OUTPUT_DIR", "elsewhere")
		t.Setenv("TEST_OUTPUT_FORMATS", "json")
		t.Setenv("TEST_OUTPUT_INCLUDE_METADATA", "true")

		cfg := &output.Config{}
		env := &output.Env{
			Dir:             "TEST_OUTPUT_DIR",
			Formats:         "TEST_OUTPUT_FORMATS",
			IncludeMetadata: "TEST_OUTPUT_INCLUDE_METADATA",
		}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.Dir != "elsewhere" {
			t.Errorf("Dir = %q, want elsewhere", cfg.Dir)
		}
		if len(cfg.Formats) != 1 || cfg.Formats[0] != output.FormatJSON {
			t.Errorf("Formats = %v, want [json]", cfg.Formats)
		}
		if !cfg.IncludeMetadata {
			t.Error("IncludeMetadata should be set from the environment")
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := &output.Config{Formats: []string{"yaml"}}
		if err := cfg.Finalize(nil); !errors.Is(err, output.ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})
}
