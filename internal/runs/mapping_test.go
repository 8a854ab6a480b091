package runs

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// rowScanner plays back a Run in ledger column order.
type rowScanner struct {
	run Run
}

func (r rowScanner) Scan(dest ...any) error {
	if len(dest) != 12 {
		return errors.New("unexpected destination count")
	}

	*(dest[0].(*uuid.UUID)) = r.run.ID
	*(dest[1].(*string)) = r.run.Filename
	*(dest[2].(*string)) = r.run.Status
	*(dest[3].(**string)) = r.run.ProviderName
	*(dest[4].(**string)) = r.run.ModelName
	*(dest[5].(*int)) = r.run.Attempts
	*(dest[6].(*int64)) = r.run.DurationMS
	*(dest[7].(**string)) = r.run.Error
	*(dest[8].(**string)) = r.run.TextKey
	*(dest[9].(**string)) = r.run.JSONKey
	*(dest[10].(*time.Time)) = r.run.StartedAt
	*(dest[11].(*time.Time)) = r.run.CompletedAt
	return nil
}

type failScanner struct {
	err error
}

func (f failScanner) Scan(...any) error { return f.err }

func strPtr(s string) *string { return &s }

func completedRow() Run {
	started := time.Date(2026, 8, 24, 15, 4, 5, 0, time.UTC)
	return Run{
		ID:           uuid.New(),
		Filename:     "credit_report.pdf",
		Status:       StatusCompleted,
		ProviderName: strPtr("gateway"),
		ModelName:    strPtr("gpt-4o"),
		Attempts:     2,
		DurationMS:   4250,
		TextKey:      strPtr("runs/abc/credit_assessment.txt"),
		JSONKey:      strPtr("runs/abc/credit_assessment.json"),
		StartedAt:    started,
		CompletedAt:  started.Add(4250 * time.Millisecond),
	}
}

func TestScanRunCompleted(t *testing.T) {
	want := completedRow()

	got, err := scanRun(rowScanner{run: want})
	if err != nil {
		t.Fatalf("scanRun error: %v", err)
	}

	if got.ID != want.ID {
		t.Errorf("ID = %v, want %v", got.ID, want.ID)
	}
	if got.Filename != want.Filename || got.Status != want.Status {
		t.Errorf("row = %s/%s, want %s/%s", got.Filename, got.Status, want.Filename, want.Status)
	}
	if got.ProviderName == nil || *got.ProviderName != "gateway" {
		t.Errorf("ProviderName = %v, want gateway", got.ProviderName)
	}
	if got.Attempts != 2 || got.DurationMS != 4250 {
		t.Errorf("metrics = (%d, %d), want (2, 4250)", got.Attempts, got.DurationMS)
	}
	if got.Error != nil {
		t.Errorf("Error = %v, want nil for a completed run", got.Error)
	}
	if !got.CompletedAt.Equal(want.CompletedAt) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, want.CompletedAt)
	}
}

func TestScanRunFailedNullColumns(t *testing.T) {
	started := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	want := Run{
		ID:          uuid.New(),
		Filename:    "corrupt.pdf",
		Status:      StatusFailed,
		Error:       strPtr("extract corrupt.pdf: document read failed"),
		DurationMS:  12,
		StartedAt:   started,
		CompletedAt: started.Add(12 * time.Millisecond),
	}

	got, err := scanRun(rowScanner{run: want})
	if err != nil {
		t.Fatalf("scanRun error: %v", err)
	}

	if got.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", got.Status, StatusFailed)
	}
	if got.ProviderName != nil || got.ModelName != nil {
		t.Error("provider columns should stay nil when the run never reached a provider")
	}
	if got.TextKey != nil || got.JSONKey != nil {
		t.Error("artifact keys should stay nil for a failed run")
	}
	if got.Error == nil || !strings.Contains(*got.Error, "document read failed") {
		t.Errorf("Error = %v, want the recorded failure", got.Error)
	}
}

func TestScanRunPropagatesError(t *testing.T) {
	scanErr := errors.New("column type mismatch")

	if _, err := scanRun(failScanner{err: scanErr}); !errors.Is(err, scanErr) {
		t.Errorf("scanRun error = %v, want %v", err, scanErr)
	}
}

func TestRender(t *testing.T) {
	run := completedRow()

	data, err := Render(&run)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		`"id": "` + run.ID.String() + `"`,
		`"filename": "credit_report.pdf"`,
		`"status": "completed"`,
		`"provider_name": "gateway"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Render output missing %s:\n%s", want, text)
		}
	}
}
