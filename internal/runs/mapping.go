package runs

import (
	"github.com/veldt-labs/arbiter/pkg/repository"
)

func scanRun(s repository.Scanner) (Run, error) {
	var r Run

	err := s.Scan(
		&r.ID,
		&r.Filename,
		&r.Status,
		&r.ProviderName,
		&r.ModelName,
		&r.Attempts,
		&r.DurationMS,
		&r.Error,
		&r.TextKey,
		&r.JSONKey,
		&r.StartedAt,
		&r.CompletedAt,
	)

	if err != nil {
		return r, err
	}

	return r, nil
}
