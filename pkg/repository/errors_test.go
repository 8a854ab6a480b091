package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/veldt-labs/arbiter/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	passthrough := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find run: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
		{"unrelated error", passthrough, passthrough},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := repository.MapError(tc.err, errNotFound, errDuplicate)

			switch {
			case tc.want != nil:
				if !errors.Is(got, tc.want) {
					t.Errorf("MapError() = %v, want %v", got, tc.want)
				}
			case tc.err == nil:
				if got != nil {
					t.Errorf("MapError(nil) = %v, want nil", got)
				}
			default:
				if got != tc.err {
					t.Errorf("MapError() = %v, want original error passed through", got)
				}
			}
		})
	}
}
