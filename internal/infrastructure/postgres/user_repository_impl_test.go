package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

func TestTranslateUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "email constraint",
			in:   &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"},
			want: repository.ErrDuplicateEmail,
		},
		{
			name: "username constraint",
			in:   &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_key"},
			want: repository.ErrDuplicateUsername,
		},
		{
			name: "other constraint passes through",
			in:   &pgconn.PgError{Code: uniqueViolation, ConstraintName: "other_key"},
		},
		{
			name: "other pg error passes through",
			in:   &pgconn.PgError{Code: "23503"},
		},
		{
			name: "plain error passes through",
			in:   errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateUniqueViolation(tt.in)
			if tt.want != nil {
				if !errors.Is(got, tt.want) {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
				return
			}
			if !errors.Is(got, tt.in) {
				t.Fatalf("expected pass-through, got %v", got)
			}
		})
	}
}
