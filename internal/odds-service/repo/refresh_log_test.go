package repo

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorText(t *testing.T) {
	long := errors.New(strings.Repeat("x", errorLimit+50))

	tests := []struct {
		name    string
		err     error
		wantLen int
	}{
		{"nil", nil, 0},
		{"short", errors.New("timeout"), len("timeout")},
		{"truncated", long, errorLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorText(tt.err); len(got) != tt.wantLen {
				t.Errorf("len(errorText()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestNullHelpers(t *testing.T) {
	if v := nullInt(0); v.Valid {
		t.Error("nullInt(0).Valid = true, want false")
	}
	if v := nullInt(503); !v.Valid || v.Int64 != 503 {
		t.Errorf("nullInt(503) = %+v", v)
	}
	if v := nullString(""); v.Valid {
		t.Error(`nullString("").Valid = true, want false`)
	}
	if v := nullString("boom"); !v.Valid || v.String != "boom" {
		t.Errorf(`nullString("boom") = %+v`, v)
	}
}
