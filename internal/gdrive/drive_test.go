package gdrive

import (
	"errors"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestWrapDriveErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing file", &googleapi.Error{Code: 404}, ErrNotFound},
		{"no access", &googleapi.Error{Code: 403}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapDriveErr("get", tt.err); !errors.Is(got, tt.want) {
				t.Errorf("wrapDriveErr() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		orig := &googleapi.Error{Code: 500}
		got := wrapDriveErr("get", orig)
		if errors.Is(got, ErrNotFound) {
			t.Error("500 should not map to ErrNotFound")
		}
		var apiErr *googleapi.Error
		if !errors.As(got, &apiErr) {
			t.Error("original error should be wrapped")
		}
	})
}

func TestValidatePDF(t *testing.T) {
	t.Run("rejects non-pdf bytes", func(t *testing.T) {
		if err := validatePDF([]byte("<html>not a pdf</html>")); err == nil {
			t.Error("expected error for non-PDF content")
		}
	})
}
