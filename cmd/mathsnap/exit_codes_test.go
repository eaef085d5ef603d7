package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mathsnap "github.com/alnah/go-mathsnap"
	"github.com/alnah/go-mathsnap/internal/config"
	"github.com/alnah/go-mathsnap/internal/ocr"
	"github.com/alnah/go-mathsnap/internal/yamlutil"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error classification
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", fmt.Errorf("%w: bad flag", ErrUsage), ExitUsage},
		{"config not found", fmt.Errorf("%w: x.yaml", config.ErrConfigNotFound), ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"bad duration", yamlutil.ErrInvalidDur, ExitUsage},
		{"missing api key wins over ocr", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, ocr.ErrMissingAPIKey), ExitUsage},
		{"tesseract not compiled", ocr.ErrTesseractUnavailable, ExitUsage},
		{"missing collaborator", mathsnap.ErrMissingCollaborator, ExitUsage},
		{"render", &mathsnap.RenderError{Diagnostic: "! x"}, ExitRender},
		{"ocr", fmt.Errorf("%w: %w", mathsnap.ErrOCRFailed, mathsnap.ErrNoText), ExitOCR},
		{"capture", fmt.Errorf("%w: exit 1", mathsnap.ErrCaptureFailed), ExitCapture},
		{"not exist", fmt.Errorf("open: %w", os.ErrNotExist), ExitCapture},
		{"permission", os.ErrPermission, ExitCapture},
		{"other", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForResult(t *testing.T) {
	t.Parallel()

	sinkErr := &mathsnap.SinkError{Sink: mathsnap.SinkClipboard, Err: errors.New("no xclip")}

	tests := []struct {
		name string
		res  *mathsnap.Result
		want int
	}{
		{"done", &mathsnap.Result{State: mathsnap.StateDone}, ExitSuccess},
		{"sink errors ignored", &mathsnap.Result{State: mathsnap.StateDone, SinkErrs: []error{sinkErr}}, ExitSuccess},
		{"render failed", &mathsnap.Result{State: mathsnap.StateDone, RenderErr: &mathsnap.RenderError{}}, ExitRender},
		{"ocr failed", &mathsnap.Result{State: mathsnap.StateOCRFailed, Err: fmt.Errorf("%w: x", mathsnap.ErrOCRFailed)}, ExitOCR},
		{"capture failed", &mathsnap.Result{State: mathsnap.StateCaptureFailed, Err: fmt.Errorf("%w: x", mathsnap.ErrCaptureFailed)}, ExitCapture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeForResult(tt.res); got != tt.want {
				t.Errorf("exitCodeForResult() = %d, want %d", got, tt.want)
			}
		})
	}
}
