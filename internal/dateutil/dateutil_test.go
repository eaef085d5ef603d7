package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestParseFormat - Token conversion
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		// Date tokens
		{name: "year", format: "YYYY", want: "2006"},
		{name: "short year", format: "YY", want: "06"},
		{name: "month name", format: "MMMM", want: "January"},
		{name: "short month name", format: "MMM", want: "Jan"},
		{name: "padded month", format: "MM", want: "01"},
		{name: "month", format: "M", want: "1"},
		{name: "padded day", format: "DD", want: "02"},
		{name: "day", format: "D", want: "2"},

		// Time tokens
		{name: "hour", format: "HH", want: "15"},
		{name: "minute", format: "mm", want: "04"},
		{name: "second", format: "ss", want: "05"},

		// Combined
		{name: "file stamp", format: "YYYYMMDD_HHmmss", want: "20060102_150405"},
		{name: "iso like", format: "YYYY-MM-DD HH:mm", want: "2006-01-02 15:04"},
		{name: "escaped literal", format: "[render]-YYYY", want: "render-2006"},
		{name: "escaped token letters", format: "[MM]MM", want: "MM01"},
		{name: "literal characters", format: "x.y", want: "x.y"},

		// Errors
		{name: "empty", format: "", wantErr: true},
		{name: "unclosed bracket", format: "[YYYY", wantErr: true},
		{name: "too long", format: strings.Repeat("Y", MaxFormatLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidFormat", tt.format, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormat - Presets and rendering
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC)
	tests := []struct {
		format string
		want   string
	}{
		{"compact", "20240307_090502"},
		{"COMPACT", "20240307_090502"},
		{"iso", "2024-03-07_09-05-02"},
		{"date", "2024-03-07"},
		{"D MMM YYYY", "7 Mar 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			got, err := Format(tt.format, ts)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileStamp - File name safety
// ---------------------------------------------------------------------------

func TestFileStamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)

	got, err := FileStamp("", ts)
	if err != nil || got != "20241231_235958" {
		t.Errorf("FileStamp(\"\") = %q, %v", got, err)
	}

	for _, bad := range []string{"YYYY/MM", `DD\MM`, "[a/b]"} {
		if _, err := FileStamp(bad, ts); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("FileStamp(%q) error = %v, want ErrInvalidFormat", bad, err)
		}
	}
}
