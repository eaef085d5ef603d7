package main

import (
	"errors"
	"io"
	"reflect"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestParseSnapFlags - Flag parsing and validation
// ---------------------------------------------------------------------------

func TestParseSnapFlags(t *testing.T) {
	t.Parallel()

	f, rest, err := parseSnapFlags([]string{
		"-c", "work", "-v", "-o", "/out", "--review", "editor", "--ocr", "tesseract",
		"--renderer", "browser", "--ocr-timeout", "1m", "--render-timeout", "5s",
		"--capture-timeout", "30s", "--html", "--no-notify", "shot.png",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseSnapFlags() error = %v", err)
	}

	want := runFlags{
		common:         commonFlags{config: "work", verbose: true},
		output:         "/out",
		review:         "editor",
		ocr:            "tesseract",
		renderer:       "browser",
		ocrTimeout:     time.Minute,
		renderTimeout:  5 * time.Second,
		captureTimeout: 30 * time.Second,
		html:           true,
		noNotify:       true,
	}
	if *f != want {
		t.Errorf("flags = %+v, want %+v", *f, want)
	}
	if !reflect.DeepEqual(rest, []string{"shot.png"}) {
		t.Errorf("positional = %v", rest)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		parse func() error
	}{
		{"snap unknown flag", func() error { _, _, err := parseSnapFlags([]string{"--nope"}, io.Discard); return err }},
		{"snap negative timeout", func() error {
			_, _, err := parseSnapFlags([]string{"--ocr-timeout", "-1s"}, io.Discard)
			return err
		}},
		{"snap quiet and verbose", func() error { _, _, err := parseSnapFlags([]string{"-qv"}, io.Discard); return err }},
		{"render rejects snap flags", func() error {
			_, _, err := parseRenderFlags([]string{"--ocr", "mistral"}, io.Discard)
			return err
		}},
		{"common bad duration", func() error {
			_, _, err := parseSnapFlags([]string{"--render-timeout", "soon"}, io.Discard)
			return err
		}},
		{"common unknown flag", func() error { _, _, err := parseCommonFlags("classify", []string{"--html"}, io.Discard); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.parse(); !errors.Is(err, ErrUsage) {
				t.Errorf("error = %v, want ErrUsage", err)
			}
		})
	}
}

func TestParseRenderFlags_Positional(t *testing.T) {
	t.Parallel()

	f, rest, err := parseRenderFlags([]string{"--review", "viewer", "--", "-x^2"}, io.Discard)
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}
	if f.review != "viewer" || !reflect.DeepEqual(rest, []string{"-x^2"}) {
		t.Errorf("flags = %+v, positional = %v", f, rest)
	}
}
