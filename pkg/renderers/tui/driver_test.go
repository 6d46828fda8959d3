package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestSurveyDriver_CanceledContextSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	driver := NewSurveyDriver(&out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := driver.Input(ctx, InputConfig{Message: "Username"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := driver.Select(ctx, SelectConfig{Message: "Pick", Options: []string{"a"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := driver.Info(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", out.String())
	}
}

func TestSurveyDriver_InfoWritesLine(t *testing.T) {
	var out bytes.Buffer
	driver := NewSurveyDriver(&out)
	if err := driver.Info(context.Background(), "Check your email"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := out.String(); got != "Check your email\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestValidatorOpts(t *testing.T) {
	if opts := validatorOpts(nil); opts != nil {
		t.Fatalf("expected no options for nil validator")
	}
	if opts := validatorOpts(func(string) error { return nil }); len(opts) != 1 {
		t.Fatalf("expected one option, got %d", len(opts))
	}
}

func TestIndexOf(t *testing.T) {
	options := []string{"", "fr", "en"}
	if got := indexOf(options, "en"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := indexOf(options, "de"); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}
