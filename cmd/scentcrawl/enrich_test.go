package main

import (
	"testing"
)

// TestNewEnrichCmd tests the enrich command creation.
func TestNewEnrichCmd(t *testing.T) {
	t.Parallel()

	cmd := NewEnrichCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "enrich" {
			t.Errorf("expected use 'enrich', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has csv flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("csv")
		if flag == nil {
			t.Fatal("expected csv flag")
		}
	})

	t.Run("has resume flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"skip-rows", "max-pages"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has pacing flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"delay", "timeout", "user-agent", "proxy",
			"proxies-file", "rotate-every", "session-size",
			"session-break", "no-progress",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("fails without csv flag", func(t *testing.T) {
		t.Parallel()
		cmd := NewEnrichCmd()
		cmd.SetArgs([]string{})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error when csv flag is missing")
		}
	})
}
