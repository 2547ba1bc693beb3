package utils

import (
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode returns development logger", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(true) returned nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("production mode returns production logger", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(false) returned nil logger")
		}
		_ = logger.Sync()
	})
}

func TestNewCLILogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewCLILogger(debug)
		if err != nil {
			t.Fatalf("NewCLILogger(%v) error: %v", debug, err)
		}
		if got := logger.Core().Enabled(-1); got != debug {
			t.Errorf("NewCLILogger(%v): debug enabled = %v", debug, got)
		}
		_ = logger.Sync()
	}
}
