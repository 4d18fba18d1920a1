package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestOrDiscard(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	if got := OrDiscard(l); got != l {
		t.Error("OrDiscard replaced a non-nil logger")
	}

	silent := OrDiscard(nil)
	if silent.Enabled(context.Background(), slog.LevelError) {
		t.Error("discarding logger reports ErrorLevel enabled")
	}
	silent.With("k", "v").WithGroup("g").Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}
