package integration

import (
	"context"
	"io"
	"testing"

	"contigr/internal/app"
)

func TestCancelledRunExits130(t *testing.T) {
	dir := workdir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := app.RunContext(ctx, []string{dir}, io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
}
