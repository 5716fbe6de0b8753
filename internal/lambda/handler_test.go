package lambda

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleRun_UnknownAction(t *testing.T) {
	d := &Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	_, err := d.HandleRun(context.Background(), RunRequest{Action: "quarterly"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quarterly")
}
