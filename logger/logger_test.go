package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsGoToTheirWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut)

	l.Info("started %s", "g1")
	l.Warn("slow tick")
	l.Error("save failed: %v", "disk full")
	l.Event("g1", "head", 3, 4)

	assert.Contains(t, out.String(), "[CENTIPEDE-INFO] ")
	assert.Contains(t, out.String(), "started g1")
	assert.Contains(t, out.String(), "[CENTIPEDE-WARN] ")
	assert.Contains(t, out.String(), "[EVENT:head] Group:g1 | cell (3,4)")
	assert.Contains(t, errOut.String(), "[CENTIPEDE-ERROR] ")
	assert.Contains(t, errOut.String(), "save failed: disk full")
	assert.NotContains(t, out.String(), "disk full")
}
