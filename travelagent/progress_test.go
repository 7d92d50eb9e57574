package travelagent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpProgressReporter(t *testing.T) {
	reporter := &NoOpProgressReporter{}

	assert.NoError(t, reporter.Send(NewStageStarted("t1", StageParse, "parse")))
}

func TestNewStageEvents(t *testing.T) {
	started := NewStageStarted("t1", StageEnrich, "Fetch weather and images")
	assert.Equal(t, "t1", started.ThreadID)
	assert.Equal(t, StageEnrich, started.Stage)
	assert.Equal(t, StageStarted, started.Status)
	assert.Equal(t, "Fetch weather and images", started.Message)

	now := time.Now().UnixMilli()
	assert.True(t, started.Timestamp <= now)
	assert.True(t, started.Timestamp > now-60000)

	completed := NewStageCompleted("t1", StageEnrich, 1234567*time.Microsecond)
	assert.Equal(t, StageCompleted, completed.Status)
	assert.Equal(t, "1.235s", completed.Message)
}
