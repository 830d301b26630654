package job

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages_Order(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, 5)

	wantNames := []string{"flights", "hotels", "restaurants", "activities", "completing"}
	for i, s := range stages {
		assert.Equal(t, wantNames[i], s.String())
		assert.Equal(t, i, s.Index())
	}

	// Every stage precedes the ones after it and none of the ones before.
	for i, a := range stages {
		for j, b := range stages {
			assert.Equal(t, i < j, a.Before(b), "%s before %s", a, b)
		}
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range Stages() {
		parsed, err := ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStage("packing")
	require.Error(t, err)
}

func TestStage_JSON(t *testing.T) {
	data, err := json.Marshal(Progress{Step: StageHotels, Message: "Finding hotels..."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":"hotels","message":"Finding hotels..."}`, string(data))

	var p Progress
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, StageHotels, p.Step)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestStage_Message(t *testing.T) {
	for _, s := range Stages() {
		assert.NotEmpty(t, s.Message())
	}
}
