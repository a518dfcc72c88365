package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/framelens/analysis"
	"github.com/BaSui01/framelens/config"
	"github.com/BaSui01/framelens/testutil"
	"github.com/BaSui01/framelens/testutil/fixtures"
	"github.com/BaSui01/framelens/types"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestInitLogger(t *testing.T) {
	logger, level := initLogger(config.LogConfig{Level: "warn", Format: "console", OutputPaths: []string{"stderr"}})
	require.NotNil(t, logger)
	assert.Equal(t, zapcore.WarnLevel, level.Level())

	level.SetLevel(zapcore.DebugLevel)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "level changes apply to the built logger")
}

func TestSelectAgents(t *testing.T) {
	catalog := loadCatalog(config.CatalogConfig{}, zap.NewNop())

	t.Run("by name", func(t *testing.T) {
		agents, err := selectAgents(catalog, "film critic, Business Analyst", "")
		require.NoError(t, err)
		require.Len(t, agents, 2)
		assert.Equal(t, "Film Critic", agents[0].Name)
		assert.Equal(t, "Business Analyst", agents[1].Name)
	})

	t.Run("by category", func(t *testing.T) {
		agents, err := selectAgents(catalog, "", "web")
		require.NoError(t, err)
		for _, a := range agents {
			assert.Equal(t, "web", a.Category)
		}
	})

	t.Run("all", func(t *testing.T) {
		agents, err := selectAgents(catalog, "", "")
		require.NoError(t, err)
		assert.Len(t, agents, len(catalog.All()))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := selectAgents(catalog, "Nobody", "")
		assert.Error(t, err)
	})

	t.Run("empty category", func(t *testing.T) {
		_, err := selectAgents(catalog, "", "missing")
		assert.Error(t, err)
	})
}

func TestFrameDataURI(t *testing.T) {
	uri, err := frameDataURI(fixtures.PNG(4, 4))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	uri, err = frameDataURI(fixtures.JPEG(4, 4, 80))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	_, err = frameDataURI(fixtures.GIF(4, 4))
	testutil.AssertErrorCode(t, err, types.ErrValidation)

	_, err = frameDataURI([]byte("not an image"))
	testutil.AssertErrorCode(t, err, types.ErrDecode)
}

func TestReadFrameRecords(t *testing.T) {
	frames, err := readFrameRecords(strings.NewReader(`[
		{"mediaUuid": "m-1", "timestamp": 1.5, "analysis": [
			{"agentId": "a", "response": {"text": "first"}},
			{"agentId": "b", "response": {"error": "quota"}}
		]}
	]`))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "m-1", frames[0].MediaUUID)
	assert.Equal(t, 1.5, frames[0].Timestamp)
	assert.Equal(t, 1, frames[0].Analysis.Failures())

	single, err := readFrameRecords(strings.NewReader(`{"mediaUuid": "m-2", "timestamp": 0, "analysis": []}`))
	require.NoError(t, err)
	assert.Equal(t, []analysis.FrameRecord{{MediaUUID: "m-2", Analysis: types.BatchResult{}}}, single)

	_, err = readFrameRecords(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestFailedOutcomes(t *testing.T) {
	specs := fixtures.BusinessAndFilmSpecs()

	result := failedOutcomes(specs, types.NewProviderError("gemini", "quota exceeded", nil))
	testutil.AssertOutcomeOrder(t, specs, result)
	assert.Equal(t, len(specs), result.Failures())
	for _, outcome := range result {
		assert.Equal(t, "quota exceeded", outcome.Response.Error)
	}

	result = failedOutcomes(specs, errors.New(""))
	assert.Equal(t, "Batch analysis failed", result[0].Response.Error)

	// 失败的帧仍然可以写出并被 report 读回
	var buf bytes.Buffer
	writeJSON(&buf, []analysis.FrameRecord{{MediaUUID: "m", Timestamp: 1.5, Analysis: result}})
	frames, err := readFrameRecords(&buf)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, len(specs), frames[0].Analysis.Failures())
}
