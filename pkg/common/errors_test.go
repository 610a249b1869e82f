package common_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelgrid/analyzer/pkg/common"
)

func TestNewErrorUnknownCodeDefaultsToInternal(t *testing.T) {
	err := common.NewError("E0000", "bogus code", nil)
	assert.Equal(t, "E9999", err.Code)
}

func TestNewErrorFormatsMessageWithCode(t *testing.T) {
	err := common.NewError("E3001", "invariant violated", nil)
	assert.Contains(t, err.Error(), "[E3001]")
	assert.Contains(t, err.Error(), "invariant violated")
}

func TestWrapErrorPreservesCodeFromAnalyzerError(t *testing.T) {
	base := common.NewError("E2003", "bad timestamp", nil)
	wrapped := common.WrapError(base, "failed while parsing event", nil)
	assert.True(t, common.IsCode(wrapped, "E2003"))
}

func TestWrapErrorOfPlainErrorDefaultsToInternal(t *testing.T) {
	wrapped := common.WrapError(errors.New("boom"), "something failed", nil)
	assert.True(t, common.IsCode(wrapped, "E9999"))
}

func TestWrapErrorOfNilReturnsNil(t *testing.T) {
	assert.Nil(t, common.WrapError(nil, "unused", nil))
}

func TestIsCodeFalseForUnrelatedError(t *testing.T) {
	assert.False(t, common.IsCode(errors.New("plain"), "E1001"))
}

func TestNewErrorFromPreservesUnderlyingError(t *testing.T) {
	base := errors.New("disk full")
	wrapped := common.NewErrorFrom("E1001", base, "failed to read config", nil)
	assert.True(t, common.IsCode(wrapped, "E1001"))
	assert.ErrorIs(t, wrapped, base)
}

func TestSanitizeContextRedactsSensitiveKeys(t *testing.T) {
	err := common.NewError("E1002", "bad config", map[string]interface{}{
		"token": "abc123", "field": "window_sec",
	})
	assert.Equal(t, "[REDACTED]", err.Context["token"])
	assert.Equal(t, "window_sec", err.Context["field"])
}

func TestErrorCountsIncrementsPerCode(t *testing.T) {
	before := common.ErrorCounts()["E3001"]
	common.NewError("E3001", "one", nil)
	common.NewError("E3001", "two", nil)
	after := common.ErrorCounts()["E3001"]
	assert.Equal(t, before+2, after)
}
