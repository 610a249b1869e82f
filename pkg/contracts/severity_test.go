package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, contracts.SeverityLow < contracts.SeverityMedium)
	assert.True(t, contracts.SeverityMedium < contracts.SeverityHigh)
	assert.True(t, contracts.SeverityHigh < contracts.SeverityCritical)
}

func TestParseSeverityDefaultsToLow(t *testing.T) {
	assert.Equal(t, contracts.SeverityLow, contracts.ParseSeverity("unknown"))
	assert.Equal(t, contracts.SeverityLow, contracts.ParseSeverity(""))
	assert.Equal(t, contracts.SeverityCritical, contracts.ParseSeverity("critical"))
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, contracts.SeverityHigh, contracts.MaxSeverity("low", "medium", "high"))
	assert.Equal(t, contracts.SeverityLow, contracts.MaxSeverity())
}

func TestIsHighOrCritical(t *testing.T) {
	assert.False(t, contracts.SeverityMedium.IsHighOrCritical())
	assert.True(t, contracts.SeverityHigh.IsHighOrCritical())
	assert.True(t, contracts.SeverityCritical.IsHighOrCritical())
}
