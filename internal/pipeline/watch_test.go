package pipeline_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/pipeline"
	"github.com/sentinelgrid/analyzer/pkg/common"
)

// TestWatchReturnsErrorWhenInputFileMissing locks in the doc comment's
// promise that Watch only returns early on an unrecoverable I/O error
// opening the input, surfaced as an E1001 AnalyzerError.
func TestWatchReturnsErrorWhenInputFileMissing(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := pipeline.Watch(ctx, pipeline.WatchOptions{
		InputPath:    filepath.Join(dir, "does-not-exist.csv"),
		OutputDir:    dir,
		Policies:     nil,
		RulesCfg:     config.RulesConfig{},
		PoliciesCfg:  config.PoliciesConfig{},
		PollInterval: time.Hour,
	})

	assert.True(t, common.IsCode(err, "E1001"))
}
