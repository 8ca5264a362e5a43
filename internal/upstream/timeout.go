package upstream

import (
	"strings"
	"time"

	"llm-suggest-proxy/internal/config"
)

// TimeoutReason explains which rule chose a timeout.
type TimeoutReason string

const (
	ReasonStreaming TimeoutReason = "streaming"
	ReasonFileEdit  TimeoutReason = "file_content"
	ReasonSlowModel TimeoutReason = "slow_model"
	ReasonDefault   TimeoutReason = "default"
)

// TimeoutPolicy picks how long one upstream call may take.
type TimeoutPolicy struct {
	Streaming       time.Duration
	FileEdit        time.Duration
	SlowModel       time.Duration
	Default         time.Duration
	SlowModelPrefix string
}

func NewTimeoutPolicy(cfg config.TimeoutsConfig) TimeoutPolicy {
	return TimeoutPolicy{
		Streaming:       cfg.Streaming,
		FileEdit:        cfg.FileEdit,
		SlowModel:       cfg.SlowModel,
		Default:         cfg.Default,
		SlowModelPrefix: cfg.SlowModelPrefix,
	}
}

// Select returns the timeout for a call. Streaming always gets the long
// timeout; otherwise large file-editing payloads beat slow models, which
// beat the default.
func (p TimeoutPolicy) Select(streaming bool, model string, hasFileContent bool) (time.Duration, TimeoutReason) {
	switch {
	case streaming:
		return p.Streaming, ReasonStreaming
	case hasFileContent:
		return p.FileEdit, ReasonFileEdit
	case p.SlowModelPrefix != "" && strings.HasPrefix(model, p.SlowModelPrefix):
		return p.SlowModel, ReasonSlowModel
	default:
		return p.Default, ReasonDefault
	}
}
