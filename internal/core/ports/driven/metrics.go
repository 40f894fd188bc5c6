package driven

import (
	"time"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// MetricsRecorder receives pipeline measurements.
// This is an optional service - when nil, nothing is recorded.
type MetricsRecorder interface {
	// ObserveStage records how long a pipeline stage took.
	ObserveStage(stage string, elapsed time.Duration)

	// ObserveAnswer records the outcome of one question.
	ObserveAnswer(intent domain.Intent, kind domain.AnswerKind)
}

// Pipeline stage names reported to MetricsRecorder.
const (
	StageClassify   = "classify"
	StageRetrieve   = "retrieve"
	StageRefine     = "refine"
	StageSynthesize = "synthesize"
	StageExecute    = "execute"
	StageRespond    = "respond"
)
