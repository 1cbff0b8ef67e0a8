package experiment

import (
	"log/slog"

	"github.com/san-kum/threebody/internal/dynamo"
)

const progressReports = 10

// progress logs at every tenth of the run.
type progress struct {
	logger *slog.Logger
	every  uint32
	total  uint32
}

func newProgress(logger *slog.Logger, cfg dynamo.Config) *progress {
	return &progress{
		logger: logger,
		every:  max(1, cfg.Steps/progressReports),
		total:  cfg.Steps,
	}
}

func (p *progress) OnStep(s dynamo.Step) {
	if s.ID == 0 || s.ID%p.every != 0 {
		return
	}
	p.logger.Debug("progress", "step", s.ID, "of", p.total, "t", s.Time)
}
