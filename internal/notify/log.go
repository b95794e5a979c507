package notify

import (
	"log/slog"

	"github.com/roach88/quadstore/internal/rdf"
)

// LogObserver logs every notification. Quad events log at Debug, errors at Warn.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) QuadAdded(q rdf.Quad) {
	o.logger().Debug("quad added", "quad", q.String())
}

func (o LogObserver) QuadDeleted(q rdf.Quad) {
	o.logger().Debug("quad deleted", "quad", q.String())
}

func (o LogObserver) StoreError(err error) {
	o.logger().Warn("store error", "error", err)
}
