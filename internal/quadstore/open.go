package quadstore

import (
	"fmt"

	"github.com/roach88/quadstore/internal/config"
)

// Open builds a Store for the backend selected by cfg. Like New it does not
// connect.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	connector, err := config.Connector(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return New(connector, opts...), nil
}
