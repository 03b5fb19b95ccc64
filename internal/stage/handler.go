package stage

import (
	"context"

	"qualfill/internal/config"
	"qualfill/internal/queue"
)

// Handler describes the contract the pipeline manager needs from each stage.
//
// Start is called once per run with the raw configuration before any item is
// processed. Execute is called once per item and may update it in place,
// including rejecting it. HealthCheck reports readiness for diagnostics.
type Handler interface {
	Start(context.Context, *config.Config) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// Health is a stage's readiness as of its last Start.
type Health struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that cannot process items, with detail for the
// operator.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}
