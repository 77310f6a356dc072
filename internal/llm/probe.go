package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	probePrompt    = "Reply with the single word: ready"
	probeMaxTokens = 8
)

// Attempt records the outcome of probing one model.
type Attempt struct {
	Model string `json:"model"`
	Error string `json:"error,omitempty"`
}

// Status is the definite result of a capability probe.
type Status struct {
	Ready     bool      `json:"ready"`
	Model     string    `json:"model,omitempty"`
	Attempts  []Attempt `json:"attempts"`
	CheckedAt time.Time `json:"checked_at"`
}

func (s Status) String() string {
	if s.Ready {
		return fmt.Sprintf("ready (%s)", s.Model)
	}
	var failures []string
	for _, a := range s.Attempts {
		failures = append(failures, fmt.Sprintf("%s: %s", a.Model, a.Error))
	}
	if len(failures) == 0 {
		return "unavailable: no models configured"
	}
	return "unavailable: " + strings.Join(failures, "; ")
}

// Probe tries each model in order with one tiny completion and commits to the
// first that answers. base supplies the credential and transport settings; its
// Model field is ignored.
func Probe(ctx context.Context, base Options, models []string, logger *logrus.Logger) Status {
	status := Status{CheckedAt: time.Now()}

	for _, model := range models {
		opts := base
		opts.Model = model

		client, err := NewClient(opts, logger)
		if err == nil {
			_, err = client.complete(ctx, probePrompt, probeMaxTokens)
		}
		if err != nil {
			status.Attempts = append(status.Attempts, Attempt{Model: model, Error: err.Error()})
			if logger != nil {
				logger.WithError(err).WithField("model", model).Debug("Model probe failed")
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		status.Attempts = append(status.Attempts, Attempt{Model: model})
		status.Ready = true
		status.Model = model
		if logger != nil {
			logger.WithField("model", model).Info("Model probe succeeded")
		}
		break
	}

	return status
}
