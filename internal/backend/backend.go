// Package backend holds the operating mode shared by the entity stores and the
// read path that degrades to the local snapshot.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/metrics"
)

// Mode is the operating mode, fixed when the stores are constructed
type Mode string

const (
	// ModeLocal reads and writes only the local fallback store
	ModeLocal Mode = "local"
	// ModeRemote uses the remote store first and the local store on failure
	ModeRemote Mode = "remote"
)

// Remote reports whether the remote store is primary
func (m Mode) Remote() bool {
	return m == ModeRemote
}

func (m Mode) String() string {
	return string(m)
}

// Select resolves the configured mode. "auto" (or empty) picks remote when a
// remote store is configured and local otherwise; asking for remote without
// one is a configuration error.
func Select(requested string, remoteConfigured bool) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "", "auto":
		if remoteConfigured {
			return ModeRemote, nil
		}
		return ModeLocal, nil
	case string(ModeRemote):
		if !remoteConfigured {
			return "", fmt.Errorf("backend mode %q requires a configured remote store", requested)
		}
		return ModeRemote, nil
	case string(ModeLocal):
		return ModeLocal, nil
	default:
		return "", fmt.Errorf("unknown backend mode %q", requested)
	}
}

// ReadWithFallback runs remote and, if it fails, logs the failure and answers
// from local instead. It never returns an error.
func ReadWithFallback[T any](
	ctx context.Context,
	logger *logrus.Entry,
	entity string,
	remote func(context.Context) (T, error),
	local func(context.Context) T,
) T {
	value, err := remote(ctx)
	if err == nil {
		return value
	}

	metrics.FallbackReads.WithLabelValues(entity).Inc()
	logger.WithError(err).WithField("entity", entity).Warn("Remote read failed, serving local snapshot")
	return local(ctx)
}
