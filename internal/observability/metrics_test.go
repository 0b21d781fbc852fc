package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostTransitionsCounter(t *testing.T) {
	before := testutil.ToFloat64(PostTransitions.WithLabelValues(TransitionRestore))
	PostTransitions.WithLabelValues(TransitionRestore).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PostTransitions.WithLabelValues(TransitionRestore)))
}

func TestTrackQueryObserves(t *testing.T) {
	before := testutil.CollectAndCount(DatabaseQueryLatency)
	done := TrackQuery("list_active", "posts_test")
	done()
	assert.Equal(t, before+1, testutil.CollectAndCount(DatabaseQueryLatency))
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartServiceSpan(context.Background(), "post", "Create")
	assert.NotNil(t, ctx)
	EndSpan(span, nil)
}
