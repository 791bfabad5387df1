package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	rt, err := Start(config.Config{ServiceName: "matchfeed", AppEnv: config.EnvDev}, logging.NewNop())
	require.NoError(t, err)
	assert.Empty(t, rt.stops)
	require.NoError(t, rt.Shutdown(context.Background()))
}

func TestStart_TracingWithoutDSNStaysOff(t *testing.T) {
	rt, err := Start(config.Config{UptraceEnabled: true}, logging.NewNop())
	require.NoError(t, err)
	assert.Empty(t, rt.stops)
}

func TestRuntime_ShutdownRunsEveryStopInReverse(t *testing.T) {
	var order []string
	errFirst := errors.New("first failed")
	rt := &Runtime{stops: []stopFunc{
		func(context.Context) error { order = append(order, "tracing"); return errFirst },
		func(context.Context) error { order = append(order, "pprof"); return nil },
	}}

	err := rt.Shutdown(context.Background())
	require.ErrorIs(t, err, errFirst)
	assert.Equal(t, []string{"pprof", "tracing"}, order)

	var nilRuntime *Runtime
	require.NoError(t, nilRuntime.Shutdown(context.Background()))
}

func TestPprofMux_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	pprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
