package web

import (
	"net/http/httptest"
	"testing"

	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStatsReturnsSnapshot(t *testing.T) {
	s := NewServer(nil)
	s.PushSnapshot(types.ProgressSnapshot{Iteration: 5, CorpusSize: 3})

	req := httptest.NewRequest("GET", "/stats", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleCrashesReturnsList(t *testing.T) {
	s := NewServer(nil)
	s.PushCrash(types.CrashEntry{ErrorType: "java.lang.ArithmeticException"})

	req := httptest.NewRequest("GET", "/crashes", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleCorpusReturnsSample(t *testing.T) {
	s := NewServer(nil)
	s.PushSnapshot(types.ProgressSnapshot{CorpusSize: 2})
	s.SetCorpusSample([]types.Input{types.NewScalarInput(1), types.NewScalarInput(2)})

	req := httptest.NewRequest("GET", "/corpus", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
