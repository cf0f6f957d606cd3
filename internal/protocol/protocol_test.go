package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestArrayInputs(t *testing.T) {
	req, err := ParseRequest([]byte(`{"run_id":"r1","method":"Foo.bar","inputs":[1,2,3]}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", req.RunID)
	assert.Equal(t, "Foo.bar", req.Method)
	assert.Equal(t, []int32{1, 2, 3}, req.Inputs)
}

func TestParseRequestScalarInputPromoted(t *testing.T) {
	req, err := ParseRequest([]byte(`{"method":"Foo.bar","inputs":42}`))
	require.NoError(t, err)
	assert.Equal(t, []int32{42}, req.Inputs)
}

func TestParseRequestMissingRunIDGetsUUID(t *testing.T) {
	req, err := ParseRequest([]byte(`{"method":"Foo.bar","inputs":[1]}`))
	require.NoError(t, err)
	assert.NotEmpty(t, req.RunID)
}

func TestParseRequestMissingMethodErrors(t *testing.T) {
	_, err := ParseRequest([]byte(`{"inputs":[1]}`))
	assert.Error(t, err)
}

func TestParseRequestMalformedJSONErrors(t *testing.T) {
	_, err := ParseRequest([]byte(`{not json`))
	assert.Error(t, err)
}

func TestResponseFieldOrder(t *testing.T) {
	resp := Response{RunID: "r1", Status: "ok", TimeMs: 5}
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Equal(t,
		`{"run_id":"r1","status":"ok","error":null,"data":{"method":"","inputs":null,"trace":null},"time_ms":5}`,
		string(b))
}

func TestResponseErrorShapeIsObject(t *testing.T) {
	resp := Response{RunID: "r1", Status: "error", Error: &ErrorDetail{Message: "boom"}}
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"error":{"message":"boom"}`)
}

func TestErrorResponseCarriesEmptyTrace(t *testing.T) {
	resp := ErrorResponse("invalid input json")
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid input json", resp.Error.Message)
	assert.Equal(t, []int32{}, resp.Data.Trace)
	assert.NotEmpty(t, resp.RunID)
}
