// Package protocol implements the single-shot driver protocol: a
// JSON request naming a method and its inputs, answered with a JSON
// response carrying the execution's trace or its failure.
package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/bytescribe/fuzz/internal/driver"
	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Request is one decoded driver-protocol request.
type Request struct {
	RunID  string
	Method string
	Inputs []int32
}

// ErrorDetail carries the protocol's required error shape, an object
// with a single message field rather than a bare string.
type ErrorDetail struct {
	Message string `json:"message"`
}

// Response is the fixed-shape driver-protocol reply. Field order on
// the wire is run_id, status, error, data, time_ms. error is always
// present, either as an object or explicit null; data is always
// present, with an empty (never omitted or null) trace on failure.
type Response struct {
	RunID  string                `json:"run_id"`
	Status string                `json:"status"`
	Error  *ErrorDetail          `json:"error"`
	Data   types.ExecutionRecord `json:"data"`
	TimeMs int64                 `json:"time_ms"`
}

// ParseRequest decodes a request body permissively with gjson: a
// single scalar "inputs" value is promoted to a one-element array,
// and a missing run_id is filled in with a fresh UUID so every
// request can be answered and correlated even if the caller omitted
// it.
func ParseRequest(body []byte) (Request, error) {
	if !gjson.ValidBytes(body) {
		return Request{}, fmt.Errorf("protocol: malformed JSON request")
	}
	parsed := gjson.ParseBytes(body)

	method := parsed.Get("method")
	if !method.Exists() || method.String() == "" {
		return Request{}, fmt.Errorf("protocol: request missing \"method\"")
	}

	runID := parsed.Get("run_id").String()
	if runID == "" {
		runID = uuid.NewString()
	}

	inputsField := parsed.Get("inputs")
	var inputs []int32
	switch {
	case inputsField.IsArray():
		for _, v := range inputsField.Array() {
			inputs = append(inputs, int32(v.Int()))
		}
	case inputsField.Exists():
		inputs = []int32{int32(inputsField.Int())}
	}

	return Request{RunID: runID, Method: method.String(), Inputs: inputs}, nil
}

// ErrorResponse builds the literal response for a request that never
// made it to Handle, e.g. malformed JSON: the protocol's one-request,
// one-response invariant holds even when there was no valid request
// to correlate an answer with, so a fresh run_id is minted.
func ErrorResponse(message string) Response {
	return Response{
		RunID:  uuid.NewString(),
		Status: "error",
		Error:  &ErrorDetail{Message: message},
		Data:   types.ExecutionRecord{Trace: []int32{}},
	}
}

// Handle runs req through d and builds the corresponding Response.
// A driver error (including a timeout) is reported as a failed
// status rather than propagated, since the protocol's contract is to
// always answer with a well-formed response.
func Handle(ctx context.Context, d *driver.Driver, req Request) Response {
	start := time.Now()
	record := types.ExecutionRecord{Method: req.Method, Inputs: req.Inputs, Trace: []int32{}}

	res, err := d.Run(ctx, record)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return Response{
			RunID:  req.RunID,
			Status: "error",
			Error:  &ErrorDetail{Message: err.Error()},
			Data:   record,
			TimeMs: elapsed,
		}
	}

	record.Trace = res.Trace
	if record.Trace == nil {
		record.Trace = []int32{}
	}
	return Response{
		RunID:  req.RunID,
		Status: "ok",
		Error:  nil,
		Data:   record,
		TimeMs: elapsed,
	}
}
