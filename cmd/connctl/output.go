package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-connection/pkg/connection"
)

// outcomeView is the printed form of a terminal outcome.
type outcomeView struct {
	Outcome string `json:"outcome"`
	Source  string `json:"source,omitempty"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newOutcomeView[T any](out connection.Outcome[T]) outcomeView {
	v := outcomeView{
		Outcome: out.Kind.String(),
		Source:  string(out.Source),
	}
	if out.Kind == connection.OutcomeSuccess {
		v.Value = out.Value
	}
	if out.Err != nil {
		v.Error = out.Err.Error()
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// printer writes every outcome of a connection to w.
func printer[T any](w io.Writer) func(connection.Outcome[T]) {
	return func(out connection.Outcome[T]) {
		_ = printJSON(w, newOutcomeView(out))
	}
}
