package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/tui"
)

// changeReport is the JSON form of an install or remove result.
type changeReport struct {
	OperationID string   `json:"operation_id"`
	Name        string   `json:"name"`
	Paths       []string `json:"paths,omitempty"`
	Phases      []string `json:"phases"`
	Message     string   `json:"message"`
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printChange reports a finished install or remove on w.
func printChange(w io.Writer, res *plugin.Result, message string) error {
	if jsonOutput {
		phases := make([]string, 0, len(res.History))
		for _, p := range res.History {
			phases = append(phases, string(p))
		}
		return printJSON(w, changeReport{
			OperationID: res.OperationID,
			Name:        res.Name,
			Paths:       res.Paths,
			Phases:      phases,
			Message:     message,
		})
	}

	styles := tui.DefaultStyles()
	_, _ = fmt.Fprintln(w, styles.Success.Render(message))
	for _, p := range res.Paths {
		_, _ = fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}
