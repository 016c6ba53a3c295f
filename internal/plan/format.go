package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText produces a human-readable text plan output.
func FormatText(p *Plan) string {
	if !p.HasChanges {
		return "No changes. Protocol config matches the desired spec.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Plan: %d action(s)\n\n", len(p.Actions)))
	for _, a := range p.Actions {
		switch a.Type {
		case ActionInitialize:
			sb.WriteString("  + initialize config")
		case ActionUpdate:
			sb.WriteString(fmt.Sprintf("  ~ update config (%s)", strings.Join(a.Delta.FieldNames(), ", ")))
		case ActionClose:
			sb.WriteString("  - close config")
		case ActionInitializeMint:
			sb.WriteString("  + initialize mint")
		}
		sb.WriteString(fmt.Sprintf("\n      %s\n", a.Reason))
	}
	return sb.String()
}

// FormatJSON produces a JSON plan output.
func FormatJSON(p *Plan) (string, error) {
	type jsonAction struct {
		Action        string   `json:"action"`
		Reason        string   `json:"reason,omitempty"`
		ChangedFields []string `json:"changed_fields,omitempty"`
	}
	type jsonPlan struct {
		HasChanges bool         `json:"has_changes"`
		Actions    []jsonAction `json:"actions"`
	}

	jp := jsonPlan{HasChanges: p.HasChanges}
	for _, a := range p.Actions {
		ja := jsonAction{Action: string(a.Type), Reason: a.Reason}
		if a.Delta != nil {
			ja.ChangedFields = a.Delta.FieldNames()
		}
		jp.Actions = append(jp.Actions, ja)
	}

	data, err := json.MarshalIndent(jp, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
