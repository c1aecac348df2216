// Package setup implements the interactive first-run wizard. It is a linear
// prompt flow over stdin/stdout; empty answers keep the current value.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rbright/nudge/internal/config"
	"github.com/rbright/nudge/internal/registry"
)

// Run walks the user through the core settings and returns the updated
// persisted document. The input document is not mutated.
func Run(in io.Reader, out io.Writer, persisted config.Document, reg registry.Registry) (config.Document, error) {
	current, err := config.Resolve(persisted, reg)
	if err != nil {
		return nil, fmt.Errorf("resolve current config: %w", err)
	}

	reader := bufio.NewScanner(in)
	doc := config.Merge(config.Document{}, persisted)

	fmt.Fprintln(out, "nudge setup (press Enter to keep the current value)")

	answer, err := prompt(reader, out, fmt.Sprintf("Keystroke threshold [%d]: ", current.Threshold))
	if err != nil {
		return nil, err
	}
	if answer != "" {
		doc["threshold"] = float64(config.ClampThreshold(answer, current.Threshold))
	}

	answer, err = prompt(reader, out, fmt.Sprintf("Reset after seconds of inactivity [%d]: ", current.ResetAfterSeconds))
	if err != nil {
		return nil, err
	}
	if answer != "" {
		doc["resetAfterSeconds"] = float64(config.ClampResetPeriod(answer, current.ResetAfterSeconds))
	}

	answer, err = prompt(reader, out, fmt.Sprintf("Alert message [%s]: ", current.AlertMessage))
	if err != nil {
		return nil, err
	}
	if answer != "" {
		doc["alertMessage"] = answer
	}

	answer, err = prompt(reader, out, fmt.Sprintf("Speak the alert aloud? (y/n) [%s]: ", yesNo(current.Voice.Enabled)))
	if err != nil {
		return nil, err
	}
	if answer != "" {
		doc["voice"] = map[string]any{"enabled": isYes(answer)}
	}

	categories := map[string]any{}
	for _, cat := range reg.Categories() {
		enabled := current.Categories[cat.ID].Enabled
		answer, err = prompt(reader, out, fmt.Sprintf("Monitor %s (%s)? (y/n) [%s]: ", cat.Name, cat.Description, yesNo(enabled)))
		if err != nil {
			return nil, err
		}
		if answer == "" {
			categories[cat.ID] = map[string]any{"enabled": enabled}
			continue
		}
		categories[cat.ID] = map[string]any{"enabled": isYes(answer)}
	}
	doc["categories"] = categories

	answer, err = prompt(reader, out, fmt.Sprintf("Custom apps, comma-separated [%s]: ", strings.Join(current.CustomApps.Apps, ", ")))
	if err != nil {
		return nil, err
	}
	if answer != "" {
		apps := config.ParseApps(answer)
		list := make([]any, 0, len(apps))
		for _, app := range apps {
			list = append(list, app)
		}
		doc["customApps"] = map[string]any{"enabled": true, "apps": list}
	}

	updated, err := config.Resolve(doc, reg)
	if err != nil {
		return nil, fmt.Errorf("resolve updated config: %w", err)
	}
	fmt.Fprintf(out, "\nThreshold %d, reset after %ds, message %q, voice %s, %d monitored app patterns.\n",
		updated.Threshold,
		updated.ResetAfterSeconds,
		updated.AlertMessage,
		yesNo(updated.Voice.Enabled),
		len(config.EnabledApps(updated, reg)),
	)

	return doc, nil
}

func prompt(reader *bufio.Scanner, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	if !reader.Scan() {
		if err := reader.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", nil
	}
	return strings.TrimSpace(reader.Text()), nil
}

func yesNo(v bool) string {
	if v {
		return "y"
	}
	return "n"
}

func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
