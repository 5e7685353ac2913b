package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arloliu/go-modcontrol/command"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// responseError converts a failed response into an error, so the command
// exits with a non-zero status.
func responseError(r *command.Response) error {
	if r.OK() {
		return nil
	}

	if r.ErrorKind() == command.Timeout {
		return errors.New("no response from device")
	}

	return fmt.Errorf("device reported %s", r.ErrorKind())
}

func field(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

func printFields(kv ...any) {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteString(field(fmt.Sprint(kv[i]), kv[i+1]))
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}

func renderState(ch command.OutputChannel) string {
	if ch.Err != nil {
		return errorStyle.Render(fmt.Sprintf("invalid (0x%02X)", byte(ch.State)))
	}

	switch ch.State {
	case command.OutputOn:
		return onStyle.Render("on")
	case command.OutputOverload:
		return errorStyle.Render("overload")
	default:
		return offStyle.Render("off")
	}
}

func renderOutputs(r *command.OutputsResponse) string {
	var b strings.Builder
	for i, ch := range r.Channels {
		b.WriteString(labelStyle.Render(fmt.Sprintf("output %d", i)))
		b.WriteString(renderState(ch))
		b.WriteByte('\n')
	}

	return b.String()
}

func renderCounters(r *command.AllCountersResponse) string {
	var b strings.Builder
	for i, v := range r.Values {
		b.WriteString(field(fmt.Sprintf("counter %d", i), v))
		b.WriteByte('\n')
	}

	return b.String()
}

func renderLimit(l command.LoadLimit) string {
	switch l {
	case command.DoNotChange:
		return "unchanged"
	case command.LimitDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("%d A", byte(l))
	}
}
