package capabilities

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/capbridge/internal/application/ports"
)

const (
	answerOnce   = "once"
	answerAlways = "always"
	answerDeny   = "deny"
)

// TerminalPrompter provides interactive terminal prompting for namespace grants.
type TerminalPrompter struct {
	grantsPath string
}

// NewTerminalPrompter creates a new TerminalPrompter. grantsPath is shown in
// the non-interactive error so users know where to record grants.
func NewTerminalPrompter(grantsPath string) *TerminalPrompter {
	return &TerminalPrompter{grantsPath: grantsPath}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// Character device means a terminal rather than a pipe or file
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptForNamespace asks the user whether a namespace may be mounted.
func (p *TerminalPrompter) PromptForNamespace(info ports.NamespaceInfo) (granted bool, always bool, err error) {
	answer := answerDeny
	err = huh.NewSelect[string]().
		Title(fmt.Sprintf("Mount %s (%s) into guests?", info.Mount, info.Plugin)).
		Description(describeNamespace(info)).
		Options(
			huh.NewOption("Allow once", answerOnce),
			huh.NewOption("Always allow", answerAlways),
			huh.NewOption("Deny", answerDeny),
		).
		Value(&answer).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("grant prompt failed: %w", err)
	}

	switch answer {
	case answerOnce:
		return true, false, nil
	case answerAlways:
		return true, true, nil
	default:
		return false, false, nil
	}
}

// describeNamespace lists the capabilities of a namespace, one per line.
func describeNamespace(info ports.NamespaceInfo) string {
	var b strings.Builder
	for i, c := range info.Capabilities {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s/%s (%s)", info.Mount, c.Name, c.Mode)
	}
	return b.String()
}

// FormatNonInteractiveError creates a helpful error message for non-interactive mode.
func (p *TerminalPrompter) FormatNonInteractiveError(missing []ports.NamespaceInfo) error {
	var msg strings.Builder
	msg.WriteString("Namespaces require a grant (running in non-interactive mode)\n\n")
	msg.WriteString("Writable namespaces:\n")

	for _, info := range missing {
		fmt.Fprintf(&msg, "  - %s (%s %s)\n", info.Mount, info.Plugin, info.Version)
		for _, c := range info.Capabilities {
			if c.Mode.Writable() {
				fmt.Fprintf(&msg, "      %s: %s\n", c.Name, c.Mode)
			}
		}
	}

	msg.WriteString("\nTo grant these namespaces:\n")
	msg.WriteString("  1. Run interactively and approve when prompted\n")
	msg.WriteString("  2. Use --trust flag (grants every namespace)\n")
	fmt.Fprintf(&msg, "  3. Manually edit: %s\n", p.grantsPath)

	return errors.New(msg.String())
}
