package app

import (
	"fmt"
	"strings"

	"mention-picker/keys"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#655F5F", Dark: "#7F7A7A"})
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#7A7474", Dark: "#9C9494"})
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// helpContent lists every binding, grouped by category.
func helpContent(trigger rune) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("mention-picker"),
		"",
		fmt.Sprintf("Type %c to mention a file, a Go symbol or the uncommitted changes.", trigger),
		"Mentions are exported as placeholders when the prompt is submitted or copied.",
		"",
	)

	for _, category := range keys.GetAllCategories() {
		categoryKeys := keys.GetKeysInCategory(category)
		if len(categoryKeys) == 0 {
			continue
		}

		content = lipgloss.JoinVertical(lipgloss.Left,
			content,
			headerStyle.Render(string(category)+":"),
		)
		for _, keyName := range categoryKeys {
			keyText := keys.GlobalkeyBindings[keyName].Help().Key
			padding := ""
			if padLen := 12 - len(keyText); padLen > 0 {
				padding = strings.Repeat(" ", padLen)
			}
			keyLine := keyStyle.Render(keyText) + padding + descStyle.Render("- "+keys.GetKeyHelp(keyName).Description)
			content = lipgloss.JoinVertical(lipgloss.Left, content, keyLine)
		}
		content = lipgloss.JoinVertical(lipgloss.Left, content, "")
	}

	return content + descStyle.Render("Press any key to close this help.")
}

// shortHelp is the one-line key summary under the editor.
func shortHelp(names ...keys.KeyName) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		h := keys.GlobalkeyBindings[name].Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Desc))
	}
	return strings.Join(parts, descStyle.Render(" • "))
}
