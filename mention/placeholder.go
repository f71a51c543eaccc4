package mention

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const defaultCommand = "default"

// RenderText exports a chip as its plain-text placeholder:
//
//	[[contextCommand:<name>]]
//	[[symbol:<json of the file item>]]
//	[[file:<json-quoted filepath>]]
//
// Anything that is not a command or a symbol renders as a file.
func RenderText(a Attributes) string {
	switch a.EffectiveCategory() {
	case CategoryCommand:
		name := a.CommandName()
		if name == "" {
			name = defaultCommand
		}
		return fmt.Sprintf("[[contextCommand:%s]]", name)
	case CategorySymbol:
		return fmt.Sprintf("[[symbol:%s]]", mustJSON(a.FileItem))
	default:
		filepath := ""
		if a.FileItem != nil {
			filepath = a.FileItem.Filepath
		}
		return fmt.Sprintf("[[file:%s]]", mustJSON(filepath))
	}
}

// mustJSON marshals values whose encoding cannot fail (strings and FileItem).
// HTML characters are left unescaped so paths read the same as in the editor.
func mustJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
