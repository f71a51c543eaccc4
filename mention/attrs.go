package mention

import (
	"encoding/json"
	"fmt"
)

// Data attribute names used when a chip is stored outside the editor.
const (
	AttrID       = "data-id"
	AttrFile     = "data-file"
	AttrCategory = "data-category"
	AttrCommand  = "data-command"
	AttrLabel    = "data-label"
)

// DataAttributes flattens a chip into string attributes. Empty values are
// omitted.
func DataAttributes(a Attributes) map[string]string {
	attrs := make(map[string]string, 5)
	if a.FileItem != nil {
		attrs[AttrID] = mustJSON(a.FileItem.Filepath)
		attrs[AttrFile] = mustJSON(a.FileItem)
	}
	if a.Category != "" {
		attrs[AttrCategory] = string(a.Category)
	}
	if name := a.CommandName(); name != "" {
		attrs[AttrCommand] = name
	}
	if a.Label != "" {
		attrs[AttrLabel] = a.Label
	}
	return attrs
}

// FromDataAttributes rebuilds a chip from DataAttributes output, applying the
// schema defaults for anything missing.
func FromDataAttributes(attrs map[string]string) (Attributes, error) {
	a := Attributes{
		Category: CategoryFile,
		Label:    attrs[AttrLabel],
	}
	if c, ok := attrs[AttrCategory]; ok && c != "" {
		a.Category = Category(c)
	}
	if cmd, ok := attrs[AttrCommand]; ok && cmd != "" {
		a.Command = &cmd
	}
	if raw, ok := attrs[AttrFile]; ok && raw != "" {
		var item FileItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return Attributes{}, fmt.Errorf("failed to parse %s: %w", AttrFile, err)
		}
		a.FileItem = &item
		a.ID = item.Filepath
	}
	if err := a.Validate(); err != nil {
		return Attributes{}, err
	}
	return a, nil
}
