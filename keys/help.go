package keys

import "sort"

// HelpCategory organizes commands by function
type HelpCategory string

const (
	HelpCategoryPicker     HelpCategory = "Picker"
	HelpCategoryPrompt     HelpCategory = "Prompt"
	HelpCategoryOther      HelpCategory = "Other"
	HelpCategoryUncategory HelpCategory = "Uncategorized" // For keys without categories
)

// KeyHelpInfo adds extended help information to key bindings
type KeyHelpInfo struct {
	Description string       // Extended description for help text
	Category    HelpCategory // Category for organizing in help screens
}

// KeyHelpMap maps KeyNames to their help information
var KeyHelpMap = map[KeyName]KeyHelpInfo{
	KeyUp:    {Description: "Move the selection up", Category: HelpCategoryPicker},
	KeyDown:  {Description: "Move the selection down", Category: HelpCategoryPicker},
	KeyEnter: {Description: "Insert the selected mention, or open a category", Category: HelpCategoryPicker},
	KeyBack:  {Description: "Return to the category list", Category: HelpCategoryPicker},
	KeyClose: {Description: "Close the picker, or quit when it is closed", Category: HelpCategoryPicker},

	KeySubmit: {Description: "Print the prompt with mentions expanded and exit", Category: HelpCategoryPrompt},
	KeyCopy:   {Description: "Copy the expanded prompt to the clipboard", Category: HelpCategoryPrompt},

	KeyHelp: {Description: "Toggle this help", Category: HelpCategoryOther},
	KeyQuit: {Description: "Quit without printing", Category: HelpCategoryOther},
}

// GetKeyHelp returns the help information for a key
func GetKeyHelp(keyName KeyName) KeyHelpInfo {
	info, exists := KeyHelpMap[keyName]
	if !exists {
		return KeyHelpInfo{
			Description: "No description",
			Category:    HelpCategoryUncategory,
		}
	}
	return info
}

// GetKeysInCategory returns all key bindings in a given category, in
// declaration order.
func GetKeysInCategory(category HelpCategory) []KeyName {
	var keys []KeyName
	for k, info := range KeyHelpMap {
		if info.Category == category {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// GetAllCategories returns the categories shown on the help screen.
func GetAllCategories() []HelpCategory {
	return []HelpCategory{HelpCategoryPicker, HelpCategoryPrompt, HelpCategoryOther}
}
