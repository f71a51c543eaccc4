package pkg

// Alpha is used by the picker tests.
func Alpha() {}
