// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - SettingsStore: TOML-based application settings with env overrides
//   - PromptStore: user-editable prompt files with embedded defaults
//
// The package also loads the YAML context category rules consumed by
// the context builder.
package file
