// Package file provides file-based implementations of driven port interfaces.
// Everything lives under ~/.thorr unless a directory is given.
//
// Adapters:
//   - ConfigStore: TOML configuration in config.toml
//   - PromptStore: editable prompt templates in prompts/*.txt
//   - PromptWatcher: reloads the PromptStore when prompt files change
package file
