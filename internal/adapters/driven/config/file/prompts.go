package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the extension of prompt files inside the prompt directory.
const promptExt = ".txt"

// PromptStore loads LLM prompts from user-editable files on disk.
// Each prompt lives in <dir>/<name>.txt. Missing files fall back to the
// defaults passed to the constructor.
//
// The store is lazy: the directory and the default files are only written on
// the first Load, never in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.thorr/prompts/.
// defaults seeds new prompt files and answers for prompts that cannot be read.
func NewPromptStore(promptDir string, defaults map[string]string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	copied := make(map[string]string, len(defaults))
	for name, content := range defaults {
		copied[name] = content
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  copied,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// Cached values are served until Reload; otherwise the file is read and
// the built-in default is used when it is missing or unreadable.
func (s *PromptStore) Load(name string) (string, error) {
	if initErr := s.ensureDir(); initErr != nil {
		if prompt, ok := s.defaults[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if fallback, ok := s.defaults[name]; ok {
			return fallback, nil
		}
		if err == nil {
			err = errors.New("file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Names returns the names of the built-in prompts, sorted.
func (s *PromptStore) Names() []string {
	names := make([]string, 0, len(s.defaults))
	for name := range s.defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ensureDir runs the one-time directory setup and returns its error.
func (s *PromptStore) ensureDir() error {
	s.initOnce.Do(s.initialise)
	return s.initErr
}

// initialise creates the prompt directory, default prompt files and the README.
// Existing files are never overwritten.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Thorr Prompts

The prompts the assistant sends to the language model. Edit a file to change
how questions are routed or answered.

## Files

- ` + "`intent_classify.txt`" + ` - Routes a question to SQL_QUERY, DATA_ASSISTANCE or GENERAL_CONVERSATION.
  The model must reply with {"intent": "..."}.
- ` + "`sql_generation.txt`" + ` - Turns a question and the narrowed schema into one SQLite query.
- ` + "`data_assistance.txt`" + ` - Answers questions about the tables and columns.
- ` + "`conversation.txt`" + ` - Persona for small talk. ` + "`%s`" + ` is replaced by today's date.

## Reloading

` + "`thorr chat`" + ` and ` + "`thorr tui`" + ` pick up edits while running. Other commands
read the files on start. Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0600)
}
