package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PromptRegistry loads agent prompt templates from the configured
// prompts directory and caches them for the lifetime of the process.
type PromptRegistry struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptRegistry creates a registry rooted at dir.
func NewPromptRegistry(dir string) *PromptRegistry {
	return &PromptRegistry{
		dir:   dir,
		cache: make(map[string]string),
	}
}

// Load returns the trimmed content of a prompt template by filename,
// e.g. "classifier.txt".
func (r *PromptRegistry) Load(filename string) (string, error) {
	r.mu.RLock()
	if content, ok := r.cache[filename]; ok {
		r.mu.RUnlock()
		return content, nil
	}
	r.mu.RUnlock()

	path := filepath.Join(r.dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt file not found: %s: %w", path, err)
	}
	content := strings.TrimSpace(string(data))

	r.mu.Lock()
	r.cache[filename] = content
	r.mu.Unlock()

	return content, nil
}

// MustLoad is Load for prompts that are required at startup.
func (r *PromptRegistry) MustLoad(filename string) string {
	content, err := r.Load(filename)
	if err != nil {
		panic(err)
	}
	return content
}
