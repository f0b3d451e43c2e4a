package filetypes

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry answers upload acceptance questions: size limit and MIME/extension
// categories
type Registry struct {
	policy Policy
	mu     sync.RWMutex
}

// NewRegistry creates a registry from the embedded policy file
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/filetypes.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read filetypes.yaml: %w", err)
	}
	return NewRegistryFromYAML(data)
}

// NewRegistryFromYAML creates a registry from a policy document
func NewRegistryFromYAML(data []byte) (*Registry, error) {
	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file type policy: %w", err)
	}
	if policy.MaxSize <= 0 {
		return nil, fmt.Errorf("file type policy: max_size must be positive")
	}
	if len(policy.Categories) == 0 {
		return nil, fmt.Errorf("file type policy: no categories defined")
	}

	return &Registry{policy: policy}, nil
}

// MaxSize returns the largest accepted upload in bytes
func (r *Registry) MaxSize() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy.MaxSize
}

// Categories returns accepted categories in policy order
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Category(nil), r.policy.Categories...)
}

// CategoryForMIME returns the first category whose prefix matches mimeType
func (r *Registry) CategoryForMIME(mimeType string) (*Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.policy.Categories {
		for _, prefix := range r.policy.Categories[i].MIMEPrefixes {
			if strings.HasPrefix(mimeType, prefix) {
				c := r.policy.Categories[i]
				return &c, true
			}
		}
	}
	return nil, false
}

// CategoryForName returns the category accepting the file's extension
func (r *Registry) CategoryForName(name string) (*Category, bool) {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.policy.Categories {
		for _, e := range r.policy.Categories[i].Extensions {
			if e == ext {
				c := r.policy.Categories[i]
				return &c, true
			}
		}
	}
	return nil, false
}

// Check validates an upload candidate. The MIME type decides acceptance; when
// the browser sent no type, the extension is used instead.
func (r *Registry) Check(name string, size int64, mimeType string) (*Category, error) {
	if size < 0 {
		return nil, fmt.Errorf("file %s has a negative size", name)
	}
	if max := r.MaxSize(); size > max {
		return nil, fmt.Errorf("file %s is too large, maximum size is %dMB", name, max/(1024*1024))
	}

	if mimeType == "" {
		if c, ok := r.CategoryForName(name); ok {
			return c, nil
		}
		return nil, fmt.Errorf("file %s has no type and an unsupported extension", name)
	}

	c, ok := r.CategoryForMIME(mimeType)
	if !ok {
		return nil, fmt.Errorf("file type %s is not supported", mimeType)
	}
	return c, nil
}
