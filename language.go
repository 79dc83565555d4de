package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jadenpxrk/remix/internal/config"
	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/transform"
)

const languagesFileName = "languages.yml"

// LanguageInfo describes one language in languages.yml:
//
//	Terraform:
//	  extensions: [".tf", ".tfvars"]
//	  comments: shell
type LanguageInfo struct {
	Extensions []string `yaml:"extensions"`
	Comments   string   `yaml:"comments"`
}

// LanguageMap maps language names (e.g., "Terraform") to their details.
type LanguageMap map[string]LanguageInfo

// findLanguagesFile returns explicit if set, otherwise the first
// languages.yml in the config search paths, or "" if there is none.
func findLanguagesFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, dir := range config.SearchPaths() {
		p := filepath.Join(dir, languagesFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadLanguageOverrides reads the languages file at path and returns the
// extension to comment family overrides it declares. An empty path yields
// no overrides.
func loadLanguageOverrides(path string) (map[string]transform.Family, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading language file %s: %w", path, err)
	}

	var langs LanguageMap
	if err := yaml.Unmarshal(data, &langs); err != nil {
		return nil, fmt.Errorf("error parsing language file %s: %w", path, err)
	}

	overrides, err := langs.Overrides()
	if err != nil {
		return nil, fmt.Errorf("invalid language file %s: %w", path, err)
	}

	logger := logging.GetLogger("languages")
	logger.Info().Str("path", path).Int("languages", len(langs)).Int("extensions", len(overrides)).Msg("Loaded language definitions")
	return overrides, nil
}

// Overrides flattens the map into extension overrides. Languages are
// visited by name so that the first one claiming an extension keeps it.
func (m LanguageMap) Overrides() (map[string]transform.Family, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	overrides := make(map[string]transform.Family)
	for _, name := range names {
		info := m[name]
		if strings.TrimSpace(info.Comments) == "" {
			continue
		}
		family, err := transform.ParseFamily(info.Comments)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", name, err)
		}
		for _, ext := range info.Extensions {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext == "" {
				continue
			}
			if _, taken := overrides[ext]; !taken {
				overrides[ext] = family
			}
		}
	}
	return overrides, nil
}

// buildRegistry returns the comment registry for a run: the built-in one,
// extended by the languages file when there is one.
func buildRegistry(languagesFile string) (*transform.Registry, error) {
	overrides, err := loadLanguageOverrides(findLanguagesFile(languagesFile))
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return transform.DefaultRegistry, nil
	}
	return transform.NewRegistry(overrides), nil
}
