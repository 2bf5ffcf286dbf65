package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"sigs.k8s.io/yaml"

	"github.com/tbxark/hrbot/types"
)

// Load builds the process-wide table: the built-in strings, optionally
// overlaid with an RFC 7386 merge patch read from path (JSON or YAML).
// Arrays in the patch replace the built-in arrays wholesale.
func Load(path string, fallback types.Lang) (*Table, error) {
	table := Default()
	if path != "" {
		patch, err := readPatch(path)
		if err != nil {
			return nil, err
		}
		table, err = ApplyMergePatch(table, patch)
		if err != nil {
			return nil, fmt.Errorf("apply locale overrides %s: %w", path, err)
		}
	}
	if fallback != "" {
		table.Fallback = fallback
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid locale table: %w", err)
	}
	return table, nil
}

func ApplyMergePatch(table *Table, patch []byte) (*Table, error) {
	base, err := sonic.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal locale table: %w", err)
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge patch: %w", err)
	}
	var out Table
	if err := sonic.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("patched table does not decode: %w", err)
	}
	return &out, nil
}

func readPatch(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale overrides: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		converted, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("convert locale overrides %s to json: %w", path, err)
		}
		return converted, nil
	default:
		return raw, nil
	}
}
