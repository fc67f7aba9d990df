package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalogs is the blueprint repository. A zero Catalogs is "not loaded" and
// every lookup on it returns ErrNotLoaded.
type Catalogs struct {
	loaded bool

	Structures StructureCatalog
	Strains    StrainCatalog
	Devices    DeviceCatalog
	Methods    MethodCatalog
	Prices     PriceCatalog
	Tasks      TaskCatalog
}

type StructureCatalog struct {
	ByID   map[string]StructureBlueprint
	Digest string
}

type StrainCatalog struct {
	ByID   map[string]StrainBlueprint
	Digest string
}

type DeviceCatalog struct {
	ByID   map[string]DeviceBlueprint
	Digest string
}

type MethodCatalog struct {
	ByID   map[string]CultivationMethod
	Digest string
}

type PriceCatalog struct {
	Prices
	Digest string
}

type TaskCatalog struct {
	ByType map[string]TaskDefinition
	Digest string
}

func Load(configDir string) (*Catalogs, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	var c Catalogs

	if err := loadStructures(v, filepath.Join(configDir, "structures.json"), &c.Structures); err != nil {
		return nil, err
	}
	if err := loadStrains(v, filepath.Join(configDir, "strains"), &c.Strains); err != nil {
		return nil, err
	}
	if err := loadDevices(v, filepath.Join(configDir, "devices"), &c.Devices); err != nil {
		return nil, err
	}
	if err := loadMethods(v, filepath.Join(configDir, "cultivation_methods.json"), &c.Methods); err != nil {
		return nil, err
	}
	if err := loadPrices(v, filepath.Join(configDir, "prices.json"), &c.Prices); err != nil {
		return nil, err
	}
	if err := loadTasks(v, filepath.Join(configDir, "task_definitions.json"), &c.Tasks); err != nil {
		return nil, err
	}

	c.loaded = true
	return &c, nil
}

func (c *Catalogs) Loaded() bool { return c != nil && c.loaded }

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadStructures(v *validator, path string, out *StructureCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := v.validate(schemaStructures, raw); err != nil {
		return fmt.Errorf("structures.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []StructureBlueprint
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("structures.json: %w", err)
	}
	out.ByID = map[string]StructureBlueprint{}
	for _, d := range defs {
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("structures.json: duplicate id %s", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadStrains(v *validator, dir string, out *StrainCatalog) error {
	out.ByID = map[string]StrainBlueprint{}
	digest, err := eachJSONFile(dir, func(name string, b []byte) error {
		if err := v.validate(schemaStrain, b); err != nil {
			return fmt.Errorf("strain %s: %w", name, err)
		}
		var s StrainBlueprint
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("strain %s: %w", name, err)
		}
		out.ByID[s.ID] = s
		return nil
	})
	if err != nil {
		return err
	}
	out.Digest = digest
	return nil
}

func loadDevices(v *validator, dir string, out *DeviceCatalog) error {
	out.ByID = map[string]DeviceBlueprint{}
	digest, err := eachJSONFile(dir, func(name string, b []byte) error {
		if err := v.validate(schemaDevice, b); err != nil {
			return fmt.Errorf("device %s: %w", name, err)
		}
		var d DeviceBlueprint
		if err := json.Unmarshal(b, &d); err != nil {
			return fmt.Errorf("device %s: %w", name, err)
		}
		if !d.Kind.Valid() {
			return fmt.Errorf("device %s: unknown kind %q", name, d.Kind)
		}
		out.ByID[d.ID] = d
		return nil
	})
	if err != nil {
		return err
	}
	out.Digest = digest
	return nil
}

func loadMethods(v *validator, path string, out *MethodCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := v.validate(schemaMethods, raw); err != nil {
		return fmt.Errorf("cultivation_methods.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []CultivationMethod
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("cultivation_methods.json: %w", err)
	}
	out.ByID = map[string]CultivationMethod{}
	for _, d := range defs {
		out.ByID[d.ID] = d
	}
	return nil
}

func loadPrices(v *validator, path string, out *PriceCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := v.validate(schemaPrices, raw); err != nil {
		return fmt.Errorf("prices.json: %w", err)
	}
	out.Digest = sha256Hex(raw)
	if err := json.Unmarshal(raw, &out.Prices); err != nil {
		return fmt.Errorf("prices.json: %w", err)
	}
	if out.Devices == nil {
		out.Devices = map[string]DevicePrice{}
	}
	if out.Strains == nil {
		out.Strains = map[string]StrainPrice{}
	}
	return nil
}

func loadTasks(v *validator, path string, out *TaskCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := v.validate(schemaTasks, raw); err != nil {
		return fmt.Errorf("task_definitions.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []TaskDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("task_definitions.json: %w", err)
	}
	out.ByType = map[string]TaskDefinition{}
	for _, d := range defs {
		out.ByType[d.Type] = d
	}
	return nil
}

// eachJSONFile visits *.json files of dir in name order and returns the
// digest of their concatenation.
func eachJSONFile(dir string, fn func(name string, b []byte) error) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var concat bytes.Buffer
	for _, p := range files {
		b, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		concat.Write(b)
		concat.WriteByte('\n')
		if err := fn(filepath.Base(p), b); err != nil {
			return "", err
		}
	}
	return sha256Hex(concat.Bytes()), nil
}
