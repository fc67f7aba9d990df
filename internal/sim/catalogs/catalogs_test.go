package catalogs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Configs(t *testing.T) {
	cats, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cats.Loaded() {
		t.Fatalf("expected loaded catalogs")
	}
	s, err := cats.Strain("ak47")
	if err != nil {
		t.Fatalf("strain: %v", err)
	}
	if s.Photoperiod.VegetationDays != 21 || s.Photoperiod.FloweringDays != 56 {
		t.Fatalf("photoperiod=%+v", s.Photoperiod)
	}
	d, err := cats.Device("cool_air_split")
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	if d.Kind != KindClimateUnit || d.Capabilities.AirflowM3H != 350 {
		t.Fatalf("device=%+v", d)
	}
	if _, err := cats.Task("harvest_plants"); err != nil {
		t.Fatalf("task: %v", err)
	}
	if cats.Strains.Digest == "" || cats.Devices.Digest == "" || cats.Prices.Digest == "" {
		t.Fatalf("expected digests")
	}
}

func TestLookupBeforeLoad(t *testing.T) {
	var c Catalogs
	if _, err := c.Strain("ak47"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("err=%v want ErrNotLoaded", err)
	}
	var nilCats *Catalogs
	if _, err := nilCats.Device("x"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("err=%v want ErrNotLoaded", err)
	}
}

func TestUnknownIDSuggestsClosest(t *testing.T) {
	cats, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = cats.Strain("white_widdow")
	var ue *UnknownError
	if !errors.As(err, &ue) {
		t.Fatalf("err=%v want UnknownError", err)
	}
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown in chain")
	}
	if ue.Suggestion != "white_widow" {
		t.Fatalf("suggestion=%q want white_widow", ue.Suggestion)
	}
	_, err = cats.Strain("completely_different_name")
	if !errors.As(err, &ue) || ue.Suggestion != "" {
		t.Fatalf("expected no suggestion, got %v", err)
	}
}

func TestStrainPriceFallsBackToDefault(t *testing.T) {
	cats, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := cats.StrainPrice("bred_custom")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if p != cats.Prices.DefaultStrain {
		t.Fatalf("price=%+v want default %+v", p, cats.Prices.DefaultStrain)
	}
}

func TestLoad_RejectsDeviceMissingCapability(t *testing.T) {
	dir := t.TempDir()
	copyDir(t, "../../../configs", dir)
	bad := `{"id":"bad_lamp","kind":"Lamp","name":"Bad","capabilities":{"power_kw":0.1}}`
	if err := os.WriteFile(filepath.Join(dir, "devices", "bad_lamp.json"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected schema error for lamp without coverage")
	}
}

func copyDir(t *testing.T, src, dst string) {
	t.Helper()
	err := filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, p)
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644)
	})
	if err != nil {
		t.Fatalf("copy configs: %v", err)
	}
}
