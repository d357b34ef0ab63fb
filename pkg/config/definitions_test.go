package config

import (
	"os"
	"path/filepath"
	"testing"

	"StressWatch/internal/domain/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefinitionsSkipsOnlyInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	inds := writeFile(t, dir, "indicators.yaml", `
indicators:
  - code: HY_OAS
    name: High Yield OAS
    direction: 1
    window_size: 252
  - code: BAD_DIRECTION
    direction: 3
  - code: BAD_THRESHOLDS
    direction: 1
    green_max: 70
    yellow_max: 60
  - code: VIX
    direction: 1
    green_max: 25
    yellow_max: 55
`)
	comps := writeFile(t, dir, "composites.yaml", `
composites:
  - code: BOND_MARKET
    components:
      - sub_metric: HY_OAS
        weight: 0.6
      - sub_metric: VIX
        weight: 0.4
  - code: BROKEN_WEIGHTS
    components:
      - sub_metric: HY_OAS
        weight: 0.5
      - sub_metric: VIX
        weight: 0.4
`)

	set, err := LoadDefinitions(inds, comps)
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if len(set.Indicators) != 2 {
		t.Fatalf("indicators = %d, want 2 surviving", len(set.Indicators))
	}
	if len(set.Composites) != 1 {
		t.Fatalf("composites = %d, want 1 surviving", len(set.Composites))
	}
	if len(set.Rejected) != 3 {
		t.Fatalf("rejected = %d (%v), want 3", len(set.Rejected), set.Rejected)
	}
}

func TestLoadDefinitionsAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	inds := writeFile(t, dir, "indicators.yaml", `
indicators:
  - code: TED
    direction: 1
`)
	set, err := LoadDefinitions(inds, "")
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if len(set.Indicators) != 1 || len(set.Rejected) != 0 {
		t.Fatalf("got %d indicators, %d rejected", len(set.Indicators), len(set.Rejected))
	}
	d := set.Indicators[0]
	if d.WindowSize != 252 || d.GreenMax != 30 || d.YellowMax != 60 || d.Transform != models.TransformIdentity {
		t.Fatalf("defaults not applied: %+v", d)
	}
}

func TestLoadDefinitionsRejectsDuplicateCodes(t *testing.T) {
	dir := t.TempDir()
	inds := writeFile(t, dir, "indicators.yaml", `
indicators:
  - code: VIX
    direction: 1
  - code: VIX
    direction: -1
`)
	set, err := LoadDefinitions(inds, "")
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if len(set.Indicators) != 1 || len(set.Rejected) != 1 {
		t.Fatalf("got %d indicators, %d rejected, want 1/1", len(set.Indicators), len(set.Rejected))
	}
}

func TestLoadDefinitionsMissingFile(t *testing.T) {
	if _, err := LoadDefinitions("/nonexistent/indicators.yaml", ""); err == nil {
		t.Fatal("missing file accepted")
	}
}
