package catalog

import (
	"strings"
	"testing"
	"time"

	"block-party/server/powerup"
)

func TestResolveOverlaysDefaults(t *testing.T) {
	t.Parallel()

	overlay := memorySource{name: "overlay.json", data: []byte(`[
		{"type": "balloon", "durationMs": 4000, "dropWeight": 5},
		{"type": "fireball", "color": "#123456"}
	]`)}

	defs, err := resolve(overlay)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	balloon := defs[powerup.TypeBalloon]
	if balloon.Duration != 4*time.Second {
		t.Fatalf("expected overlaid duration 4s, got %s", balloon.Duration)
	}
	if balloon.DropWeight != 5 {
		t.Fatalf("expected overlaid weight 5, got %f", balloon.DropWeight)
	}

	fireball := defs[powerup.TypeFireball]
	if fireball.Color != "#123456" {
		t.Fatalf("expected overlaid color, got %q", fireball.Color)
	}
	if fireball.Duration != powerup.DefaultDefinitions()[powerup.TypeFireball].Duration {
		t.Fatalf("untouched fields must keep defaults")
	}

	// Types absent from the overlay keep their compiled-in definition.
	if defs[powerup.TypeCake] != powerup.DefaultDefinitions()[powerup.TypeCake] {
		t.Fatalf("cake definition should be untouched")
	}
}

func TestResolveLaterSourcesOverrideEarlier(t *testing.T) {
	t.Parallel()

	base := memorySource{name: "base.json", data: []byte(`[{"type": "cake", "durationMs": 5000}]`)}
	local := memorySource{name: "local.json", data: []byte(`[{"type": "cake", "durationMs": 1000}]`)}

	defs, err := resolve(base, local)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if defs[powerup.TypeCake].Duration != time.Second {
		t.Fatalf("expected local overlay to win, got %s", defs[powerup.TypeCake].Duration)
	}
}

func TestResolveRejectsBadEntries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
		want string
	}{
		{"unknown type", `[{"type": "laser-show"}]`, "unknown power-up type"},
		{"missing type", `[{"color": "#fff"}]`, "missing type"},
		{"duplicate type", `[{"type": "cake"}, {"type": "cake"}]`, "duplicate type"},
		{"negative weight", `[{"type": "cake", "dropWeight": -1}]`, "negative dropWeight"},
		{"negative duration", `[{"type": "cake", "durationMs": -5}]`, "negative durationMs"},
		{"malformed json", `{`, "failed parsing"},
	}

	for _, tc := range cases {
		_, err := resolve(memorySource{name: tc.name, data: []byte(tc.data)})
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestResolveSkipsMissingFiles(t *testing.T) {
	t.Parallel()

	defs, err := Load("testdata/does-not-exist.json")
	if err != nil {
		t.Fatalf("missing files must be skipped: %v", err)
	}
	if len(defs) != len(powerup.AllTypes()) {
		t.Fatalf("expected full default table, got %d entries", len(defs))
	}
}

func TestResolveZeroWeightRemovesFromPool(t *testing.T) {
	t.Parallel()

	overlay := memorySource{name: "overlay.json", data: []byte(`[{"type": "disco", "dropWeight": 0}]`)}
	defs, err := resolve(overlay)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if defs[powerup.TypeDisco].DropWeight != 0 {
		t.Fatalf("expected disco weight 0, got %f", defs[powerup.TypeDisco].DropWeight)
	}
}
