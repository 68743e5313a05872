package reconcile_test

import (
	"testing"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarworks/fleetsync/pkg/reconcile"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

func payload(provider vehicles.ProviderID, fields map[string]any) *vehicles.RawPayload {
	return &vehicles.RawPayload{
		Provider:  provider,
		Slug:      "freelancer",
		Name:      "Freelancer",
		Fields:    fields,
		SourceURL: "https://" + string(provider) + ".example/freelancer",
		FetchedAt: utc.Now(),
	}
}

func TestHashIgnoresKeyOrderAndMedia(t *testing.T) {
	h1, err := reconcile.Hash(map[string]any{
		"manufacturer": "MISC",
		"role":         "medium freight",
		"crew":         map[string]any{"min": 1, "max": 4},
	})
	require.NoError(t, err)

	// Same fields assembled in a different order hash identically; media
	// URLs never enter the hash input, so media churn cannot change it.
	h2, err := reconcile.Hash(map[string]any{
		"crew":         map[string]any{"max": 4, "min": 1},
		"role":         "medium freight",
		"manufacturer": "MISC",
	})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := reconcile.Hash(map[string]any{"manufacturer": "Drake"})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestMergeCreatesNewVehicle(t *testing.T) {
	engine := reconcile.New()

	payloads := map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: payload(vehicles.ProviderShipyard, map[string]any{
			"manufacturer": "MISC",
			"role":         "medium freight",
		}),
	}

	decision, err := engine.Merge("freelancer", payloads, nil, nil)
	require.NoError(t, err)

	assert.True(t, decision.Write)
	assert.True(t, decision.Created)
	assert.True(t, decision.DataChanged)
	require.NotNil(t, decision.Vehicle)
	assert.Equal(t, "freelancer", decision.Vehicle.Slug)
	assert.Equal(t, "MISC", decision.Vehicle.Fields["manufacturer"])
	assert.NotEmpty(t, decision.Vehicle.ContentHash)
}

func TestMergeIdempotentSecondRun(t *testing.T) {
	engine := reconcile.New()

	payloads := map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: payload(vehicles.ProviderShipyard, map[string]any{
			"manufacturer": "MISC",
		}),
	}

	first, err := engine.Merge("freelancer", payloads, nil, nil)
	require.NoError(t, err)
	require.True(t, first.Write)

	// Re-running with identical provider responses reports no changes.
	second, err := engine.Merge("freelancer", payloads, first.Vehicle, nil)
	require.NoError(t, err)
	assert.False(t, second.Write)
	assert.False(t, second.DataChanged)
	assert.Same(t, first.Vehicle, second.Vehicle)
}

func TestMergeRenameAloneTriggersWrite(t *testing.T) {
	engine := reconcile.New()

	payloads := map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: payload(vehicles.ProviderShipyard, map[string]any{
			"manufacturer": "MISC",
		}),
	}

	first, err := engine.Merge("freelancer", payloads, nil, nil)
	require.NoError(t, err)
	require.True(t, first.Write)

	// Same merged fields and media, but the storefront renamed the vehicle.
	renamed := payload(vehicles.ProviderShipyard, map[string]any{
		"manufacturer": "MISC",
	})
	renamed.Name = "Freelancer MAX"

	second, err := engine.Merge("freelancer", map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: renamed,
	}, first.Vehicle, nil)
	require.NoError(t, err)

	assert.True(t, second.Write)
	assert.True(t, second.DataChanged)
	assert.Equal(t, "Freelancer MAX", second.Vehicle.Name)
}

func TestMergePreservesStoredMedia(t *testing.T) {
	engine := reconcile.New()

	withImage := payload(vehicles.ProviderShipyard, map[string]any{"manufacturer": "MISC"})
	withImage.ImageURL = "https://cdn.example/freelancer-store.jpg"

	first, err := engine.Merge("freelancer", map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: withImage,
	}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/freelancer-store.jpg", first.Vehicle.ImageURL)

	// Fresh fetch omits the image but changes a field; the stored image
	// must survive the write.
	noImage := payload(vehicles.ProviderShipyard, map[string]any{"manufacturer": "Musashi Industrial"})

	second, err := engine.Merge("freelancer", map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: noImage,
	}, first.Vehicle, nil)
	require.NoError(t, err)
	require.True(t, second.Write)
	assert.Equal(t, "https://cdn.example/freelancer-store.jpg", second.Vehicle.ImageURL)
	assert.False(t, second.ImageChanged)
}

func TestMergeImageChangeAloneTriggersWrite(t *testing.T) {
	engine := reconcile.New()

	p1 := payload(vehicles.ProviderShipyard, map[string]any{"manufacturer": "MISC"})
	p1.ImageURL = "https://cdn.example/v1.jpg"

	first, err := engine.Merge("freelancer", map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: p1,
	}, nil, nil)
	require.NoError(t, err)

	p2 := payload(vehicles.ProviderShipyard, map[string]any{"manufacturer": "MISC"})
	p2.ImageURL = "https://cdn.example/v2.jpg"

	second, err := engine.Merge("freelancer", map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: p2,
	}, first.Vehicle, nil)
	require.NoError(t, err)

	assert.True(t, second.Write)
	assert.False(t, second.DataChanged)
	assert.True(t, second.ImageChanged)
	assert.Equal(t, "https://cdn.example/v2.jpg", second.Vehicle.ImageURL)
}

func TestMergePrecedenceSplitsFields(t *testing.T) {
	engine := reconcile.New()

	payloads := map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: payload(vehicles.ProviderShipyard, map[string]any{
			"manufacturer": "MISC",
			"armament":     map[string]any{"turrets": 1},
		}),
		vehicles.ProviderGamedata: payload(vehicles.ProviderGamedata, map[string]any{
			"manufacturer": "Musashi Industrial & Starflight Concern",
			"armament":     map[string]any{"turrets": 2, "missiles": 8},
		}),
	}

	decision, err := engine.Merge("freelancer", payloads, nil, nil)
	require.NoError(t, err)

	// Armament comes from the game-data dump, general fields from the
	// storefront catalog.
	assert.Equal(t, "MISC", decision.Vehicle.Fields["manufacturer"])
	assert.Equal(t, map[string]any{"turrets": 2, "missiles": 8}, decision.Vehicle.Fields["armament"])
	assert.ElementsMatch(t,
		[]vehicles.ProviderID{vehicles.ProviderShipyard, vehicles.ProviderGamedata},
		decision.Vehicle.Provenance.Providers)
}

func TestMergeHonorsSourcePreference(t *testing.T) {
	engine := reconcile.New()

	payloads := map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: payload(vehicles.ProviderShipyard, map[string]any{
			"manufacturer": "MISC",
			"role":         "medium freight",
		}),
		vehicles.ProviderGamedata: payload(vehicles.ProviderGamedata, map[string]any{
			"manufacturer": "Musashi Industrial & Starflight Concern",
		}),
	}

	pref := &vehicles.SourcePreference{Slug: "freelancer", Preferred: vehicles.ProviderGamedata}

	decision, err := engine.Merge("freelancer", payloads, nil, pref)
	require.NoError(t, err)

	// The preferred provider's payload is used verbatim: no role field,
	// gamedata's manufacturer string.
	assert.Equal(t, "Musashi Industrial & Starflight Concern", decision.Vehicle.Fields["manufacturer"])
	_, hasRole := decision.Vehicle.Fields["role"]
	assert.False(t, hasRole)
	assert.Equal(t, []vehicles.ProviderID{vehicles.ProviderGamedata}, decision.Vehicle.Provenance.Providers)
}

func TestMergePreferenceFallsBackToStoredRaw(t *testing.T) {
	engine := reconcile.New()

	stored := &vehicles.Vehicle{
		Slug:        "freelancer",
		Name:        "Freelancer",
		Fields:      map[string]any{"manufacturer": "MISC"},
		ContentHash: "stale",
		Raw: map[vehicles.ProviderID]*vehicles.RawPayload{
			vehicles.ProviderGamedata: payload(vehicles.ProviderGamedata, map[string]any{
				"manufacturer": "Musashi Industrial & Starflight Concern",
			}),
		},
	}

	pref := &vehicles.SourcePreference{Slug: "freelancer", Preferred: vehicles.ProviderGamedata}

	// No fresh gamedata payload; the previously stored raw payload serves.
	decision, err := engine.Merge("freelancer", nil, stored, pref)
	require.NoError(t, err)
	assert.True(t, decision.Write)
	assert.Equal(t, "Musashi Industrial & Starflight Concern", decision.Vehicle.Fields["manufacturer"])
}

func TestMergeAutoPreferenceUsesDefaultOrder(t *testing.T) {
	engine := reconcile.New()

	payloads := map[vehicles.ProviderID]*vehicles.RawPayload{
		vehicles.ProviderShipyard: payload(vehicles.ProviderShipyard, map[string]any{"manufacturer": "MISC"}),
		vehicles.ProviderGamedata: payload(vehicles.ProviderGamedata, map[string]any{"manufacturer": "other"}),
	}

	pref := &vehicles.SourcePreference{Slug: "freelancer", Preferred: vehicles.PreferredAuto}

	decision, err := engine.Merge("freelancer", payloads, nil, pref)
	require.NoError(t, err)
	assert.Equal(t, "MISC", decision.Vehicle.Fields["manufacturer"])
}

func TestPrecedenceOrderMatching(t *testing.T) {
	cfg := reconcile.DefaultPrecedence()

	assert.Equal(t, vehicles.ProviderGamedata, cfg.Order("armament")[0])
	assert.Equal(t, vehicles.ProviderGamedata, cfg.Order("armament.turrets")[0])
	assert.Equal(t, vehicles.ProviderGamedata, cfg.Order("systems.power_plants")[0])
	assert.Equal(t, vehicles.ProviderShipyard, cfg.Order("manufacturer")[0])
}
