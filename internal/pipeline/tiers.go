// Package pipeline implements the command pipeline: the single
// waypoint between tool handlers and the DAW transports, owning tier
// classification, pacing, timeouts, and idempotent retry.
package pipeline

import "time"

// Tier classifies a command type's post-send pacing.
type Tier int

const (
	TierInstant    Tier = 0
	TierLight      Tier = 1
	TierStructural Tier = 2
)

// postDelay returns the pacing applied after a command of this tier
// succeeds, serializing the next writer acquisition; no pre-delay is
// ever applied.
func (t Tier) postDelay() time.Duration {
	switch t {
	case TierLight:
		return 50 * time.Millisecond
	case TierStructural:
		return 100 * time.Millisecond
	default:
		return 0
	}
}

// tierByCommand enumerates each known command type's pacing tier.
// Unlisted command types default to TierInstant.
var tierByCommand = map[string]Tier{
	// Tier 0: pure property setters.
	"set_tempo": TierInstant, "set_track_name": TierInstant, "set_track_color": TierInstant,
	"set_track_mute": TierInstant, "set_track_solo": TierInstant, "set_track_arm": TierInstant,
	"set_track_volume": TierInstant, "set_track_pan": TierInstant, "fire_clip": TierInstant,

	// Tier 1: note/clip/automation edits, device parameter batches.
	"add_notes": TierLight, "delete_notes": TierLight, "edit_clip": TierLight,
	"add_automation_point": TierLight, "edit_warp_marker": TierLight, "set_device_parameters": TierLight,

	// Tier 2: structural create/delete/load, freeze.
	"create_midi_track": TierStructural, "create_audio_track": TierStructural,
	"delete_track": TierStructural, "create_scene": TierStructural, "delete_scene": TierStructural,
	"create_clip": TierStructural, "delete_clip": TierStructural, "create_return_track": TierStructural,
	"load_instrument_or_effect": TierStructural, "delete_device": TierStructural,
	"freeze_track": TierStructural,
}

// ClassifyTier returns the tier for a known command type, defaulting to
// TierInstant for unclassified types (pass-through commands).
func ClassifyTier(commandType string) Tier {
	if tier, ok := tierByCommand[commandType]; ok {
		return tier
	}
	return TierInstant
}

// nonIdempotent enumerates command types whose effect duplicates a visible
// entity if applied twice: creation and deletion of tracks/scenes/clips,
// device loads and deletions, and note addition.
var nonIdempotent = map[string]bool{
	"create_midi_track": true, "create_audio_track": true, "create_return_track": true,
	"delete_track": true, "create_scene": true, "delete_scene": true,
	"create_clip": true, "delete_clip": true, "add_notes": true,
	"load_instrument_or_effect": true, "delete_device": true,
}

// IsIdempotent reports whether commandType may be safely retried once
// after a connection-level failure.
func IsIdempotent(commandType string) bool {
	return !nonIdempotent[commandType]
}

// knownSlowOverrides enumerates the closed set of commands whose timeout
// is overridden beyond the default: catalog loads, freeze, audio-to-MIDI,
// browser path traversal.
var knownSlowOverrides = map[string]time.Duration{
	"populate_catalog":    60 * time.Second,
	"refresh_catalog":     60 * time.Second,
	"freeze_track":        30 * time.Second,
	"audio_to_midi":       45 * time.Second,
	"browse_catalog_path": 20 * time.Second,
}

const (
	defaultReadTimeout      = 10 * time.Second
	defaultModifyingTimeout = 15 * time.Second
)

// DefaultTimeout returns the default timeout for a command, honoring the
// closed set of slow-command overrides. An explicit
// caller-supplied timeout always takes precedence over this.
func DefaultTimeout(commandType string, isModifying bool) time.Duration {
	if override, ok := knownSlowOverrides[commandType]; ok {
		return override
	}
	if isModifying {
		return defaultModifyingTimeout
	}
	return defaultReadTimeout
}
