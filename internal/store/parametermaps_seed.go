package store

// DefaultParameterMaps seeds the read-only parameter-map store with the
// friendly-name mappings for the DAW's built-in devices most commonly
// driven by an agent. Device-specific maps beyond this built-in set are
// expected to arrive from the DAW's own catalog metadata in a later
// iteration; this seed covers a few widely used instruments and utility
// devices.
func DefaultParameterMaps() []ParameterMap {
	return []ParameterMap{
		{
			ID:         "wavetable",
			DeviceKind: "Wavetable",
			Mappings: []ParameterMapping{
				{OriginalName: "Osc1Wave", FriendlyName: "Oscillator 1 Wave", Category: "oscillator"},
				{OriginalName: "Osc2Wave", FriendlyName: "Oscillator 2 Wave", Category: "oscillator"},
				{OriginalName: "FilterFreq", FriendlyName: "Filter Frequency", Category: "filter"},
				{OriginalName: "FilterReso", FriendlyName: "Filter Resonance", Category: "filter"},
				{OriginalName: "AmpAttack", FriendlyName: "Amp Attack", Category: "envelope"},
				{OriginalName: "AmpRelease", FriendlyName: "Amp Release", Category: "envelope"},
			},
		},
		{
			ID:         "operator",
			DeviceKind: "Operator",
			Mappings: []ParameterMapping{
				{OriginalName: "OscA_Level", FriendlyName: "Oscillator A Level", Category: "oscillator"},
				{OriginalName: "OscB_Level", FriendlyName: "Oscillator B Level", Category: "oscillator"},
				{OriginalName: "FilterType", FriendlyName: "Filter Type", Category: "filter"},
			},
		},
		{
			ID:         "eq-eight",
			DeviceKind: "EQ Eight",
			Mappings: []ParameterMapping{
				{OriginalName: "Band1Freq", FriendlyName: "Band 1 Frequency", Category: "eq"},
				{OriginalName: "Band1Gain", FriendlyName: "Band 1 Gain", Category: "eq"},
				{OriginalName: "Band1Q", FriendlyName: "Band 1 Q", Category: "eq"},
			},
		},
	}
}
