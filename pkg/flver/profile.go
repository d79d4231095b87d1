package flver

// versionProfile captures the per-version layout rules that vary
// between games sharing the FLVER container. Decoders consume the
// profile uniformly instead of branching on the raw version number.
// Every supported version shares the record layout, so the UV divisor
// is the only knob so far; layout differences in a future version
// would land here as additional fields.
type versionProfile struct {
	Version uint32
	Game    string

	// UVDivisor is the fixed-point divisor for 16-bit UV channels.
	UVDivisor float32
}

// profiles is ordered by version. Minor game-specific revisions that
// share a layout map to the same entry via closestProfile.
var profiles = []versionProfile{
	{Version: 0x2000C, Game: "Dark Souls", UVDivisor: 1024},
	{Version: 0x2000D, Game: "Dark Souls (later assets)", UVDivisor: 1024},
	{Version: 0x20010, Game: "Dark Souls II", UVDivisor: 2048},
	{Version: 0x20013, Game: "Bloodborne", UVDivisor: 2048},
	{Version: 0x20014, Game: "Dark Souls III", UVDivisor: 2048},
	{Version: 0x20016, Game: "Sekiro", UVDivisor: 2048},
	{Version: 0x2001A, Game: "Elden Ring", UVDivisor: 2048},
}

// lookupProfile returns the exact profile for a version, if known.
func lookupProfile(version uint32) (versionProfile, bool) {
	for _, p := range profiles {
		if p.Version == version {
			return p, true
		}
	}
	return versionProfile{}, false
}

// closestProfile returns the known profile nearest to the given
// version. Unknown minor revisions almost always share the layout of
// their neighbors, so decoding proceeds best-effort with this profile
// rather than aborting.
func closestProfile(version uint32) versionProfile {
	best := profiles[0]
	bestDist := distance(version, best.Version)
	for _, p := range profiles[1:] {
		if d := distance(version, p.Version); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func distance(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
