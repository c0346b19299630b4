package model

import "strings"

// Source records where a game listing came from. Values are ordered: everything below
// SourceManual is catalog provenance and is subject to the profile ignore list.
type Source int

// Listing source constants.
const (
	SourceUnknown Source = iota
	SourceSteamConfig
	SourceWebCommunity
	SourcePackageFree
	SourcePackageNormal
	SourceManual
)

var sourceNames = map[Source]string{
	SourceUnknown:       "Unknown",
	SourceSteamConfig:   "SteamConfig",
	SourceWebCommunity:  "WebCommunity",
	SourcePackageFree:   "PackageFree",
	SourcePackageNormal: "PackageNormal",
	SourceManual:        "Manual",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return sourceNames[SourceUnknown]
}

// IsCatalog reports whether the listing came from the store catalog rather than a local add.
func (s Source) IsCatalog() bool {
	return s < SourceManual
}

// ParseSource maps a persisted source name back to a Source. Unknown names map to
// SourceUnknown; "Steam" is accepted as shorthand for SourceSteamConfig.
func ParseSource(name string) Source {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "Steam") {
		return SourceSteamConfig
	}
	for src, n := range sourceNames {
		if strings.EqualFold(n, name) {
			return src
		}
	}
	return SourceUnknown
}
