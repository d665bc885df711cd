package domain

import "math"

// ImageParams are the resize/encode parameters requested from the object
// store for one image encoding.
type ImageParams struct {
	Width   int    `json:"width"`
	Quality int    `json:"quality"`
	Format  string `json:"format"`
}

// qualityProfile holds the per-tier request parameters.
type qualityProfile struct {
	widthMultiplier float64
	encodeQuality   int
	format          string
}

var qualityProfiles = map[QualityTier]qualityProfile{
	QualityPremium:  {widthMultiplier: 2.0, encodeQuality: 85, format: "webp"},
	QualityStandard: {widthMultiplier: 1.5, encodeQuality: 75, format: "webp"},
	QualityBasic:    {widthMultiplier: 1.0, encodeQuality: 60, format: "jpeg"},
	QualityMinimal:  {widthMultiplier: 0.5, encodeQuality: 40, format: "jpeg"},
}

// SaveDataMaxQuality caps the encode quality whenever the user requested
// data saving, regardless of tier.
const SaveDataMaxQuality = 50

// OptimalImageParams computes the request parameters for a display width
// under the given quality tier. Pure function of its inputs.
func OptimalImageParams(quality QualityTier, saveData bool, baseWidth int) ImageParams {
	profile, ok := qualityProfiles[quality]
	if !ok {
		profile = qualityProfiles[QualityBasic]
	}

	encodeQuality := profile.encodeQuality
	if saveData && encodeQuality > SaveDataMaxQuality {
		encodeQuality = SaveDataMaxQuality
	}

	return ImageParams{
		Width:   int(math.Round(float64(baseWidth) * profile.widthMultiplier)),
		Quality: encodeQuality,
		Format:  profile.format,
	}
}
