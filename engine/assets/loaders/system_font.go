package loaders

import "github.com/vizcore/dvz/engine/assets/assettype"

// SystemFontLoader is a placeholder for loading system (non-bitmap) font
// descriptors. No panel or visual in the catalogue currently renders
// system fonts; bitmap fonts (BitmapFontLoader) cover the text visual.
type SystemFontLoader struct{}

func (fl *SystemFontLoader) Load(path string, assetType assettype.ResourceType, params interface{}) (*assettype.Resource, error) {
	return nil, nil
}

func (fl *SystemFontLoader) Unload(*assettype.Resource) error {
	return nil
}
