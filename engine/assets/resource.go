package assets

import "github.com/vizcore/dvz/engine/assets/assettype"

// ResourceType, Resource and Loader are aliased from assettype so that
// both this package and the per-extension loaders package can refer to
// the same types without an import cycle between them.
type ResourceType = assettype.ResourceType
type Resource = assettype.Resource
type Loader = assettype.Loader

const (
	ResourceTypeNone       = assettype.ResourceTypeNone
	ResourceTypeBinary     = assettype.ResourceTypeBinary
	ResourceTypeShader     = assettype.ResourceTypeShader
	ResourceTypeImage      = assettype.ResourceTypeImage
	ResourceTypeBitmapFont = assettype.ResourceTypeBitmapFont
	ResourceTypeSystemFont = assettype.ResourceTypeSystemFont
)
