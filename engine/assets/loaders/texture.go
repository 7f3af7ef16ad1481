package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/vizcore/dvz/engine/assets/assettype"
)

// ImageLoader decodes a texture from disk into an image.Image. Format
// support comes from the blank-imported decoders registered above. The
// loader only decodes; it does not upload the image to the GPU.
type ImageLoader struct{}

func (tl *ImageLoader) Load(path string, assetType assettype.ResourceType, params interface{}) (*assettype.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	return &assettype.Resource{
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data:     img,
	}, nil
}

func (tl *ImageLoader) Unload(*assettype.Resource) error {
	return nil
}
