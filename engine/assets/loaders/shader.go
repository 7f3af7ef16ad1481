package loaders

import (
	"fmt"
	"os"

	"github.com/vizcore/dvz/engine/assets/assettype"
)

// ShaderLoader reads a compiled SPIR-V module from disk and decodes it
// into the uint32 words vk.CreateShaderModule expects. The graphics
// catalogue's pipelines are fixed builtins keyed by name, so unlike the
// dynamic shader-config system this replaces, there is no per-shader
// attribute/uniform TOML to parse here - that layout lives in the
// catalogue itself.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType assettype.ResourceType, params interface{}) (*assettype.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("spir-v module %s is not a multiple of 4 bytes", path)
	}

	code := bytesToBytecode(buf)

	return &assettype.Resource{
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     code,
	}, nil
}

func (sl *ShaderLoader) Unload(*assettype.Resource) error {
	return nil
}
