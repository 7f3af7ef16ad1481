package resources

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/vulkan"
)

// TexDims distinguishes a Tex's dimensionality; 1D/2D/3D share the same
// API per spec.md §3.
type TexDims int

const (
	Tex1D TexDims = iota
	Tex2D
	Tex3D
)

// Tex is a Vulkan image+view+sampler triple. Format, extent, tiling and
// layout are fixed at creation; contents change only via Manager's
// Upload/Download/Copy, which own every layout transition so callers
// never track layouts themselves (spec.md §4.2).
type Tex struct {
	ID   core.ID
	Dims TexDims

	Width, Height, Depth uint32
	Format               vk.Format

	image   *vulkan.VulkanImage
	sampler vk.Sampler
}

// CreateTex allocates a new texture of the given dimensions and format.
// Depth is ignored (treated as 1) for Tex1D/Tex2D.
func (m *Manager) CreateTex(context *vulkan.VulkanContext, dims TexDims, width, height, depth uint32, format vk.Format, usage vk.ImageUsageFlags) (containers.Handle, error) {
	if dims != Tex3D {
		depth = 1
	}

	imageType := vk.ImageType2d
	if dims == Tex1D {
		imageType = vk.ImageType1d
	} else if dims == Tex3D {
		imageType = vk.ImageType3d
	}

	img, err := vulkan.ImageCreate(context, imageType, width, height, format,
		vk.ImageTilingOptimal, usage, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return containers.Handle{}, fmt.Errorf("resources: create tex: %w", err)
	}

	tex := &Tex{
		ID:     core.NewID(),
		Dims:   dims,
		Width:  width,
		Height: height,
		Depth:  depth,
		Format: format,
		image:  img,
	}

	return m.texs.Add(tex), nil
}

func (m *Manager) Tex(h containers.Handle) (*Tex, error) {
	return m.texs.Get(h)
}

// DestroyTex frees h's underlying image; see DestroyDat for the
// in-flight-fence caveat.
func (m *Manager) DestroyTex(context *vulkan.VulkanContext, h containers.Handle) error {
	tex, err := m.texs.Get(h)
	if err != nil {
		return err
	}
	tex.image.ImageDestroy(context)
	return m.texs.Remove(h)
}

// ImageHandle exposes the raw vk.Image for the transfer engine's
// upload/download/copy jobs, which perform the layout transitions
// themselves.
func (t *Tex) ImageHandle() vk.Image {
	return t.image.Handle
}
