package resource

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// ErrMissingTexture is returned when a catalog has no image for a required texture name.
var ErrMissingTexture = errors.New("resource: texture not in catalog")

// Texture names the renderer loads from its catalog.
const (
	BaseColorMap  = "BaseColorMap"
	NormalMap     = "NormalMap"
	MetallicMap   = "MetallicMap"
	RoughnessMap  = "RoughnessMap"
	AOMap         = "AOMap"
	IrradianceMap = "IrradianceMap"
	PreFilterMap  = "PreFilterMap"
	BDRFMap       = "BDRFMap"
	PointMap      = "PointMap"
)

// TextureNames lists every required texture with the format it is uploaded as.
var TextureNames = []struct {
	Name   string
	Format gpu.TextureFormat
}{
	{BaseColorMap, gpu.FormatRGBA8UnormSrgb},
	{NormalMap, gpu.FormatRGBA8Unorm},
	{MetallicMap, gpu.FormatRGBA8Unorm},
	{RoughnessMap, gpu.FormatRGBA8Unorm},
	{AOMap, gpu.FormatRGBA8Unorm},
	{IrradianceMap, gpu.FormatRGBA8UnormSrgb},
	{PreFilterMap, gpu.FormatRGBA8UnormSrgb},
	{BDRFMap, gpu.FormatRGBA8Unorm},
	{PointMap, gpu.FormatRGBA8Unorm},
}

// Catalog resolves texture names to decoded RGBA pixels.
type Catalog interface {
	// Texture decodes the image registered under name.
	//
	// Parameters:
	//   - name: the texture name
	//
	// Returns:
	//   - common.TextureStagingData: RGBA pixels
	//   - error: ErrMissingTexture if name is unknown, or the decode error
	Texture(name string) (common.TextureStagingData, error)
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".webp"}

type dirCatalog struct {
	fsys fs.FS
}

// NewDirCatalog serves textures from files named after the texture, such as
// BaseColorMap.png, at the root of fsys.
func NewDirCatalog(fsys fs.FS) Catalog {
	return &dirCatalog{fsys: fsys}
}

func (c *dirCatalog) Texture(name string) (common.TextureStagingData, error) {
	for _, ext := range imageExtensions {
		data, err := fs.ReadFile(c.fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return common.TextureStagingData{}, fmt.Errorf("read texture %s: %w", name, err)
		}
		img := common.ImportedTexture{Name: name, Data: data}
		return img.Decode()
	}
	return common.TextureStagingData{}, fmt.Errorf("%w: %s", ErrMissingTexture, name)
}

type solidCatalog struct {
	colors map[string][4]uint8
}

// NewSolidCatalog serves 1x1 textures that leave the shading neutral: white albedo,
// a flat normal, full metalness, zero roughness, no occlusion and a grey sky.
func NewSolidCatalog() Catalog {
	return &solidCatalog{colors: map[string][4]uint8{
		BaseColorMap:  {255, 255, 255, 255},
		NormalMap:     {128, 128, 255, 255},
		MetallicMap:   {255, 255, 255, 255},
		RoughnessMap:  {0, 0, 0, 255},
		AOMap:         {255, 255, 255, 255},
		IrradianceMap: {90, 100, 120, 255},
		PreFilterMap:  {90, 100, 120, 255},
		BDRFMap:       {255, 255, 255, 255},
		PointMap:      {255, 255, 255, 255},
	}}
}

func (c *solidCatalog) Texture(name string) (common.TextureStagingData, error) {
	rgba, ok := c.colors[name]
	if !ok {
		return common.TextureStagingData{}, fmt.Errorf("%w: %s", ErrMissingTexture, name)
	}
	return common.SolidTexture(rgba[0], rgba[1], rgba[2], rgba[3]), nil
}

type layeredCatalog []Catalog

// Layered returns a catalog that asks each catalog in turn and serves the first
// one that has the texture. Decode errors are not masked.
func Layered(catalogs ...Catalog) Catalog {
	return layeredCatalog(catalogs)
}

func (l layeredCatalog) Texture(name string) (common.TextureStagingData, error) {
	for _, c := range l {
		tex, err := c.Texture(name)
		if errors.Is(err, ErrMissingTexture) {
			continue
		}
		return tex, err
	}
	return common.TextureStagingData{}, fmt.Errorf("%w: %s", ErrMissingTexture, name)
}
