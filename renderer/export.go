package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Capture renders draw into an offscreen w x h texture and returns it as an
// upright image. The caller unloads the image.
func Capture(w, h int, draw func()) *rl.Image {
	target := rl.LoadRenderTexture(int32(w), int32(h))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	draw()
	rl.EndTextureMode()

	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)
	return img
}

// SavePNG writes a capture of draw to path.
func SavePNG(path string, w, h int, draw func()) error {
	img := Capture(w, h, draw)
	defer rl.UnloadImage(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting %s", path)
	}
	return nil
}
