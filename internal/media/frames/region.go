package frames

import (
	"fmt"

	"placepipe/internal/media/ffprobe"
)

// Region is the pixel rectangle cropped from every sampled frame. Subtitles
// burn into the lower band of vertical social video, so the region spans the
// full width and a fixed fraction of the height.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ComputeRegion derives the crop rectangle from stream geometry and the
// configured band fractions. Fractions are applied to the frame height and
// truncated to whole pixels.
func ComputeRegion(dims ffprobe.Dimensions, yStartPercent, heightPercent float64) Region {
	return Region{
		X:      0,
		Y:      int(float64(dims.Height) * yStartPercent),
		Width:  dims.Width,
		Height: int(float64(dims.Height) * heightPercent),
	}
}

// CropFilter renders the region as an ffmpeg crop filter argument.
func (r Region) CropFilter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}
