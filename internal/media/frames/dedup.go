package frames

import (
	"bytes"
	"image/png"

	"github.com/corona10/goimagehash"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// splitPNGStream cuts a concatenated image2pipe stream into individual PNG
// documents by scanning for the PNG signature.
func splitPNGStream(stream []byte) [][]byte {
	var images [][]byte
	start := -1
	offset := 0
	for {
		idx := bytes.Index(stream[offset:], pngSignature)
		if idx < 0 {
			break
		}
		idx += offset
		if start >= 0 {
			images = append(images, stream[start:idx])
		}
		start = idx
		offset = idx + len(pngSignature)
	}
	if start >= 0 && start < len(stream) {
		images = append(images, stream[start:])
	}
	return images
}

// selectChangeTimestamps walks the sampled crop images in order and keeps
// the timestamps where the subtitle band visibly changed. The first
// decodable sample is always kept; afterwards a sample is kept only when its
// perceptual hash distance from the last kept sample exceeds the threshold,
// and the kept sample becomes the new reference. Samples that fail to decode
// or hash are skipped without advancing the reference.
func selectChangeTimestamps(samples [][]byte, sampleFPS int, threshold int) []float64 {
	var timestamps []float64
	var reference *goimagehash.ImageHash

	for i, sample := range samples {
		img, err := png.Decode(bytes.NewReader(sample))
		if err != nil {
			continue
		}
		hash, err := goimagehash.PerceptionHash(img)
		if err != nil {
			continue
		}

		if reference == nil {
			timestamps = append(timestamps, float64(i)/float64(sampleFPS))
			reference = hash
			continue
		}

		distance, err := reference.Distance(hash)
		if err != nil {
			continue
		}
		if distance > threshold {
			timestamps = append(timestamps, float64(i)/float64(sampleFPS))
			reference = hash
		}
	}
	return timestamps
}
