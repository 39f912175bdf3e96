package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/corona10/goimagehash"

	"placepipe/internal/logging"
	"placepipe/internal/media/ffprobe"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gradientImage(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / size)})
		}
	}
	return img
}

func checkerImage(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/8+y/8)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestComputeRegion(t *testing.T) {
	region := ComputeRegion(ffprobe.Dimensions{Width: 1080, Height: 1921}, 0.60, 0.40)
	if region.X != 0 || region.Y != 1152 || region.Width != 1080 || region.Height != 768 {
		t.Fatalf("ComputeRegion() = %+v", region)
	}
	if got := region.CropFilter(); got != "crop=1080:768:0:1152" {
		t.Fatalf("CropFilter() = %q", got)
	}
}

func TestSplitPNGStream(t *testing.T) {
	a := encodePNG(t, gradientImage(64))
	b := encodePNG(t, checkerImage(64))
	stream := append(append(append([]byte{}, a...), b...), a...)

	images := splitPNGStream(stream)
	if len(images) != 3 {
		t.Fatalf("splitPNGStream() = %d images, want 3", len(images))
	}
	for i, data := range images {
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			t.Fatalf("image %d does not decode: %v", i, err)
		}
	}

	if got := splitPNGStream([]byte("no pngs here")); got != nil {
		t.Fatalf("splitPNGStream(garbage) = %d images, want none", len(got))
	}
}

func TestSelectChangeTimestamps(t *testing.T) {
	grad := encodePNG(t, gradientImage(64))
	check := encodePNG(t, checkerImage(64))

	t.Run("identical samples keep only the first", func(t *testing.T) {
		got := selectChangeTimestamps([][]byte{grad, grad, grad}, 2, 10)
		if len(got) != 1 || got[0] != 0 {
			t.Fatalf("timestamps = %v, want [0]", got)
		}
	})

	t.Run("visual change selects a new reference", func(t *testing.T) {
		got := selectChangeTimestamps([][]byte{grad, grad, check, check}, 2, 10)
		if len(got) != 2 || got[0] != 0 || got[1] != 1.0 {
			t.Fatalf("timestamps = %v, want [0 1]", got)
		}
	})

	t.Run("undecodable samples are skipped", func(t *testing.T) {
		got := selectChangeTimestamps([][]byte{[]byte("junk"), grad, grad}, 2, 10)
		if len(got) != 1 || got[0] != 0.5 {
			t.Fatalf("timestamps = %v, want [0.5]", got)
		}
	})

	t.Run("every alternation is a change point", func(t *testing.T) {
		got := selectChangeTimestamps([][]byte{grad, check, grad, check}, 2, 10)
		want := []float64{0, 0.5, 1, 1.5}
		if len(got) != len(want) {
			t.Fatalf("timestamps = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("timestamps = %v, want %v", got, want)
			}
		}
	})

	t.Run("no samples yields no change points", func(t *testing.T) {
		if got := selectChangeTimestamps(nil, 2, 10); len(got) != 0 {
			t.Fatalf("timestamps = %v, want none", got)
		}
	})
}

func TestPerceptionHashDistanceProperties(t *testing.T) {
	hash := func(img image.Image) *goimagehash.ImageHash {
		t.Helper()
		h, err := goimagehash.PerceptionHash(img)
		if err != nil {
			t.Fatal(err)
		}
		return h
	}

	grad := hash(gradientImage(64))
	gradAgain := hash(gradientImage(64))
	check := hash(checkerImage(64))

	same, err := grad.Distance(gradAgain)
	if err != nil {
		t.Fatal(err)
	}
	if same != 0 {
		t.Fatalf("distance between identical images = %d, want 0", same)
	}

	ab, err := grad.Distance(check)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := check.Distance(grad)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("distance not symmetric: %d vs %d", ab, ba)
	}
	if ab <= 10 {
		t.Fatalf("distinct structures too close: distance = %d", ab)
	}
}

func TestExtractorTwoPass(t *testing.T) {
	grad := encodePNG(t, gradientImage(64))
	check := encodePNG(t, checkerImage(64))
	sampleStream := append(append(append([]byte{}, grad...), grad...), check...)

	var calls [][]string
	e := New("ffmpeg", staticProber{w: 1080, h: 1920}, Options{
		RegionYStartPercent: 0.60,
		RegionHeightPercent: 0.40,
		SampleFPS:           2,
		HashThreshold:       10,
	}, logging.NewNop())
	e.run = func(_ context.Context, _ []byte, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		if strings.Contains(strings.Join(args, " "), "image2pipe") && args[0] == "-i" {
			return sampleStream, nil
		}
		return check, nil
	}

	frames, err := e.Extract(context.Background(), []byte("video"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("Extract() = %d frames, want 2", len(frames))
	}
	if frames[0].TimestampSeconds != 0 || frames[1].TimestampSeconds != 1.0 {
		t.Fatalf("timestamps = %v, %v, want 0 and 1", frames[0].TimestampSeconds, frames[1].TimestampSeconds)
	}

	sampleArgs := strings.Join(calls[0], " ")
	if !strings.Contains(sampleArgs, "fps=2,crop=1080:768:0:1152") {
		t.Fatalf("sampling filter missing from %q", sampleArgs)
	}
	seekArgs := strings.Join(calls[2], " ")
	if !strings.Contains(seekArgs, "-ss 1 ") {
		t.Fatalf("seek argument missing from %q", seekArgs)
	}
}

func TestExtractorSkipsUnreadableFullFrames(t *testing.T) {
	grad := encodePNG(t, gradientImage(64))

	e := New("", staticProber{w: 640, h: 480}, Options{
		RegionYStartPercent: 0.60,
		RegionHeightPercent: 0.40,
		SampleFPS:           2,
		HashThreshold:       10,
	}, nil)
	e.run = func(_ context.Context, _ []byte, _ string, args ...string) ([]byte, error) {
		if args[0] == "-ss" {
			return []byte("not a png"), nil
		}
		return grad, nil
	}

	frames, err := e.Extract(context.Background(), []byte("video"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("Extract() = %d frames, want 0", len(frames))
	}
}

func TestExtractorEmptySampleStreamYieldsNoFrames(t *testing.T) {
	e := New("", staticProber{w: 640, h: 480}, Options{
		RegionYStartPercent: 0.60,
		RegionHeightPercent: 0.40,
		SampleFPS:           2,
		HashThreshold:       10,
	}, nil)
	e.run = func(context.Context, []byte, string, ...string) ([]byte, error) {
		return nil, nil
	}

	frames, err := e.Extract(context.Background(), []byte("video"))
	if err != nil {
		t.Fatalf("Extract() error = %v, want empty result", err)
	}
	if len(frames) != 0 {
		t.Fatalf("Extract() = %d frames, want 0", len(frames))
	}
}

func TestExtractorSkipsTimestampsWhereFFmpegFails(t *testing.T) {
	grad := encodePNG(t, gradientImage(64))
	check := encodePNG(t, checkerImage(64))
	sampleStream := append(append([]byte{}, grad...), check...)

	e := New("", staticProber{w: 640, h: 480}, Options{
		RegionYStartPercent: 0.60,
		RegionHeightPercent: 0.40,
		SampleFPS:           2,
		HashThreshold:       10,
	}, logging.NewNop())
	e.run = func(_ context.Context, _ []byte, _ string, args ...string) ([]byte, error) {
		if args[0] != "-ss" {
			return sampleStream, nil
		}
		if args[1] == "0" {
			return nil, errors.New("exit status 1")
		}
		return check, nil
	}

	frames, err := e.Extract(context.Background(), []byte("video"))
	if err != nil {
		t.Fatalf("Extract() error = %v, one bad timestamp must not abort", err)
	}
	if len(frames) != 1 || frames[0].TimestampSeconds != 0.5 {
		t.Fatalf("frames = %+v, want only the 0.5s frame", frames)
	}
}

type staticProber struct{ w, h int }

func (p staticProber) Dimensions(context.Context, []byte) (ffprobe.Dimensions, error) {
	return ffprobe.Dimensions{Width: p.w, Height: p.h}, nil
}
