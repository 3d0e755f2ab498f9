package processor

import (
	"image"
	"image/color"
	"image/draw"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// receiptOnBackground paints a bright rectangle on a dark canvas, the shape a
// photographed receipt reduces to after blurring.
func receiptOnBackground(w, h int, paper image.Rectangle) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{30, 30, 30, 255}), image.Point{}, draw.Src)
	draw.Draw(img, paper, image.NewUniform(color.NRGBA{235, 235, 235, 255}), image.Point{}, draw.Src)
	return img
}

var _ = Describe("Segmenter", func() {
	var seg *Segmenter

	BeforeEach(func() {
		seg = NewSegmenter(DefaultSegmenterConfig())
	})

	It("crops a bright paper region out of a dark background", func() {
		src := receiptOnBackground(400, 400, image.Rect(100, 100, 300, 300))
		res := seg.Segment(src)

		Expect(res.Segmented).To(BeTrue())
		// The crop tracks the paper, give or take blur spread.
		Expect(res.Image.Bounds().Dx()).To(BeNumerically("<", 300))
		Expect(res.Image.Bounds().Dx()).To(BeNumerically(">=", 200))
		Expect(res.Image.Bounds().Dy()).To(BeNumerically("<", 300))
		Expect(res.Image.Bounds().Dy()).To(BeNumerically(">=", 200))
	})

	It("rescales the crop back to the original resolution for tall images", func() {
		src := receiptOnBackground(800, 1200, image.Rect(200, 300, 600, 900))
		res := seg.Segment(src)

		Expect(res.Segmented).To(BeTrue())
		Expect(res.Image.Bounds().Dx()).To(BeNumerically(">=", 380))
		Expect(res.Image.Bounds().Dx()).To(BeNumerically("<=", 500))
		Expect(res.Image.Bounds().Dy()).To(BeNumerically(">=", 580))
		Expect(res.Image.Bounds().Dy()).To(BeNumerically("<=", 700))
	})

	It("returns the original image when no region is bright enough", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 200, 200))
		draw.Draw(src, src.Bounds(), image.NewUniform(color.NRGBA{40, 40, 40, 255}), image.Point{}, draw.Src)
		res := seg.Segment(src)

		Expect(res.Segmented).To(BeFalse())
		Expect(res.Image).To(BeIdenticalTo(image.Image(src)))
	})

	It("returns the original image when the bright region is below the area floor", func() {
		src := receiptOnBackground(400, 400, image.Rect(10, 10, 40, 40))
		res := seg.Segment(src)

		Expect(res.Segmented).To(BeFalse())
	})

	It("handles nil input", func() {
		res := seg.Segment(nil)
		Expect(res.Segmented).To(BeFalse())
		Expect(res.Image).To(BeNil())
	})
})

var _ = Describe("otsuThreshold", func() {
	It("splits a bimodal distribution between the modes", func() {
		lum := make([]uint8, 0, 200)
		for i := 0; i < 100; i++ {
			lum = append(lum, 30)
		}
		for i := 0; i < 100; i++ {
			lum = append(lum, 220)
		}
		t := otsuThreshold(lum)
		Expect(t).To(BeNumerically(">=", 30))
		Expect(t).To(BeNumerically("<", 220))
	})
})
