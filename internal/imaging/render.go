package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/vegetation-tools-mcp/internal/vegetation"
)

// EncodedImage is a PNG image carried inline in a tool result.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}

	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// ApplyMask keeps the pixels of src selected by mask and paints every other
// pixel opaque black. src and mask must have the same dimensions; src's
// alpha is dropped.
func ApplyMask(src image.Image, mask *vegetation.Mask) (*image.NRGBA, error) {
	b := src.Bounds()
	if b.Dx() != mask.Width || b.Dy() != mask.Height {
		return nil, errors.Errorf("mask is %dx%d, image is %dx%d", mask.Width, mask.Height, b.Dx(), b.Dy())
	}

	out := imaging.Clone(src)
	for p, m := range mask.Pix {
		px := out.Pix[p*4 : p*4+4]
		if m == vegetation.Excluded {
			px[0], px[1], px[2] = 0, 0, 0
		}
		px[3] = 255
	}
	return out, nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
