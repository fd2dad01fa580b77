package transform

import (
	"bytes"
	"context"
	"encoding/binary"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// ImageminStep recompresses raster images.
const ImageminStep = "imagemin"

var errMalformedJPEG = zerr.New("malformed jpeg")

type imageminOptions struct {
	Quality int `yaml:"quality"`
}

// Imagemin recompresses PNG, JPEG and GIF files and keeps the result only when
// it is smaller than the original. Other files pass through.
//
// JPEGs only lose metadata segments unless a quality is configured, in which
// case they are decoded and re-encoded at that quality.
type Imagemin struct {
	quality int
}

func newImagemin(_ *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts imageminOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if opts.Quality < 0 || opts.Quality > 100 {
		return nil, invalidOptions(spec, "quality must be between 1 and 100")
	}
	return &Imagemin{quality: opts.Quality}, nil
}

// Name returns the step name.
func (i *Imagemin) Name() string { return ImageminStep }

// TransformFile recompresses f.
func (i *Imagemin) TransformFile(_ context.Context, f *domain.File) (*domain.File, error) {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".png":
		out, err = reencodePNG(f.Contents)
	case ".jpg", ".jpeg":
		if i.quality > 0 {
			out, err = reencodeJPEG(f.Contents, i.quality)
		} else {
			out, err = stripJPEG(f.Contents)
		}
	case ".gif":
		out, err = reencodeGIF(f.Contents)
	default:
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if len(out) >= len(f.Contents) {
		return f, nil
	}

	res := f.Clone()
	res.Contents = out
	return res, nil
}

func reencodePNG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reencodeJPEG(data []byte, quality int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP0  = 0xE0
	markerAPP1  = 0xE1
	markerAPP2  = 0xE2
	markerAPP14 = 0xEE
	markerAPP15 = 0xEF
	markerCOM   = 0xFE
)

// stripJPEG drops comments and application segments that do not affect how
// the image renders. Entropy-coded data after the first scan header is copied
// untouched, so pixels are identical.
func stripJPEG(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, zerr.With(errMalformedJPEG, "reason", "missing start of image")
	}
	out := make([]byte, 0, len(data))
	out = append(out, data[:2]...)

	for i := 2; ; {
		if i+2 > len(data) || data[i] != 0xFF {
			return nil, zerr.With(errMalformedJPEG, "offset", i)
		}
		marker := data[i+1]
		switch marker {
		case 0xFF:
			// Fill byte before a marker.
			i++
			continue
		case markerSOS, markerEOI:
			return append(out, data[i:]...), nil
		}
		if i+4 > len(data) {
			return nil, zerr.With(errMalformedJPEG, "offset", i)
		}
		end := i + 2 + int(binary.BigEndian.Uint16(data[i+2:]))
		if end < i+4 || end > len(data) {
			return nil, zerr.With(errMalformedJPEG, "offset", i)
		}
		if keepSegment(marker, data[i+4:end]) {
			out = append(out, data[i:end]...)
		}
		i = end
	}
}

// keepSegment keeps JFIF, EXIF (orientation), ICC profiles and the Adobe
// colour transform flag.
func keepSegment(marker byte, payload []byte) bool {
	switch {
	case marker == markerCOM:
		return false
	case marker == markerAPP1:
		return bytes.HasPrefix(payload, []byte("Exif\x00"))
	case marker == markerAPP0, marker == markerAPP2, marker == markerAPP14:
		return true
	case marker > markerAPP0 && marker <= markerAPP15:
		return false
	}
	return true
}

func reencodeGIF(data []byte) ([]byte, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
