package compress

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"math"
	"os"
	"runtime"
	"time"

	"golang.org/x/image/draw"
)

// Kind classifies why a single image failed to compress.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindEncodeFailure     Kind = "encode_failure"
	KindIOFailure         Kind = "io_failure"
)

// Error is a per-image compression failure. Compression is deterministic,
// so none of these are retried automatically; the operator fixes the input.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("compress %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Config struct {
	Quality      int   // initial JPEG quality, 1-100
	QualityFloor int   // never encode below this
	QualityStep  int   // decrement per pass while over budget
	MaxWidth     int   // downscale wider images, keep aspect ratio
	MaxBytes     int64 // target output size
	Workers      int   // batch concurrency
}

func DefaultConfig() Config {
	return Config{
		Quality:      85,
		QualityFloor: 50,
		QualityStep:  10,
		MaxWidth:     1920,
		MaxBytes:     1 << 20,
		Workers:      runtime.NumCPU(),
	}
}

// Result is one successfully compressed image.
type Result struct {
	Source     string        `json:"source"`
	Data       []byte        `json:"-"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Quality    int           `json:"quality"`
	Bytes      int64         `json:"bytes"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	OverBudget bool          `json:"over_budget"`
}

// Compress loads one image, downscales it to the width cap and re-encodes
// at decreasing quality until the output fits the byte budget or quality
// reaches the floor. The floor wins over the budget: an over-budget result
// at floor quality is returned with OverBudget set, not an error.
func Compress(path string, cfg Config) (*Result, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		kind := KindIOFailure
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindNotFound
		}
		return nil, &Error{Kind: kind, Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &Error{Kind: KindUnsupportedFormat, Path: path, Err: err}
	}

	img = resizeToWidth(img, cfg.MaxWidth)
	bounds := img.Bounds()

	// Re-encode from the already-resized pixels; the resize happens once.
	step := cfg.QualityStep
	if step < 1 {
		step = 1
	}

	var buf bytes.Buffer
	quality := cfg.Quality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, &Error{Kind: KindEncodeFailure, Path: path, Err: err}
		}
		if int64(buf.Len()) <= cfg.MaxBytes || quality <= cfg.QualityFloor {
			break
		}
		quality -= step
		if quality < cfg.QualityFloor {
			quality = cfg.QualityFloor
		}
	}

	return &Result{
		Source:     path,
		Data:       buf.Bytes(),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Quality:    quality,
		Bytes:      int64(buf.Len()),
		Elapsed:    time.Since(start),
		OverBudget: int64(buf.Len()) > cfg.MaxBytes,
	}, nil
}

func resizeToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	ratio := float64(maxWidth) / float64(bounds.Dx())
	height := int(math.Round(float64(bounds.Dy()) * ratio))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
