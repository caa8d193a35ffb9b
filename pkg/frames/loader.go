package frames

import (
	"image"
	"image/draw"
	"io"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Source selects the frame images of a directory.
type Source struct {
	Fs      afero.Fs
	Dir     string
	Pattern string
	// Progress receives the packing progress bar, nil disables it.
	Progress io.Writer
}

// Paths returns the matching files sorted by name.
func (src *Source) Paths() ([]string, error) {
	matches, err := afero.Glob(src.Fs, filepath.Join(src.Dir, src.Pattern))
	if err != nil {
		return nil, errors.Wrap(err, "glob frames")
	}

	files := lo.Filter(matches, func(p string, _ int) bool {
		isDir, err := afero.IsDir(src.Fs, p)
		return err == nil && !isDir
	})
	sort.Strings(files)

	return files, nil
}

// LoadDir decodes every selected image, fits it to width x height and builds a Store.
func LoadDir(src *Source, width, height int, logger *zap.Logger) (*Store, error) {
	files, err := src.Paths()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrEmpty, "pattern %q in %q", src.Pattern, src.Dir)
	}

	bar := progressbar.NewOptions(
		len(files),
		progressbar.OptionSetWriter(lo.Ternary[io.Writer](src.Progress != nil, src.Progress, io.Discard)),
		progressbar.OptionSetDescription("packing frames"),
		progressbar.OptionShowCount(),
	)

	images := make([]*image.Gray, 0, len(files))
	for _, file := range files {
		img, err := decode(src.Fs, file, width, height)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	store, err := Load(images, width, height)
	if err != nil {
		return nil, err
	}

	logger.With(
		zap.Int("frames", store.Total()),
		zap.String("dir", src.Dir),
		zap.String("packed", bytesize.New(float64(store.Total()*store.BytesPerFrame())).String()),
	).Info("frames loaded")

	return store, nil
}

func decode(fs afero.Fs, file string, width, height int) (*image.Gray, error) {
	f, err := fs.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file)
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", file)
	}

	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		img = imaging.Resize(img, width, height, imaging.Linear)
	}

	return Grayscale(img), nil
}

// Grayscale converts img to an 8-bit gray image anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}

	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
