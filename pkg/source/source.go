// Package source provides the frames a resolution search runs on.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/getnative/util/log"
)

// ErrNoDecoder is returned when an input cannot be decoded as frames.
var ErrNoDecoder = errors.New("no decoder available for input")

// imageExts are the extensions imaging can decode.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// Source is an indexed sequence of frames of equal size.
type Source interface {
	NumFrames() int
	Width() int
	Height() int
	Frame(ctx context.Context, index int) (*Plane, error)
	Name() string
}

// Open resolves path to a Source. A directory or a glob pattern becomes an
// image sequence, anything else a single still image. forceImage treats path
// as a still image even when it looks like a pattern.
func Open(path string, forceImage bool) (Source, error) {
	if !forceImage {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return openSequence(path, filepath.Join(path, "*"))
		}
		if strings.ContainsAny(path, "*?[") {
			return openSequence(path, path)
		}
	}
	return openStill(path)
}

// IsImageFile reports whether the file extension is decodable.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

func decode(path string) (*Plane, error) {
	if !IsImageFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrNoDecoder, path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return FromImage(img), nil
}

// still is a single image exposed as a one frame source.
type still struct {
	path  string
	plane *Plane
}

func openStill(path string) (*still, error) {
	p, err := decode(path)
	if err != nil {
		return nil, err
	}
	return &still{path: path, plane: p}, nil
}

func (s *still) NumFrames() int { return 1 }
func (s *still) Width() int     { return s.plane.Width }
func (s *still) Height() int    { return s.plane.Height }
func (s *still) Name() string   { return s.path }

func (s *still) Frame(ctx context.Context, index int) (*Plane, error) {
	if index != 0 {
		return nil, fmt.Errorf("frame %d out of range [0, 1)", index)
	}
	return s.plane, nil
}

// sequence is an ordered list of image files, one frame each.
type sequence struct {
	name          string
	files         []string
	width, height int
}

func openSequence(name, pattern string) (*sequence, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", pattern, err)
	}
	var files []string
	for _, m := range matches {
		if IsImageFile(m) {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no image files match %s", ErrNoDecoder, pattern)
	}
	sort.Strings(files)

	first, err := decode(files[0])
	if err != nil {
		return nil, err
	}
	log.Debugf("Opened sequence %s: %d frames, %dx%d", name, len(files), first.Width, first.Height)
	return &sequence{name: name, files: files, width: first.Width, height: first.Height}, nil
}

func (s *sequence) NumFrames() int { return len(s.files) }
func (s *sequence) Width() int     { return s.width }
func (s *sequence) Height() int    { return s.height }
func (s *sequence) Name() string   { return s.name }

func (s *sequence) Frame(ctx context.Context, index int) (*Plane, error) {
	if index < 0 || index >= len(s.files) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, len(s.files))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := decode(s.files[index])
	if err != nil {
		return nil, err
	}
	if p.Width != s.width || p.Height != s.height {
		return nil, fmt.Errorf("frame %d (%s) is %dx%d, sequence is %dx%d",
			index, s.files[index], p.Width, p.Height, s.width, s.height)
	}
	return p, nil
}

// LoadFrames decodes the given frame indices concurrently and returns them in
// the order of indices.
func LoadFrames(ctx context.Context, src Source, indices []int) ([]*Plane, error) {
	planes := make([]*Plane, len(indices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, idx := range indices {
		g.Go(func() error {
			p, err := src.Frame(ctx, idx)
			if err != nil {
				return fmt.Errorf("loading frame %d: %w", idx, err)
			}
			planes[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return planes, nil
}

// Static wraps already decoded planes as a Source. All planes must share one size.
func Static(name string, planes ...*Plane) (Source, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrNoDecoder)
	}
	for i, p := range planes {
		if p.Width != planes[0].Width || p.Height != planes[0].Height {
			return nil, fmt.Errorf("frame %d is %dx%d, expected %dx%d", i, p.Width, p.Height, planes[0].Width, planes[0].Height)
		}
	}
	return &static{name: name, planes: planes}, nil
}

type static struct {
	name   string
	planes []*Plane
}

func (s *static) NumFrames() int { return len(s.planes) }
func (s *static) Width() int     { return s.planes[0].Width }
func (s *static) Height() int    { return s.planes[0].Height }
func (s *static) Name() string   { return s.name }

func (s *static) Frame(ctx context.Context, index int) (*Plane, error) {
	if index < 0 || index >= len(s.planes) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, len(s.planes))
	}
	return s.planes[index], nil
}

// FromImages is a convenience for tests and callers holding decoded images.
func FromImages(name string, imgs ...image.Image) (Source, error) {
	planes := make([]*Plane, len(imgs))
	for i, img := range imgs {
		planes[i] = FromImage(img)
	}
	return Static(name, planes...)
}
