package vision

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// FileSource replays still images as frames, in order. After the last file
// Read returns io.EOF.
type FileSource struct {
	paths []string
	next  int

	// Current is the path of the frame most recently returned.
	Current string
}

// NewFileSource returns a source over the given image paths.
func NewFileSource(paths []string) *FileSource {
	return &FileSource{paths: paths}
}

// Read decodes the next image. A file that fails to decode is reported as
// an error for that cycle only; the next Read moves on.
func (s *FileSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.next]
	s.next++
	s.Current = path

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

// Close is a no-op; files are closed after decoding.
func (s *FileSource) Close() error {
	return nil
}
