package media

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

const (
	productThumbSize = 400
	baseThumbSize    = 800
)

// Store writes product photos into the images directory and derives
// thumbnails next to them in the thumbs directory.
type Store struct {
	ImagesDir string
	ThumbsDir string
	log       zerolog.Logger
}

func NewStore(imagesDir, thumbsDir string, log zerolog.Logger) *Store {
	return &Store{ImagesDir: imagesDir, ThumbsDir: thumbsDir, log: log}
}

func uniqueFilename(origName string) string {
	ext := strings.ToLower(filepath.Ext(origName))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.New().String() + ext
}

// SaveImage stores an uploaded product photo and its 400px thumbnail.
// Returns the stored image and thumbnail paths.
func (s *Store) SaveImage(src io.Reader, origName string) (string, string, error) {
	return s.save(src, origName, "t_", productThumbSize)
}

// SaveBaseImage stores a group photo with a larger 800px thumbnail.
func (s *Store) SaveBaseImage(src io.Reader, origName string) (string, string, error) {
	return s.save(src, origName, "base_", baseThumbSize)
}

func (s *Store) save(src io.Reader, origName, thumbPrefix string, size uint) (string, string, error) {
	if err := os.MkdirAll(s.ImagesDir, 0o755); err != nil {
		return "", "", err
	}
	name := uniqueFilename(origName)
	imagePath := filepath.Join(s.ImagesDir, name)

	out, err := os.Create(imagePath)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(imagePath)
		return "", "", err
	}
	if err := out.Close(); err != nil {
		return "", "", err
	}

	thumbPath := filepath.Join(s.ThumbsDir, thumbPrefix+name)
	if err := s.Thumbnail(imagePath, thumbPath, size); err != nil {
		// Unknown or broken format: keep a plain copy so the UI still has
		// something to show, same as the original fallback.
		s.log.Warn().Err(err).Str("image", imagePath).Msg("thumbnail failed, copying original")
		if err := os.MkdirAll(s.ThumbsDir, 0o755); err != nil {
			return imagePath, "", nil
		}
		if err := copyFile(imagePath, thumbPath); err != nil {
			return imagePath, "", nil
		}
	}
	return imagePath, thumbPath, nil
}

// Thumbnail decodes src, fits it into size×size preserving aspect ratio
// and writes it to dest, matching the output format to the extension.
func (s *Store) Thumbnail(src, dest string, size uint) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, format, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	small := resize.Thumbnail(size, size, img, resize.Lanczos3)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "png":
		return png.Encode(out, small)
	default:
		return jpeg.Encode(out, small, &jpeg.Options{Quality: 85})
	}
}

// CopyToSold copies a file into the invoice's sold directory, suffixing
// the name with the current time when a copy already exists there.
func (s *Store) CopyToSold(path, soldDir string) (string, error) {
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if err := os.MkdirAll(soldDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(soldDir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		base := strings.TrimSuffix(filepath.Base(dest), ext)
		dest = filepath.Join(soldDir, fmt.Sprintf("%s_%s%s", base, time.Now().Format("150405"), ext))
	}
	if err := copyFile(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Remove deletes the given files, logging rather than failing on errors.
func (s *Store) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", p).Msg("could not remove file")
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
