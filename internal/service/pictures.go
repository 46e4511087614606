// Package service contains the collaborators the handlers sequence
// after store commits: mail delivery and profile picture processing
package service

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path"
	"strings"

	"gamine/blog-api/aws"
	"gamine/blog-api/model"

	"github.com/disintegration/imaging"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
)

// thumbnailBound is the box every profile picture is resized to fit in
const thumbnailBound = 125

type pictureBackend interface {
	Save(name string, data []byte) error
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}

type PictureStore struct {
	backend pictureBackend
}

// NewPictureStore picks the backend from pictures.type. Local disk is
// the default, S3 needs the s3.* config block.
func NewPictureStore() (*PictureStore, error) {
	var p *PictureStore

	if viper.GetString("pictures.type") == "s3" {
		client, err := aws.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		p = &PictureStore{backend: &s3Backend{client: client}}
	} else {
		dir := viper.GetString("pictures.dir")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create pictures dir, %w", err)
		}

		p = &PictureStore{backend: &localBackend{dir: dir}}
	}

	if err := p.ensureDefault(); err != nil {
		return nil, fmt.Errorf("failed to store placeholder picture, %w", err)
	}

	return p, nil
}

// ensureDefault writes the placeholder avatar if the backend doesn't
// hold one yet, so fresh deployments serve something for default.png
func (p *PictureStore) ensureDefault() error {
	if f, err := p.backend.Open(model.DefaultImageFile); err == nil {
		f.Close()
		return nil
	}

	img := imaging.New(thumbnailBound, thumbnailBound, color.NRGBA{R: 0x8a, G: 0x91, B: 0x99, A: 0xff})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return err
	}

	return p.backend.Save(model.DefaultImageFile, buf.Bytes())
}

// Save resizes an already validated upload to fit the thumbnail bound
// and stores it under a generated name, which is returned for the
// profile update to persist. The original file name only contributes
// its extension.
func (p *PictureStore) Save(f io.Reader, originalName string) (string, error) {
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode picture, %w", err)
	}

	img = imaging.Fit(img, thumbnailBound, thumbnailBound, imaging.Lanczos)

	ext := strings.ToLower(path.Ext(originalName))
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	id, err := gonanoid.New(16)
	if err != nil {
		return "", err
	}
	name := id + ext

	format := imaging.JPEG
	if ext == ".png" {
		format = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode picture, %w", err)
	}

	if err := p.backend.Save(name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to store picture, %w", err)
	}

	return name, nil
}

// Open returns the stored picture for serving. Names with path
// separators are rejected so nobody walks out of the picture store.
func (p *PictureStore) Open(name string) (io.ReadCloser, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return nil, os.ErrNotExist
	}

	return p.backend.Open(name)
}

// Remove deletes a stored picture, used when a profile update fails
// after its picture already landed. The placeholder is never removed.
func (p *PictureStore) Remove(name string) error {
	if name == "" || name == model.DefaultImageFile ||
		strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return nil
	}

	return p.backend.Remove(name)
}
