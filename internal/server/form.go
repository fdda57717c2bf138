package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmorgan81/tryonbot/internal/asset"
	"github.com/dmorgan81/tryonbot/internal/garment"
	"github.com/dmorgan81/tryonbot/internal/handler"
	"golang.org/x/sync/errgroup"
)

const (
	maxUploadBytes       = 32 << 20
	missingImagesWarning = "Please upload both images before generating!"
)

var errMissingImages = errors.New("person and garment images are required")

// parseInput reads the multipart form. Whatever could be read is returned
// even when err is set, so the form can be redisplayed.
func parseInput(w http.ResponseWriter, r *http.Request) (handler.Input, error) {
	input := handler.Input{Category: garment.Default}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return input, fmt.Errorf("upload exceeds %d MiB", maxUploadBytes>>20)
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return input, fmt.Errorf("reading form: %w", err)
		}
	}

	input.StyleNotes = r.FormValue("style_notes")
	category, err := garment.Parse(r.FormValue("category"))
	if err != nil {
		return input, err
	}
	input.Category = category

	if !hasUpload(r, "person") || !hasUpload(r, "garment") {
		return input, errMissingImages
	}

	var group errgroup.Group
	group.Go(func() (err error) {
		input.Person, err = readUpload(r, "person")
		return err
	})
	group.Go(func() (err error) {
		input.Garment, err = readUpload(r, "garment")
		return err
	})
	return input, group.Wait()
}

func hasUpload(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}

func readUpload(r *http.Request, field string) (*asset.Asset, error) {
	f, err := r.MultipartForm.File[field][0].Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s image: %w", field, err)
	}
	defer f.Close()

	a, err := asset.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s image: %w", field, err)
	}
	return a, nil
}
