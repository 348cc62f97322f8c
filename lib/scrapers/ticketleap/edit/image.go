package edit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ticketleap-admin/lib/scrapers/ticketleap/core"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uploadPath = "/admin/galleries/media/create"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".tiff", ".gif"}

// Image is an uploaded event image.
type Image struct {
	ID string
	// used as the small hero image of an event
	FullURL string
	HeroURL string
}

type uploadResponse struct {
	Medium *struct {
		Id      string `json:"id"`
		FullUrl string `json:"full_url"`
		HeroUrl string `json:"hero_url"`
	} `json:"medium"`
}

// UploadImage uploads a local image to the account's media gallery.
func (c *Client) UploadImage(ctx context.Context, path string) (Image, error) {
	var image Image
	err := c.run(ctx, "upload_image", path, func(ctx context.Context, op *operation) error {
		var err error
		image, err = c.uploadImage(ctx, op, path)
		return err
	})
	return image, err
}

func readImage(path string) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range imageExtensions {
		supported = supported || e == ext
	}
	if !supported {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	_, err := imaging.FormatFromFilename(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFile, err.Error())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	_, err = imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFile, err.Error())
	}
	return data, "image/" + strings.TrimPrefix(ext, "."), nil
}

func (c *Client) uploadImage(ctx context.Context, op *operation, path string) (Image, error) {
	ctx, span := tracer.Start(ctx, "uploadImage")
	defer span.End()

	op.at(StageBuilding)
	data, contentType, err := readImage(path)
	if err != nil {
		span.RecordError(err)
		return Image{}, err
	}
	span.AddEvent("image", trace.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.Int("size", len(data)),
	))

	op.at(StageSubmitting)
	res, err := c.Core.Submit(ctx, core.Submission{
		Action: "upload image",
		Key:    filepath.Base(path),
		Path:   uploadPath,
		Files: []*resty.MultipartField{{
			Param:       "image_file",
			FileName:    filepath.Base(path),
			ContentType: contentType,
			Reader:      bytes.NewReader(data),
		}},
		Ajax:    true,
		Referer: createPath,
	})
	if err != nil {
		return Image{}, err
	}

	var body uploadResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil || body.Medium == nil {
		return Image{}, &core.MalformedPageError{
			Page:     c.Core.Url(uploadPath),
			Landmark: "medium",
			Err:      err,
		}
	}
	return Image{
		ID:      body.Medium.Id,
		FullURL: body.Medium.FullUrl,
		HeroURL: body.Medium.HeroUrl,
	}, nil
}
