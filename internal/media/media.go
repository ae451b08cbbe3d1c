// Package media is the image pipeline: ClipDrop for text-to-image,
// Cloudinary for hosting and for the background/object removal
// transformations.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const clipdropEndpoint = "https://clipdrop-api.co/text-to-image/v1"

// uploadFolder groups every asset this app creates under one Cloudinary
// folder.
const uploadFolder = "quickai"

// Service wraps the two external image providers.
type Service struct {
	Cld         *cloudinary.Cloudinary
	ClipDropKey string
	HTTPClient  *http.Client
}

// NewService builds the pipeline from a CLOUDINARY_URL-style connection
// string and a ClipDrop API key.
func NewService(cloudinaryURL, clipdropKey string) (*Service, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudinary client: %w", err)
	}
	return &Service{
		Cld:         cld,
		ClipDropKey: clipdropKey,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// GenerateImage turns a prompt into a hosted image URL: ClipDrop renders
// the PNG, Cloudinary stores it.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (string, error) {
	png, err := s.clipdropTextToImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return s.upload(ctx, bytes.NewReader(png), "")
}

// RemoveBackground uploads the image with Cloudinary's background
// removal applied and returns the resulting URL.
func (s *Service) RemoveBackground(ctx context.Context, image io.Reader) (string, error) {
	return s.upload(ctx, image, "e_background_removal")
}

// RemoveObject uploads the image and returns a delivery URL with
// Cloudinary's generative object removal applied for the named object.
func (s *Service) RemoveObject(ctx context.Context, image io.Reader, object string) (string, error) {
	resp, err := s.Cld.Upload.Upload(ctx, image, uploader.UploadParams{
		PublicID: uuid.New().String(),
		Folder:   uploadFolder,
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	img, err := s.Cld.Image(resp.PublicID)
	if err != nil {
		return "", fmt.Errorf("building delivery URL: %w", err)
	}
	img.Transformation = fmt.Sprintf("e_gen_remove:prompt_%s", object)
	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("building delivery URL: %w", err)
	}
	return url, nil
}

func (s *Service) upload(ctx context.Context, image io.Reader, transformation string) (string, error) {
	resp, err := s.Cld.Upload.Upload(ctx, image, uploader.UploadParams{
		PublicID:       uuid.New().String(),
		Folder:         uploadFolder,
		Transformation: transformation,
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	return resp.SecureURL, nil
}

// clipdropTextToImage calls the ClipDrop REST endpoint. There is no Go
// SDK; the contract is a multipart 'prompt' field and raw PNG bytes back.
func (s *Service) clipdropTextToImage(ctx context.Context, prompt string) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("building ClipDrop request: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building ClipDrop request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, clipdropEndpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("building ClipDrop request: %w", err)
	}
	req.Header.Set("x-api-key", s.ClipDropKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ClipDrop: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ClipDrop returned %d: %s", resp.StatusCode, detail)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading ClipDrop response: %w", err)
	}
	return png, nil
}
