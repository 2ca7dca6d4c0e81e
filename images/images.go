// Package images downloads product images and transcodes them into
// transport-ready JPEG payloads.
package images

import (
	"bytes"
	"context"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/use-deal/dealbot/config"
)

// Fetcher downloads a URL's body. Satisfied by scraper.Scraper.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Processor prepares image payloads: download, bound the longest side,
// transcode to JPEG. Failures skip the image rather than failing the deal.
type Processor struct {
	fetcher Fetcher
	cfg     config.ImagesConfig
}

// New creates a Processor sharing the given fetcher.
func New(fetcher Fetcher, cfg config.ImagesConfig) *Processor {
	return &Processor{fetcher: fetcher, cfg: cfg}
}

// Prepare downloads and transcodes up to MaxImages of the given URLs, in
// order. Images that fail to download or decode are skipped silently apart
// from a log line; the returned slice may be shorter than requested or empty.
func (p *Processor) Prepare(ctx context.Context, urls []string) [][]byte {
	var payloads [][]byte

	for _, url := range urls {
		if len(payloads) >= p.cfg.MaxImages {
			break
		}

		body, err := p.fetcher.Fetch(ctx, url)
		if err != nil {
			slog.Warn("image download failed", "url", url, "error", err)
			continue
		}

		payload, err := p.transcode(body)
		if err != nil {
			slog.Warn("image transcode failed", "url", url, "error", err)
			continue
		}
		payloads = append(payloads, payload)
	}

	return payloads
}

// transcode decodes any supported format, bounds the longest side at
// MaxDimension, and re-encodes as JPEG. Alpha channels are dropped by the
// JPEG encoding.
func (p *Processor) transcode(body []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.cfg.MaxDimension || bounds.Dy() > p.cfg.MaxDimension {
		img = imaging.Fit(img, p.cfg.MaxDimension, p.cfg.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.cfg.JPEGQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode re-reads an encoded payload, for tests and size checks.
func Decode(payload []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(payload))
}
