package blog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/imaging"
)

// MaxImageWidth is the widest featured image kept as uploaded. Wider
// images are downscaled before they are stored.
const MaxImageWidth = 1600

const msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// imageExt maps accepted content types to file extensions.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// checkUpload records a featured_image error if u cannot be stored.
func (s *Service) checkUpload(u *Upload, errs ValidationErrors) {
	switch {
	case s.files == nil:
		errs.Add("featured_image", "Image uploads are not available on this site.")
	case len(u.Data) == 0:
		errs.Add("featured_image", "The submitted file is empty.")
	default:
		if _, ok := imageExt[imaging.Detect(u.Data)]; !ok {
			errs.Add("featured_image", msgInvalidImage)
		}
	}
}

// storeImage downscales u if needed and saves it under
// posts/YYYY/MM/<uuid><ext>, returning the key.
func (s *Service) storeImage(ctx context.Context, u *Upload) (string, error) {
	data, contentType, err := imaging.Downscale(u.Data, imaging.Detect(u.Data), MaxImageWidth)
	if err != nil {
		return "", ValidationErrors{"featured_image": msgInvalidImage}
	}

	key := fmt.Sprintf("posts/%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), imageExt[contentType])
	if err := s.files.Save(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// discardImage removes a stored file that is no longer referenced.
// Failures are logged and otherwise ignored.
func (s *Service) discardImage(ctx context.Context, key *string) {
	if key == nil || *key == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, *key); err != nil {
		slog.Warn("remove unreferenced image failed", "key", *key, "error", err)
	}
}
