package results

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/batch"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
)

// maxUploadBytes bounds evidence uploads.
const maxUploadBytes = 10 << 20

var gpxContentTypes = map[string]bool{
	"application/gpx+xml": true,
	"application/xml":     true,
	"text/xml":            true,
}

var photoContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func uploadRejected(reason string) *Error {
	return &Error{Status: 422, Code: "UPLOAD_REJECTED", Message: reason}
}

func (s *Service) attachFile(ctx context.Context, res resultrepo.Result, ev eventrepo.Event, in AttachFileInput) (string, error) {
	if ev.Status == domain.EventStatusSubmitted {
		return "", alreadySubmittedToACP()
	}
	if in.Size <= 0 || in.Size > maxUploadBytes {
		return "", uploadRejected(fmt.Sprintf("file must be between 1 byte and %d MB", maxUploadBytes>>20))
	}

	ct := normalizeContentType(in.ContentType)
	var ext string
	switch in.FileType {
	case FileTypeGPX:
		if !gpxContentTypes[ct] {
			return "", uploadRejected("GPX uploads must be an XML content type")
		}
		ext = ".gpx"
	case FileTypeCardPhoto:
		e, ok := photoContentTypes[ct]
		if !ok {
			return "", uploadRejected("card photos must be JPEG, PNG, or WebP")
		}
		ext = e
	default:
		return "", uploadRejected("unknown file type")
	}
	if e := strings.ToLower(path.Ext(in.Filename)); e != "" && in.FileType == FileTypeCardPhoto {
		// Preserve the rider's extension when it is one we accept.
		for _, allowed := range photoContentTypes {
			if e == allowed || (e == ".jpeg" && allowed == ".jpg") {
				ext = allowed
			}
		}
	}

	key := fmt.Sprintf("%s/%s/%s-%d-%s%s",
		ev.ID, res.RiderID, in.FileType, s.clk.Now().Unix(), randomSuffix(), ext)

	if err := s.files.Put(ctx, key, ct, in.Content, in.Size); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	switch in.FileType {
	case FileTypeGPX:
		res.GPXPath = &key
	case FileTypeCardPhoto:
		res.CardPhotoPaths = append(res.CardPhotoPaths, key)
	}
	res.UpdatedAt = s.clk.Now()
	if err := s.results.Save(ctx, res); err != nil {
		// Compensate: the metadata write failed, so the just-uploaded blob
		// must not be orphaned.
		_ = s.files.Delete(ctx, key)
		return "", fmt.Errorf("record upload: %w", err)
	}
	return key, nil
}

func (s *Service) detachFile(ctx context.Context, res resultrepo.Result, ev eventrepo.Event, ft FileType) error {
	if ev.Status == domain.EventStatusSubmitted {
		return alreadySubmittedToACP()
	}

	var keys []string
	switch ft {
	case FileTypeGPX:
		if res.GPXPath != nil {
			keys = append(keys, *res.GPXPath)
		}
		res.GPXPath = nil
	case FileTypeCardPhoto:
		keys = append(keys, res.CardPhotoPaths...)
		res.CardPhotoPaths = nil
	default:
		return uploadRejected("unknown file type")
	}
	if len(keys) == 0 {
		return notFound()
	}

	res.UpdatedAt = s.clk.Now()
	if err := s.results.Save(ctx, res); err != nil {
		return err
	}
	// Metadata is the source of truth; blob deletion is best effort.
	_ = batch.Map(keys, func(key string) error {
		return s.files.Delete(ctx, key)
	})
	return nil
}

func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(strings.ToLower(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("read random: %v", err))
	}
	return hex.EncodeToString(b[:])
}
