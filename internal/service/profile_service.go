package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/gateway"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/media/sniffer"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/media/svg"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
)

var ErrInvalidImage = errors.New("invalid profile image")

type ProfileGateway interface {
	UpdateProfile(ctx context.Context, token, id string, fields map[string]string, image *gateway.FilePart) (gateway.ProfileUpdate, error)
}

// AvatarMirror keeps a copy of uploaded avatars. Optional.
type AvatarMirror interface {
	PutAvatar(ctx context.Context, imagePath string, data []byte, contentType string) error
}

type ProfileInput struct {
	Fields map[string]string
	Image  *multipart.FileHeader
}

type ProfileService struct {
	gw       ProfileGateway
	mirror   AvatarMirror
	maxBytes int64
	log      zerolog.Logger
}

func NewProfileService(gw ProfileGateway, mirror AvatarMirror, maxBytes int64, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		gw:       gw,
		mirror:   mirror,
		maxBytes: maxBytes,
		log:      log,
	}
}

func (s *ProfileService) MaxBytes() int64 { return s.maxBytes }

// Update sends the profile form for the signed-in user and writes the merged
// record back into the session. Gateway errors are returned unchanged so the
// caller can run them through the session's auth failure funnel.
func (s *ProfileService) Update(ctx context.Context, sess *session.Store, in ProfileInput) (models.User, error) {
	snap := sess.Snapshot()
	if !snap.Present() {
		return models.User{}, session.ErrNoSession
	}
	current := *snap.User

	part, err := s.PrepareImage(in.Image)
	if err != nil {
		return models.User{}, err
	}

	resp, err := s.gw.UpdateProfile(ctx, snap.Token, current.ID, in.Fields, part)
	if err != nil {
		return models.User{}, err
	}

	merged := current.Map()
	for k, v := range in.Fields {
		merged[k] = v
	}
	if resp.ProfileImage != "" {
		merged["profile_image"] = resp.ProfileImage
	}
	updated, err := models.DecodeUser(merged)
	if err != nil {
		return models.User{}, fmt.Errorf("merge profile: %w", err)
	}
	if err := sess.ReplaceUser(ctx, updated); err != nil {
		return models.User{}, err
	}

	if s.mirror != nil && part != nil && resp.ProfileImage != "" {
		if err := s.mirror.PutAvatar(ctx, resp.ProfileImage, part.Data, part.ContentType); err != nil {
			s.log.Warn().Err(err).Str("user_id", current.ID).Msg("mirror avatar failed")
		}
	}
	return updated, nil
}

// PrepareImage validates an uploaded image and returns the part to send. A
// missing or empty upload yields nil.
func (s *ProfileService) PrepareImage(fh *multipart.FileHeader) (*gateway.FilePart, error) {
	if fh == nil || fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, sniffer.ErrTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	result, data, err := sniffer.ReadImage(f, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if declared := sniffer.DeclaredMIME(fh.Header); !sniffer.Compatible(declared, result) {
		return nil, fmt.Errorf("%w: declared %s, actual %s", ErrInvalidImage, declared, result.MIME)
	}
	if result.Type == sniffer.TypeSVG {
		data, err = svg.Sanitize(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
	}

	return &gateway.FilePart{
		Field:       "profile_image",
		Filename:    imageName(fh.Filename, result),
		ContentType: result.MIME,
		Data:        data,
	}, nil
}

func imageName(original string, r sniffer.Result) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "avatar"
	}
	return base + r.Extension()
}
