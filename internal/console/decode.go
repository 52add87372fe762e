package console

import (
	"image"

	"github.com/fpang/property-photo-studio/internal/compare"
	"github.com/fpang/property-photo-studio/internal/studio"
	"github.com/rs/zerolog/log"
)

func decodeHandle(h *studio.ImageHandle) image.Image {
	if h == nil {
		return nil
	}
	img, err := compare.Decode(h.Data)
	if err != nil {
		log.Warn().Err(err).Str("name", h.Name).Msg("Before-image cannot be composited")
		return nil
	}
	return img
}

func decodeAsset(assets AssetSource, ref string) image.Image {
	if assets == nil {
		return nil
	}
	a, ok := assets.Get(ref)
	if !ok {
		log.Warn().Str("url", ref).Msg("After-image not loaded")
		return nil
	}
	img, err := compare.Decode(a.Data)
	if err != nil {
		log.Warn().Err(err).Str("url", ref).Msg("After-image cannot be composited")
		return nil
	}
	return img
}
