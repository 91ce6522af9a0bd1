package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/webp"
	"github.com/labstack/echo/v4"

	"insights/pkg/utils"
)

// encodeWebP reads the image at path and re-encodes it as WebP.
func encodeWebP(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	log.Info("encoded product image", "path", path, "format", format, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// GET /images/product.webp
func (s *Server) handleGetProductImage(c echo.Context) error {
	if s.imagePath == "" {
		return c.JSON(http.StatusNotFound, utils.ErrJSON("no product image configured"))
	}

	data, err := s.images.Get(s.imagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.JSON(http.StatusNotFound, utils.ErrJSON("product image not found"))
		}
		log.Error("failed serving product image", "path", s.imagePath, "error", err)
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON("failed preparing product image"))
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, "image/webp", data)
}
