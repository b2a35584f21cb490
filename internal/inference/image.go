package inference

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyImage = errors.New("empty image")
	ErrNotAnImage = errors.New("file is not an image")
)

// Image es una foto subida por el usuario.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidateImage detecta el tipo real por contenido; el Content-Type declarado
// por el cliente no se usa. Devuelve el mime detectado.
func ValidateImage(img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}
	mt := mimetype.Detect(img.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return mt.String(), ErrNotAnImage
	}
	return mt.String(), nil
}
