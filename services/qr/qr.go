package qrsvc

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/kwanjiru/eduid/core"
)

// size of generated QR images in pixels; plenty for a 14mm print block.
const imageSize = 256

type service struct{}

var _ core.QRService = (*service)(nil)

func NewService() core.QRService {
	return service{}
}

// Generate encodes data into a QR code PNG at filename, creating parent
// directories as needed.
func (service) Generate(data, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.Wrap(err, "creating QR directory")
	}
	if err := qrcode.WriteFile(data, qrcode.Medium, imageSize, filename); err != nil {
		return errors.Wrap(err, "encoding QR code")
	}
	return nil
}
