package extract

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

// pdfHeaderWindow is how far into the file the %PDF- marker may appear.
const pdfHeaderWindow = 1024

var pdfMagic = []byte("%PDF-")

// checkDecodable verifies the bytes are a document of the declared type.
func checkDecodable(content []byte, mt constants.MediaType) error {
	switch mt {
	case constants.MediaPDF:
		head := content
		if len(head) > pdfHeaderWindow {
			head = head[:pdfHeaderWindow]
		}
		if !bytes.Contains(head, pdfMagic) {
			return common.UnsupportedMediaTypef("content is not a PDF document")
		}
		return nil
	case constants.MediaJPG, constants.MediaPNG:
		_, format, err := image.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			return common.UnsupportedMediaTypef("content does not decode as %s: %v", mt, err)
		}
		if (mt == constants.MediaJPG && format != "jpeg") || (mt == constants.MediaPNG && format != "png") {
			return common.UnsupportedMediaTypef("declared %s but content is %s", mt, format)
		}
		return nil
	}
	return common.UnsupportedMediaTypef("media type %q is not supported", mt)
}
