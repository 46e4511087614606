package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrPictureTooLarge    = errors.New("picture is too large")
	ErrPictureUnsupported = errors.New("only jpg and png pictures are allowed")
	ErrNoPicture          = errors.New("no picture provided")
)

var allowedPictureExts = []string{".jpg", ".jpeg", ".png"}

// PictureValidator checks an uploaded profile picture before it gets
// anywhere near the image pipeline. The extension check is easy to
// spoof, so the content is sniffed too.
func PictureValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoPicture
	}

	ext := strings.ToLower(path.Ext(fh.Filename))

	allowed := false
	for _, e := range allowedPictureExts {
		if ext == e {
			allowed = true
			break
		}
	}

	if !allowed {
		return http.StatusBadRequest, nil, ErrPictureUnsupported
	}

	if fh.Size > viper.GetInt64("pictures.max_size") {
		return http.StatusRequestEntityTooLarge, nil, ErrPictureTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if !mime.Is("image/jpeg") && !mime.Is("image/png") {
		f.Close()
		return http.StatusBadRequest, nil, ErrPictureUnsupported
	}

	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	return 0, f, nil
}
