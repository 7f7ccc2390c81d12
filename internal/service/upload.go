package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"fruitstore/internal/blob"
	"fruitstore/internal/model"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of an upload is read to identify its format.
const sniffLen = 512

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// sniffUpload checks the upload's size and identifies its format from the leading bytes,
// ignoring the client's Content-Type. The returned Upload carries the detected type and a
// body that still yields every byte.
func sniffUpload(u Upload, maxBytes int64) (Upload, error) {
	if u.Body == nil || u.Size <= 0 || (maxBytes > 0 && u.Size > maxBytes) {
		return Upload{}, model.ErrInvalidFile
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Upload{}, model.ErrInvalidFile
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return Upload{}, model.ErrInvalidFile
	}

	u.ContentType = mtype.String()
	u.Body = io.MultiReader(bytes.NewReader(head), u.Body)
	return u, nil
}

// uploadKey builds a unique object key such as payment-proof-1700000000000-receipt.png.
func uploadKey(prefix string, now time.Time, filename string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), blob.SanitizeFilename(filename))
}
