// Package filex holds small filesystem helpers: data directories and turning
// attachments into inline data URIs.
package filex

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// EnsureDir creates dir (and parents) if missing and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// Attachment is a file encoded for transport inside a JSON record.
type Attachment struct {
	DataURI   string
	MediaType string
	FileName  string
	Size      int64
}

// ReadDataURI reads path and encodes it as a base64 data URI. Files larger
// than maxSize are rejected. When allowed is not empty the detected media
// type must be one of them.
func ReadDataURI(path string, maxSize int64, allowed ...string) (Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Attachment{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() > maxSize {
		return Attachment{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, fi.Size(), maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxSize {
		return Attachment{}, fmt.Errorf("%w: limit %d", ErrTooLarge, maxSize)
	}

	mt := mediaType(path, data)
	if len(allowed) > 0 && !contains(allowed, mt) {
		return Attachment{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mt)
	}

	return Attachment{
		DataURI:   "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data),
		MediaType: mt,
		FileName:  filepath.Base(path),
		Size:      int64(len(data)),
	}, nil
}

// mediaType prefers the sniffed content type and falls back to the
// extension when sniffing is inconclusive.
func mediaType(path string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	if sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if i := strings.IndexByte(byExt, ';'); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	return sniffed
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
