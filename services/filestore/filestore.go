// Package filestore holds the document stores: files are kept locally or sent to the remote documents API.
package filestore

import (
	"bufio"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core/document"
)

// sniffLen is how much of the content is read to detect its type.
const sniffLen = 3072

// sniff detects the content type from the first bytes of r, without consuming them.
func sniff(r io.Reader) (mime string, content io.Reader, err error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, errors.Wrap(err, "reading file")
	}
	if len(head) == 0 {
		return "", nil, document.ErrEmptyFile
	}
	return detectMIME(head), br, nil
}

// detectMIME uses stdlib detection first and falls back to mimetype when ambiguous.
func detectMIME(head []byte) string {
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return strings.TrimSpace(strings.SplitN(mt, ";", 2)[0])
	}
	return mimetype.Detect(head).String()
}

// isAllowed accepts images and PDFs.
func isAllowed(mime string) bool {
	return strings.HasPrefix(mime, "image/") || mime == "application/pdf"
}

// cleanFileName keeps the base name of what the client sent.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func extension(mime string) string {
	if mt := mimetype.Lookup(mime); mt != nil {
		return mt.Extension()
	}
	return ""
}
