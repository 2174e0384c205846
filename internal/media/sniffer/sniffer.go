package sniffer

import (
	"bytes"
	"errors"
	"io"
	"os"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeMP4  MediaType = "mp4"
	TypeWEBM MediaType = "webm"
	TypeMOV  MediaType = "mov"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type  MediaType
	MIME  string
	Video bool
}

// DetectFile sniffs the first bytes of a file on disk.
func DetectFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, err
	}
	return DetectHead(head[:n])
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	case isWEBM(head):
		return Result{Type: TypeWEBM, MIME: "video/webm", Video: true}, nil
	case isMP4(head):
		return Result{Type: TypeMP4, MIME: "video/mp4", Video: true}, nil
	case isMOV(head):
		return Result{Type: TypeMOV, MIME: "video/quicktime", Video: true}, nil
	}

	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

// ISO base media files start with an ftyp box; the major brand tells mp4
// apart from quicktime.
func isMP4(head []byte) bool {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return false
	}
	brand := string(head[8:12])
	return brand != "qt  "
}

func isMOV(head []byte) bool {
	return len(head) >= 12 && string(head[4:8]) == "ftyp" && string(head[8:12]) == "qt  "
}

func isWEBM(head []byte) bool {
	ebml := []byte{0x1a, 0x45, 0xdf, 0xa3}
	return len(head) >= 4 && bytes.Equal(head[:4], ebml)
}
