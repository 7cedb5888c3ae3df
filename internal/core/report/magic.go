package report

import (
	"bytes"
	"io"
	"os"
)

// Container names returned by DetectContainer
const (
	ContainerISOBMFF = "isobmff" // mp4, m4a, mov
	ContainerWebM    = "webm"    // webm, mkv
	ContainerMPEGTS  = "mpegts"
)

// DetectContainer reads the first bytes of the file at path and returns the
// container family, or "" when the signature is unknown.
func DetectContainer(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// ISO BMFF needs 8 bytes: box size + "ftyp"
	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	header = header[:n]

	switch {
	case n >= 8 && string(header[4:8]) == "ftyp":
		return ContainerISOBMFF, nil
	case n >= 4 && bytes.Equal(header[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ContainerWebM, nil
	case n >= 1 && header[0] == 0x47:
		return ContainerMPEGTS, nil
	}
	return "", nil
}

// Conforms reports whether the artifact's bytes match the container its
// extension promises. Unknown signatures do not conform.
func Conforms(a Artifact) (bool, string) {
	container, err := DetectContainer(a.Path)
	if err != nil {
		return false, ""
	}
	return container == ContainerISOBMFF, container
}
