package vm

import (
	"fmt"
	"io"

	"github.com/dmbetz/mbasic/isa"
)

// LoadImage reads a compiled image from r and splits it into its header,
// TEXT, and its own fresh, writable copy of DATA, per spec.md sections 4.F
// and 6. A fresh copy matters: running the same image twice must start
// from the same initial DATA each time, not the previous run's mutations.
func LoadImage(r io.Reader) (isa.ImageHdr, []byte, []byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return isa.ImageHdr{}, nil, nil, err
	}
	if len(raw) < isa.HeaderSize {
		return isa.ImageHdr{}, nil, nil, fmt.Errorf("vm: image too short: %d bytes", len(raw))
	}
	hdr := isa.GetHeader(raw)
	if int(hdr.ImageSize) != len(raw) {
		return isa.ImageHdr{}, nil, nil, fmt.Errorf("vm: image size mismatch: header says %d, file has %d bytes", hdr.ImageSize, len(raw))
	}
	textSize := int(hdr.DataOffset) - isa.HeaderSize
	if textSize < 0 || isa.HeaderSize+textSize > len(raw) {
		return isa.ImageHdr{}, nil, nil, fmt.Errorf("vm: corrupt image header")
	}
	text := raw[isa.HeaderSize : isa.HeaderSize+textSize]
	data := make([]byte, hdr.DataSize)
	copy(data, raw[hdr.DataOffset:hdr.DataOffset+isa.UCell(hdr.DataSize)])
	return hdr, text, data, nil
}

// WriteImage encodes hdr, text, and the initial DATA image in the on-disk
// layout LoadImage reads back, matching the image writer of spec.md
// section 4.F.
func WriteImage(w io.Writer, hdr isa.ImageHdr, text, data []byte) error {
	var hb [isa.HeaderSize]byte
	isa.PutHeader(hb[:], hdr)
	if _, err := w.Write(hb[:]); err != nil {
		return err
	}
	if _, err := w.Write(text); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
