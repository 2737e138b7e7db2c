package render

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/mattn/go-sixel"
)

const kittyChunkSize = 4096

// WriteKitty transmits a PNG with the kitty graphics protocol: base64 payload
// split into 4096 byte chunks, control keys on the first chunk only, m=1 on
// every chunk but the last.
func WriteKitty(w io.Writer, pngData []byte) error {
	payload := base64.StdEncoding.EncodeToString(pngData)
	bw := bufio.NewWriter(w)
	for first := true; ; first = false {
		n := min(kittyChunkSize, len(payload))
		chunk := payload[:n]
		payload = payload[n:]
		more := 0
		if len(payload) > 0 {
			more = 1
		}

		_, _ = bw.WriteString("\x1b_G")
		if first {
			_, _ = bw.WriteString("a=T,f=100,q=2,")
		}
		_, _ = fmt.Fprintf(bw, "m=%d;", more)
		_, _ = bw.WriteString(chunk)
		_, _ = bw.WriteString("\x1b\\")
		if more == 0 {
			break
		}
	}
	return bw.Flush()
}

// WriteITerm transmits an image with the iTerm2 inline image protocol
// (OSC 1337 File=).
func WriteITerm(w io.Writer, data []byte, width int) error {
	header := fmt.Sprintf("\x1b]1337;File=inline=1;size=%d", len(data))
	if width > 0 {
		header += fmt.Sprintf(";width=%dpx", width)
	}
	header += ";preserveAspectRatio=1:"

	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(header)
	enc := base64.NewEncoder(base64.StdEncoding, bw)
	_, _ = enc.Write(data)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode base64: %w", err)
	}
	_, _ = bw.WriteString("\a")
	return bw.Flush()
}

// WriteSixel emits img as a DEC sixel stream.
func WriteSixel(w io.Writer, img image.Image) error {
	enc := sixel.NewEncoder(w)
	enc.Dither = true
	if err := enc.Encode(img); err != nil {
		return fmt.Errorf("encode sixel: %w", err)
	}
	return nil
}
