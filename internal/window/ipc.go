package window

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ipcMessageType is the type field of an i3-ipc message header
type ipcMessageType uint32

const (
	ipcRunCommand ipcMessageType = 0
	ipcGetTree    ipcMessageType = 4
)

// ipcMaxPayload bounds a single reply. A large tree is a few hundred KiB.
const ipcMaxPayload = 64 << 20

var ipcMagic = [6]byte{'i', '3', '-', 'i', 'p', 'c'}

type ipcHeader struct {
	Magic  [6]byte
	Length uint32
	Type   ipcMessageType
}

// writeMessage frames payload as one i3-ipc message
func writeMessage(w io.Writer, t ipcMessageType, payload []byte) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, ipcHeader{ipcMagic, uint32(len(payload)), t}); err != nil {
		return err
	}
	buf.Write(payload)

	_, err := w.Write(buf.Bytes())
	return err
}

// readMessage reads one i3-ipc message and returns its type and payload
func readMessage(r io.Reader) (ipcMessageType, []byte, error) {
	var h ipcHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return 0, nil, err
	}
	if h.Magic != ipcMagic {
		return 0, nil, fmt.Errorf("bad ipc magic %q", h.Magic[:])
	}
	if h.Length > ipcMaxPayload {
		return 0, nil, fmt.Errorf("ipc payload too large: %d bytes", h.Length)
	}

	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return h.Type, payload, nil
}
