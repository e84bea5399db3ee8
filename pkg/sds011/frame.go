package sds011

import "fmt"

// Frame layout constants. Commands are 19 bytes:
//
//	AA B4 <cmd> <12 data bytes> FF FF <checksum> AB
//
// and responses are 10 bytes:
//
//	AA C0|C5 <6 data bytes> <checksum> AB
//
// The FF FF target addresses every sensor on the bus. Checksums are the byte
// sum of the payload between the framing bytes, modulo 256.
const (
	frameHead = 0xAA
	frameTail = 0xAB
	cmdSubmit = 0xB4

	respData = 0xC0 // measurement payload
	respAck  = 0xC5 // command acknowledgement

	commandLen  = 19
	responseLen = 10
)

// Command identifiers.
const (
	cmdReportingMode = 0x02
	cmdQuery         = 0x04
	cmdWorkState     = 0x06
	cmdFirmware      = 0x07
	cmdWorkingPeriod = 0x08
)

// buildCommand assembles a 19-byte command frame. data fills the leading
// positions of the 12-byte argument block; the rest stays zero.
func buildCommand(id byte, data ...byte) []byte {
	frame := make([]byte, 0, commandLen)
	frame = append(frame, frameHead, cmdSubmit, id)

	args := make([]byte, 12)
	copy(args, data)
	frame = append(frame, args...)

	frame = append(frame, 0xFF, 0xFF)
	frame = append(frame, checksum(frame[2:]), frameTail)
	return frame
}

// parseResponse validates a 10-byte response frame and returns its type byte
// and six data bytes.
func parseResponse(buf []byte) (byte, []byte, error) {
	if len(buf) != responseLen {
		return 0, nil, fmt.Errorf("response is %d bytes, want %d", len(buf), responseLen)
	}
	if buf[0] != frameHead || buf[responseLen-1] != frameTail {
		return 0, nil, fmt.Errorf("malformed response frame % X", buf)
	}
	typ := buf[1]
	if typ != respData && typ != respAck {
		return 0, nil, fmt.Errorf("unexpected response type 0x%02X", typ)
	}
	if sum := checksum(buf[2:8]); sum != buf[8] {
		return 0, nil, fmt.Errorf("response checksum 0x%02X, want 0x%02X", buf[8], sum)
	}
	return typ, buf[2:8], nil
}

// checksum sums the given bytes modulo 256.
func checksum(b []byte) byte {
	var sum int
	for _, v := range b {
		sum += int(v)
	}
	return byte(sum % 256)
}
