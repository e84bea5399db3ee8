package sds011

import (
	"bytes"
	"strings"
	"testing"
)

// fakePort scripts responses into reads and captures everything written.
type fakePort struct {
	reads  bytes.Buffer
	writes bytes.Buffer
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.reads.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.writes.Write(b) }

// respond builds a valid 10-byte response frame of the given type. data
// fills the leading positions of the 6-byte payload.
func respond(typ byte, data ...byte) []byte {
	payload := make([]byte, 6)
	copy(payload, data)

	buf := make([]byte, 0, responseLen)
	buf = append(buf, frameHead, typ)
	buf = append(buf, payload...)
	return append(buf, checksum(payload), frameTail)
}

func TestBuildCommandFrame(t *testing.T) {
	frame := buildCommand(cmdQuery)

	if len(frame) != commandLen {
		t.Fatalf("command frame is %d bytes, want %d", len(frame), commandLen)
	}
	if frame[0] != frameHead || frame[1] != cmdSubmit || frame[18] != frameTail {
		t.Errorf("bad framing bytes: % X", frame)
	}
	if frame[2] != cmdQuery {
		t.Errorf("command id = 0x%02X, want 0x%02X", frame[2], cmdQuery)
	}
	// Checksum covers command id, the 12 argument bytes, and the FF FF
	// broadcast target: 0x04 + 0xFF + 0xFF = 0x202, truncated to 0x02.
	if frame[17] != 0x02 {
		t.Errorf("checksum = 0x%02X, want 0x02", frame[17])
	}
}

func TestBuildCommandPlacesArguments(t *testing.T) {
	frame := buildCommand(cmdWorkState, 1, 0)

	if frame[3] != 1 || frame[4] != 0 {
		t.Errorf("argument bytes = % X, want 01 00", frame[3:5])
	}
	for i := 5; i < 15; i++ {
		if frame[i] != 0 {
			t.Errorf("argument byte %d = 0x%02X, want zero padding", i, frame[i])
		}
	}
}

func TestQueryParsesMeasurement(t *testing.T) {
	port := &fakePort{}
	// PM2.5 word 123 -> 12.3 µg/m³, PM10 word 456 -> 45.6 µg/m³.
	port.reads.Write(respond(respData, 0x7B, 0x00, 0xC8, 0x01, 0xAB, 0xCD))

	m, err := New(port).Query()
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if m.PM25 != 12.3 {
		t.Errorf("PM2.5 = %v, want 12.3", m.PM25)
	}
	if m.PM10 != 45.6 {
		t.Errorf("PM10 = %v, want 45.6", m.PM10)
	}
	if m.DeviceID != 0xABCD {
		t.Errorf("device id = 0x%04X, want 0xABCD", m.DeviceID)
	}

	// The written command must be a well-formed query frame.
	written := port.writes.Bytes()
	if !bytes.Equal(written, buildCommand(cmdQuery)) {
		t.Errorf("written frame = % X", written)
	}
}

func TestWakeAndSleepSetWorkState(t *testing.T) {
	port := &fakePort{}
	port.reads.Write(respond(respAck, 1, 1))
	port.reads.Write(respond(respAck, 1, 0))

	sensor := New(port)
	if err := sensor.Wake(); err != nil {
		t.Fatalf("Wake returned error: %v", err)
	}
	if err := sensor.Sleep(); err != nil {
		t.Fatalf("Sleep returned error: %v", err)
	}

	written := port.writes.Bytes()
	if len(written) != 2*commandLen {
		t.Fatalf("wrote %d bytes, want two command frames", len(written))
	}
	wake, sleep := written[:commandLen], written[commandLen:]
	if wake[2] != cmdWorkState || wake[3] != 1 || wake[4] != 1 {
		t.Errorf("wake frame = % X", wake[:5])
	}
	if sleep[2] != cmdWorkState || sleep[3] != 1 || sleep[4] != 0 {
		t.Errorf("sleep frame = % X", sleep[:5])
	}
}

func TestFirmwareVersionFormatsDateStamp(t *testing.T) {
	port := &fakePort{}
	port.reads.Write(respond(respAck, cmdFirmware, 21, 3, 14))

	version, err := New(port).FirmwareVersion()
	if err != nil {
		t.Fatalf("FirmwareVersion returned error: %v", err)
	}
	if version != "21.3.14" {
		t.Errorf("version = %q, want 21.3.14", version)
	}
}

func TestSetWorkingPeriodRejectsOutOfRange(t *testing.T) {
	port := &fakePort{}
	sensor := New(port)

	if err := sensor.SetWorkingPeriod(31); err == nil {
		t.Error("expected error for working period above 30")
	}
	if err := sensor.SetWorkingPeriod(-1); err == nil {
		t.Error("expected error for negative working period")
	}
	if port.writes.Len() != 0 {
		t.Error("out-of-range period should not reach the port")
	}
}

func TestBadChecksumRejected(t *testing.T) {
	port := &fakePort{}
	frame := respond(respData, 0x7B, 0x00, 0xC8, 0x01)
	frame[8]++ // corrupt the checksum
	port.reads.Write(frame)

	_, err := New(port).Query()
	if err == nil {
		t.Fatal("expected checksum error")
	}
	if !strings.Contains(err.Error(), "checksum") {
		t.Errorf("error %q should mention the checksum", err)
	}
}

func TestShortResponseFails(t *testing.T) {
	port := &fakePort{}
	port.reads.Write([]byte{frameHead, respData, 0x01})

	if _, err := New(port).Query(); err == nil {
		t.Fatal("expected error for truncated response")
	}
}

func TestUnexpectedResponseTypeFails(t *testing.T) {
	port := &fakePort{}
	// A command ack where a measurement was expected.
	port.reads.Write(respond(respAck, 1, 1))

	if _, err := New(port).Query(); err == nil {
		t.Fatal("expected error for mismatched response type")
	}
}

func TestParseResponseRejectsForeignFrames(t *testing.T) {
	payload := make([]byte, 6)
	buf := append([]byte{frameHead, 0x99}, payload...)
	buf = append(buf, checksum(payload), frameTail)

	if _, _, err := parseResponse(buf); err == nil {
		t.Error("expected error for unknown response type byte")
	}

	buf = respond(respData)
	buf[0] = 0x00
	if _, _, err := parseResponse(buf); err == nil {
		t.Error("expected error for missing frame head")
	}
}
