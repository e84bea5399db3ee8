// Package sds011 drives the Nova SDS011 particulate matter sensor over its
// 9600 8N1 serial protocol. The protocol layer works against any
// io.ReadWriter, so tests can substitute a scripted port for real hardware.
package sds011

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Measurement is one decoded sample. Concentrations are in µg/m³.
type Measurement struct {
	PM25     float64
	PM10     float64
	DeviceID uint16
}

// Sensor speaks the SDS011 command protocol over an underlying port.
type Sensor struct {
	port io.ReadWriter
}

// New wraps an already-open port.
func New(port io.ReadWriter) *Sensor {
	return &Sensor{port: port}
}

// Open connects to the sensor on the named serial device.
func Open(device string) (*Sensor, error) {
	port, err := serial.Open(&serial.Config{
		Address:  device,
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w", device, err)
	}
	return New(port), nil
}

// Close closes the underlying port when it is closable.
func (s *Sensor) Close() error {
	if c, ok := s.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Query asks for the current measurement. The sensor must be awake; readings
// taken before the fan has warmed up are unreliable.
func (s *Sensor) Query() (Measurement, error) {
	data, err := s.roundTrip(cmdQuery, respData)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{
		PM25:     float64(binary.LittleEndian.Uint16(data[0:2])) / 10,
		PM10:     float64(binary.LittleEndian.Uint16(data[2:4])) / 10,
		DeviceID: binary.BigEndian.Uint16(data[4:6]),
	}, nil
}

// Wake spins the fan and laser up.
func (s *Sensor) Wake() error {
	return s.setWorkState(1)
}

// Sleep powers the fan and laser down. Sleeping between reads extends the
// laser diode's rated lifetime considerably.
func (s *Sensor) Sleep() error {
	return s.setWorkState(0)
}

func (s *Sensor) setWorkState(state byte) error {
	_, err := s.roundTrip(cmdWorkState, respAck, 1, state)
	return err
}

// SetReportingMode selects query-response reporting (true) or the factory
// default active streaming (false).
func (s *Sensor) SetReportingMode(query bool) error {
	mode := byte(0)
	if query {
		mode = 1
	}
	_, err := s.roundTrip(cmdReportingMode, respAck, 1, mode)
	return err
}

// SetWorkingPeriod programs the sensor's autonomous duty cycle: 0 works
// continuously, 1-30 sleeps that many minutes between reads.
func (s *Sensor) SetWorkingPeriod(minutes int) error {
	if minutes < 0 || minutes > 30 {
		return fmt.Errorf("working period %d out of range 0-30", minutes)
	}
	_, err := s.roundTrip(cmdWorkingPeriod, respAck, 1, byte(minutes))
	return err
}

// FirmwareVersion reports the firmware date stamp as "year.month.day".
func (s *Sensor) FirmwareVersion() (string, error) {
	data, err := s.roundTrip(cmdFirmware, respAck)
	if err != nil {
		return "", err
	}
	// The ack echoes the command id; the date stamp follows it.
	return fmt.Sprintf("%d.%d.%d", data[1], data[2], data[3]), nil
}

// roundTrip writes one command frame and reads its response, verifying the
// response type matches what the command expects.
func (s *Sensor) roundTrip(id, wantType byte, args ...byte) ([]byte, error) {
	frame := buildCommand(id, args...)
	if _, err := s.port.Write(frame); err != nil {
		return nil, fmt.Errorf("write command 0x%02X: %w", id, err)
	}

	buf := make([]byte, responseLen)
	if _, err := io.ReadFull(s.port, buf); err != nil {
		return nil, fmt.Errorf("read response to command 0x%02X: %w", id, err)
	}

	typ, data, err := parseResponse(buf)
	if err != nil {
		return nil, fmt.Errorf("command 0x%02X: %w", id, err)
	}
	if typ != wantType {
		return nil, fmt.Errorf("command 0x%02X: got response type 0x%02X, want 0x%02X", id, typ, wantType)
	}
	return data, nil
}
