package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
	bugst "go.bug.st/serial"
)

// AutoPort as the port name selects the first serial port the OS reports.
const AutoPort = "auto"

// listPorts is swapped out in tests.
var listPorts = bugst.GetPortsList

// StopSequence terminates every record written to the serial link so a
// reader can resynchronise on it.
var StopSequence = []byte{'\r', '\n'}

// Serial writes each record followed by StopSequence to a serial port,
// e.g. the UART side of a radio bridge.
type Serial struct {
	mu     sync.Mutex
	port   io.WriteCloser
	name   string
	buf    []byte
	closed bool
}

func NewSerial(portName string, baudRate int) (*Serial, error) {
	portName, err := resolvePort(portName)
	if err != nil {
		return nil, err
	}

	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        uint(baudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return newSerialWithPort(port, portName), nil
}

func resolvePort(name string) (string, error) {
	if name != AutoPort {
		return name, nil
	}
	ports, err := listPorts()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		return "", errors.New("no serial ports found")
	}
	return ports[0], nil
}

func newSerialWithPort(port io.WriteCloser, name string) *Serial {
	return &Serial{port: port, name: name}
}

func (s *Serial) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *Serial) Notify(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotReady
	}

	s.buf = append(append(s.buf[:0], payload...), StopSequence...)
	n, err := s.port.Write(s.buf)
	if err != nil {
		return fmt.Errorf("serial write %s: %w", s.name, err)
	}
	if n != len(s.buf) {
		return fmt.Errorf("serial write %s: %w", s.name, io.ErrShortWrite)
	}
	return nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
