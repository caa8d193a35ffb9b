package proto

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

type Options struct {
	DTR         bool
	RTS         bool
	BaudRate    int
	ReadTimeout time.Duration
}

func NewSerial(name string) *Serial {
	return &Serial{name: name}
}

type Serial struct {
	name string
	port serial.Port
}

func (s *Serial) Name() string {
	return s.name
}

func (s *Serial) Ports() ([]string, error) {
	return serial.GetPortsList()
}

// Match picks the port named exactly like s, or else the first containing it.
func (s *Serial) Match(ports []string) string {
	var matched string
	for _, name := range ports {
		if name == s.name {
			return name
		}
		if matched == "" && strings.Contains(name, s.name) {
			matched = name
		}
	}
	return matched
}

func (s *Serial) Open(opts *Options) error {
	if err := s.open(opts); err != nil {
		return &ConnectError{Port: s.name, Err: err}
	}
	return nil
}

func (s *Serial) open(opts *Options) error {
	ports, err := s.Ports()
	if err != nil {
		return err
	}

	matched := s.Match(ports)
	if matched == "" {
		return errors.New("USB port not found")
	}

	port, err := serial.Open(matched, &serial.Mode{BaudRate: opts.BaudRate})
	if err != nil {
		return err
	}

	if err := port.SetDTR(opts.DTR); err != nil {
		_ = port.Close()
		return err
	}

	if err := port.SetRTS(opts.RTS); err != nil {
		_ = port.Close()
		return err
	}

	if opts.ReadTimeout > 0 {
		if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
			_ = port.Close()
			return err
		}
	}

	s.port = port
	return nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

func (s *Serial) Read(p []byte) (n int, err error) {
	return s.port.Read(p)
}

func (s *Serial) Write(p []byte) (n int, err error) {
	return s.port.Write(p)
}

// IsClosed reports whether err says the port went away.
func IsClosed(err error) bool {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		return pe.Code() == serial.PortClosed
	}
	return false
}
