//go:build !darwin && !linux

package volume

func NewActuator() (Actuator, error) {
	return nil, ErrUnsupported
}
