package profile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Encoded sizes of the persisted records, excluding the store tag byte.
const (
	ProfileSize = 7
	TableSize   = Count * ProfileSize
	ConfigSize  = 2
)

var (
	// ErrSize is returned when a blob does not match the record size.
	ErrSize = errors.New("record size mismatch")
	// ErrRange is returned when a decoded profile index is outside the table.
	ErrRange = errors.New("profile index out of range")
)

// MarshalBinary encodes the table as Count consecutive 7-byte slots:
// mode, color, v1, v2, v3, bright, speed.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(TableSize)
	if err := binary.Write(&buf, binary.LittleEndian, t); err != nil {
		return nil, fmt.Errorf("encode profile table: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a blob written by MarshalBinary. The table is
// left untouched on error.
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) != TableSize {
		return fmt.Errorf("profile table: %w: got %d bytes, want %d", ErrSize, len(data), TableSize)
	}
	var decoded Table
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &decoded); err != nil {
		return fmt.Errorf("decode profile table: %w", err)
	}
	*t = decoded
	return nil
}

// MarshalBinary encodes the configuration as power (0/1) then index.
func (c *Config) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(ConfigSize)
	if err := binary.Write(&buf, binary.LittleEndian, c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a blob written by MarshalBinary. The config is
// left untouched on error.
func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) != ConfigSize {
		return fmt.Errorf("config: %w: got %d bytes, want %d", ErrSize, len(data), ConfigSize)
	}
	var decoded Config
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &decoded); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if int(decoded.Profile) >= Count {
		return fmt.Errorf("config: %w: %d", ErrRange, decoded.Profile)
	}
	*c = decoded
	return nil
}
