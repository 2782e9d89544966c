package model

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/docker/go-units"
	"github.com/oneconcern/pkgreg/pkg/model/status"
)

// objectsSizeLimit bounds the JSON payload of an objects stream
const objectsSizeLimit = 10 * units.MiB

// ReadObjects reads a list of objects from a stream.
//
// The stream holds an 8 bytes big-endian length, followed by a JSON array of objects.
func ReadObjects(reader io.Reader) ([]Object, error) {
	var length int64
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return nil, status.ErrInvalidObjects.Wrapf("error reading objects length: %v", err)
	}
	if length <= 0 || length >= objectsSizeLimit {
		return nil, status.ErrInvalidObjects.Wrapf("found invalid JSON length %d", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, status.ErrInvalidObjects.Wrapf("error reading objects JSON data: %v", err)
	}

	var objects []Object
	if err := JSON.Unmarshal(data, &objects); err != nil {
		return nil, status.ErrInvalidObjects.Wrapf("error unmarshalling objects JSON: %v", err)
	}
	return objects, nil
}

// WriteObjects writes a list of objects to a stream, in the format expected by ReadObjects
func WriteObjects(objects []Object, output io.Writer) error {
	if objects == nil {
		objects = []Object{}
	}
	data, err := JSON.Marshal(objects)
	if err != nil {
		return fmt.Errorf("error marshalling objects JSON: %w", err)
	}
	if len(data) >= objectsSizeLimit {
		return status.ErrInvalidObjects.Wrapf("objects JSON is too large: %d bytes", len(data))
	}

	if err = binary.Write(output, binary.BigEndian, int64(len(data))); err != nil {
		return fmt.Errorf("error writing objects JSON length: %w", err)
	}
	if _, err = output.Write(data); err != nil {
		return fmt.Errorf("error writing objects JSON: %w", err)
	}
	return nil
}
