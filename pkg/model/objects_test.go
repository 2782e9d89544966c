package model

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/oneconcern/pkgreg/pkg/errors"
	"github.com/oneconcern/pkgreg/pkg/model/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectsStream(t *testing.T) {
	objects := []Object{
		{Hash: "abc", Size: 3},
		{Hash: "def", Size: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteObjects(objects, &buf))

	var length int64
	require.NoError(t, binary.Read(bytes.NewReader(buf.Bytes()[:8]), binary.BigEndian, &length))
	assert.EqualValues(t, buf.Len()-8, length)

	read, err := ReadObjects(&buf)
	require.NoError(t, err)
	assert.Equal(t, objects, read)
}

func TestReadObjectsErrors(t *testing.T) {
	_, err := ReadObjects(bytes.NewReader([]byte{0, 1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidObjects))

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, int64(0)))
	_, err = ReadObjects(&buf)
	require.Error(t, err)

	buf.Reset()
	require.NoError(t, binary.Write(&buf, binary.BigEndian, int64(100)))
	buf.WriteString("[]")
	_, err = ReadObjects(&buf)
	require.Error(t, err, "truncated payload")

	buf.Reset()
	require.NoError(t, binary.Write(&buf, binary.BigEndian, int64(3)))
	buf.WriteString("{{{")
	_, err = ReadObjects(&buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidObjects))
}
