package logger

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAsyncWriterFansOut(t *testing.T) {
	var a, b bytes.Buffer
	w := newAsyncWriter([]io.Writer{&a, nil, &b}, 16)
	require.NoError(t, w.Write([]byte("one\n")))
	require.NoError(t, w.Write([]byte("two\n")))
	require.NoError(t, w.Flush())
	assert.Equal(t, "one\ntwo\n", a.String())
	assert.Equal(t, "one\ntwo\n", b.String())

	require.NoError(t, w.Write([]byte("three\n")))
	require.NoError(t, w.Close())
	assert.Equal(t, "one\ntwo\nthree\n", a.String())
	assert.NoError(t, w.Flush())
}

func TestAsyncWriterReportsSinkError(t *testing.T) {
	w := newAsyncWriter([]io.Writer{failingSink{}}, 16)
	require.NoError(t, w.Write([]byte("line\n")))
	assert.Error(t, w.Close())
	assert.Error(t, w.Write([]byte("again\n")))
}
