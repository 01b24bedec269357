package listener

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleConnListener_AcceptOnceThenErrClosed(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	l := newSingleConnListener(server)

	got, err := l.Accept()
	require.NoError(t, err)
	assert.Same(t, server, got)

	_, err = l.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestSingleConnListener_AddrMatchesConn(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	l := newSingleConnListener(server)
	assert.Equal(t, server.LocalAddr(), l.Addr())
}

func TestPeekedConn_ReadsThroughBufferedPrefix(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		client.Write([]byte("hello"))
		client.Close()
	}()

	br := bufio.NewReader(server)
	peeked, err := br.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("he"), peeked)

	pc := &peekedConn{Conn: server, r: br}
	buf := make([]byte, 5)
	n, err := pc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}
