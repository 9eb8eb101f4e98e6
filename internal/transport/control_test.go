package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControlHandleHello(t *testing.T) {
	c := &ControlSocket{mainPort: 8080}
	reply := c.handle([]byte("HELLO0.83\000"))
	require.Equal(t, "HELLOD00D8080\000", string(reply))
}

func TestControlHandlePing(t *testing.T) {
	c := &ControlSocket{mainPort: 8080}
	reply := c.handle([]byte("PING\000"))
	require.Equal(t, "PONG\000", string(reply))
}

func TestControlHandleStatusQuery(t *testing.T) {
	c := &ControlSocket{
		mainPort: 8080,
		status: func() (int, int, string) {
			return 2, 4, "test server"
		},
	}
	reply := c.handle([]byte{'S'})
	require.Equal(t, "2\x004\x00test server\x00", string(reply))
}

func TestControlHandleUnknownIsIgnored(t *testing.T) {
	c := &ControlSocket{mainPort: 8080}
	reply := c.handle([]byte("garbage"))
	require.Nil(t, reply)
}
