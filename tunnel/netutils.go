package tunnel

import (
	"errors"
	"io"
	"net"
	"strings"
)

func SafeClose(conn io.Closer) {
	defer func() {
		_ = recover()
	}()
	if conn != nil {
		conn.Close()
	}
}

func IsValidHost(addr string) (err error) {
	var h string
	h, _, err = net.SplitHostPort(addr + ":1")
	if err != nil {
		return
	}
	if h == NULL {
		err = errors.New("Invalid address " + addr)
	}
	return
}

func IsClosedError(err error) bool {
	if err == nil {
		return false
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "closed") || strings.Contains(msg, "reset")
}

func IsTimeout(err error) bool {
	var netError, ok = err.(net.Error)
	if ok { // tcp timeout
		return netError.Timeout()
	} else {
		// kcp reports a plain "timeout" error
		return err != nil && err.Error() == "timeout"
	}
}
