package tunnel

import (
	"os"
	"syscall"
	"time"

	"github.com/Lafeng/dhdemo/exception"
)

const (
	NULL = ""
	Bye  = syscall.Signal(0xfffb8e)

	GENERAL_SO_TIMEOUT    = 10 * time.Second
	ACCEPT_RETRY_INTERVAL = 200 * time.Millisecond
	KCP_FEC_DATASHARD     = 0
	KCP_FEC_PARITYSHARD   = 0
)

var (
	ILLEGAL_STATE      = exception.New("Illegal state")
	HANDSHAKE_FAILED   = exception.New("Handshake failed:")
	PARAMS_MISMATCH    = exception.New("Peer uses different group parameters:")
	KEY_CONFIRM_FAILED = exception.New("Key confirmation failed")
	NOT_GENERATOR      = exception.New("Alpha is not a primitive root of q:")
)

func IsNotExist(file string) bool {
	_, err := os.Stat(file)
	return os.IsNotExist(err)
}
