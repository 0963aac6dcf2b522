package tunnel

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	ex "github.com/Lafeng/dhdemo/exception"
	log "github.com/Lafeng/dhdemo/glog"
)

// Server plays Alice: every accepted connection runs one exchange.
type Server struct {
	party   *Party
	lock    sync.Locker
	last    *Result
	handled int32
	agreed  int32
	failed  int32
	alive   int32
	// accept failures other than close
	acceptErrors int32
	OnResult     func(*Result, net.Addr)
}

func NewServer(party *Party) *Server {
	return &Server{party: party, lock: new(sync.Mutex)}
}

func (t *Server) TunnelServe(conn net.Conn) {
	defer func() {
		SafeClose(conn)
		ex.Catch(recover(), nil)
		atomic.AddInt32(&t.alive, -1)
	}()
	atomic.AddInt32(&t.alive, 1)
	atomic.AddInt32(&t.handled, 1)

	res, err := t.party.Respond(conn)
	if err != nil {
		atomic.AddInt32(&t.failed, 1)
		if IsTimeout(err) {
			log.Warningln("Exchange with", conn.RemoteAddr(), "timed out")
		} else {
			log.Warningln("Exchange with", conn.RemoteAddr(), "failed:", err, ex.Detail(err))
		}
		return
	}
	atomic.AddInt32(&t.agreed, 1)
	t.lock.Lock()
	t.last = res
	t.lock.Unlock()

	log.Infof("Agreed with %s Y=%d peerY=%d fingerprint=%016x",
		conn.RemoteAddr(), res.Public, res.PeerPublic, res.Fingerprint)
	if log.V(log.LV_EXCHANGE) {
		log.Infof("K=%d", res.Secret)
	}
	if t.OnResult != nil {
		t.OnResult(res, conn.RemoteAddr())
	}
}

// Serve accepts until ln is closed. Other accept errors are logged and
// retried after ACCEPT_RETRY_INTERVAL.
func (t *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err == nil {
			go t.TunnelServe(conn)
			continue
		}
		SafeClose(conn)
		if IsClosedError(err) {
			return err
		}
		atomic.AddInt32(&t.acceptErrors, 1)
		log.Warningln("Accept:", err)
		time.Sleep(ACCEPT_RETRY_INTERVAL)
	}
}

// Last returns the most recent successful exchange, or nil.
func (t *Server) Last() *Result {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.last
}

func (t *Server) Stats() string {
	return fmt.Sprintf("Stats/Server handled=%d agreed=%d failed=%d alive=%d",
		atomic.LoadInt32(&t.handled), atomic.LoadInt32(&t.agreed),
		atomic.LoadInt32(&t.failed), atomic.LoadInt32(&t.alive))
}

func (t *Server) Close() {
	log.Infoln(t.Stats())
}
