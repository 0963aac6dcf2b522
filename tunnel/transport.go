package tunnel

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/Lafeng/dhdemo/glog"
	kcp "github.com/xtaci/kcp-go/v5"
)

// Transport is the insecure channel both parties talk over:
//
//	tcp://host:port
//	kcp://host:port/mode?mtu=1&rwnd=2&rbuf=3   mode = normal|fast|turbo|custom/a,b,c,d
type Transport struct {
	rawURL    string
	host      string
	port      int
	transType string
	kcpMode   string
	kcpParams []int
	mtu       int
	wnd       int
	buf       int
}

func ParseTransport(str string) (*Transport, error) {
	var t = &Transport{rawURL: str}
	return t, t.parseTransport(str)
}

func (t *Transport) parseTransport(str string) error {
	u, err := url.Parse(str)
	if err != nil {
		return err
	}

	t.host = u.Hostname()
	if t.port, err = strconv.Atoi(u.Port()); err != nil {
		return CONF_ERROR.Apply(str)
	}

	switch u.Scheme {
	case "tcp":
		t.transType = "tcp"
		return nil // TCP OK

	case "kcp":
		t.transType = "kcp"
		goto kcp

	default:
		goto err
	}

kcp:
	{
		t.kcpMode = strings.TrimPrefix(u.Path, "/")
		switch t.kcpMode {
		case "normal":
			t.kcpParams = []int{0, 40, 7, 1}
		case "", "fast":
			t.kcpMode = "fast"
			t.kcpParams = []int{0, 20, 5, 1}
		case "turbo":
			t.kcpParams = []int{0, 10, 2, 1}
		default:
			if strings.HasPrefix(t.kcpMode, "custom/") {
				if t.kcpParams, err = toIntArray(t.kcpMode[7:], 4); err == nil {
					break
				}
			}
			goto err
		}

		var params = values(u.Query())
		if t.mtu, err = params.getInt("mtu", 1400); err != nil {
			goto err
		}
		if t.wnd, err = params.getInt("rwnd", 128); err != nil {
			goto err
		}
		if t.buf, err = params.getInt("rbuf", 1<<20); err != nil {
			goto err
		}
		return nil
	}

err:
	return CONF_ERROR.Apply(str)
}

func (t *Transport) TransType() string {
	return t.transType
}

func (t *Transport) String() string {
	switch t.transType {
	case "tcp":
		return fmt.Sprintf("tcp://%s", t.address())
	case "kcp":
		return fmt.Sprintf("kcp://%s/%s", t.address(), t.kcpMode)
	}
	return t.rawURL
}

func (t *Transport) address() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

func (t *Transport) Dial(timeout time.Duration) (net.Conn, error) {
	// listeners may bind every interface, dialers need a host
	if err := IsValidHost(t.host); err != nil {
		return nil, err
	}
	switch t.transType {
	case "tcp":
		return net.DialTimeout("tcp", t.address(), timeout)
	case "kcp":
		return t.dialKcpConnection()
	}
	return nil, ILLEGAL_STATE
}

func (t *Transport) dialKcpConnection() (net.Conn, error) {
	var kcpconn, err = kcp.DialWithOptions(t.address(), nil, KCP_FEC_DATASHARD, KCP_FEC_PARITYSHARD)
	if err != nil {
		return nil, err
	}
	if err = t.setupKcpConnection(kcpconn, true); err != nil {
		kcpconn.Close()
		return nil, err
	}
	return kcpconn, nil
}

func (t *Transport) setupKcpConnection(kcpconn *kcp.UDPSession, dialer bool) (err error) {
	// nodelay, interval(ms), resend, nc
	var p = t.kcpParams
	kcpconn.SetNoDelay(p[0], p[1], p[2], p[3])
	kcpconn.SetWindowSize(t.wnd, t.wnd)
	kcpconn.SetMtu(t.mtu)
	kcpconn.SetACKNoDelay(true)
	kcpconn.SetStreamMode(true)
	kcpconn.SetWriteDelay(false)

	if dialer {
		if err = kcpconn.SetReadBuffer(t.buf); err != nil {
			log.Errorln("SetReadBuffer:", err)
			return
		}
		if err = kcpconn.SetWriteBuffer(t.buf); err != nil {
			log.Errorln("SetWriteBuffer:", err)
			return
		}
	}
	return nil
}

func (t *Transport) Listen() (net.Listener, error) {
	switch t.transType {
	case "tcp":
		return net.Listen("tcp", t.address())
	case "kcp":
		ln, err := kcp.ListenWithOptions(t.address(), nil, KCP_FEC_DATASHARD, KCP_FEC_PARITYSHARD)
		if err != nil {
			return nil, err
		}
		if err = ln.SetReadBuffer(t.buf); err != nil {
			log.Errorln("SetReadBuffer:", err)
		}
		return &kcpListener{ln, t}, nil
	}
	return nil, ILLEGAL_STATE
}

// applies the session options to every accepted kcp session
type kcpListener struct {
	*kcp.Listener
	t *Transport
}

func (l *kcpListener) Accept() (net.Conn, error) {
	conn, err := l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	l.t.setupKcpConnection(conn, false)
	return conn, nil
}

// Peer returns a transport of the same kind aimed at addr, for dialing a
// listener bound to an ephemeral port.
func (t *Transport) Peer(addr net.Addr) (*Transport, error) {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil, err
	}
	var peer = *t
	peer.host = host
	peer.port, err = strconv.Atoi(port)
	return &peer, err
}

type values url.Values

func (v values) getOne(k string) string {
	var arr = v[k]
	if len(arr) == 0 {
		return ""
	} else {
		return arr[0]
	}
}

func (v values) getInt(k string, defaultValue int) (int, error) {
	var value = v.getOne(k)
	if value == NULL {
		return defaultValue, nil
	} else {
		return strconv.Atoi(value)
	}
}

func toIntArray(str string, num int) ([]int, error) {
	var parts = strings.Split(str, ",")
	var array []int
	for _, v := range parts {
		if i, err := strconv.Atoi(v); err == nil {
			array = append(array, i)
		} else {
			return nil, err
		}
	}
	if len(array) == num {
		return array, nil
	}
	return nil, fmt.Errorf("invalid input %s", str)
}
