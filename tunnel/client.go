package tunnel

import (
	"fmt"
	"sync/atomic"

	ex "github.com/Lafeng/dhdemo/exception"
	log "github.com/Lafeng/dhdemo/glog"
)

// Client plays Bob: it dials the transport and initiates the exchange.
type Client struct {
	party     *Party
	transport *Transport
	attempts  int32
	agreed    int32
}

func NewClient(party *Party, transport *Transport) *Client {
	return &Client{party: party, transport: transport}
}

func (c *Client) Exchange() (*Result, error) {
	atomic.AddInt32(&c.attempts, 1)
	conn, err := c.transport.Dial(c.party.Timeout)
	if err != nil {
		log.Errorf("Failed to connect to %s %s", c.transport, ex.Detail(err))
		return nil, err
	}
	defer SafeClose(conn)

	res, err := c.party.Initiate(conn)
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&c.agreed, 1)
	if log.V(log.LV_EXCHANGE) {
		log.Infof("Agreed with %s Y=%d peerY=%d K=%d", c.transport, res.Public, res.PeerPublic, res.Secret)
	}
	return res, nil
}

func (c *Client) Stats() string {
	return fmt.Sprintf("Stats/Client attempts=%d agreed=%d",
		atomic.LoadInt32(&c.attempts), atomic.LoadInt32(&c.agreed))
}

func (c *Client) Close() {}
