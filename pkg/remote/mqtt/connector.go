package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/n2cmu.go/pkg/remote"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector implements remote.Connector using MQTT.
type Connector struct {
	BrokerURL       string
	DiscoverTimeout time.Duration
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{BrokerURL: brokerURL, DiscoverTimeout: DefaultDiscoverTimeout}, nil
}

func (c *Connector) newQueue(clientID string) *Queue {
	opts, topicPrefix, _ := ClientOptionsFromURL(c.BrokerURL)
	if opts.ClientID == "" {
		opts.SetClientID(clientID)
	}
	return NewQueue(opts, topicPrefix)
}

// Discover implements Connector. Devices are found by their retained meta.
func (c *Connector) Discover(ctx context.Context) ([]remote.DeviceInfo, error) {
	q := c.newQueue(newClientID())
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	defer q.Close()

	infoCh := make(chan remote.DeviceInfo, 16)
	sub := q.Sub("+/+/meta", func(topic string, payload []byte) {
		info, ok := parseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case infoCh <- info:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.NewTimer(dur)
	defer timeout.Stop()
	var infos []remote.DeviceInfo
	for {
		select {
		case info := <-infoCh:
			infos = append(infos, info)
		case <-timeout.C:
			return infos, nil
		case <-ctx.Done():
			return infos, ctx.Err()
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref remote.DeviceRef) (remote.Conn, error) {
	clientID := newClientID()
	q := c.newQueue(clientID)
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	rw := NewPacketReadWriter(q).ForClient(ref, clientID)
	if err := rw.Subscribe(ctx); err != nil {
		q.Close()
		return nil, err
	}
	glog.V(1).Infof("connected to %s as %s", ref.Name(), clientID)
	return &conn{RunningClient: remote.Start(remote.NewClient(rw)), queue: q}, nil
}

type conn struct {
	*remote.RunningClient
	queue *Queue
}

func (c *conn) Close() error {
	err := c.RunningClient.Close()
	c.queue.Close()
	return err
}

func newClientID() string {
	return "n2cli-" + uuid.NewString()
}

// parseMeta extracts device info from a retained meta message.
// Empty payloads are cleared registrations.
func parseMeta(topic string, payload []byte) (info remote.DeviceInfo, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != "meta" || len(payload) == 0 {
		return
	}
	info.Ref = remote.DeviceRef{Type: items[0], ID: items[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("invalid meta of %s: %v", info.Ref.Name(), err)
	}
	return info, true
}
