package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/n2cmu.go/pkg/remote"
)

// DefaultSessionIdle is the idle time after which a client session is dropped.
const DefaultSessionIdle = 5 * time.Minute

// Registrar publishes the device on the broker and serves requests of
// every client in its own session.
type Registrar struct {
	Queue       *Queue
	Info        remote.DeviceInfo
	Server      *remote.Server
	SessionIdle time.Duration

	metaJSON []byte
	lock     sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

type session struct {
	rw       *ReadWriter
	lastSeen time.Time
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info remote.DeviceInfo, server *remote.Server) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+metaTopic(info.Ref), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("n2cmud:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:       NewQueue(opts, topicPrefix),
		Info:        info,
		Server:      server,
		SessionIdle: DefaultSessionIdle,
		metaJSON:    meta,
		sessions:    make(map[string]*session),
	}
	r.Queue.OnConnect = func(*Queue) { r.publishMeta(r.metaJSON) }
	return r, nil
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	token := r.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	sub := r.Queue.Sub(r.Info.Ref.Name()+"/req/+", func(topic string, payload []byte) {
		r.dispatch(ctx, topic, payload)
	})
	glog.Infof("serving %s on MQTT", r.Info.Ref.Name())

	interval := r.SessionIdle / 2
	if interval <= 0 {
		interval = DefaultSessionIdle / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sub.Close()
			r.closeSessions(time.Time{})
			r.wg.Wait()
			r.publishMeta(nil).Wait()
			r.Queue.Close()
			return ctx.Err()
		case now := <-ticker.C:
			r.closeSessions(now.Add(-r.SessionIdle))
		}
	}
}

// Sessions returns the number of active client sessions.
func (r *Registrar) Sessions() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.sessions)
}

func (r *Registrar) dispatch(ctx context.Context, topic string, payload []byte) {
	clientID := topic[strings.LastIndex(topic, "/")+1:]
	if clientID == "" {
		return
	}
	r.lock.Lock()
	s := r.sessions[clientID]
	if s == nil {
		if ctx.Err() != nil {
			r.lock.Unlock()
			return
		}
		prefix := r.Info.Ref.Name()
		rw := NewPacketReadWriter(r.Queue).WithTopics("", prefix+"/rep/"+clientID)
		s = &session{rw: rw}
		r.sessions[clientID] = s
		r.wg.Add(1)
		go r.serve(ctx, clientID, s)
	}
	s.lastSeen = time.Now()
	r.lock.Unlock()
	s.rw.deliver(payload)
}

func (r *Registrar) serve(ctx context.Context, clientID string, s *session) {
	defer r.wg.Done()
	glog.V(1).Infof("MQTT session %s started", clientID)
	err := r.Server.Serve(ctx, s.rw)
	r.lock.Lock()
	if r.sessions[clientID] == s {
		delete(r.sessions, clientID)
	}
	r.lock.Unlock()
	glog.V(1).Infof("MQTT session %s closed: %v", clientID, err)
}

// closeSessions closes sessions not seen since before, or all if before is zero.
func (r *Registrar) closeSessions(before time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for id, s := range r.sessions {
		if before.IsZero() || s.lastSeen.Before(before) {
			s.rw.Close()
			delete(r.sessions, id)
		}
	}
}

func (r *Registrar) publishMeta(meta []byte) paho.Token {
	return r.Queue.PubWith(metaTopic(r.Info.Ref), meta, 1, true)
}

func metaTopic(ref remote.DeviceRef) string {
	return ref.Name() + "/meta"
}
