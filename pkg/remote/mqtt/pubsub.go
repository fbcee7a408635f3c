// Package mqtt serves and reaches coprocessors through an MQTT broker.
//
// Topics are relative to the prefix in the broker URL:
//
//	<type>/<id>/meta               retained JSON DeviceMeta, cleared on exit
//	<type>/<id>/req/<client-id>    typed requests from a client
//	<type>/<id>/rep/<client-id>    typed replies to that client
package mqtt

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Queue wraps MQTT client and dispatches messages to subscriptions.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	lock sync.RWMutex
	subs map[string][]*Subscription
}

// Subscription is a subscribed topic filter.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	filter  string
	handler Handler
}

// MatchTopic matches topic with filter, supporting + and trailing #.
func MatchTopic(topic, filter string) bool {
	tokens, patterns := strings.Split(topic, "/"), strings.Split(filter, "/")
	for i, pattern := range patterns {
		if pattern == "#" && i+1 == len(patterns) {
			return true
		}
		if i >= len(tokens) {
			return false
		}
		if pattern != "+" && pattern != tokens[i] {
			return false
		}
	}
	return len(tokens) == len(patterns)
}

// ClientOptionsFromURL creates ClientOptions from mqtt://[user:pass@]host:port/prefix.
// The prefix is returned with a trailing slash when not empty.
func ClientOptionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	scheme := u.Scheme
	switch scheme {
	case "", "mqtt":
		scheme = "tcp"
	case "mqtts":
		scheme = "ssl"
	}

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix, subs: make(map[string][]*Subscription)}
	options.SetOnConnectHandler(q.onConnect)
	options.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(options)
	return q
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub subscribes a topic filter. The broker subscription is shared by
// all handlers of the same filter.
func (q *Queue) Sub(filter string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, filter: filter, handler: handler}
	q.lock.Lock()
	existing := len(q.subs[filter]) > 0
	q.subs[filter] = append(q.subs[filter], sub)
	q.lock.Unlock()

	if existing {
		sub.Token = &paho.DummyToken{}
		return sub
	}
	glog.V(2).Infof("SUB %q", q.TopicPrefix+filter)
	sub.Token = q.Client.Subscribe(q.TopicPrefix+filter, 1, q.dispatcher(filter))
	return sub
}

// Pub publishes to a topic.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 1, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	glog.V(3).Infof("PUB %q %d bytes", q.TopicPrefix+topic, len(payload))
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe subscribes all existing filters, used after reconnecting.
func (q *Queue) Resubscribe() {
	q.lock.RLock()
	filters := make([]string, 0, len(q.subs))
	for filter := range q.subs {
		filters = append(filters, filter)
	}
	q.lock.RUnlock()
	for _, filter := range filters {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+filter)
		q.Client.Subscribe(q.TopicPrefix+filter, 1, q.dispatcher(filter))
	}
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("MQTT connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

func (q *Queue) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("MQTT connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

// dispatcher delivers messages of one broker subscription to the handlers
// registered for its filter.
func (q *Queue) dispatcher(filter string) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		topic := msg.Topic()
		if !strings.HasPrefix(topic, q.TopicPrefix) {
			return
		}
		topic = topic[len(q.TopicPrefix):]
		if !MatchTopic(topic, filter) {
			return
		}
		glog.V(3).Infof("RCV %q", topic)
		q.lock.RLock()
		subs := q.subs[filter]
		handlers := make([]Handler, len(subs))
		for n, sub := range subs {
			handlers[n] = sub.handler
		}
		q.lock.RUnlock()
		payload := msg.Payload()
		for _, h := range handlers {
			h(topic, payload)
		}
	}
}

// Close removes the handler, unsubscribing the filter when it was the last one.
func (s *Subscription) Close() error {
	q := s.queue
	q.lock.Lock()
	subs := q.subs[s.filter]
	for n, sub := range subs {
		if sub == s {
			subs = append(subs[:n:n], subs[n+1:]...)
			break
		}
	}
	last := len(subs) == 0
	if last {
		delete(q.subs, s.filter)
	} else {
		q.subs[s.filter] = subs
	}
	q.lock.Unlock()
	if !last {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", s.filter)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.filter)
	token.Wait()
	return token.Error()
}
