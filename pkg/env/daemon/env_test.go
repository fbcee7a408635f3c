package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/n2cmu.go/pkg/n2cmu"
	"github.com/robotalks/n2cmu.go/pkg/n2cmu/sim"
	"github.com/robotalks/n2cmu.go/pkg/remote"
)

func TestNewEnv(t *testing.T) {
	server := remote.NewServer(n2cmu.New(sim.New()))

	conf := NewConfig()
	conf.Info.Ref.ID = "dev1"
	conf.MQTTBrokerURL, conf.TCPAddr, conf.WebsocketAddr = "", "127.0.0.1:0", "127.0.0.1:0"
	e, err := conf.NewEnv(server)
	require.NoError(t, err)
	assert.Len(t, e.Transports, 2)

	conf = NewConfig()
	conf.Info.Ref.ID = "dev1"
	conf.MQTTBrokerURL = ""
	_, err = conf.NewEnv(server)
	assert.Error(t, err)
}

func TestNewEnvDefaultID(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = ""
	conf.MQTTBrokerURL, conf.TCPAddr = "", "127.0.0.1:0"
	_, err := conf.NewEnv(remote.NewServer(n2cmu.New(sim.New())))
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Info.Ref.ID)
}
