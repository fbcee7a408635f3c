// Package sh provides the interactive shell of n2cli.
package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"reflect"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	env "github.com/robotalks/n2cmu.go/pkg/env/connector"
	fx "github.com/robotalks/n2cmu.go/pkg/framework"
	"github.com/robotalks/n2cmu.go/pkg/remote"
	"github.com/robotalks/n2cmu.go/pkg/remote/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	// Local opens a coprocessor in process instead of connecting to a daemon.
	Local func() (remote.Conn, error)

	Ref  remote.DeviceRef
	Conn remote.Conn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
	localPrompt       = "[local] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	timeout    = 10 * time.Second

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&timeout, "cmd-timeout", timeout, "Timeout of a single command.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     timeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints DeviceInfo into friendly string for display.
func FormatInfo(info remote.DeviceInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	if info.Meta.Port != "" {
		fmt.Fprintf(&w, " (%s)", info.Meta.Port)
	}
	return w.String()
}

// Do sends a request and waits for the reply without printing.
func (s *Shell) Do(msg fx.Message) (fx.Message, error) {
	if s.Conn == nil {
		return nil, fmt.Errorf("not connected")
	}
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Conn.Do(ctx, msg)
}

// DoCommand runs a command, waits for the reply and prints it.
func DoCommand(c *ishell.Context, msg fx.Message) (fx.Message, error) {
	s := ShellFrom(c)
	reply, err := s.Do(msg)
	if err != nil {
		c.Err(err)
		return nil, err
	}
	if err = s.Print(c, reply); err != nil {
		c.Err(err)
	}
	return reply, err
}

// Print prints a reply in text or JSON.
func (s *Shell) Print(c *ishell.Context, msg fx.Message) error {
	serializable, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return msgs.ErrNotSerializable
	}
	if s.OutputJSON {
		out, err := json.Marshal(serializable.Serializable())
		if err != nil {
			return err
		}
		c.Println(string(out))
		return nil
	}
	switch m := msg.(type) {
	case *msgs.CommandOK:
		c.Println("OK")
	case *msgs.Status:
		if m.Ok {
			c.Println("OK")
		} else {
			c.Println("FAILED")
		}
	default:
		c.Printf("%s %s\n",
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			serializable.Serializable().String())
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// WithLocal sets Local.
func (s *Shell) WithLocal(open func() (remote.Conn, error)) *Shell {
	s.Local = open
	return s
}

// DiscoverDevices discovers served devices.
func (s *Shell) DiscoverDevices(filter func(remote.DeviceInfo) bool) ([]remote.DeviceInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := connector.Discover(context.Background())
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]remote.DeviceInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// SelectDevice discovers devices and asks for a choice.
func (s *Shell) SelectDevice(filter func(remote.DeviceInfo) bool) (*remote.DeviceInfo, error) {
	infoList, err := s.DiscoverDevices(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, fmt.Errorf("no device selected")
		}
	}
	return &infoList[index], nil
}

// Connect connects the device with ref.
func (s *Shell) Connect(ref remote.DeviceRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		return err
	}
	s.attach(ref, conn, fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

// OpenLocal opens the in-process coprocessor.
func (s *Shell) OpenLocal() error {
	if s.Local == nil {
		return fmt.Errorf("no local device")
	}
	conn, err := s.Local()
	if err != nil {
		return err
	}
	s.attach(remote.DeviceRef{}, conn, localPrompt)
	return nil
}

func (s *Shell) attach(ref remote.DeviceRef, conn remote.Conn, prompt string) {
	s.Disconnect()
	s.Ref, s.Conn = ref, conn
	s.Shell.SetPrompt(prompt)
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		if err := s.Conn.Close(); err != nil {
			glog.V(1).Infof("close connection: %v", err)
		}
		s.Conn, s.Ref = nil, remote.DeviceRef{}
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	switch {
	case s.Local != nil:
		if err := s.OpenLocal(); err != nil {
			glog.Exitf("open local device failed: %v", err)
		}
	case s.AutoConnect && s.Config.Ref.IsValid():
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			glog.Exitf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list served devices",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverDevices(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []remote.DeviceInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No devices found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[ID] | local",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) == 1 && c.Args[0] == "local" {
				if err := s.OpenLocal(); err != nil {
					c.Err(err)
				}
				return
			}
			ref := remote.DeviceRef{Type: s.Config.Ref.Type}
			if len(c.Args) > 0 {
				ref.ID = c.Args[0]
			} else {
				info, err := s.SelectDevice(func(info remote.DeviceInfo) bool {
					return info.Ref.Type == ref.Type
				})
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no device discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close the connection",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main(local func() (remote.Conn, error)) {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).WithLocal(local).Run(flag.Args()...)
}
