package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/modcontrol"
)

var (
	// TCP connection flags
	tcpAddr string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// MQTT gateway flags
	mqttBroker   string
	mqttCmdTopic string
	mqttRspTopic string
	mqttClientID string

	// Exchange flags
	deviceAddr string
	timeout    time.Duration
	retries    int
	verify     bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "modctl",
	Short: "modcontrol device client",
	Long: `modctl sends commands to modcontrol devices and prints their responses.

Connection modes:
  TCP:       --tcp host:port
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]
  MQTT:      --mqtt tcp://broker:1883 --cmd-topic gw/cmd --rsp-topic gw/rsp

For WebSocket and MQTT authentication, the password is read from the
MODCONTROL_PASSWORD environment variable, or prompted interactively if not set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       "1.0.0",
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&tcpAddr, "tcp", "", "TCP address of the device server (host:port)")

	pf.StringVarP(&portName, "port", "p", "", "Serial port device")
	pf.IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	pf.StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	pf.StringVar(&wsUsername, "username", "", "Username for WebSocket Basic auth or MQTT")
	pf.BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	pf.StringVar(&mqttBroker, "mqtt", "", "MQTT broker URL of the serial gateway")
	pf.StringVar(&mqttCmdTopic, "cmd-topic", "", "MQTT topic the gateway reads commands from")
	pf.StringVar(&mqttRspTopic, "rsp-topic", "", "MQTT topic the gateway publishes responses to")
	pf.StringVar(&mqttClientID, "client-id", "modctl", "MQTT client ID")

	pf.StringVarP(&deviceAddr, "address", "a", "0x0001", "Device address (decimal or 0x hex)")
	pf.DurationVarP(&timeout, "timeout", "t", modcontrol.DefaultResponseTimeout, "Response timeout per attempt")
	pf.IntVarP(&retries, "retries", "r", modcontrol.DefaultRetryCount, "Attempts per command (1-10)")
	pf.BoolVar(&verify, "verify", false, "Check the device with GetVersion after connecting")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd, serialCmd, counterCmd, outputCmd, creditsCmd, cardCmd)
}

func newLogger() logger.Logger {
	l := logger.NewSlogWriter(os.Stderr, logger.ParseLevel(logLevel), false)
	logger.SetDefault(l)

	return l
}

func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid device address %q", s)
	}

	return uint16(v), nil
}

// withDevice connects to the device selected by the flags, runs fn and
// disconnects again.
func withDevice(fn func(dev *modcontrol.Device) error) error {
	l := newLogger()

	address, err := parseAddress(deviceAddr)
	if err != nil {
		return err
	}

	cfg, err := modcontrol.NewClientConfig(
		modcontrol.WithAddress(address),
		modcontrol.WithResponseTimeout(timeout),
		modcontrol.WithRetryCount(retries),
		modcontrol.WithLogger(l),
	)
	if err != nil {
		return err
	}

	client, err := modcontrol.NewClient(cfg)
	if err != nil {
		return err
	}

	t, desc, err := openTransport(l)
	if err != nil {
		return err
	}

	defer client.Disconnect()
	if err := client.Connect(t, verify); err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s, device 0x%04X", desc, address)))

	return fn(modcontrol.NewDevice(client))
}
