package main

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/mqttconn"
	"github.com/arloliu/go-modcontrol/serialconn"
	"github.com/arloliu/go-modcontrol/tcpconn"
	"github.com/arloliu/go-modcontrol/transport"
	"github.com/arloliu/go-modcontrol/wsconn"
)

const passwordEnv = "MODCONTROL_PASSWORD"

// openTransport creates the transport selected by the connection flags.
// Exactly one connection mode must be given.
func openTransport(l logger.Logger) (transport.Transport, string, error) {
	modes := 0
	for _, v := range []string{tcpAddr, portName, wsURL, mqttBroker} {
		if v != "" {
			modes++
		}
	}

	switch {
	case modes == 0:
		return nil, "", errors.New("no connection given, use --tcp, --port, --url or --mqtt")
	case modes > 1:
		return nil, "", errors.New("only one of --tcp, --port, --url and --mqtt may be given")
	}

	switch {
	case tcpAddr != "":
		host, portStr, err := net.SplitHostPort(tcpAddr)
		if err != nil {
			return nil, "", fmt.Errorf("invalid --tcp address: %w", err)
		}

		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, "", fmt.Errorf("invalid --tcp port %q", portStr)
		}

		cfg, err := tcpconn.NewConnectionConfig(host, port, tcpconn.WithLogger(l))
		if err != nil {
			return nil, "", err
		}

		return tcpconn.NewConnection(cfg), "TCP " + cfg.Address(), nil

	case portName != "":
		cfg, err := serialconn.NewConfig(portName, serialconn.WithBaudRate(baudRate), serialconn.WithLogger(l))
		if err != nil {
			return nil, "", err
		}

		return serialconn.NewConnection(cfg), fmt.Sprintf("serial %s @ %d", portName, baudRate), nil

	case wsURL != "":
		password := ""
		if wsUsername != "" {
			var err error
			if password, err = getPassword(); err != nil {
				return nil, "", err
			}
		}

		cfg, err := wsconn.NewConfig(wsURL,
			wsconn.WithBasicAuth(wsUsername, password),
			wsconn.WithSkipTLSVerify(wsNoSSLVerify),
			wsconn.WithLogger(l),
		)
		if err != nil {
			return nil, "", err
		}

		return wsconn.NewConnection(cfg), "WebSocket " + wsURL, nil

	default:
		opts := []mqttconn.Option{mqttconn.WithClientID(mqttClientID), mqttconn.WithLogger(l)}
		if wsUsername != "" {
			password, err := getPassword()
			if err != nil {
				return nil, "", err
			}
			opts = append(opts, mqttconn.WithCredentials(wsUsername, password))
		}

		cfg, err := mqttconn.NewConfig(mqttBroker, mqttCmdTopic, mqttRspTopic, opts...)
		if err != nil {
			return nil, "", err
		}

		return mqttconn.NewConnection(cfg), "MQTT " + mqttBroker, nil
	}
}

// getPassword reads the password from the environment, or prompts for it
// without echo.
func getPassword() (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec
	if err != nil {
		// not a terminal, read a plain line
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)

		return strings.TrimSpace(password), nil
	}
	fmt.Fprintln(os.Stderr)

	return string(passwordBytes), nil
}
