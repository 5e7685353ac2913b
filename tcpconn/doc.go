// Package tcpconn provides a TCP transport for modcontrol devices, typically
// reached through a serial device server.
//
// The connection uses TCP keep-alive and a periodic health check. When the
// health check finds the socket dead, the connection is closed and dialed
// again; if that fails, the next attempt is made after the reconnect
// interval.
//
//	cfg, err := tcpconn.NewConnectionConfig("192.168.1.50", 4001,
//		tcpconn.WithHealthCheckInterval(5*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//
//	conn := tcpconn.NewConnection(cfg)
//	err = client.Connect(conn, true)
package tcpconn
