// Package modcontrol implements the request/response client of the
// modcontrol device protocol.
//
// A Client sends one command frame at a time over a transport.Transport and
// waits for the answer. The response is complete once the line has been
// quiet for the configured quiet period after the last received chunk; if
// nothing arrives before the response timeout, the attempt fails and the
// request is retried. A device that never answers is not an error: Execute
// returns a nil frame and the decoded response reports command.Timeout.
//
// Example:
//
//	cfg, err := modcontrol.NewClientConfig(
//		modcontrol.WithAddress(0x0102),
//		modcontrol.WithRetryCount(3),
//	)
//	if err != nil {
//		return err
//	}
//
//	client, err := modcontrol.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//
//	connCfg, _ := tcpconn.NewConnectionConfig("192.168.1.50", 4001)
//	if err := client.Connect(tcpconn.NewConnection(connCfg), true); err != nil {
//		return err
//	}
//	defer client.Disconnect()
//
//	resp, err := modcontrol.NewDevice(client).GetCounter(1)
//	if err != nil {
//		return err
//	}
//	if resp.OK() {
//		fmt.Println("counter:", resp.Value)
//	}
//
// By default, frames whose address or command code do not match the request
// are ignored and the client keeps waiting until the response deadline. Use
// WithResponseMatching(false) to accept the first valid frame instead.
package modcontrol
