// Package command defines the requests understood by modcontrol devices and
// the decoding of their responses.
//
// Each request type implements Request[R], where R is the response type the
// request decodes. Every response embeds Response, which carries the error
// status. Variant fields are only meaningful when ErrorKind() is None:
//
//	resp := command.GetCounter{Channel: 2}.ParseResponse(f)
//	if !resp.OK() {
//		return resp.ErrorKind()
//	}
//	fmt.Println(resp.Value)
//
// A nil frame, meaning the device did not answer, always decodes to a response
// whose ErrorKind is Timeout.
package command
