package net

// RPCResponse is what comes back over an RPC's response channel: the decoded
// response object (SyncResponse, AnnounceResponse or TxSubmitResponse) and
// the error the handler produced, if any.
type RPCResponse struct {
	Response interface{}
	Error    error
}

// RPC is one inbound request as delivered on a transport's consumer channel.
// Command holds the decoded request; the handler answers by calling Respond
// exactly once.
type RPC struct {
	Command  interface{}
	RespChan chan<- RPCResponse
}

// Respond sends the handler's answer back to the caller.
func (r *RPC) Respond(resp interface{}, err error) {
	r.RespChan <- RPCResponse{Response: resp, Error: err}
}
