package admin

// Handler executes one command. It fills rsp and returns nil or an error
// carrying a Status.
type Handler func(req *Request, rsp *Response) error

// P1Table dispatches a command on its P1 field.
type P1Table map[byte]Handler

// Serve runs the handler registered for req.P1. Unknown values fail with
// StatusWrongP1P2.
func (t P1Table) Serve(req *Request, rsp *Response) error {
	h, ok := t[req.P1]
	if !ok {
		return StatusWrongP1P2
	}
	return h(req, rsp)
}

// Router dispatches commands on INS.
type Router struct {
	// CLA is the only class accepted.
	CLA byte
	// ResponseSize is the capacity of the response buffer.
	ResponseSize int

	handlers map[byte]Handler
}

// NewRouter returns an empty router accepting class 0x00.
func NewRouter() *Router {
	return &Router{
		ResponseSize: DefaultResponseSize,
		handlers:     make(map[byte]Handler),
	}
}

// Handle registers h for ins, replacing any earlier handler.
func (r *Router) Handle(ins byte, h Handler) {
	r.handlers[ins] = h
}

// Dispatch runs the handler for req.
func (r *Router) Dispatch(req *Request, rsp *Response) error {
	if req.CLA != r.CLA {
		return StatusCLANotSupported
	}
	h, ok := r.handlers[req.INS]
	if !ok {
		return StatusINSNotSupported
	}
	return h(req, rsp)
}

// Serve decodes a command APDU, dispatches it and encodes the response
// APDU.
func (r *Router) Serve(apdu []byte, pinValidated bool) []byte {
	rsp := NewResponse(r.ResponseSize)
	cmd, err := ParseCommand(apdu)
	if err != nil {
		return rsp.Encode(StatusWrongLength)
	}
	req := &Request{Command: *cmd, PINValidated: pinValidated}
	return rsp.Encode(r.Dispatch(req, rsp))
}
