package worker

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ljmurray/squircle/internal/geom"
	"github.com/ljmurray/squircle/internal/protocol"
)

// Agent serves outline-generation requests inside the worker process. It
// reads request frames from r and writes one response frame per request to
// w, tagged with the request's ID. Logging goes to the logrus logger; the
// write side of the frame stream must stay clean, so the worker binary
// points the logger at stderr.
type Agent struct {
	r      io.Reader
	w      io.Writer
	logger *logrus.Logger
}

// NewAgent creates an agent reading requests from r and writing responses to w.
func NewAgent(r io.Reader, w io.Writer, logger *logrus.Logger) *Agent {
	return &Agent{r: r, w: w, logger: logger}
}

// Serve handles requests until the read side closes. A clean EOF (the host
// closed our stdin) returns nil; any other read or write failure is fatal
// for the process, since a desynchronized frame stream cannot be recovered.
func (a *Agent) Serve() error {
	for {
		var req protocol.Request
		if err := protocol.ReadMessage(a.r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}

		resp := a.handle(req)
		if err := protocol.WriteMessage(a.w, &resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// handle generates the outline for a single request. A panic inside the
// generator becomes an error response for that request rather than killing
// the worker.
func (a *Agent) handle(req protocol.Request) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("id", req.ID).Errorf("generator panic: %v", r)
			resp = protocol.Response{ID: req.ID, Error: fmt.Sprintf("generator panic: %v", r)}
		}
	}()

	switch req.Type {
	case protocol.TypeSymmetric:
		path := geom.Generate(geom.Params{
			Width:    req.Width,
			Height:   req.Height,
			Exponent: req.Exponent,
		})
		return protocol.Response{ID: req.ID, PathData: path}

	case protocol.TypeAsymmetric:
		if req.Corners == nil {
			return protocol.Response{ID: req.ID, Error: "asymmetric request without corners"}
		}
		path := geom.GeneratePerCorner(req.Width, req.Height, *req.Corners)
		return protocol.Response{ID: req.ID, PathData: path}

	default:
		a.logger.WithField("type", req.Type).Warn("unknown request type")
		return protocol.Response{ID: req.ID, Error: fmt.Sprintf("unknown request type: %q", req.Type)}
	}
}
