package modules

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/coderosh/myriad/core"
)

// _http serves requests through a script handler. The evaluator is not
// safe for concurrent use, so handler calls are serialized.
type _http struct {
	in *core.Interpreter
	mu sync.Mutex
}

func loadHTTP(in *core.Interpreter) *core.ObjectValue {
	c := &_http{in: in}
	return namespace(
		"server", c.server,
	)
}

// server(handler) returns { listen(port) }. The handler is called with
// a request object and a response object for every request.
func (c *_http) server(args []core.Value, env *core.Environment) (core.Value, error) {
	if err := core.RequireArgLen("http.server", args, 1); err != nil {
		return nil, err
	}
	handler := c.Handler(args[0], env)

	return namespace(
		"listen", func(args []core.Value, _ *core.Environment) (core.Value, error) {
			port, err := numberArg("server.listen", args, 0)
			if err != nil {
				return nil, err
			}
			addr := fmt.Sprintf(":%d", int(port))
			c.in.Logger().Info("http server listening", "addr", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				return nil, core.Throw("server.listen: %s", err)
			}
			return core.Null, nil
		},
	), nil
}

// Handler adapts a script function to an http.Handler.
func (c *_http) Handler(fn core.Value, env *core.Environment) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res := &response{w: w}
		c.mu.Lock()
		_, err = c.in.Call(fn, []core.Value{requestObject(r, body), res.object()}, env)
		c.mu.Unlock()

		if err != nil {
			c.in.Logger().Error("http handler failed", "method", r.Method, "url", r.URL.String(), "error", err)
			if !res.sent {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		if !res.sent {
			w.WriteHeader(res.status())
		}
	})
}

func requestObject(r *http.Request, body []byte) *core.ObjectValue {
	headers := core.NewObject()
	for name, values := range r.Header {
		if len(values) == 1 {
			headers.Set(name, core.StringValue(values[0]))
			continue
		}
		list := make([]core.Value, len(values))
		for i, v := range values {
			list[i] = core.StringValue(v)
		}
		headers.Set(name, core.NewArray(list...))
	}

	return namespace(
		"headers", headers,
		"url", core.StringValue(r.URL.RequestURI()),
		"method", core.StringValue(r.Method),
		"body", core.StringValue(body),
	)
}

type response struct {
	w    http.ResponseWriter
	code int
	sent bool
}

func (res *response) status() int {
	if res.code == 0 {
		return http.StatusOK
	}
	return res.code
}

func (res *response) object() *core.ObjectValue {
	return namespace(
		"send", func(args []core.Value, _ *core.Environment) (core.Value, error) {
			if res.sent {
				return nil, core.Throw("response already sent")
			}
			res.sent = true
			res.w.WriteHeader(res.status())
			if len(args) > 0 {
				io.WriteString(res.w, args[0].String())
			}
			return core.Null, nil
		},
		"set_header", func(args []core.Value, _ *core.Environment) (core.Value, error) {
			if err := core.RequireArgLen("res.set_header", args, 2); err != nil {
				return nil, err
			}
			res.w.Header().Set(args[0].String(), args[1].String())
			return core.Null, nil
		},
		"status", func(args []core.Value, _ *core.Environment) (core.Value, error) {
			code, err := numberArg("res.status", args, 0)
			if err != nil {
				return nil, err
			}
			res.code = int(code)
			return core.Null, nil
		},
	)
}
