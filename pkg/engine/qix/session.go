// Package qix implements the engine contracts over the engine's JSON-RPC
// websocket protocol. One Session owns one connection; every document and
// object handle obtained through it shares that connection and dies with it.
package qix

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bi-tools/appcopy/pkg/engine"
)

const dialMaxElapsed = 15 * time.Second

func newDialBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = dialMaxElapsed
	return bo
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Handle  int    `json:"handle"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code      int    `json:"code"`
	Parameter string `json:"parameter"`
	Message   string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// sentinel maps engine error messages onto the package sentinels so callers
// can branch with errors.Is instead of parsing text.
func (e *rpcError) sentinel() error {
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %s", engine.ErrNotFound, e.Message)
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "already in use"):
		return fmt.Errorf("%w: %s", engine.ErrConflict, e.Message)
	}
	return e
}

// objRef is the engine's reference to a newly returned handle.
type objRef struct {
	Handle      int    `json:"qHandle"`
	GenericID   string `json:"qGenericId"`
	GenericType string `json:"qGenericType"`
	Type        string `json:"qType"`
}

// Session is one websocket connection to the engine.
type Session struct {
	log  *logrus.Entry
	conn net.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]chan *response
	closed  bool
	readErr error
}

// Dial connects to the engine's websocket endpoint, retrying transient
// failures with exponential backoff until the context or the backoff window
// runs out.
func Dial(ctx context.Context, url string, log *logrus.Logger) (*Session, error) {
	if log == nil {
		log = logrus.New()
	}

	var conn net.Conn
	dial := func() error {
		c, _, _, err := ws.Dial(ctx, url)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	if err := backoff.Retry(dial, backoff.WithContext(newDialBackoff(), ctx)); err != nil {
		return nil, fmt.Errorf("dial engine at %s: %w", url, err)
	}

	s := &Session{
		log:     log.WithField("session", uuid.NewString()[:8]),
		conn:    conn,
		pending: make(map[int]chan *response),
	}
	go s.readLoop()
	s.log.WithField("url", url).Debug("engine session established")
	return s, nil
}

// Close tears the connection down. In-flight calls fail with a connection
// error.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) readLoop() {
	for {
		data, err := wsutil.ReadServerText(s.conn)
		if err != nil {
			s.fail(err)
			return
		}
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			s.log.WithError(err).Warn("discarding unparseable engine message")
			continue
		}
		// Change notifications carry no request id.
		if resp.ID == 0 {
			continue
		}
		s.mu.Lock()
		ch := s.pending[resp.ID]
		delete(s.pending, resp.ID)
		s.mu.Unlock()
		if ch != nil {
			ch <- &resp
		}
	}
}

// fail marks the session dead and releases every waiting caller.
func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.readErr = err
	for id, ch := range s.pending {
		delete(s.pending, id)
		close(ch)
	}
}

func (s *Session) drop(id int) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Call performs one request against a handle and decodes the result into out
// when out is non-nil.
func (s *Session) Call(ctx context.Context, handle int, method string, params, out any) error {
	if params == nil {
		params = map[string]any{}
	}

	s.mu.Lock()
	if s.closed {
		readErr := s.readErr
		s.mu.Unlock()
		return fmt.Errorf("%s: session closed: %w", method, readErr)
	}
	s.nextID++
	id := s.nextID
	ch := make(chan *response, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	data, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      id,
		Handle:  handle,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		s.drop(id)
		return fmt.Errorf("%s: encode request: %w", method, err)
	}

	s.writeMu.Lock()
	err = wsutil.WriteClientText(s.conn, data)
	s.writeMu.Unlock()
	if err != nil {
		s.drop(id)
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		s.drop(id)
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			s.mu.Lock()
			readErr := s.readErr
			s.mu.Unlock()
			return fmt.Errorf("%s: connection lost: %w", method, readErr)
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error.sentinel())
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("%s: decode result: %w", method, err)
			}
		}
		return nil
	}
}
