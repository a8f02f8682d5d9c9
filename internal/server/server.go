// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package server implements the newline-delimited JSON request loop.
//
// Each non-blank input line is one request object and produces exactly one
// response line. Requests are handled strictly one at a time in arrival
// order; cancellation is only observed between requests.
package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/traylinx/addressLocal/internal/content"
	"github.com/traylinx/addressLocal/internal/logging"
	"github.com/traylinx/addressLocal/internal/registry"
	"github.com/traylinx/addressLocal/internal/util"
)

// Registry is the provider selection surface the server needs.
type Registry interface {
	Available(ctx context.Context) []string
	Models(ctx context.Context, name string) ([]string, bool)
	AllModels(ctx context.Context) map[string][]string
	Dispatch(ctx context.Context, text, name, model string) registry.Dispatch
}

// Classifier resolves request input into normalized content.
type Classifier interface {
	Classify(ctx context.Context, raw string) content.Normalized
}

// Server reads requests from in and writes responses to out.
type Server struct {
	registry   Registry
	classifier Classifier
	in         io.Reader
	out        *bufio.Writer
	handlers   map[string]handlerFunc
}

// New creates a Server.
func New(reg Registry, cls Classifier, in io.Reader, out io.Writer) *Server {
	s := &Server{
		registry:   reg,
		classifier: cls,
		in:         in,
		out:        bufio.NewWriter(out),
	}
	s.handlers = s.routes()
	return s
}

type readResult struct {
	line []byte
	err  error
}

// Run serves requests until the input ends, ctx is cancelled or a write
// fails. End of input returns nil; cancellation returns ctx.Err().
func (s *Server) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan readResult)
	go s.readLines(done, lines)

	log.Info("Server listening for requests...")
	for {
		select {
		case <-ctx.Done():
			log.Info("Server shutdown requested")
			return ctx.Err()
		case r, ok := <-lines:
			if !ok {
				log.Info("Input closed, stopping server")
				return nil
			}
			if r.err != nil {
				return fmt.Errorf("read request: %w", r.err)
			}
			if len(bytes.TrimSpace(r.line)) == 0 {
				continue
			}
			if err := s.write(s.Handle(context.WithoutCancel(ctx), r.line)); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

func (s *Server) readLines(done <-chan struct{}, out chan<- readResult) {
	defer close(out)
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			select {
			case out <- readResult{line: line}:
			case <-done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case out <- readResult{err: err}:
				case <-done:
				}
			}
			return
		}
	}
}

// Handle processes a single request line and returns its response. It never
// panics and always returns a response.
func (s *Server) Handle(ctx context.Context, line []byte) Response {
	line = bytes.TrimSpace(line)
	if !gjson.ValidBytes(line) {
		log.Errorf("Invalid JSON received: %s", util.Preview(string(line), 200))
		return errorResponse(errParse())
	}
	req := gjson.ParseBytes(line)
	if !req.IsObject() {
		log.Errorf("Request is not a JSON object: %s", util.Preview(string(line), 200))
		return errorResponse(errParse())
	}

	var id json.RawMessage
	if v := req.Get("id"); v.Exists() {
		id = json.RawMessage(v.Raw)
	}
	method := req.Get("method").String()

	var params []byte
	if v := req.Get("params"); v.Exists() {
		params = []byte(v.Raw)
	}

	entry := logging.WithRequestID(logging.NewRequestID()).WithField("method", method)
	start := time.Now()
	entry.Debug("request received")

	resp := s.dispatch(ctx, entry, method, params)
	resp.ID = id

	entry = entry.WithField("duration", time.Since(start).Round(time.Millisecond))
	if resp.Error != "" {
		entry.WithField("code", resp.Code).Warn(resp.Error)
	} else {
		entry.Info("request completed")
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, entry *log.Entry, method string, params []byte) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			entry.Errorf("Error handling request: %v", r)
			resp = errorResponse(errInternal(fmt.Sprint(r)))
		}
	}()

	handler, ok := s.handlers[method]
	if !ok {
		return errorResponse(errMethodNotFound(method))
	}

	result, err := handler(ctx, params)
	if err != nil {
		var protoErr *Error
		if errors.As(err, &protoErr) {
			return errorResponse(protoErr)
		}
		entry.WithError(err).Error("Error handling request")
		return errorResponse(errInternal(err.Error()))
	}
	return Response{Result: result}
}

func (s *Server) write(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		log.WithError(err).Error("failed to encode response")
		fallback := errorResponse(errInternal(err.Error()))
		fallback.ID = resp.ID
		if data, err = json.Marshal(fallback); err != nil {
			return err
		}
	}
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		return err
	}
	return s.out.Flush()
}
