package kube

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
)

const maxFrameBytes = 16 * 1024 * 1024

// Watch opens the push channel for scope: a streaming GET on the collection
// with watch=true. The server replays existing objects as ADDED frames first.
func (c *Client) Watch(ctx context.Context, scope fluid.Scope) (livesync.Stream, error) {
	if c == nil || c.baseURL == nil || c.watchHTTP == nil {
		return nil, livesync.Permanent(errors.New("watch transport not configured"))
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + scope.Kind.CollectionPath(scope.Namespace)
	u.RawQuery = url.Values{"watch": {"true"}}.Encode()

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		cancel()
		return nil, livesync.Permanent(fmt.Errorf("create watch request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.watchHTTP.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open watch %s: %w", scope, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		cancel()
		err := fmt.Errorf("watch %s returned status %d", u.Path, resp.StatusCode)
		if permanentStatus(resp.StatusCode) {
			return nil, livesync.Permanent(err)
		}
		return nil, err
	}

	s := &watchStream{
		ctx:    ctx,
		cancel: cancel,
		body:   resp.Body,
		kind:   scope.Kind,
		events: make(chan fluid.ChangeEvent),
		log:    c.log.WithName("watch").WithValues("scope", scope.String()),
	}
	go s.read()
	return s, nil
}

// permanentStatus lists responses that retrying cannot fix: bad credentials,
// missing CRD, or a server that does not serve watches.
func permanentStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusMethodNotAllowed:
		return true
	}
	return false
}

type watchStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	body   io.ReadCloser
	kind   fluid.Kind
	events chan fluid.ChangeEvent
	log    logr.Logger
	once   sync.Once
}

func (s *watchStream) Events() <-chan fluid.ChangeEvent {
	return s.events
}

// Close ends the stream. The events channel closes once the reader exits.
func (s *watchStream) Close() error {
	s.once.Do(s.cancel)
	return nil
}

func (s *watchStream) read() {
	defer close(s.events)
	defer func() { _ = s.body.Close() }()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, ok := decodeFrame(line, s.kind, s.log)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-s.ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		s.log.Error(err, "watch stream read failed")
	}
}

type frameObject struct {
	Metadata struct {
		UID       string `json:"uid"`
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	} `json:"metadata"`
}

// decodeFrame turns one watch frame into a change event. Malformed frames
// and frame types that carry no change are logged and dropped.
func decodeFrame(line []byte, kind fluid.Kind, log logr.Logger) (fluid.ChangeEvent, bool) {
	var frame metav1.WatchEvent
	if err := json.Unmarshal(line, &frame); err != nil {
		log.Error(err, "discarding malformed watch frame", "bytes", len(line))
		return fluid.ChangeEvent{}, false
	}

	switch watch.EventType(frame.Type) {
	case watch.Bookmark:
		return fluid.ChangeEvent{}, false
	case watch.Error:
		var status metav1.Status
		if err := json.Unmarshal(frame.Object.Raw, &status); err != nil {
			log.Error(err, "discarding malformed watch error frame")
		} else {
			log.Info("watch error frame", "code", status.Code, "reason", status.Reason, "message", status.Message)
		}
		return fluid.ChangeEvent{}, false
	}

	typ, ok := fluid.ParseEventType(frame.Type)
	if !ok {
		log.Info("discarding watch frame with unknown type", "type", frame.Type)
		return fluid.ChangeEvent{}, false
	}
	var obj frameObject
	if err := json.Unmarshal(frame.Object.Raw, &obj); err != nil {
		log.Error(err, "discarding watch frame with malformed object", "type", frame.Type)
		return fluid.ChangeEvent{}, false
	}
	md := obj.Metadata
	return fluid.ChangeEvent{
		Type:     typ,
		ObjectID: fluid.ObjectID(md.UID, md.Namespace, md.Name, kind),
	}, true
}
