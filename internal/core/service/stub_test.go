package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
)

type call struct {
	method  string
	path    string
	query   url.Values
	payload any
}

// stubAPI answers every request with getFn/sendFn and records the calls.
type stubAPI struct {
	mu     sync.Mutex
	calls  []call
	getFn  func(path string, query url.Values) ([]byte, error)
	sendFn func(method, path string, payload any) ([]byte, error)
	rawFn  func(path string, query url.Values) ([]byte, string, error)
}

func (s *stubAPI) record(c call) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
}

func (s *stubAPI) last() call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return call{}
	}
	return s.calls[len(s.calls)-1]
}

func (s *stubAPI) Get(_ context.Context, path string, query url.Values) (*envelope.Envelope, error) {
	s.record(call{method: "GET", path: path, query: query})
	body, err := s.getFn(path, query)
	if err != nil {
		return nil, err
	}
	return envelope.Parse(body), nil
}

func (s *stubAPI) send(method, path string, payload any) (*envelope.Envelope, error) {
	s.record(call{method: method, path: path, payload: payload})
	body, err := s.sendFn(method, path, payload)
	if err != nil {
		return nil, err
	}
	return envelope.Parse(body), nil
}

func (s *stubAPI) Post(_ context.Context, path string, payload any) (*envelope.Envelope, error) {
	return s.send("POST", path, payload)
}

func (s *stubAPI) Put(_ context.Context, path string, payload any) (*envelope.Envelope, error) {
	return s.send("PUT", path, payload)
}

func (s *stubAPI) Delete(_ context.Context, path string) (*envelope.Envelope, error) {
	return s.send("DELETE", path, nil)
}

func (s *stubAPI) GetRaw(_ context.Context, path string, query url.Values) ([]byte, string, error) {
	s.record(call{method: "GET", path: path, query: query})
	return s.rawFn(path, query)
}

func respond(body string) func(string, url.Values) ([]byte, error) {
	return func(string, url.Values) ([]byte, error) { return []byte(body), nil }
}

func fail(status int, message string) error {
	return &domain.APIError{StatusCode: status, Message: message}
}

type stubStorage struct {
	values map[string]string
	err    error
}

func newStubStorage() *stubStorage {
	return &stubStorage{values: map[string]string{}}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, error) {
	return s.values[key], s.err
}

func (s *stubStorage) Set(_ context.Context, key, value string) error {
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	return nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.values, key)
	return nil
}

type stubSession struct {
	session domain.Session
}

func (s *stubSession) Snapshot() domain.Session { return s.session }
