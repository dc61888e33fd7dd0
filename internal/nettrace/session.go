package nettrace

import (
	"crypto/tls"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"
)

// Session feeds a Collector from httptrace hooks for one request.
type Session struct {
	collector *Collector
	trace     *httptrace.ClientTrace
	now       func() time.Time

	mu       sync.Mutex
	waiting  bool
	transfer bool
}

func NewSession() *Session {
	s := &Session{collector: NewCollector(), now: time.Now}
	s.trace = &httptrace.ClientTrace{
		DNSStart:             s.onDNSStart,
		DNSDone:              s.onDNSDone,
		ConnectStart:         s.onConnectStart,
		ConnectDone:          s.onConnectDone,
		GotConn:              s.onGotConn,
		TLSHandshakeStart:    s.onTLSHandshakeStart,
		TLSHandshakeDone:     s.onTLSHandshakeDone,
		WroteHeaders:         s.onWroteHeaders,
		WroteRequest:         s.onWroteRequest,
		GotFirstResponseByte: s.onGotFirstResponseByte,
	}
	return s
}

// Bind returns req with the trace hooks attached to its context.
func (s *Session) Bind(req *http.Request) *http.Request {
	if req == nil {
		return nil
	}
	return req.WithContext(httptrace.WithClientTrace(req.Context(), s.trace))
}

// Finish ends the body transfer and closes anything still open.
func (s *Session) Finish(err error) {
	now := s.now()
	s.mu.Lock()
	transfer := s.transfer
	s.transfer = false
	s.mu.Unlock()

	if transfer {
		s.collector.End(PhaseTransfer, now, err)
	}
	s.collector.Fail(err)
	s.collector.Complete(now)
}

func (s *Session) Timeline() *Timeline {
	return s.collector.Timeline()
}

func (s *Session) onDNSStart(info httptrace.DNSStartInfo) {
	s.collector.Begin(PhaseDNS, s.now())
	s.collector.Annotate(PhaseDNS, func(p *Phase) { p.Addr = info.Host })
}

func (s *Session) onDNSDone(info httptrace.DNSDoneInfo) {
	if len(info.Addrs) > 0 {
		addr := info.Addrs[0].String()
		s.collector.Annotate(PhaseDNS, func(p *Phase) { p.Addr = addr })
	}
	s.collector.End(PhaseDNS, s.now(), info.Err)
	s.collector.Fail(info.Err)
}

func (s *Session) onConnectStart(_, addr string) {
	s.collector.Begin(PhaseConnect, s.now())
	s.collector.Annotate(PhaseConnect, func(p *Phase) { p.Addr = addr })
}

func (s *Session) onConnectDone(_, _ string, err error) {
	s.collector.End(PhaseConnect, s.now(), err)
	s.collector.Fail(err)
}

func (s *Session) onGotConn(info httptrace.GotConnInfo) {
	if !info.Reused {
		return
	}
	now := s.now()
	s.collector.Begin(PhaseConnect, now)
	s.collector.Annotate(PhaseConnect, func(p *Phase) {
		p.Reused = true
		if info.Conn != nil {
			p.Addr = info.Conn.RemoteAddr().String()
		}
	})
	s.collector.End(PhaseConnect, now, nil)
}

func (s *Session) onTLSHandshakeStart() {
	s.collector.Begin(PhaseTLS, s.now())
}

func (s *Session) onTLSHandshakeDone(_ tls.ConnectionState, err error) {
	s.collector.End(PhaseTLS, s.now(), err)
	s.collector.Fail(err)
}

func (s *Session) onWroteHeaders() {
	s.collector.Begin(PhaseRequest, s.now())
}

func (s *Session) onWroteRequest(info httptrace.WroteRequestInfo) {
	now := s.now()
	s.collector.End(PhaseRequest, now, info.Err)
	if info.Err != nil {
		s.collector.Fail(info.Err)
		return
	}
	s.mu.Lock()
	s.waiting = true
	s.mu.Unlock()
	s.collector.Begin(PhaseTTFB, now)
}

func (s *Session) onGotFirstResponseByte() {
	now := s.now()
	s.mu.Lock()
	waiting := s.waiting
	s.waiting = false
	s.transfer = true
	s.mu.Unlock()

	if waiting {
		s.collector.End(PhaseTTFB, now, nil)
	}
	s.collector.Begin(PhaseTransfer, now)
}
