package aemtest

import "net/http"

// Stub answers requests with a given method, path and query parameters.
type Stub struct {
	method  string
	path    string
	query   map[string]string
	reply   Reply
	replyFn func(Request) Reply
}

// WithQuery requires a query parameter value.
func (s *Stub) WithQuery(name, value string) *Stub {
	s.query[name] = value
	return s
}

// Reply sets the canned reply.
func (s *Stub) Reply(r Reply) *Stub {
	s.reply = r
	s.replyFn = nil
	return s
}

// ReplyWith computes the reply from the recorded request.
func (s *Stub) ReplyWith(fn func(Request) Reply) *Stub {
	s.replyFn = fn
	return s
}

func (s *Stub) matches(req *http.Request) bool {
	if req.Method != s.method || req.URL.Path != s.path {
		return false
	}
	q := req.URL.Query()
	for k, v := range s.query {
		if q.Get(k) != v {
			return false
		}
	}
	return true
}

func (s *Stub) respond(rec Request) Reply {
	if s.replyFn != nil {
		return s.replyFn(rec)
	}
	return s.reply
}
