package server

import "net/http"

type rwWrapper struct {
	http.ResponseWriter
	status int
	done   bool
}

func wrapResponseWriter(w http.ResponseWriter) *rwWrapper {
	return &rwWrapper{ResponseWriter: w, status: http.StatusOK}
}

func (rw *rwWrapper) WriteHeader(code int) {
	if rw.done {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.done = true
}

// logger is middleware to log all HTTP requests and responses
func logger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		rww := wrapResponseWriter(w)
		next.ServeHTTP(rww, r)
		reqlog.Printf("%v %v %v %v", r.RemoteAddr, r.Method, r.URL.RequestURI(), rww.status)
	}
	return http.HandlerFunc(fn)
}

// returncode returns a handler that only writes status code
func returncode(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}
