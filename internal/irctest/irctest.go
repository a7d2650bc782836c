// Package irctest runs scripted, in-process IRC servers for tests.
package irctest

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// Handler serves one accepted connection.
type Handler func(conn net.Conn, s *Server)

// Server accepts connections on 127.0.0.1 and hands each to a Handler.
type Server struct {
	Host string
	Port int

	ln      net.Listener
	handler Handler
	wg      sync.WaitGroup

	mu       sync.Mutex
	received []string
}

// NewServer starts a plain TCP server.  It is closed by t.Cleanup.
func NewServer(t testing.TB, h Handler) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return start(t, ln, h)
}

// NewTLSServer starts a TLS server with a self-signed certificate and
// returns a client config that trusts it.
func NewTLSServer(t testing.TB, h Handler) (*Server, *tls.Config) {
	t.Helper()
	serverCfg, clientCfg := SelfSignedTLS(t)
	ln, err := tls.Listen("tcp", "127.0.0.1:0", serverCfg)
	if err != nil {
		t.Fatal(err)
	}
	return start(t, ln, h), clientCfg
}

func start(t testing.TB, ln net.Listener, h Handler) *Server {
	addr := ln.Addr().(*net.TCPAddr)
	s := &Server{Host: "127.0.0.1", Port: addr.Port, ln: ln, handler: h}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handler(conn, s)
		}()
	}
}

// Received returns every line read by the helpers in this package.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.received))
	copy(out, s.received)
	return out
}

func (s *Server) record(line string) {
	s.mu.Lock()
	s.received = append(s.received, line)
	s.mu.Unlock()
}

// ReadUntil reads CRLF lines from r until one starts with command,
// recording each.  It reports whether command was seen.
func (s *Server) ReadUntil(r *bufio.Reader, command string) bool {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return false
		}
		line = strings.TrimRight(line, "\r\n")
		s.record(line)
		if strings.HasPrefix(line, command) {
			return true
		}
	}
}

// Reply returns a handler that waits for NAMES, writes each of lines
// as one chunk, then waits for QUIT or the client to hang up.
func Reply(chunks ...string) Handler {
	return func(conn net.Conn, s *Server) {
		r := bufio.NewReader(conn)
		if !s.ReadUntil(r, "NAMES") {
			return
		}
		for _, chunk := range chunks {
			if _, err := conn.Write([]byte(chunk)); err != nil {
				return
			}
		}
		s.ReadUntil(r, "QUIT")
	}
}

// Trickle returns a handler that writes each chunk after delay, so that
// the total transfer time exceeds any single inactivity window.
func Trickle(delay time.Duration, chunks ...string) Handler {
	return func(conn net.Conn, s *Server) {
		r := bufio.NewReader(conn)
		if !s.ReadUntil(r, "NAMES") {
			return
		}
		for _, chunk := range chunks {
			time.Sleep(delay)
			if _, err := conn.Write([]byte(chunk)); err != nil {
				return
			}
		}
		s.ReadUntil(r, "QUIT")
	}
}

// Silent returns a handler that reads registration then never answers.
func Silent() Handler {
	return func(conn net.Conn, s *Server) {
		r := bufio.NewReader(conn)
		s.ReadUntil(r, "NAMES")
		s.ReadUntil(r, "QUIT") // blocks until the client hangs up
	}
}

// Hangup returns a handler that closes right after NAMES arrives.
func Hangup(chunks ...string) Handler {
	return func(conn net.Conn, s *Server) {
		r := bufio.NewReader(conn)
		if !s.ReadUntil(r, "NAMES") {
			return
		}
		for _, chunk := range chunks {
			conn.Write([]byte(chunk)) //nolint:errcheck
		}
	}
}

// Names builds a well-formed 353/366 reply for channel.
func Names(channel string, names ...string) string {
	return ":irc.test 353 me = " + channel + " :" + strings.Join(names, " ") + "\r\n" +
		":irc.test 366 me " + channel + " :End of /NAMES list.\r\n"
}

// SelfSignedTLS returns a server config for 127.0.0.1 and a client
// config whose root pool contains that certificate.
func SelfSignedTLS(t testing.TB) (*tls.Config, *tls.Config) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "irc.test"},
		DNSNames:              []string{"irc.test", "localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)

	server := &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
		MinVersion:   tls.VersionTLS12,
	}
	client := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	return server, client
}
