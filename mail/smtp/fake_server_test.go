package smtp

import (
	"bufio"
	"encoding/base64"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSMTPServer is a minimal SMTP server for testing.
// It supports AUTH PLAIN, can reject selected recipients, can leave DATA
// unanswered and can hang up on RSET.
type fakeSMTPServer struct {
	listener net.Listener
	username string
	password string

	mx          sync.Mutex
	connections int
	messages    []string
	rejectRcpt  map[string]bool
	stallRcpt   map[string]bool
	dropOnRset  bool
	stalled     chan struct{}
	quits       int
}

func startFakeSMTPServer(t *testing.T, username, password string) *fakeSMTPServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to start SMTP server")

	server := &fakeSMTPServer{
		listener:   listener,
		username:   username,
		password:   password,
		rejectRcpt: make(map[string]bool),
		stallRcpt:  make(map[string]bool),
		stalled:    make(chan struct{}, 1),
	}
	t.Cleanup(func() { _ = listener.Close() })

	go server.serve()

	return server
}

func (s *fakeSMTPServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) config() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    s.port(),
		TLSMode: TLSNone,
	}
}

func (s *fakeSMTPServer) reject(addr string) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.rejectRcpt[addr] = true
}

// stall makes the server swallow DATA for transactions addressed to addr.
func (s *fakeSMTPServer) stall(addr string) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.stallRcpt[addr] = true
}

func (s *fakeSMTPServer) hangUpOnReset() {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.dropOnRset = true
}

func (s *fakeSMTPServer) stats() (connections int, messages []string, quits int) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.connections, append([]string(nil), s.messages...), s.quits
}

func (s *fakeSMTPServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return // listener closed
		}

		s.mx.Lock()
		s.connections++
		s.mx.Unlock()

		go func() {
			defer conn.Close()
			s.handle(conn)
		}()
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	reply := func(line string) {
		_, _ = writer.WriteString(line + "\r\n")
		_ = writer.Flush()
	}

	reply("220 localhost ESMTP Test Server")

	var stalling bool
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
			reply("250-localhost")
			reply("250-AUTH PLAIN")
			reply("250 8BITMIME")
		case strings.HasPrefix(line, "AUTH PLAIN "):
			if s.checkPlain(strings.TrimPrefix(line, "AUTH PLAIN ")) {
				reply("235 2.7.0 Authentication successful")
			} else {
				reply("535 5.7.8 Username and Password not accepted")
			}
		case strings.HasPrefix(line, "MAIL FROM:"):
			reply("250 OK")
		case strings.HasPrefix(line, "RCPT TO:"):
			addr := strings.TrimSuffix(strings.TrimPrefix(line, "RCPT TO:<"), ">")
			s.mx.Lock()
			rejected := s.rejectRcpt[addr]
			stalling = stalling || s.stallRcpt[addr]
			s.mx.Unlock()
			if rejected {
				reply("550 5.1.1 The email account that you tried to reach does not exist")
			} else {
				reply("250 OK")
			}
		case line == "DATA" && stalling:
			s.stalled <- struct{}{}
			// Read until the client drops the connection, never answer.
			_, _ = io.Copy(io.Discard, reader)
			return
		case line == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")

			var msg strings.Builder
			for {
				text, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimRight(text, "\r\n") == "." {
					break
				}
				msg.WriteString(text)
			}

			s.mx.Lock()
			s.messages = append(s.messages, msg.String())
			s.mx.Unlock()
			reply("250 OK queued")
		case line == "RSET":
			s.mx.Lock()
			drop := s.dropOnRset
			s.mx.Unlock()
			if drop {
				return
			}
			stalling = false
			reply("250 OK")
		case line == "NOOP":
			reply("250 OK")
		case line == "QUIT":
			s.mx.Lock()
			s.quits++
			s.mx.Unlock()
			reply("221 localhost closing connection")
			return
		default:
			reply("500 Syntax error")
		}
	}
}

func (s *fakeSMTPServer) checkPlain(encoded string) bool {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	parts := strings.Split(string(raw), "\x00")
	return len(parts) == 3 && parts[1] == s.username && parts[2] == s.password
}
