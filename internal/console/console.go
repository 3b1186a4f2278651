// Package console serves interactive text sessions over TCP on the "cli"
// platform. Each connection gets its own room so histories never mix.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/petrel-ai/attendant/internal/lane"
)

// Platform is the platform identifier console sessions run under.
const Platform = "cli"

const (
	userPrompt      = "~ user: "
	assistantPrompt = "~ assistant: "
)

// Server accepts plain TCP connections and runs a prompt loop on each.
type Server struct {
	addr  string
	lanes *lane.Manager

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]bool
	wg    sync.WaitGroup
}

// NewServer creates a console server submitting messages through lanes.
func NewServer(host string, port int, lanes *lane.Manager) *Server {
	return &Server{
		addr:  fmt.Sprintf("%s:%d", host, port),
		lanes: lanes,
		conns: make(map[net.Conn]bool),
	}
}

// Addr returns the bound listener address, or nil before Start has bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start listens and serves until ctx is cancelled. Cancellation closes the
// listener and every live session connection so blocked reads unwind.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("console listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Printf("[Console] serving on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		ln.Close()
		s.closeAllConns()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("console accept: %w", err)
		}

		s.mu.Lock()
		s.conns[conn] = true
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				conn.Close()
			}()
			s.session(ctx, conn)
		}()
	}
}

// closeAllConns closes every live session connection (called on shutdown).
func (s *Server) closeAllConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
		delete(s.conns, conn)
	}
}

// session runs the prompt loop for one connection. Exposed through an
// io.ReadWriter so it can be driven without a socket.
func (s *Server) session(ctx context.Context, rw io.ReadWriter) {
	roomID := "console_" + uuid.NewString()
	log.Printf("[Console] session started, room %s", roomID)

	scanner := bufio.NewScanner(rw)
	for {
		io.WriteString(rw, userPrompt)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == `\q` || line == ".quit" {
			log.Printf("[Console] session closed, room %s", roomID)
			return
		}

		replies, err := s.lanes.Submit(ctx, lane.Request{
			Platform: Platform,
			RoomID:   roomID,
			Sender:   "console_user",
			Content:  line,
		})
		if err != nil {
			log.Printf("[Console] submit failed, room %s: %v", roomID, err)
			io.WriteString(rw, "\n"+assistantPrompt+"Error\n\n")
			continue
		}

		for _, r := range replies {
			if r.Type != "text" || r.Content == "" {
				continue
			}
			io.WriteString(rw, "\n"+assistantPrompt+r.Content+"\n")
		}
		io.WriteString(rw, "\n")
	}
}
