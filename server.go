package udpchat

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/shazow/rateio"

	"github.com/udpchat/udpchat/chat"
	"github.com/udpchat/udpchat/packet"
)

// PacketConn is the slice of *net.UDPConn the server needs. Tests substitute
// a scripted implementation.
type PacketConn interface {
	ReadFromUDP(b []byte) (int, *net.UDPAddr, error)
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	LocalAddr() net.Addr
	Close() error
}

// datagram pairs raw inbound bytes with the sending endpoint, the unit
// passed from the receive loop to the router.
type datagram struct {
	data []byte
	addr *net.UDPAddr
}

// Server is the message router. A receive goroutine owns the reading side
// of the socket and feeds the inbound queue; a single router goroutine
// (Serve) owns all protocol state, so the registry and room table need no
// coordination beyond that.
type Server struct {
	conn     PacketConn
	config   *Config
	registry *chat.Registry
	rooms    *chat.Rooms

	inbound  chan datagram
	done     chan struct{}
	stopOnce sync.Once
	started  time.Time

	// limiters is touched only by the router goroutine.
	limiters map[string]rateio.Limiter

	mu     sync.Mutex
	msglog io.Writer
}

// NewServer wraps an existing packet connection. Most callers want
// ListenServer instead.
func NewServer(conn PacketConn, config *Config) *Server {
	return &Server{
		conn:     conn,
		config:   config,
		registry: chat.NewRegistry(),
		rooms:    chat.NewRooms(),
		inbound:  make(chan datagram, config.QueueDepth),
		done:     make(chan struct{}),
		limiters: map[string]rateio.Limiter{},
	}
}

// ListenServer binds a UDP socket per config and returns a server on it.
func ListenServer(config *Config) (*Server, error) {
	addr, err := net.ResolveUDPAddr("udp", config.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", config.ListenAddr(), err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return NewServer(conn, config), nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// SetLogging sets the output for the line-per-delivery message log.
func (s *Server) SetLogging(w io.Writer) {
	s.mu.Lock()
	s.msglog = w
	s.mu.Unlock()
}

func (s *Server) logMessage(format string, args ...interface{}) {
	s.mu.Lock()
	w := s.msglog
	s.mu.Unlock()
	if w == nil {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// Serve runs the router until Close is called. It blocks; the receive loop
// runs in its own goroutine and exits when the socket is closed.
func (s *Server) Serve() {
	s.started = time.Now()
	logger.Infof("Serving chat on %s", s.Addr())

	go s.recvLoop()

	for {
		select {
		case <-s.done:
			for _, info := range s.registry.All() {
				logger.Infof("Dropping %s (%s), joined %s", info.Name, info.Addr, humanize.Time(info.Joined))
			}
			logger.Infof("Router stopped, uptime since %s", humanize.Time(s.started))
			return
		case dg := <-s.inbound:
			s.handle(dg.data, dg.addr)
		}
	}
}

// Close stops the router and closes the socket. Safe to call more than
// once, and from any goroutine.
func (s *Server) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// recvLoop owns the reading side of the socket: it blocks on reads and
// enqueues datagrams for the router. A full queue drops the datagram so a
// backed-up router never blocks reception. Exits on read error, which is
// how shutdown reaches it (Close closes the socket).
func (s *Server) recvLoop() {
	buf := make([]byte, packet.MaxSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			logger.Debugf("Receive loop ended: %s", err)
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		select {
		case s.inbound <- datagram{data, addr}:
		default:
			logger.Warningf("Inbound queue full, dropped datagram from %s", addr)
		}
	}
}

// handle decodes, validates and dispatches one datagram. Runs on the router
// goroutine only.
func (s *Server) handle(data []byte, addr *net.UDPAddr) {
	if err := s.ratelimit(addr); err != nil {
		logger.Debugf("[%s] Rate limited: %s", addr, err)
		return
	}

	p, err := packet.Decode(data)
	if err != nil {
		logger.Debugf("[%s] Dropped: %s", addr, err)
		return
	}
	if !packet.Validate(p) {
		logger.Warningf("[%s] Dropped invalid %q packet", addr, p.Type())
		return
	}

	switch p.Type() {
	case packet.TypeJoin:
		s.handleJoin(p, addr)
	case packet.TypeMsg:
		s.handleMsg(p, addr)
	case packet.TypeQuit:
		s.disconnect(addr)
	case packet.TypeCreateRoom:
		s.handleCreateRoom(p, addr)
	case packet.TypeInvite:
		s.handleInvite(p, addr)
	case packet.TypeAcceptInv:
		s.handleAccept(p, addr)
	case packet.TypeRoomMsg:
		s.handleRoomMsg(p, addr)
	}
}

func (s *Server) ratelimit(addr *net.UDPAddr) error {
	limiter, ok := s.limiters[addr.String()]
	if !ok {
		limiter = rateio.NewSimpleLimiter(s.config.RateLimit, s.config.RatePeriod)
		s.limiters[addr.String()] = limiter
	}
	return limiter.Count(1)
}

func (s *Server) handleJoin(p packet.Packet, addr *net.UDPAddr) {
	info := s.registry.Register(addr, p.String("name"))
	logger.Infof("%s joined the chat", info.Name)
	s.send(packet.Sys(fmt.Sprintf("Welcome, %s!", info.Name)), addr)
}

func (s *Server) handleMsg(p packet.Packet, addr *net.UDPAddr) {
	info, ok := s.registry.Lookup(addr)
	if !ok {
		logger.Warningf("Unknown sender %s tried to send a public message", addr)
		return
	}
	text := p.String("text")
	s.logMessage("[lobby] <%s> %s", info.Name, text)
	s.broadcast(packet.Msg(info.Name, text), addr)
}

func (s *Server) handleCreateRoom(p packet.Packet, addr *net.UDPAddr) {
	room := p.String("room")
	s.rooms.Create(room, addr)
	logger.Infof("%s created room %q", s.senderName(p, addr), room)
	s.send(packet.Sys(fmt.Sprintf("Room '%s' created", room)), addr)
}

func (s *Server) handleInvite(p packet.Packet, addr *net.UDPAddr) {
	room, targetName := p.String("room"), p.String("to")
	if !s.rooms.IsMember(room, addr) {
		s.send(packet.Sys("You are not in that room"), addr)
		return
	}

	target, ok := s.registry.ResolveName(targetName)
	if !ok {
		s.send(packet.Sys("User not found"), addr)
		return
	}

	if err := s.rooms.Invite(room, addr, target.Addr); err != nil {
		s.send(packet.Sys("You are not in that room"), addr)
		return
	}
	s.send(packet.Invite(room, s.senderName(p, addr), targetName), target.Addr)
}

func (s *Server) handleAccept(p packet.Packet, addr *net.UDPAddr) {
	room := p.String("room")
	if err := s.rooms.Accept(room, addr); err != nil {
		s.send(packet.Sys("No invite for that room"), addr)
		return
	}
	s.send(packet.Sys(fmt.Sprintf("Joined room '%s'", room)), addr)
}

func (s *Server) handleRoomMsg(p packet.Packet, addr *net.UDPAddr) {
	room, text := p.String("room"), p.String("text")
	others, err := s.rooms.Post(room, addr)
	if err != nil {
		s.send(packet.Sys("You are not in that room"), addr)
		return
	}

	from := s.senderName(p, addr)
	s.logMessage("[%s] <%s> %s", room, from, text)
	out := packet.RoomMsg(room, from, text)
	for _, member := range others {
		s.send(out, member)
	}
}

// senderName prefers the registered display name over whatever the packet
// claims, falling back to the packet's from field for unregistered senders.
func (s *Server) senderName(p packet.Packet, addr *net.UDPAddr) string {
	if info, ok := s.registry.Lookup(addr); ok {
		return info.Name
	}
	if from := p.String("from"); from != "" {
		return from
	}
	return addr.String()
}

// send delivers a packet best-effort. A failed transport write is treated
// as a disconnect of that endpoint; there is no retry layer.
func (s *Server) send(p packet.Packet, addr *net.UDPAddr) {
	data, err := packet.Encode(p)
	if err != nil {
		logger.Errorf("Dropping unencodable %q packet: %s", p.Type(), err)
		return
	}
	if _, err := s.conn.WriteToUDP(data, addr); err != nil {
		logger.Debugf("[%s] Send failed, disconnecting: %s", addr, err)
		s.disconnect(addr)
	}
}

// broadcast sends to every registered endpoint except the excluded one.
// Iterates a snapshot, so a send failure removing a client mid-loop is
// safe, and one failure never aborts delivery to the rest.
func (s *Server) broadcast(p packet.Packet, exclude *net.UDPAddr) {
	for _, addr := range s.registry.Addrs() {
		if exclude != nil && addr.String() == exclude.String() {
			continue
		}
		s.send(p, addr)
	}
}

// disconnect removes an endpoint from the registry and every room. Invoked
// on quit and on transport-level send failures.
func (s *Server) disconnect(addr *net.UDPAddr) {
	info := s.registry.Remove(addr)
	if info == nil {
		return
	}
	s.rooms.Purge(addr)
	delete(s.limiters, addr.String())
	logger.Infof("%s left the chat (joined %s)", info.Name, humanize.Time(info.Joined))
}
