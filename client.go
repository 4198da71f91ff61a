package udpchat

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/google/shlex"
	"github.com/peterh/liner"

	"github.com/udpchat/udpchat/packet"
	"github.com/udpchat/udpchat/set"
)

var commandNames = []string{"/create", "/invite", "/accept", "/room", "/help", "/quit"}

const helpText = `Available commands:
  /create <room>        - Create and join a private room
  /invite <room> <user> - Invite a user to a room
  /accept <room>        - Accept a room invitation
  /room <room> <msg>    - Send to a room without switching context
  /quit or qqq          - Exit the chat client
  exit or end           - Leave the current room and return to the lobby`

// Client is the interactive session: a receive loop renders inbound
// packets while the foreground loop turns line input into outbound ones.
//
// The room and invitation sets are the client's own optimistic view. They
// are updated when a packet is sent or an invite arrives, without waiting
// for server confirmation, so they can diverge from server truth; they gate
// local command preconditions and nothing else.
type Client struct {
	conn net.Conn
	name string
	out  io.Writer

	stopOnce sync.Once

	unconfirmedRooms   *set.Set
	unconfirmedInvites *set.Set

	mu          sync.Mutex
	currentRoom string
}

// NewClient wraps an existing datagram connection to the server.
func NewClient(conn net.Conn, name string, out io.Writer) *Client {
	return &Client{
		conn:               conn,
		name:               name,
		out:                out,
		unconfirmedRooms:   set.New(),
		unconfirmedInvites: set.New(),
	}
}

// DialClient connects a client to a chat server address.
func DialClient(server string, name string) (*Client, error) {
	if !strings.Contains(server, ":") {
		server = fmt.Sprintf("%s:%d", server, packet.DefaultPort)
	}
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", server, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewClient(conn, name, nil), nil
}

// Name returns the session nickname.
func (c *Client) Name() string {
	return c.name
}

// Run joins the lobby and blocks on the interactive prompt until the user
// quits or input is closed.
func (c *Client) Run() error {
	if c.out == nil {
		c.out = os.Stdout
	}
	c.send(packet.Join(c.name))
	go c.recvLoop()

	prompt := liner.NewLiner()
	defer prompt.Close()
	prompt.SetCtrlCAborts(true)
	prompt.SetCompleter(c.complete)

	fmt.Fprintln(c.out, "Type /help to see available commands.")
	for {
		input, err := prompt.Prompt(c.prompt())
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if strings.TrimSpace(input) != "" {
			prompt.AppendHistory(input)
		}
		if quit := c.HandleInput(input); quit {
			break
		}
	}

	c.send(packet.Quit(c.name))
	c.Close()
	return nil
}

// Close shuts the session down. The receive loop exits on its next read.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		c.conn.Close()
	})
}

// HandleInput processes one line of user input and reports whether the
// session should end.
func (c *Client) HandleInput(input string) (quit bool) {
	trimmed := strings.TrimSpace(input)

	// Escape the current room context back to the lobby.
	if c.CurrentRoom() != "" && (strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "end")) {
		c.setCurrentRoom("")
		return false
	}

	if strings.EqualFold(trimmed, "/quit") || strings.EqualFold(trimmed, "qqq") {
		return true
	}

	if strings.HasPrefix(trimmed, "/") {
		c.handleCommand(trimmed)
		return false
	}

	if trimmed == "" {
		return false
	}

	if room := c.CurrentRoom(); room != "" {
		c.send(packet.RoomMsg(room, c.name, input))
	} else {
		c.send(packet.Msg(c.name, input))
	}
	return false
}

func (c *Client) handleCommand(line string) {
	args, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(c.out, "Parse error: %s\n", err)
		return
	}
	cmd := strings.ToLower(args[0])
	args = args[1:]

	switch cmd {
	case "/create":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "Usage: /create <room>")
			return
		}
		room := args[0]
		c.send(packet.CreateRoom(c.name, room))
		c.unconfirmedRooms.Add(set.StringItem(room))
		c.setCurrentRoom(room)

	case "/invite":
		if len(args) != 2 {
			fmt.Fprintln(c.out, "Usage: /invite <room> <user>")
			return
		}
		c.send(packet.Invite(args[0], c.name, args[1]))

	case "/accept":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "Usage: /accept <room>")
			return
		}
		room := args[0]
		if !c.unconfirmedInvites.In(room) {
			fmt.Fprintf(c.out, "No pending invite for '%s'\n", room)
			return
		}
		c.send(packet.AcceptInv(c.name, room))
		c.unconfirmedInvites.Remove(room)
		c.unconfirmedRooms.Add(set.StringItem(room))
		c.setCurrentRoom(room)

	case "/room":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: /room <room> <msg>")
			return
		}
		room := args[0]
		if !c.unconfirmedRooms.In(room) {
			fmt.Fprintln(c.out, "You are not a member of that room")
			return
		}
		c.send(packet.RoomMsg(room, c.name, strings.Join(args[1:], " ")))

	case "/help":
		fmt.Fprintln(c.out, helpText)

	default:
		fmt.Fprintln(c.out, "Unknown command")
	}
}

// recvLoop is the only reader of inbound traffic. It renders packets and
// opportunistically records invitations in the local pending set.
func (c *Client) recvLoop() {
	buf := make([]byte, packet.MaxSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return
		}

		p, err := packet.Decode(buf[:n])
		if err != nil {
			logger.Debugf("Dropped inbound: %s", err)
			continue
		}
		if !packet.Validate(p) {
			logger.Warningf("Dropped invalid inbound %q packet", p.Type())
			continue
		}
		c.render(p)
	}
}

func (c *Client) render(p packet.Packet) {
	switch p.Type() {
	case packet.TypeSys:
		fmt.Fprintf(c.out, "\r%s %s\n", ColorString(Cyan, "[SYSTEM]"), p.String("text"))

	case packet.TypeMsg:
		fmt.Fprintf(c.out, "\r%s %s\n", ColorString(Green, "<"+p.String("name")+">"), p.String("text"))

	case packet.TypeInvite:
		room := p.String("room")
		c.unconfirmedInvites.Add(set.StringItem(room))
		fmt.Fprintf(c.out, "\r%s %s invited you to room '%s' - /accept %s\n",
			ColorString(Magenta, "[INVITE]"), p.String("from"), room, room)

	case packet.TypeRoomMsg:
		room := p.String("room")
		tag, color := "", Yellow
		if room != c.CurrentRoom() {
			tag, color = "["+room+"] ", Blue
		}
		fmt.Fprintf(c.out, "\r%s%s %s\n", tag, ColorString(color, "<"+p.String("from")+">"), p.String("text"))
	}
}

// CurrentRoom returns the room context plain input is sent to, "" for the
// lobby.
func (c *Client) CurrentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRoom
}

func (c *Client) setCurrentRoom(room string) {
	c.mu.Lock()
	c.currentRoom = room
	c.mu.Unlock()
}

// prompt reflects the current room context, "room# " inside a room.
func (c *Client) prompt() string {
	if room := c.CurrentRoom(); room != "" {
		return room + "# "
	}
	return "> "
}

// complete offers slash commands and locally-known room names to the line
// editor.
func (c *Client) complete(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	if !strings.Contains(line, " ") {
		var r []string
		for _, cmd := range commandNames {
			if strings.HasPrefix(cmd, strings.ToLower(line)) {
				r = append(r, cmd)
			}
		}
		return r
	}

	cmd := strings.SplitN(line, " ", 2)[0]
	prefix := line[strings.LastIndex(line, " ")+1:]
	var rooms *set.Set
	switch strings.ToLower(cmd) {
	case "/accept":
		rooms = c.unconfirmedInvites
	case "/room", "/invite", "/create":
		rooms = c.unconfirmedRooms
	default:
		return nil
	}

	var r []string
	for _, item := range rooms.ListPrefix(prefix) {
		r = append(r, line[:len(line)-len(prefix)]+item.Key())
	}
	return r
}

func (c *Client) send(p packet.Packet) {
	if !packet.Validate(p) {
		logger.Errorf("Refusing to send invalid %q packet", p.Type())
		return
	}
	data, err := packet.Encode(p)
	if err != nil {
		logger.Errorf("Refusing to send %q packet: %s", p.Type(), err)
		return
	}
	if _, err := c.conn.Write(data); err != nil {
		logger.Errorf("Send failed: %s", err)
		c.Close()
	}
}
