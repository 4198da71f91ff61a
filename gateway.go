package udpchat

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/udpchat/udpchat/packet"
)

const gatewayPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>UDP Web Chat</title>
</head>
<body style="font-family: sans-serif;">
	<h2>Send Message to UDP Chat</h2>
	<form method="POST">
		<input name="msg" placeholder="Enter message" size="40">
		<input type="submit" value="Send">
	</form>
</body>
</html>
`

// Gateway forwards a single web form submission into the chat protocol as a
// one-shot sender: each POST opens a throwaway socket, joins under the
// gateway's name and fires one lobby message. It holds no session and gets
// no replies; delivery is as best-effort as any other sender's.
type Gateway struct {
	server string
	name   string
}

// NewGateway creates a gateway posting to the given chat server address.
// The sender name carries a random suffix so concurrent gateways remain
// distinguishable in the lobby.
func NewGateway(server string, name string) *Gateway {
	if !strings.Contains(server, ":") {
		server = fmt.Sprintf("%s:%d", server, packet.DefaultPort)
	}
	if name == "" {
		name = "web"
	}
	return &Gateway{
		server: server,
		name:   fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, gatewayPage)

	case http.MethodPost:
		msg := strings.TrimSpace(r.PostFormValue("msg"))
		if msg != "" {
			if err := g.forward(msg); err != nil {
				logger.Errorf("Gateway send failed: %s", err)
				http.Error(w, "chat server unreachable", http.StatusBadGateway)
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// forward joins and posts one lobby message over a throwaway socket.
func (g *Gateway) forward(msg string) error {
	addr, err := net.ResolveUDPAddr("udp", g.server)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", g.server, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	for _, p := range []packet.Packet{packet.Join(g.name), packet.Msg(g.name, msg)} {
		data, err := packet.Encode(p)
		if err != nil {
			return err
		}
		if _, err := conn.Write(data); err != nil {
			return err
		}
	}
	return nil
}
