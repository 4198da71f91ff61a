package udpchat

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/udpchat/udpchat/packet"
)

func TestGatewayPage(t *testing.T) {
	g := NewGateway("127.0.0.1:5000", "web")

	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<form method="POST">`) {
		t.Error("page is missing the message form")
	}
}

func TestGatewayForward(t *testing.T) {
	sink, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen failed: %s", err)
	}
	defer sink.Close()

	g := NewGateway(sink.LocalAddr().String(), "web")

	form := url.Values{"msg": {"hello from the web"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want 303 redirect", rec.Code)
	}

	// A one-shot sender fires a join followed by the message.
	got := map[string]packet.Packet{}
	buf := make([]byte, packet.MaxSize)
	sink.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 2; i++ {
		n, _, err := sink.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("datagram %d never arrived: %s", i, err)
		}
		p, err := packet.Decode(buf[:n])
		if err != nil {
			t.Fatalf("datagram %d malformed: %s", i, err)
		}
		got[p.Type()] = p
	}

	join, ok := got[packet.TypeJoin]
	if !ok {
		t.Fatal("no join packet received")
	}
	if !strings.HasPrefix(join.String("name"), "web-") {
		t.Errorf("gateway name %q, want web- prefix", join.String("name"))
	}

	msg, ok := got[packet.TypeMsg]
	if !ok {
		t.Fatal("no msg packet received")
	}
	if msg.String("text") != "hello from the web" {
		t.Errorf("got text %q", msg.String("text"))
	}
	if msg.String("name") != join.String("name") {
		t.Error("message name differs from the joined name")
	}
}

func TestGatewayEmptyMessage(t *testing.T) {
	g := NewGateway("127.0.0.1:5000", "web")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("msg=++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	// Blank input is not forwarded, just bounced back to the form.
	if rec.Code != http.StatusSeeOther {
		t.Errorf("got status %d, want 303 redirect", rec.Code)
	}
}
