/*
Package udpchat implements a connectionless chat system over UDP: a public
lobby plus ad-hoc private rooms created, invited-to, and joined at runtime.

The server is a message router. One goroutine reads the socket and enqueues
datagrams; a single router goroutine decodes, validates, and dispatches
them, mutating the client registry and room table that it alone owns.
Delivery is best-effort: there is no acknowledgement, ordering, or
retransmission, and a failed send disconnects the endpoint.

The client mirrors a simplified version of the same shape: a receive loop
renders inbound packets while the foreground loop turns line input into
outbound ones, keeping an optimistic local view of room membership.

Binaries live under cmd/: udpchat-server, udpchat-client, and udpchat-web,
a small HTTP form gateway that forwards a message into the lobby.
*/
package udpchat
