// Package relay retrieves sample files from a storage host that is only
// reachable through a jump host.
//
// A download authenticates to the jumper, opens a direct-tcpip channel from
// the jumper to the target and runs a second SSH handshake over that channel
// with the target's own key, so the target is never dialled from this
// machine. Files are then copied over SFTP on the tunnelled connection.
//
// Start with downloader.go for the batch flow and tunnel.go for how the two
// hops are acquired and released.
package relay
