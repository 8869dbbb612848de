// Package tor routes the HTTP-speaking stages through a SOCKS5 proxy.
//
// Two pieces live here. EmbeddedTor starts a private Tor daemon with tornago
// so that --tor works without a system Tor installation. Client verifies that a
// SOCKS5 endpoint (embedded or operator supplied via --proxy) actually speaks
// the protocol before any stage is launched, so a misconfigured proxy fails the
// run up front instead of surfacing as zero live hosts.
package tor
