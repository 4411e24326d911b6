// Package tcp implements the TCP socket transport of the keep RPC system on
// top of the base package.
//
// Client connections disable Nagle's algorithm and use TCP keep-alive. The
// default server buffer size is 512 KB.
package tcp
